package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/repository"
	"github.com/dropwall/dropwall/internal/validation"
	"github.com/google/uuid"
)

type PostStats struct {
	Count   int `json:"posts_count"`
	PerPage int `json:"posts_per_page"`
}

type PostService struct {
	postRepository repository.PostRepository
	policy         config.PostPolicy
	now            func() time.Time
}

func NewPostService(postRepository repository.PostRepository, policy config.PostPolicy) *PostService {
	return &PostService{
		postRepository: postRepository,
		policy:         policy,
		now:            utcNow,
	}
}

func (s *PostService) Create(ctx context.Context, authorID, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)

	err := validation.ValidatePostText(text, s.policy.MaxLen)
	if errors.Is(err, validation.ErrEmptyText) {
		return nil, ErrEmptyPost
	}
	if err != nil {
		errs := validation.NewErrors()
		errs.Add("text", err.Error())
		return nil, errs
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: s.now(),
	}

	err = s.postRepository.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// List returns one page of the wall, newest first. With index set it
// returns the single post at that position instead: index counts from the
// top of the page when >= 0 and from the bottom when negative, and must
// stay within the page size.
func (s *PostService) List(ctx context.Context, viewerID string, page int, index *int) ([]*model.PostView, error) {
	size := s.policy.PerPage
	offset, err := pageOffset(page, size)
	if err != nil {
		return nil, err
	}
	limit := size

	if index != nil {
		i := *index
		if i >= size || -i >= size {
			return nil, fmt.Errorf("index %d outside page of %d: %w", i, size, ErrInvalidArgument)
		}
		if i >= 0 {
			offset += i
		} else {
			offset += size + i
		}
		limit = 1
	}

	posts, err := s.postRepository.List(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// pageOffset returns the row offset of a 1-based page. Pages whose offset
// would not fit in an int are rejected along with pages below 1.
func pageOffset(page, size int) (int, error) {
	if page < 1 || page-1 > (math.MaxInt-size)/size {
		return 0, fmt.Errorf("page %d: %w", page, ErrInvalidArgument)
	}
	return (page - 1) * size, nil
}

func (s *PostService) Stats(ctx context.Context) (*PostStats, error) {
	count, err := s.postRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	return &PostStats{Count: count, PerPage: s.policy.PerPage}, nil
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*model.LikeState, error) {
	state, err := s.postRepository.ToggleLike(ctx, postID, userID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return state, nil
}

// Delete removes a post. Only its author may delete it.
func (s *PostService) Delete(ctx context.Context, postID, callerID string) error {
	post, err := s.postRepository.ByID(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	if post.AuthorID != callerID {
		return fmt.Errorf("post %s: %w", postID, ErrForbidden)
	}

	err = s.postRepository.Delete(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}
