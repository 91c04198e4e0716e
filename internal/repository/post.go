package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dropwall/dropwall/internal/db"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	ByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, viewerID string, limit, offset int) ([]*model.PostView, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (*model.LikeState, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (id, author_id, text, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, post.ID, post.AuthorID, post.Text, post.CreatedAt)
	return err
}

func (r *postRepository) ByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT id, author_id, text, created_at FROM posts WHERE id = $1`

	err := r.db.GetContext(ctx, post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

// List returns posts newest first with like counts and whether viewerID
// liked each one. An empty viewerID is an anonymous viewer.
func (r *postRepository) List(ctx context.Context, viewerID string, limit, offset int) ([]*model.PostView, error) {
	var posts []*model.PostView
	query := `
		SELECT p.id, p.author_id, p.text, p.created_at,
		       u.username AS author_username,
		       (SELECT COUNT(*) FROM posts_likes l WHERE l.post_id = p.id) AS likes,
		       EXISTS (
		           SELECT 1 FROM posts_likes l
		           WHERE l.post_id = p.id AND l.like_author_id = $1
		       ) AS liked_by_viewer
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`

	err := r.db.SelectContext(ctx, &posts, query, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`)
	return count, err
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPostNotFound
	}

	return nil
}

// ToggleLike removes the user's like if present and adds it otherwise, then
// reports the new count. The unique (post_id, like_author_id) index keeps
// concurrent toggles from producing duplicate likes.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (*model.LikeState, error) {
	state := &model.LikeState{PostID: postID}

	err := db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var exists bool
		err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPostNotFound
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM posts_likes WHERE post_id = $1 AND like_author_id = $2`, postID, userID)
		if err != nil {
			return err
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if removed == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO posts_likes (id, post_id, like_author_id)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING
			`, uuid.New().String(), postID, userID)
			if err != nil {
				return err
			}
			state.Liked = true
		}

		return tx.GetContext(ctx, &state.Likes,
			`SELECT COUNT(*) FROM posts_likes WHERE post_id = $1`, postID)
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}
