package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/repository"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

func (s *ProfileService) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("profile of %s: %w", userID, ErrNotFound)
	}
	return profile, err
}

func (s *ProfileService) ByUsername(ctx context.Context, username string) (*model.PublicProfile, error) {
	profile, err := s.profileRepo.ByUsername(ctx, username)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("profile of %q: %w", username, ErrNotFound)
	}
	return profile, err
}
