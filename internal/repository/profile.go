package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dropwall/dropwall/internal/model"
	"github.com/jmoiron/sqlx"
)

type ProfileRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	ByUsername(ctx context.Context, username string) (*model.PublicProfile, error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `
		SELECT id, user_id, first_name, last_name, gender, birthdate, bio, registration_date
		FROM profiles WHERE user_id = $1
	`, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) ByUsername(ctx context.Context, username string) (*model.PublicProfile, error) {
	var profile model.PublicProfile
	err := r.db.GetContext(ctx, &profile, `
		SELECT p.id, p.user_id, p.first_name, p.last_name, p.gender, p.birthdate, p.bio,
		       p.registration_date, u.username
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE u.username = $1
	`, username)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}
