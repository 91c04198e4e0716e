package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dropwall/dropwall/internal/db"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrProfileNotFound   = errors.New("profile not found")
)

type UserRepository interface {
	CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const insertUser = `INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`

// CreateWithProfile inserts the user and its profile in one transaction,
// so a user never exists without a profile.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error {
	return db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, insertUser, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
		if db.IsUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		if err != nil {
			return err
		}

		profile.UserID = user.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (id, user_id, first_name, last_name, gender, birthdate, bio, registration_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, profile.ID, profile.UserID, profile.FirstName, profile.LastName,
			profile.Gender, profile.Birthdate, profile.Bio, profile.RegistrationDate)
		return err
	})
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
