package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dropwall/dropwall/internal/db"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrQuotaExceeded    = errors.New("file quota exceeded")
	ErrDuplicateFileKey = errors.New("unique file name already exists")
)

type FileRepository interface {
	CreateWithinQuota(ctx context.Context, file *model.File, limit int, now time.Time) error
	ByUniqueName(ctx context.Context, name string) (*model.File, error)
	CountLive(ctx context.Context, ownerID string, now time.Time) (int, error)
	ListForOwner(ctx context.Context, ownerID string, now time.Time) ([]*model.File, error)
	ListPublic(ctx context.Context, excludeOwnerID string, now time.Time, limit, offset int) ([]*model.FileListing, error)
	CountPublic(ctx context.Context, excludeOwnerID string, now time.Time) (int, error)
	DeleteByUniqueName(ctx context.Context, name string) error
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
	AllUniqueNames(ctx context.Context) ([]string, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

const fileColumns = `id, original_file_name, unique_file_name, size_in_bytes, owner_id, privacy, upload_date, expires, description`

// CreateWithinQuota inserts the file only while the owner holds fewer than
// limit unexpired files. Count and insert are one statement, so two uploads
// racing for the last slot cannot both win.
func (r *fileRepository) CreateWithinQuota(ctx context.Context, file *model.File, limit int, now time.Time) error {
	query := `
		INSERT INTO files (` + fileColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE (SELECT COUNT(*) FROM files WHERE owner_id = $5 AND expires > $10) < $11
	`

	var inserted int64
	err := db.WithTx(ctx, r.db, db.SerializableFor(r.db), func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			file.ID,
			file.OriginalFileName,
			file.UniqueFileName,
			file.SizeInBytes,
			file.OwnerID,
			file.Privacy,
			file.UploadDate,
			file.Expires,
			file.Description,
			now,
			limit,
		)
		if err != nil {
			return err
		}
		inserted, err = result.RowsAffected()
		return err
	})
	if db.IsUniqueViolation(err) {
		return ErrDuplicateFileKey
	}
	if err != nil {
		return err
	}

	if inserted == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// ByUniqueName returns the row even when it has expired; callers decide.
func (r *fileRepository) ByUniqueName(ctx context.Context, name string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT ` + fileColumns + ` FROM files WHERE unique_file_name = $1`

	err := r.db.GetContext(ctx, file, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) CountLive(ctx context.Context, ownerID string, now time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM files WHERE owner_id = $1 AND expires > $2`

	err := r.db.GetContext(ctx, &count, query, ownerID, now)
	return count, err
}

func (r *fileRepository) ListForOwner(ctx context.Context, ownerID string, now time.Time) ([]*model.File, error) {
	var files []*model.File
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE owner_id = $1 AND expires > $2
		ORDER BY upload_date DESC, id DESC
	`

	err := r.db.SelectContext(ctx, &files, query, ownerID, now)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// ListPublic pages through unexpired Public files of every owner except
// excludeOwnerID (empty excludes nobody).
func (r *fileRepository) ListPublic(ctx context.Context, excludeOwnerID string, now time.Time, limit, offset int) ([]*model.FileListing, error) {
	var files []*model.FileListing
	query := `
		SELECT f.id, f.original_file_name, f.unique_file_name, f.size_in_bytes, f.owner_id,
		       f.privacy, f.upload_date, f.expires, f.description,
		       u.username AS owner_username
		FROM files f
		JOIN users u ON u.id = f.owner_id
		WHERE f.privacy = $1 AND f.owner_id <> $2 AND f.expires > $3
		ORDER BY f.upload_date DESC, f.id DESC
		LIMIT $4 OFFSET $5
	`

	err := r.db.SelectContext(ctx, &files, query, model.VisibilityPublic, excludeOwnerID, now, limit, offset)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) CountPublic(ctx context.Context, excludeOwnerID string, now time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM files WHERE privacy = $1 AND owner_id <> $2 AND expires > $3`

	err := r.db.GetContext(ctx, &count, query, model.VisibilityPublic, excludeOwnerID, now)
	return count, err
}

func (r *fileRepository) DeleteByUniqueName(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE unique_file_name = $1`, name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}

// DeleteExpired removes every row expired at now and returns their storage
// names. Selection and deletion happen in a single statement.
func (r *fileRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	var names []string
	query := `DELETE FROM files WHERE expires <= $1 RETURNING unique_file_name`

	err := r.db.SelectContext(ctx, &names, query, now)
	if err != nil {
		return nil, err
	}

	return names, nil
}

func (r *fileRepository) AllUniqueNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `SELECT unique_file_name FROM files`)
	if err != nil {
		return nil, err
	}
	return names, nil
}
