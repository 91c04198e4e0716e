package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/repository"
	"github.com/dropwall/dropwall/internal/storage"
	"github.com/dropwall/dropwall/internal/validation"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

type PublicFileStats struct {
	Count   int `json:"public_files_count"`
	PerPage int `json:"public_files_per_page"`
}

// UploadInput is one file upload as received from the form.
type UploadInput struct {
	OwnerID     string
	FileName    string
	Size        int64
	Content     io.Reader
	Visibility  string
	Expiration  string
	Description string
}

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	policy   config.UploadPolicy
	now      func() time.Time
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage, policy config.UploadPolicy) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		policy:   policy,
		now:      utcNow,
	}
}

func (s *FileService) Policy() config.UploadPolicy {
	return s.policy
}

// Upload validates and stores a file, then records it. The object is written
// before the row so a row never points at missing bytes; if the row cannot
// be inserted the object is removed again.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*model.File, error) {
	err := validation.ValidateUpload(validation.Upload{
		FileName:    in.FileName,
		Size:        in.Size,
		Visibility:  in.Visibility,
		Expiration:  in.Expiration,
		Description: in.Description,
	}, s.policy)
	if errors.Is(err, validation.ErrFileTooLarge) {
		return nil, fmt.Errorf("%s: %w", err, ErrPayloadTooLarge)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()

	live, err := s.fileRepo.CountLive(ctx, in.OwnerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if live >= s.policy.FilesPerUser {
		return nil, fmt.Errorf("%d of %d files: %w", live, s.policy.FilesPerUser, ErrQuotaExceeded)
	}

	ttl, _ := s.policy.ExpirationFor(in.Expiration)
	ext := validation.FileExtension(in.FileName)

	displayName := validation.SecureFilename(in.FileName)
	if displayName == "" || displayName == ext {
		displayName = "file." + ext
	}

	uniqueName := uuid.New().String() + "." + ext
	if s.policy.VerboseUniqueNames {
		uniqueName = uuid.New().String() + "_" + displayName
	}

	// Never trust the declared size: read at most one byte past the limit
	size, err := s.storage.Save(ctx, uniqueName, io.LimitReader(in.Content, s.policy.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if size > s.policy.MaxSize {
		s.discard(uniqueName)
		return nil, fmt.Errorf("maximum size is %d bytes: %w", s.policy.MaxSize, ErrPayloadTooLarge)
	}

	file := &model.File{
		ID:               uuid.New().String(),
		OriginalFileName: displayName,
		UniqueFileName:   uniqueName,
		SizeInBytes:      size,
		OwnerID:          in.OwnerID,
		Privacy:          in.Visibility,
		UploadDate:       now,
		Expires:          now.Add(ttl),
		Description:      in.Description,
	}

	err = s.fileRepo.CreateWithinQuota(ctx, file, s.policy.FilesPerUser, now)
	if err != nil {
		s.discard(uniqueName)
		if errors.Is(err, repository.ErrQuotaExceeded) {
			return nil, fmt.Errorf("limit of %d files: %w", s.policy.FilesPerUser, ErrQuotaExceeded)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	slog.Info("file uploaded",
		"owner_id", file.OwnerID,
		"unique_file_name", file.UniqueFileName,
		"size", file.SizeInBytes,
		"privacy", file.Privacy,
		"expires", file.Expires,
	)
	return file, nil
}

// discard removes an object whose row was never written. It ignores the
// request context so a cancelled upload still cleans up.
func (s *FileService) discard(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.storage.Delete(ctx, name)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("failed to delete file from storage during cleanup", "error", err, "name", name)
	}
}

// readable loads a live file and checks that requesterID may see it.
// An empty requesterID is an anonymous visitor.
func (s *FileService) readable(ctx context.Context, name, requesterID string) (*model.File, error) {
	file, err := s.fileRepo.ByUniqueName(ctx, name)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, fmt.Errorf("file %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	if file.IsExpired(s.now()) {
		return nil, fmt.Errorf("file %s expired: %w", name, ErrNotFound)
	}

	if !file.CanBeReadBy(requesterID) {
		return nil, fmt.Errorf("file %s: %w", name, ErrForbidden)
	}

	return file, nil
}

// Download returns the file record and its contents. The caller closes the reader.
func (s *FileService) Download(ctx context.Context, name, requesterID string) (*model.File, io.ReadCloser, error) {
	file, err := s.readable(ctx, name, requesterID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Open(ctx, file.UniqueFileName)
	if errors.Is(err, storage.ErrNotFound) {
		// row outlived its object, e.g. mid-sweep
		return nil, nil, fmt.Errorf("file %s contents: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, rc, nil
}

// ShareQR renders a PNG QR code of the file's download URL, under the same
// visibility rules as Download.
func (s *FileService) ShareQR(ctx context.Context, name, requesterID, baseURL string) ([]byte, error) {
	file, err := s.readable(ctx, name, requesterID)
	if err != nil {
		return nil, err
	}

	link := strings.TrimSuffix(baseURL, "/") + "/files/" + url.PathEscape(file.UniqueFileName)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}

	return png, nil
}

// Delete removes the row first, then the object. A leftover object is
// picked up later by the reconciler.
func (s *FileService) Delete(ctx context.Context, name, callerID string) error {
	file, err := s.fileRepo.ByUniqueName(ctx, name)
	if errors.Is(err, repository.ErrFileNotFound) {
		return fmt.Errorf("file %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	if file.OwnerID != callerID {
		return fmt.Errorf("file %s: %w", name, ErrForbidden)
	}

	err = s.fileRepo.DeleteByUniqueName(ctx, name)
	if errors.Is(err, repository.ErrFileNotFound) {
		return fmt.Errorf("file %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	err = s.storage.Delete(ctx, name)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("failed to delete file from storage", "error", err, "name", name)
	}

	return nil
}

func (s *FileService) ListForOwner(ctx context.Context, ownerID string) ([]*model.File, error) {
	files, err := s.fileRepo.ListForOwner(ctx, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// ListPublic pages through other people's Public files. excludeOwnerID
// hides the viewer's own uploads; empty shows everyone's.
func (s *FileService) ListPublic(ctx context.Context, excludeOwnerID string, page int) ([]*model.FileListing, error) {
	size := s.policy.PublicFilesPerPage
	offset, err := pageOffset(page, size)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListPublic(ctx, excludeOwnerID, s.now(), size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list public files: %w", err)
	}
	return files, nil
}

func (s *FileService) PublicStats(ctx context.Context, excludeOwnerID string) (*PublicFileStats, error) {
	count, err := s.fileRepo.CountPublic(ctx, excludeOwnerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to count public files: %w", err)
	}
	return &PublicFileStats{Count: count, PerPage: s.policy.PublicFilesPerPage}, nil
}
