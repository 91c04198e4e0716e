package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dropwall/dropwall/internal/config"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid object name")
)

// Storage keeps uploaded file contents under flat, server-generated names.
type Storage interface {
	// Save writes r under name and reports the number of bytes stored.
	// A failed Save leaves no partial object behind.
	Save(ctx context.Context, name string, r io.Reader) (int64, error)

	// Open returns the object contents; ErrNotFound if it does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the object; ErrNotFound if it does not exist.
	Delete(ctx context.Context, name string) error

	// List returns every stored object.
	List(ctx context.Context) ([]Object, error)
}

type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// New picks the backend configured by STORAGE_DRIVER.
func New(ctx context.Context, c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "local":
		slog.Info("initializing local storage", "dir", c.UploadDir)
		return NewLocalStorage(c.UploadDir)
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// checkName rejects anything that could escape the storage root. Names are
// flat, so dots inside a name like "a..b.pdf" are harmless.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
