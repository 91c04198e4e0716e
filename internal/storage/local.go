package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// LocalStorage keeps objects as plain files in a single directory.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) path(name string) (string, error) {
	err := checkName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// Save writes to a temp file in the same directory, syncs it and renames it
// into place, so readers never observe a half-written object.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	p, err := s.path(name)
	if err != nil {
		return 0, err
	}

	cr := &countingReader{r: r}
	err = atomic.WriteFile(p, cr)
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}

	// The caller may have gone away while bytes were streaming in
	if ctx.Err() != nil {
		_ = os.Remove(p)
		return 0, ctx.Err()
	}

	return cr.n, nil
}

func (s *LocalStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// List skips directories and hidden files.
func (s *LocalStorage) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		objects = append(objects, Object{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return objects, nil
}
