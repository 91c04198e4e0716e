package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dropwall/dropwall/internal/config"
)

// ErrFileTooLarge is returned separately from field errors so callers can
// answer with 413 instead of re-rendering the form.
var ErrFileTooLarge = errors.New("file too large")

// Upload is the metadata part of an upload form.
type Upload struct {
	FileName    string
	Size        int64
	Visibility  string
	Expiration  string
	Description string
}

// ValidateUpload checks an upload against the policy. Size is checked first
// and reported as ErrFileTooLarge; everything else comes back as *Errors.
func ValidateUpload(in Upload, p config.UploadPolicy) error {
	if in.Size > p.MaxSize {
		return fmt.Errorf("%w: maximum size is %d bytes", ErrFileTooLarge, p.MaxSize)
	}

	errs := NewErrors()
	errs.Check("file", ValidateFileName(in.FileName, p))
	if !p.AllowsVisibility(in.Visibility) {
		errs.Add("accessibility", "choose privacy option from the list")
	}
	if _, ok := p.ExpirationFor(in.Expiration); !ok {
		errs.Add("expiration", "choose expiration time from the list")
	}
	errs.Check("description", ValidateLength(in.Description, p.DescriptionMax))

	return errs.Err()
}

// ValidateFileName requires a name with an allowed extension.
func ValidateFileName(name string, p config.UploadPolicy) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("choose a file to upload")
	}

	ext := FileExtension(name)
	if ext == "" || !p.AllowsExtension(ext) {
		return fmt.Errorf("file type not allowed, use one of: %s", strings.Join(p.AllowedExtensions, ", "))
	}
	return nil
}

// FileExtension returns the lower-cased extension without the dot.
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
