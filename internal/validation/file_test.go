package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	p := config.DefaultUploadPolicy()

	ok := Upload{
		FileName:    "report.PDF",
		Size:        1024,
		Visibility:  publicVisibility,
		Expiration:  "1 day",
		Description: "quarterly numbers",
	}
	require.NoError(t, ValidateUpload(ok, p))

	t.Run("too large", func(t *testing.T) {
		in := ok
		in.Size = p.MaxSize + 1
		err := ValidateUpload(in, p)
		assert.True(t, errors.Is(err, ErrFileTooLarge))
	})

	t.Run("exactly max size", func(t *testing.T) {
		in := ok
		in.Size = p.MaxSize
		assert.NoError(t, ValidateUpload(in, p))
	})

	t.Run("field errors", func(t *testing.T) {
		in := Upload{
			FileName:    "run.exe",
			Visibility:  "Friends",
			Expiration:  "forever",
			Description: strings.Repeat("d", 141),
		}
		err := ValidateUpload(in, p)

		var verr *Errors
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 4)
		assert.NotEmpty(t, verr.Get("file"))
		assert.NotEmpty(t, verr.Get("accessibility"))
		assert.NotEmpty(t, verr.Get("expiration"))
		assert.NotEmpty(t, verr.Get("description"))
	})

	t.Run("missing name", func(t *testing.T) {
		in := ok
		in.FileName = ""
		assert.Error(t, ValidateUpload(in, p))
	})

	t.Run("no extension", func(t *testing.T) {
		in := ok
		in.FileName = "Makefile"
		assert.Error(t, ValidateUpload(in, p))
	})
}

const publicVisibility = "Public"

func TestValidatePostText(t *testing.T) {
	assert.NoError(t, ValidatePostText("hi", 280))
	assert.NoError(t, ValidatePostText(strings.Repeat("ж", 280), 280))
	assert.ErrorIs(t, ValidatePostText(" \n\t", 280), ErrEmptyText)
	assert.Error(t, ValidatePostText(strings.Repeat("ж", 281), 280))
}

func TestErrorsCollector(t *testing.T) {
	errs := NewErrors()
	assert.NoError(t, errs.Err())

	errs.Check("a", nil)
	assert.False(t, errs.Any())

	errs.Add("a", "first")
	errs.Add("a", "second")
	errs.Add("b", "other")

	assert.Equal(t, "first", errs.Get("a"))
	assert.Equal(t, "validation failed: a: first; b: other", errs.Error())
	assert.Error(t, errs.Err())

	var nilErrs *Errors
	assert.Empty(t, nilErrs.Get("a"))
}
