package validation

import (
	"errors"
	"strings"
)

var ErrEmptyText = errors.New("text is required")

// ValidatePostText rejects blank messages and messages longer than max runes.
func ValidatePostText(text string, max int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return ValidateLength(text, max)
}
