package service

import (
	"errors"
	"time"
)

// Errors returned by services. Handlers map them to status codes; callers
// should match with errors.Is since services wrap them with context.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrQuotaExceeded   = errors.New("file quota exceeded")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrUsernameTaken  = errors.New("username is already taken")
	ErrUserNotFound   = errors.New("user not found")
	ErrBadPassword    = errors.New("wrong password")
	ErrSessionInvalid = errors.New("session is invalid or expired")
	ErrEmptyPost      = errors.New("post text is empty")
	ErrUnsafeRedirect = errors.New("unsafe redirect target")
)

func utcNow() time.Time {
	return time.Now().UTC()
}
