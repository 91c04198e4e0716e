package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropwall/dropwall/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user := env.register(t, "alice")
	assert.Len(t, user.PasswordHash, 80)

	profile, err := env.profile.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, 1990, profile.Birthdate.Year())

	_, err = env.auth.Register(ctx, registration("alice"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	session, err := env.auth.Login(ctx, "alice", "Passw0rd_", false)
	require.NoError(t, err)
	assert.Len(t, session.ID, 64)
	assert.False(t, session.Remember)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	got, err := env.auth.Authenticate(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.auth.Login(ctx, "alice", "wrong", false)
	assert.ErrorIs(t, err, ErrBadPassword)

	_, err = env.auth.Login(ctx, "nobody", "Passw0rd_", false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	in := registration("ab")
	in.Password = "weak"
	in.RepeatPassword = "weak"

	_, err := env.auth.Register(context.Background(), in)
	var verr *validation.Errors
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Get("username"))
	assert.NotEmpty(t, verr.Get("password"))

	_, err = env.profile.ByUsername(context.Background(), "ab")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRememberedSessionAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice")

	session, err := env.auth.Login(ctx, "alice", "Passw0rd_", true)
	require.NoError(t, err)
	assert.True(t, session.Remember)
	assert.WithinDuration(t, time.Now().Add(28*24*time.Hour), session.ExpiresAt, time.Minute)

	require.NoError(t, env.auth.Logout(ctx, session.ID))
	_, err = env.auth.Authenticate(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	require.NoError(t, env.auth.Logout(ctx, ""))
}

func TestAuthenticateExpiredSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice")

	session, err := env.auth.Login(ctx, "alice", "Passw0rd_", false)
	require.NoError(t, err)

	env.auth.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
	_, err = env.auth.Authenticate(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// the expired row is dropped on sight
	env.auth.now = utcNow
	_, err = env.auth.Authenticate(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	_, err = env.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSafeRedirect(t *testing.T) {
	host := "example.com"

	tests := []struct {
		next string
		safe bool
	}{
		{"", true},
		{"/files", true},
		{"posts?page=2", true},
		{"http://example.com/files", true},
		{"https://example.com/", true},
		{"https://evil.com/", false},
		{"//evil.com/path", false},
		{"/\\evil.com", false},
		{"javascript:alert(1)", false},
		{"ftp://example.com/", false},
		{"http://example.com:8080/", false},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.safe, SafeRedirect(tt.next, host))
		})
	}
}
