package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/password"
	"github.com/dropwall/dropwall/internal/repository"
	"github.com/dropwall/dropwall/internal/validation"
	"github.com/google/uuid"
)

type AuthService struct {
	userRepository    repository.UserRepository
	sessionRepository repository.SessionRepository
	policy            config.RegistrationPolicy
	sessionTTL        time.Duration
	rememberFor       time.Duration
	now               func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	policy config.RegistrationPolicy,
	sessionTTL time.Duration,
	rememberFor time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		policy:            policy,
		sessionTTL:        sessionTTL,
		rememberFor:       rememberFor,
		now:               utcNow,
	}
}

// Register validates the form and creates the user together with its
// profile. Field problems come back as *validation.Errors.
func (s *AuthService) Register(ctx context.Context, in validation.Registration) (*model.User, error) {
	birthdate, err := validation.ValidateRegistration(in, s.policy)
	if err != nil {
		return nil, err
	}

	hash, err := password.Derive(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	profile := &model.Profile{
		ID:               uuid.New().String(),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Gender:           in.Gender,
		Birthdate:        birthdate,
		Bio:              in.Bio,
		RegistrationDate: now,
	}

	err = s.userRepository.CreateWithProfile(ctx, user, profile)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil, fmt.Errorf("failed to register %q: %w", in.Username, ErrUsernameTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and opens a server-side session.
// Remembered sessions live for rememberFor, others for sessionTTL.
func (s *AuthService) Login(ctx context.Context, username, pw string, remember bool) (*model.Session, error) {
	user, err := s.userRepository.ByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("login %q: %w", username, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = password.Verify(user.PasswordHash, pw)
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", username, ErrBadPassword)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	ttl := s.sessionTTL
	if remember {
		ttl = s.rememberFor
	}

	now := s.now()
	session := &model.Session{
		ID:        token,
		UserID:    user.ID,
		Remember:  remember,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	err = s.sessionRepository.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessionRepository.Delete(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessionRepository.ByID(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.ExpiresAt.After(s.now()) {
		err = s.sessionRepository.Delete(ctx, token)
		if err != nil {
			slog.Warn("failed to drop expired session", "error", err)
		}
		return nil, ErrSessionInvalid
	}

	user, err := s.userRepository.ByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SafeRedirect reports whether next, resolved against the current host,
// stays on that host over http or https. An empty next is safe.
func SafeRedirect(next, host string) bool {
	if next == "" {
		return true
	}
	// browsers treat '\' like '/', so "/\evil.com" would leave the site
	if strings.ContainsAny(next, "\\\r\n\t") {
		return false
	}

	target, err := url.Parse(next)
	if err != nil {
		return false
	}

	base := &url.URL{Scheme: "http", Host: host, Path: "/"}
	resolved := base.ResolveReference(target)

	return (resolved.Scheme == "http" || resolved.Scheme == "https") && resolved.Host == host
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
