package ctxkeys

import (
	"context"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey      contextKey = "user"
	ConfigKey    contextKey = "config"
	CSRFTokenKey contextKey = "csrf_token"
	FlashesKey   contextKey = "flashes"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}

// Flashes are one-shot messages read from the flash cookie for this request.
func Flashes(ctx context.Context) []string {
	flashes, _ := ctx.Value(FlashesKey).([]string)
	return flashes
}

func WithFlashes(ctx context.Context, flashes []string) context.Context {
	return context.WithValue(ctx, FlashesKey, flashes)
}
