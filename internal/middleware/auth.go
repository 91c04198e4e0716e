package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dropwall/dropwall/internal/ctxkeys"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/service"
)

// UserHandlerFunc is a handler that receives the current user explicitly.
// user is nil for anonymous visitors on OptionalAuth routes.
type UserHandlerFunc func(w http.ResponseWriter, r *http.Request, user *model.User)

// AuthMiddleware resolves the session cookie to a user and adds it to context.
// Stale cookies are cleared; the request continues anonymously.
func AuthMiddleware(authService *service.AuthService, sess *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sess.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrSessionInvalid) {
					sess.End(w, r)
				} else {
					slog.Error("failed to authenticate session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = nil

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 to anonymous visitors. HTMX requests also get
// an HX-Redirect to the login page.
func RequireAuth(next UserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/auth/login")
			}
			http.Error(w, "Please log in to access this page.", http.StatusUnauthorized)
			return
		}
		next(w, r, user)
	}
}

// OptionalAuth passes the user when there is one and nil otherwise.
func OptionalAuth(next UserHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r, ctxkeys.User(r.Context()))
	}
}

// RequireGuest ensures the user is not authenticated
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil {
			// For HTMX requests, use HX-Redirect header to force full page redirect
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/posts")
				w.WriteHeader(http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/posts", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Flashes moves pending flash messages into the request context.
func Flashes(sess *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// fragments must not swallow messages meant for the page
			if r.Method != http.MethodGet || r.Header.Get("HX-Request") == "true" {
				next.ServeHTTP(w, r)
				return
			}
			flashes := sess.Flashes(w, r)
			if len(flashes) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithFlashes(r.Context(), flashes)))
		})
	}
}
