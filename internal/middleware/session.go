package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "dropwall_session"
	flashCookieName   = "dropwall_flash"
	sessionTokenKey   = "sid"
)

// Sessions keeps the opaque session token and flash messages in signed
// cookies. The token itself is only meaningful to the sessions table.
type Sessions struct {
	store  *sessions.CookieStore
	secure bool
}

func NewSessions(secret string, secure bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, secure: secure}
}

// Token returns the session token carried by the request, or "".
func (s *Sessions) Token(r *http.Request) string {
	session, err := s.store.Get(r, sessionCookieName)
	if err != nil {
		// tampered or signed with an old secret
		return ""
	}
	token, _ := session.Values[sessionTokenKey].(string)
	return token
}

// Begin stores the token. A remembered login gets a persistent cookie that
// lasts rememberFor; otherwise the cookie ends with the browser session.
func (s *Sessions) Begin(w http.ResponseWriter, r *http.Request, token string, remember bool, rememberFor time.Duration) error {
	session, _ := s.store.Get(r, sessionCookieName)
	session.Values[sessionTokenKey] = token
	session.Options = s.options(0)
	if remember {
		session.Options.MaxAge = int(rememberFor / time.Second)
	}
	return session.Save(r, w)
}

// End expires the session cookie.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionCookieName)
	delete(session.Values, sessionTokenKey)
	session.Options = s.options(-1)
	err := session.Save(r, w)
	if err != nil {
		slog.Warn("failed to clear session cookie", "error", err)
	}
}

func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := s.store.Get(r, flashCookieName)
	session.Options = s.options(0)
	session.AddFlash(message)
	err := session.Save(r, w)
	if err != nil {
		slog.Warn("failed to save flash", "error", err)
	}
}

// Flashes pops pending flash messages.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session, err := s.store.Get(r, flashCookieName)
	if err != nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	session.Options = s.options(0)
	err = session.Save(r, w)
	if err != nil {
		slog.Warn("failed to clear flashes", "error", err)
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			messages = append(messages, m)
		}
	}
	return messages
}

func (s *Sessions) options(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
