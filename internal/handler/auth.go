package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/middleware"
	"github.com/dropwall/dropwall/internal/service"
	"github.com/dropwall/dropwall/internal/ui"
	"github.com/dropwall/dropwall/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *middleware.Sessions
	policy      config.RegistrationPolicy
	rememberFor time.Duration
}

func NewAuthHandler(authService *service.AuthService, sessions *middleware.Sessions, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		policy:      cfg.Registration,
		rememberFor: cfg.SessionRememberFor,
	}
}

func (h *AuthHandler) registerForm(values validation.Registration, errs *validation.Errors) ui.RegisterForm {
	years := make([]string, 0, h.policy.BirthYearMax-h.policy.BirthYearMin+1)
	for y := h.policy.BirthYearMax; y >= h.policy.BirthYearMin; y-- {
		years = append(years, strconv.Itoa(y))
	}
	// passwords are never echoed back
	values.Password = ""
	values.RepeatPassword = ""
	return ui.RegisterForm{
		Values:  values,
		Errors:  errs,
		Genders: h.policy.Genders,
		Months:  h.policy.Months,
		Years:   years,
	}
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.RegisterPage(h.registerForm(validation.Registration{}, nil)))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := validation.Registration{
		FirstName:      strings.TrimSpace(r.FormValue("first_name")),
		LastName:       strings.TrimSpace(r.FormValue("last_name")),
		Gender:         r.FormValue("gender"),
		BirthDay:       strings.TrimSpace(r.FormValue("birthdate_day")),
		BirthMonth:     r.FormValue("birthdate_month"),
		BirthYear:      r.FormValue("birthdate_year"),
		Username:       strings.TrimSpace(r.FormValue("username")),
		Password:       r.FormValue("password"),
		RepeatPassword: r.FormValue("repeat_password"),
		Bio:            strings.TrimSpace(r.FormValue("bio")),
	}

	_, err := h.authService.Register(r.Context(), in)

	var fieldErrs *validation.Errors
	switch {
	case err == nil:
		h.sessions.AddFlash(w, r, "Successfully registered!")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
	case errors.As(err, &fieldErrs):
		ui.Render(w, r, ui.RegisterPage(h.registerForm(in, fieldErrs)))
	case errors.Is(err, service.ErrUsernameTaken):
		errs := validation.NewErrors()
		errs.Add("username", "Username is unavailable.")
		ui.Render(w, r, ui.RegisterPage(h.registerForm(in, errs)))
	default:
		fail(w, r, err)
	}
}

// nextParam returns ?next= when it is safe to redirect to.
func nextParam(r *http.Request) (string, error) {
	next := r.URL.Query().Get("next")
	if !service.SafeRedirect(next, r.Host) {
		return "", fmt.Errorf("next %q: %w", next, service.ErrUnsafeRedirect)
	}
	return next, nil
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next, err := nextParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	ui.Render(w, r, ui.LoginPage(ui.LoginForm{Next: next}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	next, err := nextParam(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	remember := r.FormValue("remember") != ""

	session, err := h.authService.Login(r.Context(), username, r.FormValue("password"), remember)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.sessions.AddFlash(w, r, "User not found.")
		case errors.Is(err, service.ErrBadPassword):
			h.sessions.AddFlash(w, r, "Incorrect password.")
		default:
			fail(w, r, err)
			return
		}
		back := "/auth/login"
		if next != "" {
			back += "?next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	err = h.sessions.Begin(w, r, session.ID, remember, h.rememberFor)
	if err != nil {
		fail(w, r, err)
		return
	}

	slog.Info("user logged in", "user_id", session.UserID, "remember", remember)
	h.sessions.AddFlash(w, r, "Successfully logged in!")

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context(), h.sessions.Token(r))
	if err != nil {
		slog.Error("failed to end session", "error", err)
	}
	h.sessions.End(w, r)
	h.sessions.AddFlash(w, r, "Successfully logged out!")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
