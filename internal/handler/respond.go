package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dropwall/dropwall/internal/service"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrUnsafeRedirect):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the status for err. Unexpected errors are logged; the client
// only sees the status text.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	}
	http.Error(w, http.StatusText(status), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

// queryInt reads an optional integer query parameter. ok is false when the
// parameter is present but not a number.
func queryInt(r *http.Request, key string) (value *int, ok bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &i, true
}

// queryPage reads ?page=, defaulting to 1.
func queryPage(r *http.Request) (int, bool) {
	page, ok := queryInt(r, "page")
	if !ok {
		return 0, false
	}
	if page == nil {
		return 1, true
	}
	return *page, *page >= 1
}
