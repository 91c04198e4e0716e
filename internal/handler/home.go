package handler

import (
	"net/http"

	"github.com/dropwall/dropwall/internal/db"
	"github.com/jmoiron/sqlx"
)

type HomeHandler struct {
	db *sqlx.DB
}

func NewHomeHandler(database *sqlx.DB) *HomeHandler {
	return &HomeHandler{db: database}
}

// HomePage sends visitors to the wall.
func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Page not found", http.StatusNotFound)
}

// Healthz reports whether the database answers.
func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	err := db.Ping(r.Context(), h.db)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
