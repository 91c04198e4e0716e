package handler

import (
	"net/http"

	"github.com/dropwall/dropwall/internal/service"
	"github.com/dropwall/dropwall/internal/ui"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.ByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		fail(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		ui.Render(w, r, ui.Profile(profile))
		return
	}
	ui.Render(w, r, ui.Page(profile.Username, ui.Profile(profile)))
}
