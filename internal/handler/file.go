package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/dropwall/dropwall/internal/middleware"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/service"
	"github.com/dropwall/dropwall/internal/ui"
	"github.com/dropwall/dropwall/internal/validation"
)

type FileHandler struct {
	fileService *service.FileService
	sessions    *middleware.Sessions
	baseURL     string
}

func NewFileHandler(fileService *service.FileService, sessions *middleware.Sessions, baseURL string) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		sessions:    sessions,
		baseURL:     baseURL,
	}
}

func (h *FileHandler) filesView(r *http.Request, user *model.User, form ui.UploadForm) (ui.Files, error) {
	policy := h.fileService.Policy()

	view := ui.Files{
		Form:         form,
		Visibilities: policy.Visibilities,
		Extensions:   policy.AllowedExtensions,
		MaxSize:      policy.MaxSize,
		FilesPerUser: policy.FilesPerUser,
		DescMax:      policy.DescriptionMax,
	}
	for _, e := range policy.Expirations {
		view.Expirations = append(view.Expirations, e.Name)
	}

	if user != nil {
		files, err := h.fileService.ListForOwner(r.Context(), user.ID)
		if err != nil {
			return ui.Files{}, err
		}
		view.Files = files
	}
	return view, nil
}

func (h *FileHandler) FilesPage(w http.ResponseWriter, r *http.Request, user *model.User) {
	view, err := h.filesView(r, user, ui.UploadForm{})
	if err != nil {
		fail(w, r, err)
		return
	}
	ui.Render(w, r, ui.FilesPage(view))
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request, user *model.User) {
	// read the file part first so an oversized body is reported as such
	file, header, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "File is too large", http.StatusRequestEntityTooLarge)
		return
	}

	form := ui.UploadForm{
		Description: r.FormValue("description"),
		Visibility:  r.FormValue("accessibility"),
		Expiration:  r.FormValue("expiration"),
	}

	switch {
	case errors.Is(err, http.ErrMissingFile):
		form.Errors = validation.NewErrors()
		form.Errors.Add("file", "choose a file to upload")
		h.renderForm(w, r, user, form)
		return
	case err != nil:
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	_, err = h.fileService.Upload(r.Context(), service.UploadInput{
		OwnerID:     user.ID,
		FileName:    header.Filename,
		Size:        header.Size,
		Content:     file,
		Visibility:  form.Visibility,
		Expiration:  form.Expiration,
		Description: form.Description,
	})

	var fieldErrs *validation.Errors
	switch {
	case err == nil:
		h.sessions.AddFlash(w, r, "File uploaded successfully!")
	case errors.As(err, &fieldErrs):
		form.Errors = fieldErrs
		h.renderForm(w, r, user, form)
		return
	case errors.Is(err, service.ErrQuotaExceeded):
		h.sessions.AddFlash(w, r, "You have reached files limit!")
	default:
		fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/files", http.StatusSeeOther)
}

func (h *FileHandler) renderForm(w http.ResponseWriter, r *http.Request, user *model.User, form ui.UploadForm) {
	view, err := h.filesView(r, user, form)
	if err != nil {
		fail(w, r, err)
		return
	}
	ui.Render(w, r, ui.FilesPage(view))
}

// publicScope reads ?for_user=. Set, it hides the viewer's own uploads and
// so requires a logged-in viewer.
func publicScope(r *http.Request, user *model.User) (excludeOwnerID string, ok bool) {
	if r.URL.Query().Get("for_user") == "" {
		return "", true
	}
	if user == nil {
		return "", false
	}
	return user.ID, true
}

func (h *FileHandler) PublicFiles(w http.ResponseWriter, r *http.Request, user *model.User) {
	exclude, ok := publicScope(r, user)
	if !ok {
		http.Error(w, "for_user requires a logged-in user", http.StatusBadRequest)
		return
	}
	page, ok := queryPage(r)
	if !ok {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}

	files, err := h.fileService.ListPublic(r.Context(), exclude, page)
	if err != nil {
		fail(w, r, err)
		return
	}
	stats, err := h.fileService.PublicStats(r.Context(), exclude)
	if err != nil {
		fail(w, r, err)
		return
	}

	list := ui.PublicFileList{Files: files, ForUser: exclude != ""}
	if page*stats.PerPage < stats.Count {
		list.NextPage = page + 1
	}
	ui.Render(w, r, ui.PublicFiles(list))
}

func (h *FileHandler) PublicParameters(w http.ResponseWriter, r *http.Request, user *model.User) {
	exclude, ok := publicScope(r, user)
	if !ok {
		http.Error(w, "for_user requires a logged-in user", http.StatusBadRequest)
		return
	}

	stats, err := h.fileService.PublicStats(r.Context(), exclude)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Download streams the file as an attachment under its display name.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request, user *model.User) {
	file, content, err := h.fileService.Download(r.Context(), r.PathValue("name"), viewerID(user))
	if err != nil {
		fail(w, r, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": file.OriginalFileName,
	}))
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeInBytes, 10))

	_, err = io.Copy(w, content)
	if err != nil {
		slog.Warn("download interrupted", "error", err, "name", file.UniqueFileName)
	}
}

func (h *FileHandler) ShareQR(w http.ResponseWriter, r *http.Request, user *model.User) {
	png, err := h.fileService.ShareQR(r.Context(), r.PathValue("name"), viewerID(user), h.baseURL)
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, err = w.Write(png)
	if err != nil {
		slog.Warn("failed to write qr code", "error", err)
	}
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request, user *model.User) {
	err := h.fileService.Delete(r.Context(), r.PathValue("name"), user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.sessions.AddFlash(w, r, "File deleted successfully!")
	http.Redirect(w, r, "/files", http.StatusSeeOther)
}
