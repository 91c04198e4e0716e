package handler

import (
	"errors"
	"net/http"

	"github.com/dropwall/dropwall/internal/middleware"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/service"
	"github.com/dropwall/dropwall/internal/ui"
	"github.com/dropwall/dropwall/internal/validation"
)

type PostHandler struct {
	postService *service.PostService
	sessions    *middleware.Sessions
	maxLen      int
}

func NewPostHandler(postService *service.PostService, sessions *middleware.Sessions, maxLen int) *PostHandler {
	return &PostHandler{
		postService: postService,
		sessions:    sessions,
		maxLen:      maxLen,
	}
}

func viewerID(user *model.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}

// postList loads one page and works out whether another one follows.
func (h *PostHandler) postList(r *http.Request, user *model.User, page int, stats *service.PostStats) (ui.PostList, error) {
	posts, err := h.postService.List(r.Context(), viewerID(user), page, nil)
	if err != nil {
		return ui.PostList{}, err
	}
	list := ui.PostList{Posts: posts}
	if page*stats.PerPage < stats.Count {
		list.NextPage = page + 1
	}
	return list, nil
}

func (h *PostHandler) WallPage(w http.ResponseWriter, r *http.Request, user *model.User) {
	stats, err := h.postService.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	list, err := h.postList(r, user, 1, stats)
	if err != nil {
		fail(w, r, err)
		return
	}

	ui.Render(w, r, ui.WallPage(ui.Wall{PostList: list, Count: stats.Count, MaxLen: h.maxLen}))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request, user *model.User) {
	_, err := h.postService.Create(r.Context(), user.ID, r.FormValue("text"))

	var fieldErrs *validation.Errors
	switch {
	case err == nil:
		h.sessions.AddFlash(w, r, "Successfully sent!")
	case errors.Is(err, service.ErrEmptyPost):
		h.sessions.AddFlash(w, r, "You did not enter message text.")
	case errors.As(err, &fieldErrs):
		h.sessions.AddFlash(w, r, "Message is too long.")
	default:
		fail(w, r, err)
		return
	}

	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// Load returns a page of posts, or with ?index= the single post at that
// position of the page. The total count is refreshed out of band.
func (h *PostHandler) Load(w http.ResponseWriter, r *http.Request, user *model.User) {
	page, ok := queryPage(r)
	if !ok {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}
	index, ok := queryInt(r, "index")
	if !ok {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}

	stats, err := h.postService.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	if index != nil {
		posts, err := h.postService.List(r.Context(), viewerID(user), page, index)
		if err != nil {
			fail(w, r, err)
			return
		}
		ui.Render(w, r, ui.Posts(ui.PostList{Posts: posts}))
		return
	}

	list, err := h.postList(r, user, page, stats)
	if err != nil {
		fail(w, r, err)
		return
	}

	ui.Render(w, r, ui.Posts(list))
	ui.RenderOOB(w, r, ui.Count(stats.Count), "innerHTML:#posts-count")
}

func (h *PostHandler) Parameters(w http.ResponseWriter, r *http.Request) {
	stats, err := h.postService.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request, user *model.User) {
	postID := r.URL.Query().Get("post_id")
	if postID == "" {
		http.Error(w, "post_id is required", http.StatusBadRequest)
		return
	}

	state, err := h.postService.ToggleLike(r.Context(), postID, user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}

	ui.Render(w, r, ui.Like(state))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request, user *model.User) {
	postID := r.PathValue("id")

	err := h.postService.Delete(r.Context(), postID, user.ID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted_post_id": postID})
}
