package ui

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/dropwall/dropwall/internal/ctxkeys"
	"github.com/dropwall/dropwall/internal/markdown"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/validation"
	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

var bios = markdown.New()

// renderBio falls back to escaped text if the markdown cannot be converted.
func renderBio(bio string) template.HTML {
	html, err := bios.Render(bio)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(bio))
	}
	return html
}

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"bytes": func(n int64) string { return humanize.Bytes(uint64(n)) },
	"ago":   humanize.Time,
	"date":  func(t time.Time) string { return t.Format("2 January 2006") },
	"stamp": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 UTC") },
	"bio":   renderBio,
}).ParseFS(templateFS, "templates/*.html"))

// viewData is what every template receives: request-scoped values plus
// the view's own data under .Data.
type viewData struct {
	AppName   string
	CSRFToken string
	Nonce     string
	User      *model.User
	Flashes   []string
	Data      any
}

func view(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		vd := viewData{
			AppName:   "dropwall",
			CSRFToken: ctxkeys.CSRFToken(ctx),
			Nonce:     templ.GetNonce(ctx),
			User:      ctxkeys.User(ctx),
			Flashes:   ctxkeys.Flashes(ctx),
			Data:      data,
		}
		if cfg := ctxkeys.Config(ctx); cfg != nil {
			vd.AppName = cfg.AppName
		}
		return templ.FromGoHTML(templates.Lookup(name), vd).Render(ctx, w)
	})
}

// Page wraps body in the site layout.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := view("header", title).Render(ctx, w)
		if err != nil {
			return err
		}
		err = body.Render(ctx, w)
		if err != nil {
			return err
		}
		return view("footer", nil).Render(ctx, w)
	})
}

type RegisterForm struct {
	Values  validation.Registration
	Errors  *validation.Errors
	Genders []string
	Months  []string
	Years   []string
}

func RegisterPage(form RegisterForm) templ.Component {
	return Page("Sign up", view("register", form))
}

type LoginForm struct {
	Username string
	Next     string
}

func LoginPage(form LoginForm) templ.Component {
	return Page("Log in", view("login", form))
}

type PostList struct {
	Posts    []*model.PostView
	NextPage int // 0 when there is nothing more to load
}

type Wall struct {
	PostList
	Count  int
	MaxLen int
}

func WallPage(wall Wall) templ.Component {
	return Page("Wall", view("wall", wall))
}

func Posts(list PostList) templ.Component {
	return view("post-list", list)
}

func Like(state *model.LikeState) templ.Component {
	return view("like", state)
}

// Count renders a bare number, used for out-of-band counters.
func Count(n int) templ.Component {
	return templ.Raw(strconv.Itoa(n))
}

type UploadForm struct {
	Description string
	Visibility  string
	Expiration  string
	Errors      *validation.Errors
}

type Files struct {
	Files        []*model.File
	Form         UploadForm
	Visibilities []string
	Expirations  []string
	Extensions   []string
	MaxSize      int64
	FilesPerUser int
	DescMax      int
}

func FilesPage(files Files) templ.Component {
	return Page("Files", view("files", files))
}

type PublicFileList struct {
	Files    []*model.FileListing
	NextPage int
	ForUser  bool
}

func PublicFiles(list PublicFileList) templ.Component {
	return view("public-files", list)
}

func Profile(p *model.PublicProfile) templ.Component {
	return view("profile", p)
}
