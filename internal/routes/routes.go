package routes

import (
	"io/fs"
	"net/http"

	"github.com/dropwall/dropwall"
	"github.com/dropwall/dropwall/internal/app"
	"github.com/dropwall/dropwall/internal/handler"
	"github.com/dropwall/dropwall/internal/middleware"
)

// uploadOverhead is the room left for form fields and multipart framing
// on top of the largest accepted file.
const uploadOverhead = 1 << 20

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.Sessions, app.Cfg)
	posts := handler.NewPostHandler(app.PostService, app.Sessions, app.Cfg.Posts.MaxLen)
	files := handler.NewFileHandler(app.FileService, app.Sessions, app.Cfg.AppURL)
	profile := handler.NewProfileHandler(app.ProfileService)

	mux := http.NewServeMux()

	// Static files
	sub, _ := fs.Sub(dropwall.StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	mux.HandleFunc("GET /{$}", home.HomePage)
	mux.HandleFunc("GET /healthz", home.Healthz)

	// Auth (submits are rate limited per client IP)
	rateLimit := middleware.RateLimit(middleware.NewRateLimiter(app.Cfg.AuthRateLimit, app.Cfg.AuthRateEvery))

	mux.HandleFunc("GET /auth/register", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("POST /auth/register", rateLimit(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("GET /auth/login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /auth/login", rateLimit(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("GET /auth/logout", auth.Logout)

	// Wall
	mux.HandleFunc("GET /posts", middleware.OptionalAuth(posts.WallPage))
	mux.HandleFunc("POST /posts", middleware.RequireAuth(posts.Create))
	mux.HandleFunc("GET /posts/load", middleware.OptionalAuth(posts.Load))
	mux.HandleFunc("GET /posts/parameters", posts.Parameters)
	mux.HandleFunc("GET /posts/like", middleware.RequireAuth(posts.ToggleLike))
	mux.HandleFunc("DELETE /posts/{id}", middleware.RequireAuth(posts.Delete))

	// Files
	mux.HandleFunc("GET /files", middleware.OptionalAuth(files.FilesPage))
	mux.HandleFunc("POST /files", middleware.RequireAuth(files.Upload))
	mux.HandleFunc("GET /files/public", middleware.OptionalAuth(files.PublicFiles))
	mux.HandleFunc("GET /files/public/parameters", middleware.OptionalAuth(files.PublicParameters))
	mux.HandleFunc("GET /files/{name}", middleware.OptionalAuth(files.Download))
	mux.HandleFunc("GET /files/{name}/qr", middleware.OptionalAuth(files.ShareQR))
	mux.HandleFunc("POST /files/{name}/delete", middleware.RequireAuth(files.Delete))

	// Profiles
	mux.HandleFunc("GET /users/{username}", profile.Profile)

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (CSRF reads it for the cookie's Secure flag)
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection(app.Cfg.Upload.MaxSize+uploadOverhead),
		middleware.AuthMiddleware(app.AuthService, app.Sessions),
		middleware.Flashes(app.Sessions),
	)

	return handler
}
