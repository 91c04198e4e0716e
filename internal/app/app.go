package app

import (
	"context"
	"fmt"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/db"
	"github.com/dropwall/dropwall/internal/middleware"
	"github.com/dropwall/dropwall/internal/repository"
	"github.com/dropwall/dropwall/internal/service"
	"github.com/dropwall/dropwall/internal/storage"
	"github.com/dropwall/dropwall/internal/worker"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.Storage
	Sessions       *middleware.Sessions
	AuthService    *service.AuthService
	PostService    *service.PostService
	FileService    *service.FileService
	ProfileService *service.ProfileService
	Sweeper        *worker.Sweeper
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Wire(cfg, database, fileStorage), nil
}

// Wire builds repositories, services and the sweeper on top of an open
// database and storage backend.
func Wire(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	postRepository := repository.NewPostRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Services
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		cfg.Registration,
		cfg.SessionTTL,
		cfg.SessionRememberFor,
	)
	postService := service.NewPostService(postRepository, cfg.Posts)
	fileService := service.NewFileService(fileRepository, fileStorage, cfg.Upload)
	profileService := service.NewProfileService(profileRepository)

	sweeper := worker.NewSweeper(
		fileRepository,
		sessionRepository,
		fileStorage,
		cfg.SweepInterval,
		cfg.ReconcileInterval,
		cfg.ReconcileGrace,
	)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        fileStorage,
		Sessions:       middleware.NewSessions(cfg.SessionSecret, cfg.IsProduction()),
		AuthService:    authService,
		PostService:    postService,
		FileService:    fileService,
		ProfileService: profileService,
		Sweeper:        sweeper,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
