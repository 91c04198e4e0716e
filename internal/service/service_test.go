package service

import (
	"context"
	"testing"
	"time"

	"github.com/dropwall/dropwall/internal/config"
	"github.com/dropwall/dropwall/internal/db/dbtest"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/dropwall/dropwall/internal/repository"
	"github.com/dropwall/dropwall/internal/storage"
	"github.com/dropwall/dropwall/internal/validation"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *sqlx.DB
	store    *storage.LocalStorage
	auth     *AuthService
	posts    *PostService
	files    *FileService
	profile  *ProfileService
	fileRepo repository.FileRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := dbtest.New(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	users := repository.NewUserRepository(database)
	sessions := repository.NewSessionRepository(database)
	fileRepo := repository.NewFileRepository(database)

	upload := config.DefaultUploadPolicy()
	upload.FilesPerUser = 3
	upload.MaxSize = 1024

	return &testEnv{
		db:       database,
		store:    store,
		auth:     NewAuthService(users, sessions, config.DefaultRegistrationPolicy(), 24*time.Hour, 28*24*time.Hour),
		posts:    NewPostService(repository.NewPostRepository(database), config.PostPolicy{PerPage: 3, MaxLen: 280}),
		files:    NewFileService(fileRepo, store, upload),
		profile:  NewProfileService(repository.NewProfileRepository(database)),
		fileRepo: fileRepo,
	}
}

func registration(username string) validation.Registration {
	return validation.Registration{
		FirstName:      "Test",
		LastName:       "User",
		Gender:         "Male",
		BirthDay:       "1",
		BirthMonth:     "January",
		BirthYear:      "1990",
		Username:       username,
		Password:       "Passw0rd_",
		RepeatPassword: "Passw0rd_",
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), registration(username))
	require.NoError(t, err)
	return user
}
