package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dropwall/dropwall/internal/db/dbtest"
	"github.com/dropwall/dropwall/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, database *sqlx.DB, username string) *model.User {
	t.Helper()

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: []byte("hash"),
		CreatedAt:    now,
	}
	profile := &model.Profile{
		ID:               uuid.New().String(),
		FirstName:        "Test",
		LastName:         "User",
		Gender:           "Female",
		Birthdate:        time.Date(1990, time.May, 5, 0, 0, 0, 0, time.UTC),
		RegistrationDate: now,
	}
	require.NoError(t, NewUserRepository(database).CreateWithProfile(context.Background(), user, profile))
	return user
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	users := NewUserRepository(database)
	profiles := NewProfileRepository(database)

	alice := seedUser(t, database, "alice")

	got, err := users.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)

	got, err = users.ByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = users.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	profile, err := profiles.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.UserID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1990, profile.Birthdate.Year())

	_, err = profiles.ByUserID(ctx, alice.ID)
	require.NoError(t, err)

	_, err = profiles.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestCreateWithProfileIsAtomic(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	users := NewUserRepository(database)

	seedUser(t, database, "alice")

	dup := &model.User{ID: uuid.New().String(), Username: "alice", PasswordHash: []byte("x"), CreatedAt: time.Now().UTC()}
	profile := &model.Profile{ID: uuid.New().String(), FirstName: "A", LastName: "B", Gender: "Male", Birthdate: time.Now().UTC(), RegistrationDate: time.Now().UTC()}
	err := users.CreateWithProfile(ctx, dup, profile)
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// a failing profile insert rolls back the user
	orphan := &model.User{ID: uuid.New().String(), Username: "bob", PasswordHash: []byte("x"), CreatedAt: time.Now().UTC()}
	clash := &model.Profile{ID: profile.ID, FirstName: "B", LastName: "C", Gender: "Male", Birthdate: time.Now().UTC(), RegistrationDate: time.Now().UTC()}
	require.NoError(t, users.CreateWithProfile(ctx, &model.User{ID: uuid.New().String(), Username: "carol", PasswordHash: []byte("x"), CreatedAt: time.Now().UTC()}, profile))
	assert.Error(t, users.CreateWithProfile(ctx, orphan, clash))

	_, err = users.ByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)

	var withoutProfile int
	require.NoError(t, database.Get(&withoutProfile,
		`SELECT COUNT(*) FROM users u WHERE NOT EXISTS (SELECT 1 FROM profiles p WHERE p.user_id = u.id)`))
	assert.Zero(t, withoutProfile)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	sessions := NewSessionRepository(database)
	alice := seedUser(t, database, "alice")

	now := time.Now().UTC()
	live := &model.Session{ID: "live-token", UserID: alice.ID, Remember: true, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	stale := &model.Session{ID: "stale-token", UserID: alice.ID, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, sessions.Create(ctx, live))
	require.NoError(t, sessions.Create(ctx, stale))

	got, err := sessions.ByID(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, got.Remember)
	assert.Equal(t, alice.ID, got.UserID)

	purged, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = sessions.ByID(ctx, "stale-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, sessions.Delete(ctx, "live-token"))
	require.NoError(t, sessions.Delete(ctx, "live-token"))
	_, err = sessions.ByID(ctx, "live-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPostRepositoryListAndLikes(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	posts := NewPostRepository(database)
	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")

	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		p := &model.Post{
			ID:        uuid.New().String(),
			AuthorID:  alice.ID,
			Text:      fmt.Sprintf("post %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, posts.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	count, err := posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	page, err := posts.List(ctx, bob.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "post 4", page[0].Text)
	assert.Equal(t, "post 3", page[1].Text)
	assert.Equal(t, "alice", page[0].AuthorUsername)

	state, err := posts.ToggleLike(ctx, ids[4], bob.ID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.Likes)

	_, err = posts.ToggleLike(ctx, ids[4], alice.ID)
	require.NoError(t, err)

	page, err = posts.List(ctx, bob.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page[0].Likes)
	assert.True(t, page[0].LikedByViewer)

	anon, err := posts.List(ctx, "", 1, 0)
	require.NoError(t, err)
	assert.False(t, anon[0].LikedByViewer)

	// toggling twice restores the original state
	state, err = posts.ToggleLike(ctx, ids[4], bob.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 1, state.Likes)

	_, err = posts.ToggleLike(ctx, "missing", bob.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	require.NoError(t, posts.Delete(ctx, ids[4]))
	assert.ErrorIs(t, posts.Delete(ctx, ids[4]), ErrPostNotFound)

	var likes int
	require.NoError(t, database.Get(&likes, `SELECT COUNT(*) FROM posts_likes`))
	assert.Zero(t, likes, "likes cascade with the post")
}

func newFile(owner, name, privacy string, uploaded, expires time.Time) *model.File {
	return &model.File{
		ID:               uuid.New().String(),
		OriginalFileName: name,
		UniqueFileName:   uuid.New().String() + ".pdf",
		SizeInBytes:      42,
		OwnerID:          owner,
		Privacy:          privacy,
		UploadDate:       uploaded,
		Expires:          expires,
	}
}

func TestFileRepositoryQuota(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	files := NewFileRepository(database)
	alice := seedUser(t, database, "alice")

	now := time.Now().UTC()
	limit := 3

	// an expired row does not count against the quota
	require.NoError(t, files.CreateWithinQuota(ctx,
		newFile(alice.ID, "old.pdf", model.VisibilityPublic, now.Add(-2*time.Hour), now.Add(-time.Hour)), limit, now.Add(-3*time.Hour)))

	for i := 0; i < limit; i++ {
		f := newFile(alice.ID, "f.pdf", model.VisibilityPrivate, now, now.Add(time.Hour))
		require.NoError(t, files.CreateWithinQuota(ctx, f, limit, now), "file %d", i)
	}

	live, err := files.CountLive(ctx, alice.ID, now)
	require.NoError(t, err)
	assert.Equal(t, limit, live)

	over := newFile(alice.ID, "over.pdf", model.VisibilityPrivate, now, now.Add(time.Hour))
	assert.ErrorIs(t, files.CreateWithinQuota(ctx, over, limit, now), ErrQuotaExceeded)

	_, err = files.ByUniqueName(ctx, over.UniqueFileName)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileRepositoryListsAndExpiry(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	files := NewFileRepository(database)
	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")

	now := time.Now().UTC()
	later := now.Add(time.Hour)

	pub := newFile(alice.ID, "a.pdf", model.VisibilityPublic, now.Add(-time.Minute), later)
	priv := newFile(alice.ID, "b.pdf", model.VisibilityPrivate, now, later)
	link := newFile(alice.ID, "c.pdf", model.VisibilityByLink, now, later)
	bobPub := newFile(bob.ID, "d.pdf", model.VisibilityPublic, now, later)
	expired := newFile(bob.ID, "e.pdf", model.VisibilityPublic, now.Add(-2*time.Hour), now.Add(-time.Second))

	for _, f := range []*model.File{pub, priv, link, bobPub} {
		require.NoError(t, files.CreateWithinQuota(ctx, f, 10, now))
	}
	require.NoError(t, files.CreateWithinQuota(ctx, expired, 10, now.Add(-time.Hour)))

	own, err := files.ListForOwner(ctx, alice.ID, now)
	require.NoError(t, err)
	assert.Len(t, own, 3)

	public, err := files.ListPublic(ctx, "", now, 10, 0)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, bobPub.UniqueFileName, public[0].UniqueFileName)
	assert.Equal(t, "bob", public[0].OwnerUsername)

	forAlice, err := files.ListPublic(ctx, alice.ID, now, 10, 0)
	require.NoError(t, err)
	require.Len(t, forAlice, 1)
	assert.Equal(t, bob.ID, forAlice[0].OwnerID)

	count, err := files.CountPublic(ctx, bob.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	names, err := files.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{expired.UniqueFileName}, names)

	all, err := files.AllUniqueNames(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, files.DeleteByUniqueName(ctx, pub.UniqueFileName))
	assert.ErrorIs(t, files.DeleteByUniqueName(ctx, pub.UniqueFileName), ErrFileNotFound)
}
