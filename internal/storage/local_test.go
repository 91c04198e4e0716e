package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	n, err := s.Save(ctx, "abc.txt", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	rc, err := s.Open(ctx, "abc.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "abc.txt", objects[0].Name)
	assert.EqualValues(t, 11, objects[0].Size)

	require.NoError(t, s.Delete(ctx, "abc.txt"))
	assert.ErrorIs(t, s.Delete(ctx, "abc.txt"), ErrNotFound)

	_, err = s.Open(ctx, "abc.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "x\x00y"} {
		_, err := s.Save(ctx, name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)

		_, err = s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)

		assert.ErrorIs(t, s.Delete(ctx, name), ErrInvalidName, name)
	}

	_, err = os.Stat(filepath.Join(root, "escape"))
	assert.True(t, os.IsNotExist(err))

	_, err = s.Save(ctx, "report..v2.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "uploads", "report..v2.pdf"))
	assert.NoError(t, err)
}

func TestLocalStorageListSkipsHiddenAndDirs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	_, err = s.Save(ctx, "visible.bin", strings.NewReader("x"))
	require.NoError(t, err)

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "visible.bin", objects[0].Name)
}

func TestLocalStorageSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	_, err = s.Save(ctx, "gone.txt", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = os.Stat(filepath.Join(root, "gone.txt"))
	assert.True(t, os.IsNotExist(err))
}
