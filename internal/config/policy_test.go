package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUploadPolicy(t *testing.T) {
	p := DefaultUploadPolicy()
	require.NoError(t, p.Validate())

	d, ok := p.ExpirationFor("1 month")
	require.True(t, ok)
	assert.Equal(t, 28*24*time.Hour, d)

	_, ok = p.ExpirationFor("forever")
	assert.False(t, ok)

	assert.True(t, p.AllowsExtension("PDF"))
	assert.True(t, p.AllowsExtension(".zip"))
	assert.False(t, p.AllowsExtension("exe"))

	assert.True(t, p.AllowsVisibility("By link"))
	assert.False(t, p.AllowsVisibility("by link"))
}

func TestLoadUploadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
max_size: 1024
files_per_user: 3
allowed_extensions: [txt, md]
expirations:
  - name: "5 minutes"
    duration: 5m
  - name: "1 day"
    duration: 24h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadUploadPolicy(path)
	require.NoError(t, err)

	assert.EqualValues(t, 1024, p.MaxSize)
	assert.Equal(t, 3, p.FilesPerUser)
	assert.Equal(t, []string{"txt", "md"}, p.AllowedExtensions)
	// untouched fields keep their defaults
	assert.Equal(t, 140, p.DescriptionMax)
	assert.Equal(t, []string{"Public", "Private", "By link"}, p.Visibilities)

	d, ok := p.ExpirationFor("5 minutes")
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, d)
}

func TestLoadUploadPolicyRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files_per_user: 0\n"), 0o644))

	_, err := LoadUploadPolicy(path)
	assert.Error(t, err)
}
