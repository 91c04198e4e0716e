package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Init(Options{Env: "production", Output: &buf})

	log.Debug("hidden")
	log.Info("file uploaded", "size", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "file uploaded", entry["msg"])
	assert.EqualValues(t, 42, entry["size"])
}

func TestInitDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := Init(Options{Env: "development", Output: &buf})

	log.Debug("sweep finished", "removed", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "removed=3")
}
