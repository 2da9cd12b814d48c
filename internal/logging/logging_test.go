package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceDisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	Configure(path)
	defer Configure("")
	SetTraceEnabled(false)

	Trace("fetch.start", map[string]string{"path": "secret/app"})

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTraceWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	Configure(path)
	defer Configure("")
	SetTraceEnabled(true)
	defer SetTraceEnabled(false)

	Trace("fetch.start", map[string]string{"path": "secret/app"})
	Trace("fetch.done", nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry struct {
		Event   string            `json:"event"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "fetch.start", entry.Event)
	assert.Equal(t, "secret/app", entry.Payload["path"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "fetch.done", entry.Event)
}

func TestConfigureCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "trace.log")
	Configure(path)
	defer Configure("")
	SetTraceEnabled(true)
	defer SetTraceEnabled(false)

	Trace("app.start", nil)

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
