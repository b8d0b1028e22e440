package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDir_WritesAndRotates(t *testing.T) {
	// Not parallel because it redirects the standard logger
	t.Cleanup(func() {
		Close()
		log.SetOutput(os.Stderr)
	})

	dir := t.TempDir()
	big := make([]byte, maxLogSize+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), big, 0o644))

	require.NoError(t, InitDir(dir))
	assert.Equal(t, filepath.Join(dir, "debug.log"), GetLogPath())

	LogError("roll failed: %d", 7)
	Close()

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] Logger initialized")
	assert.Contains(t, string(data), "[ERROR] roll failed: 7")

	matches, err := filepath.Glob(filepath.Join(dir, "debug.log.*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
