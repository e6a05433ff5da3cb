package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()
	assert.Equal(t, "recall", cmd.Use)

	for _, name := range []string{"config", "env-file", "debug"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"grade", "due", "review", "import", "export", "migrate", "history"}, names)
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { setupLogger(false) })

	setupLogger(true)
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))

	setupLogger(false)
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelInfo))
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(""))
	})

	t.Run("variables are loaded without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("RECALL_TEST_LOADED=from-file\nRECALL_TEST_SET=from-file\n"), 0644))
		t.Setenv("RECALL_TEST_SET", "from-env")
		t.Setenv("RECALL_TEST_LOADED", "")
		require.NoError(t, os.Unsetenv("RECALL_TEST_LOADED"))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "from-file", os.Getenv("RECALL_TEST_LOADED"))
		assert.Equal(t, "from-env", os.Getenv("RECALL_TEST_SET"))
	})
}
