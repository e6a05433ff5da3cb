// Package testutil provides shared test helpers for creating config files and review fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a config file for the given store driver with every data path under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir, driver string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(tmpDir, 0755))
	configContent := fmt.Sprintf(`store:
  driver: %s
  yaml_directory: %s
database:
  sqlite_path: %s
workflow:
  upsert_attempts: 1
  upsert_backoff_ms: 0
`,
		driver,
		filepath.Join(tmpDir, "reviews"),
		filepath.Join(tmpDir, "recall.db"),
	)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
