package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	return tempDir
}

func TestInitCmd_WritesConfigFile(t *testing.T) {
	tempDir := chdirTemp(t)

	out, err := executeCommand(t, newInitCmd(), "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+configFileName)

	contents, err := os.ReadFile(filepath.Join(tempDir, configFileName))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "format: yaml")
}

func TestInitCmd_KeepsExistingFile(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := executeCommand(t, newInitCmd(), "init")
	require.Error(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "existing: true\n", string(contents))
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tempDir := chdirTemp(t)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := executeCommand(t, newInitCmd(), "init", "--force")
	require.NoError(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "format: yaml")
}
