package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	for _, d := range []string{"bronze", "tables", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	data, err := os.ReadFile(filepath.Join(dir, "silverbooks.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "dsn_env: SILVERBOOKS_DATABASE_URL")
	assert.Contains(t, contents, "balance_tolerance: 0.01")
}

func TestInit_EnvExample(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	data, err := os.ReadFile(filepath.Join(dir, ".env.example"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "SILVERBOOKS_DATABASE_URL=")
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{".env", "logs/"} {
		assert.Contains(t, string(data), pattern)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "load", "periods", "balances", "schema"} {
		assert.Contains(t, names, want)
	}
}
