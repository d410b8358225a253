package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.PGC.TablePath = "tables/pgc-2025.yaml"
	cfg.Pipeline.BalanceTolerance = 0.05

	path := filepath.Join(t.TempDir(), "silverbooks.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Database.DSNEnv, got.Database.DSNEnv)
	assert.InDelta(t, cfg.Pipeline.BalanceTolerance, got.Pipeline.BalanceTolerance, 0.0001)
	assert.Equal(t, cfg.Pipeline.TagSlots, got.Pipeline.TagSlots)
	assert.Equal(t, cfg.Pipeline.Workers, got.Pipeline.Workers)
	assert.Equal(t, "tables/pgc-2025.yaml", got.PGC.TablePath)
	assert.Equal(t, cfg.Logging.Level, got.Logging.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "SILVERBOOKS_DATABASE_URL", cfg.Database.DSNEnv)
	assert.InDelta(t, 0.01, cfg.Pipeline.BalanceTolerance, 0.0001)
	assert.Equal(t, 4, cfg.Pipeline.TagSlots)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Empty(t, cfg.PGC.TablePath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.DSNEnv = "SILVERBOOKS_TEST_DSN"

	t.Setenv("SILVERBOOKS_TEST_DSN", "postgres://localhost/silver")
	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/silver", dsn)
}

func TestDSN_Unset(t *testing.T) {
	cfg := Default()
	cfg.Database.DSNEnv = "SILVERBOOKS_UNSET_DSN"

	_, err := cfg.DSN()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SILVERBOOKS_UNSET_DSN")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "silverbooks.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "dsn_env: SILVERBOOKS_DATABASE_URL")
	assert.Contains(t, contents, "balance_tolerance: 0.01")
	assert.Contains(t, contents, "tag_slots: 4")
	assert.Contains(t, contents, "level: info")
}
