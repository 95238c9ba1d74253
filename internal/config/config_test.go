package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "database:\n  path: "+filepath.Join(dir, "data", "test.db")+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
	assert.Equal(t, 10*time.Second, cfg.StageTimeout())
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval())
	assert.Zero(t, cfg.CacheTTL())

	// The database directory is created on load.
	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.NoError(t, err)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_ADMIN_EMAIL", "admin@example.com")

	path := writeConfig(t, `
mail:
  admin_email: ${TEST_ADMIN_EMAIL}
pipeline:
  stage_timeout_seconds: 3
redis:
  cache_ttl_seconds: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "admin@example.com", cfg.Mail.AdminEmail)
	assert.Equal(t, 3*time.Second, cfg.StageTimeout())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	var cfg Config
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Google.TimeZone = "America/New_York"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	cfg.Google.TimeZone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}
