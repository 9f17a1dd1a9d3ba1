package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_NOROFF_KEY", "secret-key")
	path := writeConfig(t, `
api:
  api_key: ${TEST_NOROFF_KEY}
  cache_ttl_seconds: 60
booking:
  timezone: Europe/Oslo
  session_timeout_minutes: 15
redis:
  address: localhost:6379
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.API.APIKey)
	assert.Equal(t, "https://v2.api.noroff.dev", cfg.API.BaseURL)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Booking.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Oslo", loc.String())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, "booking:\n  timezone: Mars/Olympus\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "booking.timezone")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv("HOLIDAZE_CONFIG", "")
	assert.Equal(t, DefaultPath, ResolvePath(""))

	t.Setenv("HOLIDAZE_CONFIG", "/etc/holidaze.yaml")
	assert.Equal(t, "/etc/holidaze.yaml", ResolvePath(""))
	assert.Equal(t, "custom.yaml", ResolvePath("custom.yaml"))
}
