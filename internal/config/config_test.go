package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 720*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 2*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, "memory", cfg.Analytics.CacheDriver)
	assert.True(t, cfg.Database.Transactions)
	assert.Equal(t, 7, cfg.App.ExpiringSoonDays)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("database:\n  name: from_file\nanalytics:\n  cache_ttl: 30s\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.Database.Name)
	assert.Equal(t, 30*time.Second, cfg.Analytics.CacheTTL)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, time.UTC, cfg.App.Location())
}

func TestAppConfig_LocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, AppConfig{Timezone: "Mars/Olympus"}.Location())
}
