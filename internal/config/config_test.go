package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RATEMYRECIPE_API_URL", "RATEMYRECIPE_TIMEOUT", "RATEMYRECIPE_OFFLINE", "RATEMYRECIPE_DB",
		"RATEMYRECIPE_FAVORITES", "RATEMYRECIPE_LOCAL_USER", "RATEMYRECIPE_LOG_LEVEL", "RATEMYRECIPE_METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIURL)
	assert.Equal(t, filepath.Join(dir, "ratemyrecipe.db"), cfg.DBPath)
	assert.Equal(t, FavoritesRemote, cfg.Favorites)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://recipes.example.com/api
timeout: 10s
favorites: local
local_user: chef
log_level: debug
`), 0o600))

	t.Setenv("RATEMYRECIPE_TIMEOUT", "2s")
	t.Setenv("RATEMYRECIPE_OFFLINE", "true")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://recipes.example.com/api", cfg.APIURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout())
	assert.True(t, cfg.Offline)
	assert.True(t, cfg.LocalFavorites())
	assert.Equal(t, "chef", cfg.LocalUser)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, dir, cfg.Dir)
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [oops"), 0o600))

	_, err := Load(dir, path)
	assert.Error(t, err)

	t.Setenv("RATEMYRECIPE_OFFLINE", "maybe")
	_, err = Load(dir, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnvKeepsExistingEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RATEMYRECIPE_API_URL=http://dotenv:9000/api\nRATEMYRECIPE_LOG_LEVEL=warn\n"), 0o600))
	t.Setenv("RATEMYRECIPE_LOG_LEVEL", "error")
	// godotenv treats a variable set to "" as present.
	require.NoError(t, os.Unsetenv("RATEMYRECIPE_API_URL"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:9000/api", cfg.APIURL)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.APIURL = "localhost:8080" }},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }},
		{"bad favorites", func(c *Config) { c.Favorites = "cloud" }},
		{"local without user", func(c *Config) { c.Favorites = FavoritesLocal; c.LocalUser = " " }},
		{"no db", func(c *Config) { c.DBPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.MetricsAddr = ":9090"
	require.NoError(t, cfg.Save(filepath.Join(dir, "config.yaml")))

	loaded, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
