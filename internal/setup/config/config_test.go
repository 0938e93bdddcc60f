package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orbital-sh/stargazer/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stargazer.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "test-token")

	path := writeConfig(t, `repos = ["owner/repo"]`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"owner/repo"}, cfg.Repos)
	assert.Equal(t, "test-token", cfg.Token)
	assert.Equal(t, 168*time.Hour, cfg.Cache.TTL())
	assert.Equal(t, "https://api.github.com", cfg.Fetch.APIURL)
	assert.Equal(t, 100, cfg.Fetch.PageSize)
	assert.Equal(t, 1000, cfg.Fetch.MaxStargazersPerRepo)
	assert.Equal(t, 20, cfg.Fetch.BatchSize)
	assert.Equal(t, 15000, cfg.Fetch.RateLimitDelay)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 5, cfg.Fetch.FlushEveryBatches)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "test-token")

	path := writeConfig(t, `
repos = ["a/b", "c/d"]

[cache]
ttl_hours = 24
path = "elsewhere/cache.json"

[fetch]
batch_size = 5
max_stargazers_per_repo = 200
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a/b", "c/d"}, cfg.Repos)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL())
	assert.Equal(t, "elsewhere/cache.json", cfg.Cache.Path)
	assert.Equal(t, 5, cfg.Fetch.BatchSize)
	assert.Equal(t, 200, cfg.Fetch.MaxStargazersPerRepo)
	// Untouched values keep their defaults
	assert.Equal(t, 100, cfg.Fetch.PageSize)
}

func TestLoadConfigMissingToken(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "")

	path := writeConfig(t, `repos = ["owner/repo"]`)

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrMissingToken)
}

func TestLoadConfigNoRepos(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "test-token")

	path := writeConfig(t, `repos = []`)

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrNoRepos)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "test-token")

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
