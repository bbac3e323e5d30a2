package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_DefaultsWhenNoConfigFile(t *testing.T) {
	loader := NewLoaderWithPaths([]string{t.TempDir()})

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "https://pro-api.coingecko.com/api/", cfg.Upstream.BaseURL)
	assert.Equal(t, 128, cfg.Upstream.DetailCacheSize)
	assert.Equal(t, []string{"usd"}, cfg.Upstream.AllowedVsCurrencies)
	assert.Equal(t, 60*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, "memory", cfg.Snapshot.Backend)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoader_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  port: 9100
upstream:
  timeout: 3s
  detail_cache_size: 0
refresh:
  interval: 15s
snapshot:
  backend: redis
  redis:
    key: custom:markets
`)

	cfg, err := NewLoaderWithPaths([]string{dir}).Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 0, cfg.Upstream.DetailCacheSize)
	assert.Equal(t, 15*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, "redis", cfg.Snapshot.Backend)
	assert.Equal(t, "custom:markets", cfg.Snapshot.Redis.Key)
	// valores no presentes en el fichero conservan el default
	assert.Equal(t, "localhost:6379", cfg.Snapshot.Redis.Addr)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  port: 9100\n")

	t.Setenv("CRYPTO_WATCHER_SERVER_PORT", "9200")
	t.Setenv("COINGECKO_API_KEY", "cg-key")
	t.Setenv("CRYPTO_WATCHER_REFRESH_INTERVAL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("ALLOWED_CURRENCIES", "USD,eur")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg, err := NewLoaderWithPaths([]string{dir}).Load()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "cg-key", cfg.Upstream.APIKey)
	assert.Equal(t, 2*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"usd", "eur"}, cfg.Upstream.AllowedVsCurrencies)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.RateLimit.TrustedProxies)
}

func TestLoader_PrefixedEnvWinsOverShortName(t *testing.T) {
	t.Setenv("CRYPTO_WATCHER_UPSTREAM_API_KEY", "prefixed")
	t.Setenv("COINGECKO_API_KEY", "short")

	cfg, err := NewLoaderWithPaths([]string{t.TempDir()}).Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Upstream.APIKey)
}

func TestLoader_LoadsDotEnv(t *testing.T) {
	const key = "CRYPTO_WATCHER_LOGGING_LEVEL"
	require.Empty(t, os.Getenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", key+"=debug\n")

	cfg, err := NewLoaderWithPaths([]string{dir}, envFile).Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoader_MissingDotEnvIsIgnored(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLoaderWithPaths([]string{dir}, filepath.Join(dir, "missing.env")).Load()
	assert.NoError(t, err)
}

func TestLoader_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server: [unclosed\n")

	_, err := NewLoaderWithPaths([]string{dir}).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
