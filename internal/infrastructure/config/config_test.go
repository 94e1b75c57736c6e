package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "shopping-browser-api", cfg.OTLP.ServiceName)
	assert.Equal(t, "https://api.escuelajs.co/api/v1", cfg.Catalog.BaseURL)
	assert.Equal(t, 20, cfg.Catalog.PageLimit)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Images.CacheTTL)
	assert.Equal(t, 80, cfg.Images.JPEGQuality)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_PAGE_LIMIT", "5")
	t.Setenv("CATALOG_REQUEST_TIMEOUT", "2s")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()

	assert.Equal(t, 5, cfg.Catalog.PageLimit)
	assert.Equal(t, 2*time.Second, cfg.Catalog.RequestTimeout)
	assert.False(t, cfg.OTLP.Enabled)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Storage.RedisDB)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_PAGE_LIMIT", "twenty")
	t.Setenv("IMAGE_CACHE_TTL", "soon")
	t.Setenv("OTEL_ENABLED", "maybe")

	cfg := LoadConfig()

	assert.Equal(t, 20, cfg.Catalog.PageLimit)
	assert.Equal(t, 10*time.Minute, cfg.Images.CacheTTL)
	assert.True(t, cfg.OTLP.Enabled)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CATALOG_BASE_URL=http://catalog.local/api\n"), 0o600))
	t.Chdir(dir)
	// godotenv writes straight to the process environment
	t.Cleanup(func() { _ = os.Unsetenv("CATALOG_BASE_URL") })

	cfg := LoadConfig()

	assert.Equal(t, "http://catalog.local/api", cfg.Catalog.BaseURL)
}
