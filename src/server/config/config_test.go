package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "none", cfg.CacheBackend)
	assert.Equal(t, 720*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.ConnectRetryDelay)
	assert.Equal(t, uint(0), cfg.ConnectMaxAttempts)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AuthEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/portfolio?sslmode=disable")
	t.Setenv("DB_CONNECT_RETRY_DELAY", "250ms")
	t.Setenv("DB_CONNECT_MAX_ATTEMPTS", "4")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_ISSUER", "https://issuer.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectRetryDelay)
	assert.Equal(t, uint(4), cfg.ConnectMaxAttempts)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.AuthEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreBackend:      "memory",
			CacheBackend:      "memory",
			CacheTTL:          time.Hour,
			ConnectRetryDelay: time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown store", func(c *Config) { c.StoreBackend = "mongo" }, "STORE_BACKEND"},
		{"postgres without url", func(c *Config) { c.StoreBackend = "postgres" }, "DATABASE_URL"},
		{"unknown cache", func(c *Config) { c.CacheBackend = "memcached" }, "CACHE_BACKEND"},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, "CACHE_TTL"},
		{"zero ttl without cache", func(c *Config) { c.CacheBackend = "none"; c.CacheTTL = 0 }, ""},
		{"zero retry delay", func(c *Config) { c.ConnectRetryDelay = 0 }, "DB_CONNECT_RETRY_DELAY"},
		{"s3 without bucket", func(c *Config) { c.S3Endpoint = "minio:9000" }, "S3_BUCKET"},
		{"auth without issuer", func(c *Config) { c.AuthEnabled = true }, "AUTH_ISSUER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "mongo")

	_, err := Load()
	require.Error(t, err)
}
