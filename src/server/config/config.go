package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	ShutdownTimeout time.Duration

	// Store backend: "memory", "postgres", or "sqlite"
	StoreBackend string
	DatabaseURL  string
	DatabasePath string // SQLite file path
	SeedDir      string // JSON seed files for the memory backend

	// Startup connection retry; 0 attempts means retry until shutdown
	ConnectRetryDelay  time.Duration
	ConnectMaxAttempts uint

	// Cache backend: "none", "memory", or "redis"
	CacheBackend  string
	CacheTTL      time.Duration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Object storage for assets; S3 when S3Endpoint is set, else AssetsDir
	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	AssetsDir   string

	// Auth for admin endpoints
	AuthEnabled  bool
	AuthIssuer   string
	AuthAudience string
	AuthScope    string

	// CORS
	CORSOrigins []string

	// Logging
	LogLevel string
	LogFile  string
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("STORE_BACKEND", "memory")
	v.SetDefault("DATABASE_PATH", "portfolio.db")
	v.SetDefault("SEED_DIR", "seed")
	v.SetDefault("DB_CONNECT_RETRY_DELAY", "5s")
	v.SetDefault("DB_CONNECT_MAX_ATTEMPTS", 0)
	v.SetDefault("CACHE_BACKEND", "none")
	v.SetDefault("CACHE_TTL", "720h")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("ASSETS_DIR", "")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the environment, with an optional
// config.yaml in the working directory for local runs.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("PORT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		DatabasePath: v.GetString("DATABASE_PATH"),
		SeedDir:      v.GetString("SEED_DIR"),

		ConnectRetryDelay:  v.GetDuration("DB_CONNECT_RETRY_DELAY"),
		ConnectMaxAttempts: v.GetUint("DB_CONNECT_MAX_ATTEMPTS"),

		CacheBackend:  strings.ToLower(v.GetString("CACHE_BACKEND")),
		CacheTTL:      v.GetDuration("CACHE_TTL"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetInt("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3Region:    v.GetString("S3_REGION"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),
		S3UseSSL:    v.GetBool("S3_USE_SSL"),
		AssetsDir:   v.GetString("ASSETS_DIR"),

		AuthEnabled:  v.GetBool("AUTH_ENABLED"),
		AuthIssuer:   v.GetString("AUTH_ISSUER"),
		AuthAudience: v.GetString("AUTH_AUDIENCE"),
		AuthScope:    v.GetString("AUTH_SCOPE"),

		CORSOrigins: parseCORSOrigins(v.GetString("CORS_ORIGINS")),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return &ConfigError{Field: "DATABASE_URL", Message: "required when STORE_BACKEND=postgres"}
		}
	default:
		return &ConfigError{Field: "STORE_BACKEND", Message: fmt.Sprintf("unknown backend %q", c.StoreBackend)}
	}

	switch c.CacheBackend {
	case "none":
	case "memory", "redis":
		if c.CacheTTL <= 0 {
			return &ConfigError{Field: "CACHE_TTL", Message: "must be positive"}
		}
	default:
		return &ConfigError{Field: "CACHE_BACKEND", Message: fmt.Sprintf("unknown backend %q", c.CacheBackend)}
	}

	if c.ConnectRetryDelay <= 0 {
		return &ConfigError{Field: "DB_CONNECT_RETRY_DELAY", Message: "must be positive"}
	}
	if c.S3Endpoint != "" && c.S3Bucket == "" {
		return &ConfigError{Field: "S3_BUCKET", Message: "required when S3_ENDPOINT is set"}
	}
	if c.AuthEnabled && c.AuthIssuer == "" {
		return &ConfigError{Field: "AUTH_ISSUER", Message: "required when AUTH_ENABLED=true"}
	}
	return nil
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

func parseCORSOrigins(s string) []string {
	if s == "" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			origins = append(origins, t)
		}
	}
	return origins
}
