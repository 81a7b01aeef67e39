// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Rate limit backends.
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// minProductionSecretLen is the shortest JWT secret accepted in production.
const minProductionSecretLen = 32

// Config validation errors.
var (
	ErrUnknownStoreBackend     = errors.New("unknown STORE_BACKEND")
	ErrUnknownRateLimitBackend = errors.New("unknown RATE_LIMIT_BACKEND")
	ErrRedisURLRequired        = errors.New("REDIS_URL is required for the redis rate limit backend")
	ErrWeakSecret              = errors.New("JWT_SECRET_KEY must be at least 32 bytes in production")
	ErrInvalidRateLimit        = errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Document store
	StoreBackend                string        `env:"STORE_BACKEND" envDefault:"mongo"`
	MongoURI                    string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/"`
	MongoDatabase               string        `env:"MONGODB_DATABASE" envDefault:"feather_book"`
	MongoMaxPoolSize            uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MongoMinPoolSize            uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"10"`
	MongoMaxIdleTime            time.Duration `env:"MONGODB_MAX_IDLE_TIME" envDefault:"30s"`
	MongoServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`

	// Tokens
	JWTSecretKey  string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitBackend  string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`

	// Cache (Redis), only needed by the redis rate limit backend
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// UsesRedis reports whether a Redis connection is needed.
func (c *Config) UsesRedis() bool {
	return c.RateLimitEnabled && c.RateLimitBackend == RateLimitRedis
}

// Validate checks values that the environment parser cannot.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreBackend, c.StoreBackend)
	}

	switch c.RateLimitBackend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRateLimitBackend, c.RateLimitBackend)
	}

	if c.RateLimitEnabled && (c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0) {
		return ErrInvalidRateLimit
	}
	if c.UsesRedis() && c.RedisURL == "" {
		return ErrRedisURLRequired
	}
	if c.IsProduction() && len(c.JWTSecretKey) < minProductionSecretLen {
		return ErrWeakSecret
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
