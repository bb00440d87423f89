// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Clerk webhook verification.
	// The signing secret is issued by Clerk in "whsec_<base64>" form.
	// It is optional: when absent the webhook endpoint answers 500 while
	// the rest of the API keeps working.
	ClerkWebhookSecret string        `env:"CLERK_WEBHOOK_SIGNING_SECRET"`
	WebhookTolerance   time.Duration `env:"WEBHOOK_TIMESTAMP_TOLERANCE" envDefault:"5m"`

	// Service authentication. Keys are verified against Argon2id hashes
	// so plaintext keys never live in configuration.
	// SERVICE_KEY_HASH authenticates the frontend server; ADMIN_KEY_HASH
	// additionally unlocks the admin routes.
	ServiceKeyHash string `env:"SERVICE_KEY_HASH,required"`
	AdminKeyHash   string `env:"ADMIN_KEY_HASH"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for the public contact form (per IP)
	RateLimitContactEnabled bool `env:"RATE_LIMIT_CONTACT_ENABLED" envDefault:"true"`
	RateLimitContactRPS     int  `env:"RATE_LIMIT_CONTACT_RPS" envDefault:"1"`
	RateLimitContactBurst   int  `env:"RATE_LIMIT_CONTACT_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://drtimfoo.com,https://www.drtimfoo.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
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

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
