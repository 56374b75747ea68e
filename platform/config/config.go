// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// MigrationConfig controls schema migrations at startup.
type MigrationConfig interface {
	DatabaseConfig
	GetAutoMigrate() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetShutdownTimeout() time.Duration
}

// RateLimitConfig provides request limits for the phone format API, which
// clients call on every keystroke.
type RateLimitConfig interface {
	GetPhoneAPIRatePerSec() float64
	GetPhoneAPIBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	AutoMigrate        bool
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	ShutdownTimeout    time.Duration
	PhoneAPIRatePerSec float64
	PhoneAPIBurst      int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// MigrationConfig implementation
func (c *Config) GetAutoMigrate() bool { return c.AutoMigrate }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string               { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool             { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string          { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool           { return c.CORSAllowCreds }
func (c *Config) GetShutdownTimeout() time.Duration { return c.ShutdownTimeout }

// RateLimitConfig implementation
func (c *Config) GetPhoneAPIRatePerSec() float64 { return c.PhoneAPIRatePerSec }
func (c *Config) GetPhoneAPIBurst() int          { return c.PhoneAPIBurst }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AutoMigrate:        strings.EqualFold(getEnv("DB_AUTO_MIGRATE", "true"), "true"),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		ShutdownTimeout:    mustDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")),
		PhoneAPIRatePerSec: mustFloat(getEnv("PHONE_API_RATE_PER_SEC", "20")),
		PhoneAPIBurst:      mustInt(getEnv("PHONE_API_BURST", "40")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin unless CORS_ALLOW_ALL is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.PhoneAPIRatePerSec <= 0 || cfg.PhoneAPIBurst <= 0 {
		return nil, fmt.Errorf("PHONE_API_RATE_PER_SEC and PHONE_API_BURST must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
