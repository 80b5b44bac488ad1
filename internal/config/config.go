// Package config provides configuration management for the property analysis API.
// It handles loading configuration from environment variables with sensible defaults
// and validates the configuration to ensure the application starts safely.
//
// The package supports multiple database backends (SQLite and PostgreSQL), Redis
// for response caching and rate limiting, and credentials for the external
// enrichment APIs (geocoding and market data).
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - CORS_ORIGINS: Comma-separated list of allowed CORS origins
//
// Database Configuration:
//   - DATABASE_TYPE: Database type - "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./starboard.db)
//   - POSTGRES_URL: Full PostgreSQL connection URL; overrides the discrete fields below
//   - POSTGRES_HOST: PostgreSQL host (required if using PostgreSQL)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (required if using PostgreSQL)
//   - POSTGRES_USER: PostgreSQL username (required if using PostgreSQL)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address (empty disables caching/rate limiting)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - RATE_LIMIT_DEFAULT: Default rate limit per window (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit time window (default: 60s)
//
// Enrichment Sources:
//   - GEOCODING_API_URL: Geocoding enrichment endpoint
//   - GEOCODING_API_KEY: Geocoding API credential
//   - MARKET_DATA_API_URL: Market data enrichment endpoint
//   - MARKET_DATA_API_KEY: Market data API credential
//   - REQUEST_TIMEOUT: Outbound enrichment request timeout (default: 30s)
//
// Background Jobs:
//   - MARKET_REFRESH_SCHEDULE: Cron spec for the market stats refresh (default: @every 5m)
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"os"
)

// Config holds all configuration values for the property analysis API.
// All string fields correspond to environment variables that can be set to
// override the default values.
//
// The configuration is loaded using the Load() function and should be
// validated using the Validate() method before use.
type Config struct {
	// Application settings
	Port        string // Server port number
	LogLevel    string // Logging level (debug, info, warn, error)
	CORSOrigins string // Comma-separated allowed origins

	// Database configuration
	DatabaseType     string // Database type: "sqlite" or "postgres"
	DatabasePath     string // Path to SQLite database file
	PostgresURL      string // Full connection URL; overrides the discrete fields
	PostgresHost     string // PostgreSQL host address
	PostgresPort     string // PostgreSQL port number
	PostgresDB       string // PostgreSQL database name
	PostgresUser     string // PostgreSQL username
	PostgresPassword string // PostgreSQL password
	PostgresSSLMode  string // PostgreSQL SSL mode (disable, require, etc.)

	// Redis configuration for caching and rate limiting
	RedisAddress  string // Redis server address (host:port); empty disables Redis
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string // Redis connection pool size

	// Rate limiting configuration
	RateLimitEnabled bool   // Whether rate limiting is enabled
	RateLimitDefault string // Default requests per window
	RateLimitWindow  string // Rate limiting time window (e.g., "60s", "1m")

	// Enrichment source configuration
	GeocodingAPIURL  string // Geocoding enrichment endpoint
	GeocodingAPIKey  string // Geocoding API credential
	MarketDataAPIURL string // Market data enrichment endpoint
	MarketDataAPIKey string // Market data API credential
	RequestTimeout   string // Timeout applied to outbound enrichment requests

	// Background jobs
	MarketRefreshSchedule string // Cron spec for market stats refresh
}

// Load creates a new Config instance with values loaded from environment variables.
// If an environment variable is not set, the corresponding default value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config to ensure all required values are properly set and valid.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		// Database configuration
		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./starboard.db"),
		PostgresURL:      getEnv("POSTGRES_URL", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "starboard"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		// Redis configuration
		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		// Rate limiting configuration
		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnv("RATE_LIMIT_DEFAULT", "100"),
		RateLimitWindow:  getEnv("RATE_LIMIT_WINDOW", "60s"),

		// Enrichment sources
		GeocodingAPIURL:  getEnv("GEOCODING_API_URL", ""),
		GeocodingAPIKey:  getEnv("GEOCODING_API_KEY", ""),
		MarketDataAPIURL: getEnv("MARKET_DATA_API_URL", ""),
		MarketDataAPIKey: getEnv("MARKET_DATA_API_KEY", ""),
		RequestTimeout:   getEnv("REQUEST_TIMEOUT", "30s"),

		// Background jobs
		MarketRefreshSchedule: getEnv("MARKET_REFRESH_SCHEDULE", "@every 5m"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetRequestTimeout returns the parsed outbound request timeout, falling back
// to 30 seconds on an unparsable value. Validate() rejects unparsable values,
// so the fallback only applies to configs that skipped validation.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetRedisDB returns the parsed Redis database number.
func (c *Config) GetRedisDB() int {
	if db, err := strconv.Atoi(c.RedisDB); err == nil && db >= 0 && db <= 15 {
		return db
	}
	return 0
}

// GetRedisPoolSize returns the parsed Redis connection pool size.
func (c *Config) GetRedisPoolSize() int {
	if size, err := strconv.Atoi(c.RedisPoolSize); err == nil && size > 0 {
		return size
	}
	return 10
}

// GetRateLimitDefault returns the parsed default rate limit.
func (c *Config) GetRateLimitDefault() int {
	if limit, err := strconv.Atoi(c.RateLimitDefault); err == nil && limit > 0 {
		return limit
	}
	return 100
}

// GetRateLimitWindow returns the parsed rate limit window.
func (c *Config) GetRateLimitWindow() time.Duration {
	if d, err := time.ParseDuration(c.RateLimitWindow); err == nil && d > 0 {
		return d
	}
	return time.Minute
}

// GetCORSOrigins returns the list of allowed CORS origins.
func (c *Config) GetCORSOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Validate performs comprehensive validation on the configuration to ensure
// all required fields are present and all values are valid.
//
// This method checks:
//   - Field format validation (ports, durations, etc.)
//   - Cross-field dependencies (PostgreSQL configuration requirements)
//
// The application should call this method after loading configuration and
// before starting to ensure safe operation.
func (c *Config) Validate() error {
	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	// Validate database type
	switch c.DatabaseType {
	case "sqlite", "postgres", "postgresql":
		// Valid database types
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	// Validate PostgreSQL config if using PostgreSQL. A connection URL
	// carries everything the discrete fields would.
	if (c.DatabaseType == "postgres" || c.DatabaseType == "postgresql") && c.PostgresURL == "" {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	// Validate Redis config if provided
	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	// Validate rate limit config
	if c.RateLimitEnabled {
		if limit, err := strconv.Atoi(c.RateLimitDefault); err != nil || limit < 1 {
			return fmt.Errorf("RATE_LIMIT_DEFAULT must be a positive number")
		}
		if _, err := time.ParseDuration(c.RateLimitWindow); err != nil {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be a valid duration (e.g., '60s', '1m')")
		}
	}

	// Validate outbound request timeout
	if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be a positive duration (e.g., '30s')")
	}

	return nil
}
