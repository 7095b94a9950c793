// Package config provides configuration management for the redirector service.
// It loads configuration from environment variables with defaults and validates
// the result before the application starts.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FORMAT: console or json (default: console)
//   - LOG_FILE: Optional log file; stdout when empty
//   - LOG_SAMPLE_PER_SECOND: Identical log lines kept per second before sampling, 0 disables (default: 0)
//
// Database Configuration:
//   - DATABASE_TYPE: "memory", "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./redirector.db)
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER,
//     POSTGRES_PASSWORD, POSTGRES_SSL_MODE
//
// Redis Configuration (optional, disabled when REDIS_ADDRESS is empty):
//   - REDIS_ADDRESS, REDIS_PASSWORD, REDIS_DB (0-15), REDIS_POOL_SIZE
//
// Resolution and ingestion tuning:
//   - TOUCH_INTERVAL: Minimum gap between lastAccessed writes per rule (default: 30s)
//   - REGEX_CACHE_SIZE: Compiled pattern cache entries (default: 1024)
//   - REGEX_CACHE_TTL: Compiled pattern lifetime (default: 10m)
//   - REGEX_MATCH_TIMEOUT: Per-pattern match timeout (default: 50ms)
//   - MAX_IMPORT_BYTES: Largest accepted import payload (default: 33554432)
//   - INGEST_LOCK_TTL: Expiry of the per-key ingestion lock (default: 10s)
//
// Admin rate limiting (per client IP, shared through Redis when enabled):
//   - ADMIN_RATE_LIMIT: Requests per second, 0 disables (default: 20)
//   - ADMIN_RATE_BURST: Burst size (default: 40)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the redirector.
type Config struct {
	// Application settings
	Port      string
	LogLevel  string
	LogFormat string
	LogFile   string
	LogSample int

	// Storage
	DatabaseType     string // memory, sqlite or postgres
	DatabasePath     string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Redis (optional)
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	// Resolution
	TouchInterval     time.Duration
	RegexCacheSize    int
	RegexCacheTTL     time.Duration
	RegexMatchTimeout time.Duration

	// Ingestion
	MaxImportBytes int64
	IngestLockTTL  time.Duration

	// Admin and import endpoints
	AdminRateLimit int
	AdminRateBurst int

	parseErrors []string
}

// Load creates a Config from environment variables. Values that fail to parse
// fall back to their default and are reported by Validate.
func Load() *Config {
	c := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogFile:   getEnv("LOG_FILE", ""),

		DatabaseType:     strings.ToLower(getEnv("DATABASE_TYPE", "sqlite")),
		DatabasePath:     getEnv("DATABASE_PATH", "./redirector.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "redirector"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}

	c.LogSample = c.getIntEnv("LOG_SAMPLE_PER_SECOND", 0)
	c.RedisDB = c.getIntEnv("REDIS_DB", 0)
	c.RedisPoolSize = c.getIntEnv("REDIS_POOL_SIZE", 10)
	c.TouchInterval = c.getDurationEnv("TOUCH_INTERVAL", 30*time.Second)
	c.RegexCacheSize = c.getIntEnv("REGEX_CACHE_SIZE", 1024)
	c.RegexCacheTTL = c.getDurationEnv("REGEX_CACHE_TTL", 10*time.Minute)
	c.RegexMatchTimeout = c.getDurationEnv("REGEX_MATCH_TIMEOUT", 50*time.Millisecond)
	c.MaxImportBytes = int64(c.getIntEnv("MAX_IMPORT_BYTES", 32<<20))
	c.IngestLockTTL = c.getDurationEnv("INGEST_LOCK_TTL", 10*time.Second)
	c.AdminRateLimit = c.getIntEnv("ADMIN_RATE_LIMIT", 20)
	c.AdminRateBurst = c.getIntEnv("ADMIN_RATE_BURST", 40)

	return c
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s must be an integer", key))
		return defaultValue
	}
	return parsed
}

func (c *Config) getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s must be a valid duration (e.g., '30s', '1m')", key))
		return defaultValue
	}
	return parsed
}

// Validate checks that all values are usable. The first problem found is returned.
func (c *Config) Validate() error {
	if len(c.parseErrors) > 0 {
		return fmt.Errorf("%s", c.parseErrors[0])
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.LogSample < 0 {
		return fmt.Errorf("LOG_SAMPLE_PER_SECOND must not be negative")
	}

	switch c.DatabaseType {
	case "memory", "sqlite":
	case "postgres", "postgresql":
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
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'memory', 'sqlite' or 'postgres'")
	}

	if c.DatabaseType == "sqlite" && c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required when using SQLite")
	}

	if c.RedisEnabled() {
		if c.RedisDB < 0 || c.RedisDB > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if c.RedisPoolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if c.TouchInterval <= 0 {
		return fmt.Errorf("TOUCH_INTERVAL must be positive")
	}
	if c.RegexCacheSize < 1 {
		return fmt.Errorf("REGEX_CACHE_SIZE must be a positive number")
	}
	if c.RegexCacheTTL < 0 {
		return fmt.Errorf("REGEX_CACHE_TTL must not be negative")
	}
	if c.RegexMatchTimeout <= 0 {
		return fmt.Errorf("REGEX_MATCH_TIMEOUT must be positive")
	}
	if c.MaxImportBytes < 1 {
		return fmt.Errorf("MAX_IMPORT_BYTES must be a positive number")
	}
	if c.IngestLockTTL <= 0 {
		return fmt.Errorf("INGEST_LOCK_TTL must be positive")
	}
	if c.AdminRateLimit < 0 || c.AdminRateBurst < 0 {
		return fmt.Errorf("ADMIN_RATE_LIMIT and ADMIN_RATE_BURST must not be negative")
	}

	return nil
}
