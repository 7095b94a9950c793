package ratelimit

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// BackendType selects where limiter state lives
type BackendType string

const (
	BackendLocal BackendType = "local"
	BackendRedis BackendType = "redis"
)

// Config describes a per-key token budget
type Config struct {
	RequestsPerSecond int         `json:"requests_per_second"`
	BurstSize         int         `json:"burst_size"`
	Type              BackendType `json:"type"`

	// Redis backend
	KeyPrefix   string        `json:"key_prefix,omitempty"`
	RedisClient *redis.Client `json:"-"`

	// Local backend
	MaxKeys       int           `json:"max_keys,omitempty"`
	CleanupPeriod time.Duration `json:"cleanup_period,omitempty"`
}

// Enabled reports whether the config limits anything
func (c Config) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// Validate fills defaults and rejects unusable values
func (c *Config) Validate() error {
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}
	if c.BurstSize < 0 {
		return fmt.Errorf("burst size must not be negative")
	}
	if !c.Enabled() {
		return nil
	}
	if c.BurstSize == 0 {
		c.BurstSize = c.RequestsPerSecond
	}

	if c.Type == "" {
		c.Type = BackendLocal
	}
	switch c.Type {
	case BackendLocal:
		if c.MaxKeys <= 0 {
			c.MaxKeys = 10000
		}
		if c.CleanupPeriod <= 0 {
			c.CleanupPeriod = 5 * time.Minute
		}
	case BackendRedis:
		if c.RedisClient == nil {
			return fmt.Errorf("redis client is required for the redis rate limiter")
		}
		if c.KeyPrefix == "" {
			c.KeyPrefix = "ratelimit:"
		}
	default:
		return fmt.Errorf("unsupported rate limiter backend type: %s", c.Type)
	}
	return nil
}

// window is the span in which BurstSize requests average out to RequestsPerSecond
func (c Config) window() time.Duration {
	return time.Duration(float64(c.BurstSize) / float64(c.RequestsPerSecond) * float64(time.Second))
}
