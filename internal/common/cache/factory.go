package cache

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Type selects where claims live
type Type string

const (
	TypeLocal   Type = "local"
	TypeRedis   Type = "redis"
	TypeTwoTier Type = "two_tier"
)

// Config holds cache configuration
type Config struct {
	Type Type `json:"type"`
	// TTL bounds how long a claim is kept in process
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval,omitempty"`
	// KeyPrefix namespaces keys in a shared Redis
	KeyPrefix   string        `json:"key_prefix,omitempty"`
	RedisClient *redis.Client `json:"-"`
}

// DefaultConfig returns an in-process cache matching the default touch interval
func DefaultConfig() Config {
	return Config{
		Type:            TypeLocal,
		TTL:             30 * time.Second,
		CleanupInterval: time.Minute,
		KeyPrefix:       "redirector:",
	}
}

// New creates the cache described by config
func New(config Config) (Cache, error) {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}

	needsRedis := config.Type == TypeRedis || config.Type == TypeTwoTier
	if needsRedis && config.RedisClient == nil {
		return nil, fmt.Errorf("redis client required for %s cache", config.Type)
	}

	switch config.Type {
	case TypeLocal, "":
		return NewLocalCache(config.TTL, config.CleanupInterval), nil
	case TypeRedis:
		return NewRedisCache(config.RedisClient, config.KeyPrefix), nil
	case TypeTwoTier:
		return NewTwoTierCache(config.TTL, config.CleanupInterval, config.RedisClient, config.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown cache type: %s", config.Type)
}
