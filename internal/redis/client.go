// Package redis connects the optional shared Redis used for the touch
// throttle, the ingestion locks and the admin rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"redirector/internal/common/errors"
)

const healthTimeout = 5 * time.Second

// Client owns the go-redis connection pool
type Client struct {
	rdb    *redis.Client
	config *Config
}

type Config struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// NewClient connects and pings the server. Failures are connection errors.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.ConfigError("redis config is required")
	}

	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.ConnectionError(fmt.Sprintf("failed to connect to Redis at %s", config.Address), err)
	}

	return &Client{rdb: rdb, config: config}, nil
}

// GetGoRedisClient exposes the pool to the cache, lock and rate limit packages
func (c *Client) GetGoRedisClient() *redis.Client {
	return c.rdb
}

// Address returns the server the client is connected to
func (c *Client) Address() string {
	return c.config.Address
}

// Health pings the server
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.ConnectionError("redis unreachable", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
