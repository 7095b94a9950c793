package ratelimit

import (
	"context"
	"fmt"
)

// Limiter admits or rejects one request for a key
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	Limit() int
}

// New builds the limiter described by config
func New(config Config) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.Enabled() {
		return unlimited{}, nil
	}

	switch config.Type {
	case BackendRedis:
		return NewRedisLimiter(config)
	case BackendLocal:
		return NewLocalLimiter(config)
	}
	return nil, fmt.Errorf("unsupported rate limiter backend type: %s", config.Type)
}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) bool { return true }
func (unlimited) Limit() int                         { return 0 }
