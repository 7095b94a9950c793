package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"redirector/internal/common/logging"
)

// RedisLimiter counts requests per key in fixed windows shared by every
// replica. BurstSize requests are admitted per window, and the window is sized
// so that the average rate is RequestsPerSecond.
type RedisLimiter struct {
	config Config
	client *redis.Client
	window time.Duration
	logger logging.Logger
	now    func() time.Time
}

func NewRedisLimiter(config Config) (*RedisLimiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RedisLimiter{
		config: config,
		client: config.RedisClient,
		window: config.window(),
		logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "ratelimit"}),
		now:    time.Now,
	}, nil
}

// Allow counts the request against key's current window. Redis failures admit
// the request.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.increment(ctx, key)
	if err != nil {
		l.logger.WithContext(ctx).Warn("Rate limit check failed, allowing request",
			logging.Field{Key: "key", Value: key},
			logging.Field{Key: "error", Value: err.Error()},
		)
		return true
	}
	return count <= int64(l.config.BurstSize)
}

func (l *RedisLimiter) Limit() int {
	return l.config.RequestsPerSecond
}

func (l *RedisLimiter) increment(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	slot := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.config.KeyPrefix, key, slot)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return incr.Val(), nil
}
