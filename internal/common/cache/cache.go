package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
)

// Cache holds short-lived claims on keys. The first SetNX for a key wins until
// its TTL runs out.
type Cache interface {
	// SetNX stores value only when key is absent and reports whether it did
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

var (
	_ Cache = (*LocalCache)(nil)
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*TwoTierCache)(nil)
)

// LocalCache keeps claims in process with patrickmn/go-cache
type LocalCache struct {
	cache *gocache.Cache
}

func NewLocalCache(defaultTTL, cleanupInterval time.Duration) *LocalCache {
	return &LocalCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// SetNX uses go-cache's Add, which is atomic under the cache's own lock
func (l *LocalCache) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if err := l.cache.Add(key, value, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (l *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	_, found := l.cache.Get(key)
	return found, nil
}

func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.cache.Delete(key)
	return nil
}

// ItemCount returns the number of claims, expired ones included until the
// janitor removes them
func (l *LocalCache) ItemCount() int {
	return l.cache.ItemCount()
}

// RedisCache keeps claims in Redis so every instance sees them
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// SetNX stores value in its fmt form
func (r *RedisCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.keyPrefix+key, fmt.Sprint(value), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// TwoTierCache answers from a local L1 before asking Redis. Claims are made in
// Redis so they hold across instances; a claim lost to another instance is
// remembered locally so repeat hits skip the round trip. While Redis is
// unreachable the L1 alone decides.
type TwoTierCache struct {
	l1    *LocalCache
	l2    *RedisCache
	l1TTL time.Duration
}

func NewTwoTierCache(localTTL, cleanupInterval time.Duration, redisClient *redis.Client, keyPrefix string) *TwoTierCache {
	return &TwoTierCache{
		l1:    NewLocalCache(localTTL, cleanupInterval),
		l2:    NewRedisCache(redisClient, keyPrefix),
		l1TTL: localTTL,
	}
}

func (t *TwoTierCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if exists, _ := t.l1.Exists(ctx, key); exists {
		return false, nil
	}

	acquired, err := t.l2.SetNX(ctx, key, value, ttl)
	if err != nil {
		return t.l1.SetNX(ctx, key, value, t.localTTL(ttl))
	}

	t.l1.SetNX(ctx, key, value, t.localTTL(ttl))
	return acquired, nil
}

func (t *TwoTierCache) Exists(ctx context.Context, key string) (bool, error) {
	if exists, _ := t.l1.Exists(ctx, key); exists {
		return true, nil
	}
	return t.l2.Exists(ctx, key)
}

func (t *TwoTierCache) Delete(ctx context.Context, key string) error {
	t.l1.Delete(ctx, key)
	return t.l2.Delete(ctx, key)
}

// localTTL never lets L1 outlive the shorter of ttl and the L1 lifetime
func (t *TwoTierCache) localTTL(ttl time.Duration) time.Duration {
	if t.l1TTL > 0 && (ttl <= 0 || ttl > t.l1TTL) {
		return t.l1TTL
	}
	return ttl
}
