package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestLocalCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute, time.Minute)

	ok, err := c.SetNX(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "a", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.SetNX(ctx, "b", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, c.ItemCount())

	require.NoError(t, c.Delete(ctx, "a"))
	exists, err := c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalCache_SetNXExpires(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute, time.Minute)

	ok, _ := c.SetNX(ctx, "touch:1", true, 20*time.Millisecond)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, _ = c.SetNX(ctx, "touch:1", true, 20*time.Millisecond)
	assert.True(t, ok)
}

func TestLocalCache_SetNXIsExclusive(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(time.Minute, time.Minute)

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := c.SetNX(ctx, "contended", true, time.Minute); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	client, mr := newRedis(t)
	c := NewRedisCache(client, "test:")

	ok, err := c.SetNX(ctx, "touch:1", int64(1700000000000), 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := mr.Get("test:touch:1")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", stored)

	ok, err = c.SetNX(ctx, "touch:1", int64(1700000000001), 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(31 * time.Second)
	exists, err := c.Exists(ctx, "touch:1")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = c.SetNX(ctx, "touch:1", true, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.Delete(ctx, "touch:1"))
	assert.False(t, mr.Exists("test:touch:1"))
}

func TestTwoTierCache(t *testing.T) {
	ctx := context.Background()
	client, mr := newRedis(t)
	c := NewTwoTierCache(time.Minute, time.Minute, client, "tt:")

	ok, err := c.SetNX(ctx, "touch:1", true, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("tt:touch:1"))

	// a second instance sharing Redis sees the claim
	other := NewTwoTierCache(time.Minute, time.Minute, client, "tt:")
	ok, err = other.SetNX(ctx, "touch:1", true, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// and remembers the lost claim without asking Redis again
	mr.Del("tt:touch:1")
	ok, err = other.SetNX(ctx, "touch:1", true, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := c.Exists(ctx, "touch:1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "touch:1"))
	exists, err = c.Exists(ctx, "touch:1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTwoTierCache_RedisDown(t *testing.T) {
	ctx := context.Background()
	client, mr := newRedis(t)
	c := NewTwoTierCache(time.Minute, time.Minute, client, "tt:")
	mr.Close()

	ok, err := c.SetNX(ctx, "touch:1", true, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "touch:1", true, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	client, _ := newRedis(t)

	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &LocalCache{}, c)

	c, err = New(Config{Type: TypeRedis, RedisClient: client})
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, c)

	c, err = New(Config{Type: TypeTwoTier, TTL: time.Second, RedisClient: client})
	require.NoError(t, err)
	assert.IsType(t, &TwoTierCache{}, c)

	_, err = New(Config{Type: TypeRedis})
	assert.Error(t, err)

	_, err = New(Config{Type: "memcached"})
	assert.Error(t, err)
}
