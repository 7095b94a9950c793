package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cfg := Config{RequestsPerSecond: 4}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.BurstSize)
	assert.Equal(t, BackendLocal, cfg.Type)
	assert.Equal(t, 10000, cfg.MaxKeys)
	assert.Equal(t, 5*time.Minute, cfg.CleanupPeriod)

	bad := []Config{
		{RequestsPerSecond: -1},
		{RequestsPerSecond: 1, BurstSize: -1},
		{RequestsPerSecond: 1, Type: BackendRedis},
		{RequestsPerSecond: 1, Type: "memcached"},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate(), "%+v", c)
	}

	disabled := Config{}
	assert.NoError(t, disabled.Validate())
	assert.False(t, disabled.Enabled())
}

func TestNew_Disabled(t *testing.T) {
	limiter, err := New(Config{})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(context.Background(), "k"))
	}
	assert.Equal(t, 0, limiter.Limit())
}

func TestLocalLimiter(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{RequestsPerSecond: 1, BurstSize: 3})
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "a"), "request %d", i)
	}
	assert.False(t, limiter.Allow(ctx, "a"))

	// keys have independent buckets
	assert.True(t, limiter.Allow(ctx, "b"))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow(ctx, "a"))
	assert.False(t, limiter.Allow(ctx, "a"))
}

func TestLocalLimiter_Cleanup(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{RequestsPerSecond: 1, CleanupPeriod: time.Minute})
	require.NoError(t, err)

	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	limiter.Allow(ctx, "a")
	limiter.Allow(ctx, "b")
	assert.Equal(t, 2, limiter.Keys())

	now = now.Add(2 * time.Minute)
	limiter.Allow(ctx, "c")
	assert.Equal(t, 1, limiter.Keys())
}

func TestLocalLimiter_MaxKeys(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{RequestsPerSecond: 1, MaxKeys: 2, CleanupPeriod: time.Minute})
	require.NoError(t, err)

	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	limiter.Allow(ctx, "a")
	now = now.Add(30 * time.Second)
	limiter.Allow(ctx, "b")
	now = now.Add(45 * time.Second)
	limiter.Allow(ctx, "c")

	// "a" went idle for longer than the cleanup period
	assert.Equal(t, 2, limiter.Keys())
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisLimiter(t *testing.T) {
	client, mr := newTestRedis(t)

	limiter, err := NewRedisLimiter(Config{
		RequestsPerSecond: 2,
		BurstSize:         2,
		Type:              BackendRedis,
		RedisClient:       client,
		KeyPrefix:         "test:",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Second, limiter.window)

	now := time.Unix(1700000000, 0)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "1.2.3.4"))
	assert.True(t, limiter.Allow(ctx, "1.2.3.4"))
	assert.False(t, limiter.Allow(ctx, "1.2.3.4"))
	assert.True(t, limiter.Allow(ctx, "5.6.7.8"))

	key := "test:1.2.3.4:1700000000"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 2*time.Second, mr.TTL(key))

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow(ctx, "1.2.3.4"))
}

func TestRedisLimiter_SharedAcrossInstances(t *testing.T) {
	client, _ := newTestRedis(t)
	cfg := Config{RequestsPerSecond: 1, BurstSize: 2, Type: BackendRedis, RedisClient: client}

	first, err := NewRedisLimiter(cfg)
	require.NoError(t, err)
	second, err := NewRedisLimiter(cfg)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	first.now = func() time.Time { return now }
	second.now = first.now
	ctx := context.Background()

	assert.True(t, first.Allow(ctx, "k"))
	assert.True(t, second.Allow(ctx, "k"))
	assert.False(t, first.Allow(ctx, "k"))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	client, mr := newTestRedis(t)
	limiter, err := NewRedisLimiter(Config{RequestsPerSecond: 1, BurstSize: 1, Type: BackendRedis, RedisClient: client})
	require.NoError(t, err)

	mr.Close()
	assert.True(t, limiter.Allow(context.Background(), "k"))
	assert.True(t, limiter.Allow(context.Background(), "k"))
}

func TestHTTPMiddleware(t *testing.T) {
	limiter, err := New(Config{RequestsPerSecond: 1, BurstSize: 1})
	require.NoError(t, err)

	handler := HTTPMiddleware(limiter, IPKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/version", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000").Code)

	rec := send("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5000").Code)
}

func TestIPKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote ipv4", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote ipv6", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.1:80", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, IPKey(req))
		})
	}
}
