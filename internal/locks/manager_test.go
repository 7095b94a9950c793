package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"redirector/internal/common/errors"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestLocalManager_AcquireLock(t *testing.T) {
	manager := NewLocalManager()
	defer manager.Close()
	ctx := context.Background()

	t.Run("successful lock acquisition", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-lock", time.Second)
		require.NoError(t, err)

		assert.Equal(t, "test-lock", lock.Key())
		assert.False(t, isClosed(lock.Lost()))

		require.NoError(t, lock.Release(ctx))
		assert.True(t, isClosed(lock.Lost()))
		assert.NoError(t, lock.Release(ctx), "second release is a no-op")
	})

	t.Run("lock contention", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "contended-lock", time.Second)
		require.NoError(t, err)

		shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		lock2, err := manager.AcquireLock(shortCtx, "contended-lock", time.Second)
		assert.True(t, errors.IsType(err, errors.ErrTypeConflict))
		assert.Nil(t, lock2)

		require.NoError(t, lock1.Release(ctx))

		lock3, err := manager.AcquireLock(ctx, "contended-lock", time.Second)
		require.NoError(t, err)
		require.NoError(t, lock3.Release(ctx))
	})

	t.Run("different keys do not block", func(t *testing.T) {
		a, err := manager.AcquireLock(ctx, "a", time.Second)
		require.NoError(t, err)
		defer a.Release(ctx)

		b, err := manager.AcquireLock(ctx, "b", time.Second)
		require.NoError(t, err)
		defer b.Release(ctx)
	})

	t.Run("slots are cleaned up", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "cleanup", time.Second)
		require.NoError(t, err)
		require.NoError(t, lock.Release(ctx))

		manager.mu.Lock()
		_, ok := manager.waits["cleanup"]
		manager.mu.Unlock()
		assert.False(t, ok)
	})
}

func TestLocalManager_MutualExclusion(t *testing.T) {
	manager := NewLocalManager()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := manager.AcquireLock(ctx, "shared", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			lock.Release(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestLocalManager_Close(t *testing.T) {
	manager := NewLocalManager()
	require.NoError(t, manager.Close())

	_, err := manager.AcquireLock(context.Background(), "after-close", time.Second)
	assert.Error(t, err)
}

func TestNewLockManager(t *testing.T) {
	manager, err := NewLockManager(nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalManager{}, manager)
}
