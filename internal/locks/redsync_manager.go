package locks

import (
	"context"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"redirector/internal/common/errors"
	"redirector/internal/redis"
)

const (
	keyPrefix    = "lock:"
	retryDelay   = 25 * time.Millisecond
	redisTimeout = 5 * time.Second
)

// RedsyncManager keeps locks in Redis with the Redlock algorithm. A watchdog
// extends every held lock at a third of its ttl.
type RedsyncManager struct {
	rs *redsync.Redsync

	mu   sync.Mutex
	held map[*redsyncLock]struct{}
}

func NewRedsyncManager(client *redis.Client) (*RedsyncManager, error) {
	if client == nil {
		return nil, errors.ConfigError("redis client is required")
	}
	return &RedsyncManager{
		rs:   redsync.New(goredis.NewPool(client.GetGoRedisClient())),
		held: make(map[*redsyncLock]struct{}),
	}, nil
}

// tries lets a waiter outlast one full ttl of the current holder
func tries(ttl time.Duration) int {
	n := int(ttl/retryDelay) + 1
	if n < 2 {
		return 2
	}
	return n
}

// AcquireLock takes "lock:<key>". The wait ends when ctx is done or the
// holder has kept the key for longer than ttl.
func (m *RedsyncManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	mutex := m.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(tries(ttl)),
		redsync.WithRetryDelay(retryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.ConflictError("lock "+key+" is busy", err)
	}

	l := &redsyncLock{key: key, mutex: mutex, manager: m, lost: make(chan struct{})}
	m.mu.Lock()
	m.held[l] = struct{}{}
	m.mu.Unlock()

	go l.watch(ttl)
	return l, nil
}

// Close releases whatever is still held
func (m *RedsyncManager) Close() error {
	m.mu.Lock()
	held := make([]*redsyncLock, 0, len(m.held))
	for l := range m.held {
		held = append(held, l)
	}
	m.mu.Unlock()

	var first error
	for _, l := range held {
		if err := l.Release(context.Background()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type redsyncLock struct {
	key     string
	mutex   *redsync.Mutex
	manager *RedsyncManager
	once    sync.Once
	lost    chan struct{}
	err     error
}

func (l *redsyncLock) Key() string { return l.key }

func (l *redsyncLock) Lost() <-chan struct{} { return l.lost }

func (l *redsyncLock) watch(ttl time.Duration) {
	every := ttl / 3
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.lost:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
			ok, err := l.mutex.ExtendContext(ctx)
			cancel()
			if err != nil || !ok {
				// expired or taken over; stop pretending we hold it
				_ = l.Release(context.Background())
				return
			}
		}
	}
}

func (l *redsyncLock) Release(ctx context.Context) error {
	l.once.Do(func() {
		close(l.lost)

		l.manager.mu.Lock()
		delete(l.manager.held, l)
		l.manager.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisTimeout)
		defer cancel()
		if _, err := l.mutex.UnlockContext(ctx); err != nil {
			l.err = errors.ConnectionError("release lock "+l.key, err)
		}
	})
	return l.err
}
