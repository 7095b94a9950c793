// Package locks serialises the dedupe-then-insert step of a rule import per
// (path, host, version) key, inside one process or across every instance that
// shares Redis.
//
//	lock, err := manager.AcquireLock(ctx, "rule:/shop|example.com|1", 10*time.Second)
//	if err != nil {
//		return err
//	}
//	defer lock.Release(context.Background())
package locks

import (
	"context"
	"sync"
	"time"

	"redirector/internal/common/errors"
)

// Lock is a held key
type Lock interface {
	Key() string
	// Release is idempotent
	Release(ctx context.Context) error
	// Lost is closed once the lock is released or can no longer be kept
	Lost() <-chan struct{}
}

// LockManager hands out locks. AcquireLock waits until the key is free or
// ctx is done.
type LockManager interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (Lock, error)
	Close() error
}

var (
	_ LockManager = (*LocalManager)(nil)
	_ LockManager = (*RedsyncManager)(nil)
)

// LocalManager is an in-process keyed mutex. A local lock never expires, so
// the ttl is ignored.
type LocalManager struct {
	mu     sync.Mutex
	waits  map[string]*waiters
	closed bool
}

// waiters counts the holder plus everyone queued on a key's token
type waiters struct {
	token chan struct{}
	n     int
}

func NewLocalManager() *LocalManager {
	return &LocalManager{waits: make(map[string]*waiters)}
}

func (m *LocalManager) AcquireLock(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	w, err := m.join(key)
	if err != nil {
		return nil, err
	}

	select {
	case w.token <- struct{}{}:
		return &localLock{key: key, manager: m, w: w, lost: make(chan struct{})}, nil
	case <-ctx.Done():
		m.leave(key, w)
		return nil, errors.ConflictError("lock "+key+" is busy", ctx.Err())
	}
}

func (m *LocalManager) join(key string) (*waiters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.InternalError("lock manager is closed", nil)
	}
	w := m.waits[key]
	if w == nil {
		w = &waiters{token: make(chan struct{}, 1)}
		m.waits[key] = w
	}
	w.n++
	return w, nil
}

func (m *LocalManager) leave(key string, w *waiters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.n--; w.n == 0 && m.waits[key] == w {
		delete(m.waits, key)
	}
}

// Close refuses further acquisitions; held locks stay valid until released
func (m *LocalManager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type localLock struct {
	key     string
	manager *LocalManager
	w       *waiters
	once    sync.Once
	lost    chan struct{}
}

func (l *localLock) Key() string { return l.key }

func (l *localLock) Lost() <-chan struct{} { return l.lost }

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() {
		close(l.lost)
		<-l.w.token
		l.manager.leave(l.key, l.w)
	})
	return nil
}
