package locks

import (
	"redirector/internal/redis"
)

// NewLockManager returns a RedsyncManager when a Redis client is available,
// so several instances importing the same rules agree on who inserts. Without
// Redis it falls back to a LocalManager.
func NewLockManager(redisClient *redis.Client) (LockManager, error) {
	if redisClient == nil {
		return NewLocalManager(), nil
	}
	return NewRedsyncManager(redisClient)
}
