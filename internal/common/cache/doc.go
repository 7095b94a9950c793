// Package cache keeps short-lived claims on keys, in process with
// patrickmn/go-cache, in Redis with go-redis, or both.
//
// The redirect engine claims "touch:<rule id>" to write lastAccessed at most
// once per interval:
//
//	c, err := cache.New(cache.Config{Type: cache.TypeLocal, TTL: 30 * time.Second})
//	if first, _ := c.SetNX(ctx, "touch:"+rule.ID, now, 30*time.Second); first {
//		// write lastAccessed
//	}
package cache
