package redirect

import (
	"context"
	"time"

	"redirector/internal/common/logging"
	"redirector/internal/storage"
)

const touchTimeout = 5 * time.Second

// touch records a hit on rule id without blocking the caller. Writes are
// throttled to one per TouchInterval per rule; failures are only logged.
func (e *Engine) touch(id string) {
	if id == "" || e.config.TouchInterval <= 0 {
		return
	}

	accessed := e.now().UnixMilli()

	e.touches.Add(1)
	go func() {
		defer e.touches.Done()

		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()

		first, err := e.throttle.SetNX(ctx, "touch:"+id, accessed, e.config.TouchInterval)
		if err != nil {
			e.logger.Debug("Touch throttle unavailable", logging.Field{Key: "rule_id", Value: id}, logging.Err(err))
			return
		}
		if !first {
			return
		}

		patch := storage.RulePatch{LastAccessed: storage.Int64Ptr(accessed)}
		if err := e.store.PatchRule(ctx, id, patch); err != nil {
			e.logger.Debug("Failed to update lastAccessed", logging.Field{Key: "rule_id", Value: id}, logging.Err(err))
		}
	}()
}

// Wait blocks until in-flight lastAccessed updates have finished
func (e *Engine) Wait() {
	e.touches.Wait()
}
