package app

import (
	"context"

	"redirector/internal/common/cache"
	"redirector/internal/common/logging"
	"redirector/internal/common/ratelimit"
	"redirector/internal/config"
	"redirector/internal/ingest"
	"redirector/internal/locks"
	"redirector/internal/redirect"
	"redirector/internal/redis"
	"redirector/internal/storage"
)

// App holds all the application dependencies
type App struct {
	Config       *config.Config
	Storage      storage.Storage
	RedisClient  *redis.Client
	TouchCache   cache.Cache
	Locks        locks.LockManager
	Engine       *redirect.Engine
	Importer     *ingest.Importer
	AdminLimiter ratelimit.Limiter
	Logger       logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		// Redis is optional, fall back to in-process throttling and locks
		app.Logger.Warn("Redis initialization failed, continuing without Redis",
			logging.Field{Key: "error", Value: err.Error()})
	}

	if err := app.initializeEngines(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeRateLimiter(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

// Shutdown waits for background work started by requests
func (app *App) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		app.Engine.Wait()
		close(done)
	}()

	select {
	case <-done:
		app.Logger.Info("Pending rule touches flushed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Locks != nil {
		if err := app.Locks.Close(); err != nil {
			app.Logger.Warn("Error releasing locks", logging.Field{Key: "error", Value: err})
		}
	}
	if app.Storage != nil {
		app.Storage.Close()
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
