package app

import (
	"redirector/internal/circuitbreaker"
	"redirector/internal/common/cache"
	"redirector/internal/common/logging"
	"redirector/internal/ingest"
	"redirector/internal/locks"
	"redirector/internal/redirect"
)

// touchCachePrefix namespaces the throttle keys shared through Redis
const touchCachePrefix = "redirector:"

func (app *App) initializeEngines() error {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.TTL = app.Config.TouchInterval
	cacheConfig.KeyPrefix = touchCachePrefix
	if app.RedisClient != nil {
		cacheConfig.Type = cache.TypeTwoTier
		cacheConfig.RedisClient = app.RedisClient.GetGoRedisClient()
	}

	touchCache, err := cache.New(cacheConfig)
	if err != nil {
		return err
	}
	app.TouchCache = touchCache

	lockManager, err := locks.NewLockManager(app.RedisClient)
	if err != nil {
		return err
	}
	app.Locks = lockManager

	breaker := circuitbreaker.New("storage", circuitbreaker.DefaultConfig(),
		logging.WithFields(logging.Field{Key: "component", Value: "circuitbreaker"}))

	app.Engine = redirect.NewEngine(redirect.Guard(app.Storage, breaker),
		redirect.Config{
			TouchInterval:     app.Config.TouchInterval,
			RegexCacheSize:    app.Config.RegexCacheSize,
			RegexCacheTTL:     app.Config.RegexCacheTTL,
			RegexMatchTimeout: app.Config.RegexMatchTimeout,
		},
		redirect.WithTouchCache(touchCache),
		redirect.WithLogger(logging.WithFields(logging.Field{Key: "component", Value: "redirect"})),
	)

	app.Importer = ingest.NewImporter(app.Storage,
		ingest.WithLockManager(lockManager),
		ingest.WithLockTTL(app.Config.IngestLockTTL),
		ingest.WithLogger(logging.WithFields(logging.Field{Key: "component", Value: "ingest"})),
	)

	app.Logger.Info("Resolution engine ready",
		logging.Field{Key: "cache", Value: string(cacheConfig.Type)},
		logging.Field{Key: "touch_interval", Value: app.Config.TouchInterval.String()},
	)
	return nil
}
