package app

import (
	"redirector/internal/common/logging"
	"redirector/internal/common/ratelimit"
)

// initializeRateLimiter builds the per-client limiter for the import and admin
// endpoints. Counters are shared through Redis when it is available.
func (app *App) initializeRateLimiter() error {
	limitConfig := ratelimit.Config{
		RequestsPerSecond: app.Config.AdminRateLimit,
		BurstSize:         app.Config.AdminRateBurst,
		Type:              ratelimit.BackendLocal,
	}
	if app.RedisClient != nil {
		limitConfig.Type = ratelimit.BackendRedis
		limitConfig.RedisClient = app.RedisClient.GetGoRedisClient()
		limitConfig.KeyPrefix = touchCachePrefix + "ratelimit:"
	}

	limiter, err := ratelimit.New(limitConfig)
	if err != nil {
		return err
	}
	app.AdminLimiter = limiter

	if limitConfig.Enabled() {
		app.Logger.Info("Admin rate limiting enabled",
			logging.Field{Key: "requests_per_second", Value: limitConfig.RequestsPerSecond},
			logging.Field{Key: "burst", Value: app.Config.AdminRateBurst},
			logging.Field{Key: "backend", Value: string(limitConfig.Type)},
		)
	}
	return nil
}
