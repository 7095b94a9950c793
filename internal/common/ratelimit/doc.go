// Package ratelimit throttles HTTP clients by key, either in process with
// golang.org/x/time/rate or across replicas with a Redis window counter.
//
//	limiter, err := ratelimit.New(ratelimit.Config{RequestsPerSecond: 5, BurstSize: 10})
//	if err != nil {
//		return err
//	}
//	router.Use(ratelimit.HTTPMiddleware(limiter, ratelimit.IPKey))
//
// A zero RequestsPerSecond disables limiting; New then returns a limiter that
// admits everything.
package ratelimit
