package app

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"redirector/internal/common/ratelimit"
	"redirector/internal/handlers"
	"redirector/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application. Import and
// admin endpoints go through limiter; resolution and health checks do not.
func SetupRoutes(router *mux.Router, h *handlers.Handlers, limiter ratelimit.Limiter) {
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware)

	limited := func(f http.HandlerFunc) http.Handler { return f }
	if limiter != nil {
		throttle := ratelimit.HTTPMiddleware(limiter, ratelimit.IPKey)
		limited = func(f http.HandlerFunc) http.Handler { return throttle(f) }
	}

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Resolution and ingestion
	router.HandleFunc("/checkredirect", h.CheckRedirect).Methods("GET")
	router.Handle("/redirect", limited(h.ImportRedirects)).Methods("POST")

	// Rules
	router.Handle("/rule", limited(h.CountRules)).Methods("GET")
	router.Handle("/rule", limited(h.DeleteAllRules)).Methods("DELETE")
	router.Handle("/rules", limited(h.ListRules)).Methods("GET")
	router.Handle("/rule/{id}", limited(h.GetRule)).Methods("GET")
	router.Handle("/rule/{id}", limited(h.PutRule)).Methods("PUT")
	router.Handle("/rule/{id}", limited(h.DeleteRule)).Methods("DELETE")

	// Host policies
	router.Handle("/hosts/{host}", limited(h.GetHost)).Methods("GET")
	router.Handle("/hosts/{host}", limited(h.PutHost)).Methods("PUT")
	router.Handle("/hosts/{host}", limited(h.DeleteHost)).Methods("DELETE")

	// Active version
	router.Handle("/version", limited(h.GetVersion)).Methods("GET")
	router.Handle("/version", limited(h.PutVersion)).Methods("PUT")
}
