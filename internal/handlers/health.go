package handlers

import (
	"net/http"
	"time"

	"redirector/internal/common/logging"
)

// HealthCheck reports whether the store is reachable. Redis is optional, so
// losing it degrades the service without failing the check.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}

	if err := h.storage.Health(r.Context()); err != nil {
		status["status"] = "unhealthy"
		status["storage_error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	if h.redis != nil {
		if err := h.redis.Health(r.Context()); err != nil {
			h.logger.WithContext(r.Context()).Warn("Redis health check failed", logging.Err(err))
			status["status"] = "degraded"
			status["redis_status"] = "unhealthy"
		} else {
			status["redis_status"] = "healthy"
		}
	}

	writeJSON(w, http.StatusOK, status)
}
