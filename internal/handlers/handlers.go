// Package handlers exposes redirect resolution, rule ingestion and the admin
// API over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"redirector/internal/common/errors"
	"redirector/internal/common/logging"
	"redirector/internal/common/validation"
	"redirector/internal/config"
	"redirector/internal/ingest"
	"redirector/internal/redirect"
	"redirector/internal/storage"
)

// Resolver finds the rule a request resolves to
type Resolver interface {
	Resolve(ctx context.Context, req redirect.Request) (*storage.Rule, error)
}

// Importer loads decoded rows into the store
type Importer interface {
	Import(ctx context.Context, records []ingest.Record) (*ingest.Result, error)
}

// HealthChecker is an optional dependency reported by the health check
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handlers struct {
	storage  storage.Storage
	resolver Resolver
	importer Importer
	redis    HealthChecker
	config   *config.Config
	logger   logging.Logger
}

func New(store storage.Storage, resolver Resolver, importer Importer, cfg *config.Config) *Handlers {
	return &Handlers{
		storage:  store,
		resolver: resolver,
		importer: importer,
		config:   cfg,
		logger:   logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "handlers"}),
	}
}

// WithRedis adds the shared Redis to the health report
func (h *Handlers) WithRedis(redis HealthChecker) *Handlers {
	h.redis = redis
	return h
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// handleError maps an AppError type to its HTTP status. Server side failures
// are logged and reported without their cause.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("Request failed", err,
			logging.Field{Key: "path", Value: r.URL.Path},
		)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeJSON(w, status, ErrorResponse{Error: messageOf(err), Fields: validation.Fields(err)})
}

func statusFor(err error) int {
	// an unreachable backend anywhere in the chain is reported as such
	if errors.IsType(err, errors.ErrTypeConnection) {
		return http.StatusServiceUnavailable
	}
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
