package middleware

import (
	"net/http"
	"strings"
	"time"

	"redirector/internal/common/logging"
)

// statusRecorder remembers the status and body size a handler produced
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) code() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

// levelFor picks the log level of a finished request. Health probes are
// debug noise and a /checkredirect miss is an ordinary answer.
func levelFor(path string, status int) logging.LogLevel {
	switch {
	case status >= 500:
		return logging.ErrorLevel
	case status == http.StatusNotFound && strings.HasPrefix(path, "/checkredirect"):
		return logging.InfoLevel
	case status >= 400:
		return logging.WarnLevel
	case path == "/health":
		return logging.DebugLevel
	}
	return logging.InfoLevel
}

// LoggingMiddleware writes one access log line per request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		status := rec.code()
		fields := []logging.Field{
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Int("bytes", rec.bytes),
			logging.Duration("duration", time.Since(start)),
			logging.String("remote_addr", r.RemoteAddr),
		}
		if r.URL.RawQuery != "" {
			fields = append(fields, logging.String("query", r.URL.RawQuery))
		}
		if location := rec.Header().Get("Location"); location != "" {
			fields = append(fields, logging.String("location", location))
		}

		logger := logging.WithContext(r.Context())
		const msg = "request"
		switch levelFor(r.URL.Path, status) {
		case logging.ErrorLevel:
			logger.Error(msg, nil, fields...)
		case logging.WarnLevel:
			logger.Warn(msg, fields...)
		case logging.DebugLevel:
			logger.Debug(msg, fields...)
		default:
			logger.Info(msg, fields...)
		}
	})
}
