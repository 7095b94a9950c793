package logging

import (
	"context"
	"fmt"
	"os"
	"sync"
)

type contextKey string

// RequestIDKey is where RequestIDMiddleware stores the id
const RequestIDKey contextKey = "request_id"

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// GetGlobalLogger returns the process logger, creating a stdout logger from
// LOG_LEVEL and LOG_FORMAT on first use
func GetGlobalLogger() Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = mustZap(Options{
			Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
			Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		})
	}
	return globalLogger
}

// SetGlobalLogger replaces the process logger
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// InitGlobalLogger installs the logger described by the LOG_* settings. An
// empty file writes to stdout.
func InitGlobalLogger(level, format, file string, samplePerSecond int) error {
	opts := Options{
		Level:           ParseLevel(level),
		Format:          ParseFormat(format),
		SamplePerSecond: samplePerSecond,
	}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", file, err)
		}
		opts.Output = f
	}

	logger, err := NewZapLogger(opts)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	SetGlobalLogger(logger)

	logger.Debug("Logger initialized",
		String("level", opts.Level.String()),
		String("format", string(opts.Format)),
		Int("sample_per_second", samplePerSecond),
	)
	return nil
}

func mustZap(opts Options) Logger {
	logger, err := NewZapLogger(opts)
	if err != nil {
		panic(err)
	}
	return logger
}

// MustSync flushes the global logger; call before exit
func MustSync() {
	if z, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = z.Sync()
	}
}

func Debug(msg string, fields ...Field) { GetGlobalLogger().Debug(msg, fields...) }

func Info(msg string, fields ...Field) { GetGlobalLogger().Info(msg, fields...) }

func Warn(msg string, fields ...Field) { GetGlobalLogger().Warn(msg, fields...) }

func Error(msg string, err error, fields ...Field) { GetGlobalLogger().Error(msg, err, fields...) }

func WithFields(fields ...Field) Logger { return GetGlobalLogger().WithFields(fields...) }

func WithContext(ctx context.Context) Logger { return GetGlobalLogger().WithContext(ctx) }

// ContextWithRequestID stores id for WithContext
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// NewNopLogger discards everything
func NewNopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field)               {}
func (nopLogger) Info(string, ...Field)                {}
func (nopLogger) Warn(string, ...Field)                {}
func (nopLogger) Error(string, error, ...Field)        {}
func (n nopLogger) WithFields(...Field) Logger         { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
