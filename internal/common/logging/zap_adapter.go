package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sampleThereafter keeps every Nth duplicate once a message exceeds its
// per-second allowance
const sampleThereafter = 100

// Options configures NewZapLogger
type Options struct {
	Level  LogLevel
	Format Format
	// Output defaults to stdout
	Output io.Writer
	Name   string
	// SamplePerSecond caps identical messages per second; 0 logs everything
	SamplePerSecond int
}

// ZapAdapter implements Logger on top of *zap.Logger
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapLogger builds a zap logger from opts
func NewZapLogger(opts Options) (Logger, error) {
	if opts.SamplePerSecond < 0 {
		return nil, fmt.Errorf("sample rate must not be negative, got %d", opts.SamplePerSecond)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(encoderFor(opts.Format), zapcore.Lock(zapcore.AddSync(out)), zapLevel(opts.Level))
	if opts.SamplePerSecond > 0 {
		core = zapcore.NewSamplerWithOptions(core, time.Second, opts.SamplePerSecond, sampleThereafter)
	}

	// caller skip hides the adapter frame
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if opts.Name != "" {
		logger = logger.Named(opts.Name)
	}
	return &ZapAdapter{logger: logger}, nil
}

func encoderFor(format Format) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	if format == FormatJSON {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (z *ZapAdapter) Debug(msg string, fields ...Field) { z.logger.Debug(msg, toZap(fields)...) }

func (z *ZapAdapter) Info(msg string, fields ...Field) { z.logger.Info(msg, toZap(fields)...) }

func (z *ZapAdapter) Warn(msg string, fields ...Field) { z.logger.Warn(msg, toZap(fields)...) }

// Error logs at error level; a nil err is allowed
func (z *ZapAdapter) Error(msg string, err error, fields ...Field) {
	zf := toZap(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	z.logger.Error(msg, zf...)
}

func (z *ZapAdapter) WithFields(fields ...Field) Logger {
	if len(fields) == 0 {
		return z
	}
	return &ZapAdapter{logger: z.logger.With(toZap(fields)...)}
}

// WithContext tags entries with the request id carried by ctx
func (z *ZapAdapter) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return z
	}
	id := RequestIDFromContext(ctx)
	if id == "" {
		return z
	}
	return &ZapAdapter{logger: z.logger.With(zap.String(string(RequestIDKey), id))}
}

// Sync flushes buffered entries
func (z *ZapAdapter) Sync() error {
	return z.logger.Sync()
}
