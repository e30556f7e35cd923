package attrs

import (
	"context"
	"log/slog"
	"time"
)

// OperationEvent describes one store operation for logging.
type OperationEvent struct {
	Op        string
	Model     string
	Identity  string
	Attribute string
	Keys      int
	Duration  time.Duration
	Err       error
}

// Logger records operation events.
type Logger interface {
	LogOperation(OperationEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(OperationEvent)

// LogOperation implements Logger.
func (f LoggerFunc) LogOperation(event OperationEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogOperation(OperationEvent) {}

// WithLogger attaches an operation logger to the registry.
func WithLogger(logger Logger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogLogger logs successful operations at debug level and failures at warn.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return LoggerFunc(func(event OperationEvent) {
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.String("op", event.Op),
			slog.String("model", event.Model),
			slog.Duration("duration", event.Duration),
		}
		if event.Identity != "" {
			attrs = append(attrs, slog.String("identity", event.Identity))
		}
		if event.Attribute != "" {
			attrs = append(attrs, slog.String("attribute", event.Attribute))
		}
		if event.Keys > 0 {
			attrs = append(attrs, slog.Int("keys", event.Keys))
		}
		if event.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.Any("error", event.Err))
		}
		logger.LogAttrs(context.Background(), level, "redis attrs operation", attrs...)
	})
}
