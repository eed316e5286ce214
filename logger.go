package digitstream

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with digitstream-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithOffset adds an offset field to the logger.
func (l *Logger) WithOffset(off int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("offset", off),
	}
}

// WithObject adds the backing object name to the logger.
func (l *Logger) WithObject(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("object", name),
	}
}

// LogFetch logs the outcome of a single fetch task.
func (l *Logger) LogFetch(off, length int64, n int, err error) {
	if err != nil {
		l.Warn("fetch failed",
			"offset", off,
			"length", length,
			"error", err,
		)
	} else {
		l.Debug("fetch completed",
			"offset", off,
			"length", length,
			"bytes", n,
		)
	}
}

// LogDrain logs a drain operation.
func (l *Logger) LogDrain(consumed int64, n int) {
	l.Debug("buffer drained",
		"consumed", consumed,
		"bytes", n,
	)
}

// LogStateChange logs a session state transition.
func (l *Logger) LogStateChange(from, to string) {
	l.Info("state change",
		"from", from,
		"to", to,
	)
}
