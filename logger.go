package fire

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with fire-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithFile adds the file name and mode to the logger.
func (l *Logger) WithFile(name string, mode string) *Logger {
	return &Logger{
		Logger: l.Logger.With("file", name, "mode", mode),
	}
}

// WithEntry adds an entry index field to the logger.
func (l *Logger) WithEntry(entry int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("entry", entry),
	}
}

// LogOpen logs opening a file.
func (l *Logger) LogOpen(ctx context.Context, entries int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "file opened",
			"entries", entries,
		)
	}
}

// LogEntry logs processing of one entry.
func (l *Logger) LogEntry(ctx context.Context, entry int64, saved bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "entry failed",
			"entry", entry,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "entry completed",
			"entry", entry,
			"saved", saved,
		)
	}
}

// LogClose logs closing a file.
func (l *Logger) LogClose(ctx context.Context, entries int64, bytes uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"entries", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "file closed",
			"entries", entries,
			"bytes", bytes,
		)
	}
}
