package pagecache

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pagecache-specific context.
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

// LogRange logs a change of the retained window.
func (l *Logger) LogRange(start, end, preload, evicted, created int) {
	l.Debug("visible range updated",
		"start", start,
		"end", end,
		"preload", preload,
		"evicted", evicted,
		"created", created,
	)
}

// LogRender logs the outcome of a render job delivered to the cache.
func (l *Logger) LogRender(page int, generation uint64, err error) {
	if err != nil {
		l.Warn("render failed",
			"page", page,
			"generation", generation,
			"error", err,
		)
	} else {
		l.Debug("render completed",
			"page", page,
			"generation", generation,
		)
	}
}

// LogStaleCompletion logs a completion that no longer matches its page.
func (l *Logger) LogStaleCompletion(page int, generation uint64) {
	l.Debug("stale completion ignored",
		"page", page,
		"generation", generation,
	)
}

// LogSelectionRender logs a synchronous selection render.
func (l *Logger) LogSelectionRender(page int, err error) {
	if err != nil {
		l.Warn("selection render failed",
			"page", page,
			"error", err,
		)
	} else {
		l.Debug("selection rendered",
			"page", page,
		)
	}
}

// LogClear logs a wholesale cache clear.
func (l *Logger) LogClear(entries int) {
	l.Info("cache cleared",
		"entries", entries,
	)
}
