package corrsketch

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/corrsketch/sketch"
)

// Logger wraps slog.Logger with consistent field names for estimation runs.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithFamily adds a family field to the logger.
func (l *Logger) WithFamily(f sketch.Family) *Logger {
	return &Logger{
		Logger: l.Logger.With("family", f.String()),
	}
}

// WithTrial adds a trial field to the logger.
func (l *Logger) WithTrial(trial int) *Logger {
	return &Logger{
		Logger: l.Logger.With("trial", trial),
	}
}

// WithStorage adds a storage size field to the logger.
func (l *Logger) WithStorage(storage int) *Logger {
	return &Logger{
		Logger: l.Logger.With("storage", storage),
	}
}

// LogEstimate logs one estimation.
func (l *Logger) LogEstimate(ctx context.Context, f sketch.Family, sketchSize int, corr float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "estimate failed",
			"family", f.String(),
			"sketch_size", sketchSize,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "estimate completed",
			"family", f.String(),
			"sketch_size", sketchSize,
			"corr", corr,
		)
	}
}

// LogSkip logs a family that was not estimated for a cell.
func (l *Logger) LogSkip(ctx context.Context, f sketch.Family, key, reason string) {
	l.DebugContext(ctx, "estimate skipped",
		"family", f.String(),
		"key", key,
		"reason", reason,
	)
}

// LogTrial logs the ground truth of a generated pair.
func (l *Logger) LogTrial(ctx context.Context, trial int, corr, n float64) {
	l.InfoContext(ctx, "trial started",
		"trial", trial,
		"true_corr", corr,
		"overlap", n,
	)
}

// LogCheckpoint logs a checkpoint write.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, estimates int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"name", name,
			"estimates", estimates,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint saved",
			"name", name,
			"estimates", estimates,
		)
	}
}
