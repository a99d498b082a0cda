package seqgraph

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with seqgraph-specific context.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithID adds a vertex id field to the logger.
func (l *Logger) WithID(id VertexID) *Logger {
	return &Logger{
		Logger: l.Logger.With("vertex", id),
	}
}

// WithWidth adds a width field to the logger.
func (l *Logger) WithWidth(width int) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, queryLen int, result Child, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"query_len", queryLen,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"query_len", queryLen,
			"vertex", result.ID,
			"width", result.Width,
		)
	}
}

// LogRead logs a read operation.
func (l *Logger) LogRead(ctx context.Context, tokens int, result Child, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"tokens", tokens,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read completed",
			"tokens", tokens,
			"vertex", result.ID,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, op string, queryLen int, res *FinishedState, err error) {
	if err != nil {
		l.DebugContext(ctx, "search ended without match",
			"op", op,
			"query_len", queryLen,
			"reason", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"op", op,
		"query_len", queryLen,
		"kind", res.Kind.String(),
		"root", res.Root.ID,
		"start", res.Start,
		"end", res.End,
	)
}

// LogSplit logs a split operation.
func (l *Logger) LogSplit(ctx context.Context, v Child, offset int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "split failed",
			"vertex", v.ID,
			"offset", offset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "split completed",
			"vertex", v.ID,
			"offset", offset,
		)
	}
}

// LogSnapshot logs a snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, vertices int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"vertices", vertices,
		)
	}
}

// LogRestore logs a restore operation.
func (l *Logger) LogRestore(ctx context.Context, name string, vertices int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot restored",
			"name", name,
			"vertices", vertices,
		)
	}
}
