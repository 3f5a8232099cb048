package voiceprint

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with engine-specific context.
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

// WithSpeaker adds a speaker_id field to the logger.
func (l *Logger) WithSpeaker(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("speaker_id", id),
	}
}

// LogRegister logs an enrollment operation.
func (l *Logger) LogRegister(ctx context.Context, speakerID string, clips, used int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "register failed",
			"speaker_id", speakerID,
			"clips", clips,
			"error", err,
		)
	} else if used < clips {
		l.WarnContext(ctx, "register completed with skipped samples",
			"speaker_id", speakerID,
			"clips", clips,
			"used", used,
		)
	} else {
		l.InfoContext(ctx, "register completed",
			"speaker_id", speakerID,
			"clips", clips,
		)
	}
}

// LogRecognize logs a recognition operation.
func (l *Logger) LogRecognize(ctx context.Context, topK, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recognize failed",
			"top_k", topK,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "recognize completed",
			"top_k", topK,
			"results", results,
		)
	}
}

// LogDiarize logs a diarization operation.
func (l *Logger) LogDiarize(ctx context.Context, seconds float64, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "diarize failed",
			"seconds", seconds,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "diarize completed",
			"seconds", seconds,
			"segments", segments,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, speakerID string, deleted bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"speaker_id", speakerID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"speaker_id", speakerID,
			"deleted", deleted,
		)
	}
}
