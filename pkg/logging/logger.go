package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// LevelTrace is below debug: per-node and per-frame detail
const LevelTrace = slog.LevelDebug - 4

// The package logger. Everything in the viewer logs through it so the
// terminal UI can redirect all of it with SetOutput.
var (
	logger    *slog.Logger
	out       io.Writer = os.Stdout
	level     = new(slog.LevelVar)
	jsonLines bool
)

func init() {
	rebuild()
}

func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	if jsonLines {
		logger = slog.New(slog.NewJSONHandler(out, opts))
	} else {
		logger = slog.New(NewCompactHandler(out, opts))
	}
}

// SetLevel changes the logging level
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetJSONOutput switches to one JSON object per line at level l
func SetJSONOutput(l slog.Level) {
	level.Set(l)
	jsonLines = true
	rebuild()
}

// SetOutput redirects log output. The terminal UI owns stdout, so it
// points logs elsewhere while it runs.
func SetOutput(w io.Writer) {
	out = w
	rebuild()
}

// Enabled reports whether a level would be logged
func Enabled(l slog.Level) bool {
	return logger.Enabled(context.Background(), l)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// logCtx logs with the context's request id, if any, as the first attribute
func logCtx(ctx context.Context, l slog.Level, msg string, args []any) {
	if !logger.Enabled(ctx, l) {
		return
	}
	if id := GetRequestID(ctx); id != "" {
		args = append([]any{"requestID", id}, args...)
	}
	logger.Log(ctx, l, msg, args...)
}

func Trace(msg string, args ...any) { logger.Log(context.Background(), LevelTrace, msg, args...) }
func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

func TraceContext(ctx context.Context, msg string, args ...any) {
	logCtx(ctx, LevelTrace, msg, args)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	logCtx(ctx, slog.LevelDebug, msg, args)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	logCtx(ctx, slog.LevelInfo, msg, args)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	logCtx(ctx, slog.LevelWarn, msg, args)
}
