package logging

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDMiddleware tags each request with an X-Request-ID (kept from the
// client when present, else a new uuid) and logs its outcome. Paths under a
// quiet prefix log at trace level: the browser posts pointer moves many
// times a second and keeps subscriptions open for minutes.
func RequestIDMiddleware(quiet ...string) func(http.Handler) http.Handler {
	isQuiet := func(path string) bool {
		return slices.ContainsFunc(quiet, func(p string) bool { return strings.HasPrefix(path, p) })
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			ctx := WithRequestID(r.Context(), id)
			w.Header().Set("X-Request-ID", id)

			done := slog.LevelInfo
			if isQuiet(r.URL.Path) {
				done = LevelTrace
			} else {
				DebugContext(ctx, "request started", "method", r.Method, "path", r.URL.Path, "remoteAddr", r.RemoteAddr)
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			msg := "request completed"
			if rec.status >= http.StatusBadRequest {
				done, msg = slog.LevelWarn, "request failed"
			}
			logCtx(ctx, done, msg, []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"durationMs", time.Since(start).Milliseconds(),
			})
		})
	}
}

// statusRecorder remembers the status code written through it
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming through the wrapper
func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
