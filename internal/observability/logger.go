// Package observability holds the application logger: JSON to stdout,
// request-scoped via context.
package observability

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

var logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

func Logger() *slog.Logger {
	return logger
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestID returns the request_id stored in the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// LoggerFromContext returns the logger, tagged with request_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}
