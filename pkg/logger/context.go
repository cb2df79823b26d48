package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ForContext returns l annotated with the request id carried by ctx, if any.
func ForContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}
