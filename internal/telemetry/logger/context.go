package logger

import "context"

type (
	loggerCtxKey    struct{}
	requestIDCtxKey struct{}
)

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// FromContext returns the logger stored by WithLogger, or Default().
func FromContext(ctx context.Context) Logger {
	l, ok := ctx.Value(loggerCtxKey{}).(Logger)
	if !ok {
		return Default()
	}
	return l
}

// WithRequestID returns a context carrying the request ID assigned by the
// HTTP middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// L returns the context logger tagged with request_id when the context
// belongs to a request. Services log through it.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	return l.With("request_id", id)
}
