package logger

import "context"

type contextKey string

const (
	loggerKey    contextKey = "companylock.logger"
	requestIDKey contextKey = "companylock.request_id"
	actorKey     contextKey = "companylock.actor"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, or the default logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID adds the X-Request-ID value to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithActor records the username acting in this request: the admin
// holding the bearer credential on the server, or the logged-in
// identity on the client.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey, username)
}

// ActorFromContext extracts the acting username from context.
func ActorFromContext(ctx context.Context) string {
	name, _ := ctx.Value(actorKey).(string)
	return name
}

// L returns the context logger tagged with request_id and actor when
// they are present.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if actor := ActorFromContext(ctx); actor != "" {
		l = l.With("actor", actor)
	}
	return l
}
