package logger

import "context"

type contextKey string

const (
	loggerKey     contextKey = "ssmproxy.logger"
	requestIDKey  contextKey = "ssmproxy.request_id"
	receiverIDKey contextKey = "ssmproxy.receiver_id"
	sessionIDKey  contextKey = "ssmproxy.session_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithReceiverID adds a receiver ID to the context.
func WithReceiverID(ctx context.Context, receiverID string) context.Context {
	return context.WithValue(ctx, receiverIDKey, receiverID)
}

// ReceiverIDFromContext extracts the receiver ID from context.
func ReceiverIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(receiverIDKey).(string)
	return id
}

// WithSessionID adds a playback session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext extracts the playback session ID from context.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// L is a shorthand for FromContext that also enriches the logger with
// the request, receiver and session IDs found on the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if id := ReceiverIDFromContext(ctx); id != "" {
		l = l.With("receiver_id", id)
	}
	if id := SessionIDFromContext(ctx); id != "" {
		l = l.With("session_id", id)
	}

	return l
}
