// Package contextkeys defines every request-scoped context key used by the service.
//
// Keys live here so middleware and handlers in different packages agree on them
// without importing each other:
//
//	ctx = contextkeys.WithAuth(ctx, authCtx)
//	authCtx, _ := ctx.Value(contextkeys.AuthKey).(*auth.AuthContext)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthKey holds *auth.AuthContext.
	// Set by middleware.BearerAuth and middleware.StaticToken.
	AuthKey Key = "auth_context"

	// RequestIDKey holds the request id string (UUID).
	// Set by httputil.RequestID. Read by the logger and error responses.
	RequestIDKey Key = "request_id"

	// UserIDKey holds the int64 id of the account behind a bearer token.
	// Set by middleware.BearerAuth.
	UserIDKey Key = "user_id"

	// LoggerKey holds *observability.Logger enriched with request fields.
	LoggerKey Key = "logger"
)

// WithAuth adds authentication context to the context
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, authCtx)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds the authenticated account id to the context
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithLogger adds logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves the authenticated account id, or 0 when absent
func GetUserID(ctx context.Context) int64 {
	if userID, ok := ctx.Value(UserIDKey).(int64); ok {
		return userID
	}
	return 0
}
