// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them, handlers read them; services
// never look here for the caller. Every service method takes the caller
// principal as an explicit argument so units test deterministically without
// a transport in front.
package requestcontext

import (
	"context"

	"repute/pkg/domain"
)

type (
	callerKey    struct{}
	requestIDKey struct{}
)

// Caller retrieves the authenticated caller principal, or the zero
// principal if the request was not authenticated.
func Caller(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(callerKey{}).(domain.Principal); ok {
		return p
	}
	return ""
}

// WithCaller injects the caller principal into the context.
func WithCaller(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, callerKey{}, p)
}

// RequestID retrieves the correlation ID for the current request.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
