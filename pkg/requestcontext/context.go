// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; handlers and services read
// them without pulling in net/http.
package requestcontext

import (
	"context"

	"zonegate/internal/identity"
)

// Context key types (unexported for encapsulation).
type (
	identityKey  struct{}
	requestIDKey struct{}
)

// WithIdentity attaches the resolved identity snapshot for this request.
func WithIdentity(ctx context.Context, ident *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// Identity returns the resolved identity, or nil for anonymous requests.
func Identity(ctx context.Context) *identity.Identity {
	ident, ok := ctx.Value(identityKey{}).(*identity.Identity)
	if !ok {
		return nil
	}
	return ident
}

// WithRequestID attaches the correlation ID for this request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID, or "" when unset.
func RequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return requestID
}
