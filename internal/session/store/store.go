// Package store holds web session records. Sessions are established by an
// external login flow; this core only reads them to resolve the caller's
// identity, keyed by the session cookie value.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WebSession is the framework-established session object for the cookie-based
// surface. It points at a user record; the identity store remains the source
// of truth for everything else.
type WebSession struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *WebSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// WebSessionStore reads (and, for the login flow, writes) session records.
type WebSessionStore interface {
	// Current returns the session for the given cookie value, or
	// sentinel.ErrNotFound when absent, or sentinel.ErrExpired when past
	// its expiry.
	Current(ctx context.Context, sessionID string) (*WebSession, error)
	Save(ctx context.Context, session *WebSession) error
	Delete(ctx context.Context, sessionID string) error
}
