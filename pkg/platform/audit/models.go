// Package audit captures security-relevant actions of the authentication
// core. Events are emitted from domain logic and kept transport-agnostic so
// stores and sinks can fan out.
package audit

import (
	"context"
	"time"
)

// Event records one security-relevant action.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Action    Action    `json:"action"`
	// Subject names what was acted on (a zone, a token purpose).
	Subject string `json:"subject,omitempty"`
	// Detail carries a short free-form addition, e.g. a redirect target.
	Detail string `json:"detail,omitempty"`
	// RequestID correlates the event with request logs.
	RequestID string `json:"request_id,omitempty"`
}

// Action enumerates the audited actions.
type Action string

const (
	ActionTokenIssued     Action = "token_issued"
	ActionTokenRefreshed  Action = "token_refreshed"
	ActionAuthFailed      Action = "auth_failed"
	ActionSessionAccessed Action = "session_accessed"
	ActionZoneRedirected  Action = "zone_redirected"
)

// Publisher accepts events. Implementations must be safe for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}
