// Package session normalizes the two client surfaces onto one identity. The
// resolver accepts either a cookie-established web session or a bearer token
// and produces a single resolution result, so downstream zone checks and the
// mobile bridge never care how the caller authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"zonegate/internal/identity"
	identitystore "zonegate/internal/identity/store"
	"zonegate/internal/session/revocation"
	sessionstore "zonegate/internal/session/store"
	"zonegate/pkg/platform/sentinel"
)

var identityLookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "zonegate_identity_lookup_duration_ms",
	Help:    "Latency of identity store lookups during session resolution in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
})

// TokenVerifier is the slice of the token service the resolver needs.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*Claims, error)
}

// Claims mirrors the verified access-token payload the resolver consumes.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// Outcome classifies a resolution result. UserNotFound is deliberately
// distinct from Unauthenticated: a verified token for a deleted account must
// surface as 404 at the boundary, not 401, so API consumers can tell "log in
// again" apart from "this account no longer exists".
type Outcome string

const (
	// OutcomeMissingCredential means no credential was presented at all
	// (no session cookie, no usable Authorization header).
	OutcomeMissingCredential Outcome = "missing_credential"
	// OutcomeUnauthenticated means a credential was presented but did not
	// hold up. The cause is never exposed.
	OutcomeUnauthenticated Outcome = "unauthenticated"
	// OutcomeUserNotFound means the credential verified but the account is
	// gone from the store.
	OutcomeUserNotFound Outcome = "user_not_found"
	// OutcomeAuthenticated carries an identity snapshot.
	OutcomeAuthenticated Outcome = "authenticated"
)

// Resolution is the normalized result of one resolve call. Identity is set
// only for OutcomeAuthenticated.
type Resolution struct {
	Outcome  Outcome
	Identity *identity.Identity
}

// Authenticated reports whether the resolution carries an identity.
func (r Resolution) Authenticated() bool {
	return r.Outcome == OutcomeAuthenticated
}

// Resolver turns inbound credentials into identity snapshots.
type Resolver struct {
	verifier TokenVerifier
	users    identitystore.Store
	sessions sessionstore.WebSessionStore
	denylist revocation.Denylist
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDenylist enables the out-of-band revocation check on the bearer path.
// Disabled when not set: tokens stay valid until natural expiry.
func WithDenylist(d revocation.Denylist) ResolverOption {
	return func(r *Resolver) {
		r.denylist = d
	}
}

// NewResolver constructs a resolver over the given collaborators.
func NewResolver(
	verifier TokenVerifier,
	users identitystore.Store,
	sessions sessionstore.WebSessionStore,
	logger *slog.Logger,
	opts ...ResolverOption,
) *Resolver {
	r := &Resolver{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

const bearerPrefix = "Bearer "

// ResolveBearer resolves the mobile surface from a raw Authorization header.
// A missing or malformed header short-circuits before any store lookup. All
// verification failures collapse to OutcomeUnauthenticated; the returned
// error is reserved for unexpected infrastructure faults.
func (r *Resolver) ResolveBearer(ctx context.Context, authHeader string) (Resolution, error) {
	token, ok := strings.CutPrefix(authHeader, bearerPrefix)
	if !ok || token == "" {
		return Resolution{Outcome: OutcomeMissingCredential}, nil
	}

	claims, err := r.verifier.VerifyAccessToken(token)
	if err != nil {
		r.logger.WarnContext(ctx, "bearer resolution failed - invalid token", "error", err)
		return Resolution{Outcome: OutcomeUnauthenticated}, nil
	}

	if r.denylist != nil {
		revoked, err := r.denylist.IsRevoked(ctx, claims.UserID)
		if err != nil {
			return Resolution{}, fmt.Errorf("check denylist: %w", err)
		}
		if revoked {
			r.logger.WarnContext(ctx, "bearer resolution failed - user revoked", "user_id", claims.UserID)
			return Resolution{Outcome: OutcomeUnauthenticated}, nil
		}
	}

	return r.loadIdentity(ctx, claims.UserID)
}

// ResolveWeb resolves the cookie surface from a session cookie value.
func (r *Resolver) ResolveWeb(ctx context.Context, sessionID string) (Resolution, error) {
	if sessionID == "" {
		return Resolution{Outcome: OutcomeMissingCredential}, nil
	}

	webSession, err := r.sessions.Current(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
		return Resolution{Outcome: OutcomeUnauthenticated}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("load web session: %w", err)
	}

	return r.loadIdentity(ctx, webSession.UserID.String())
}

func (r *Resolver) loadIdentity(ctx context.Context, rawUserID string) (Resolution, error) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		r.logger.WarnContext(ctx, "resolution failed - malformed user id in credential")
		return Resolution{Outcome: OutcomeUnauthenticated}, nil
	}

	start := time.Now()
	ident, err := r.users.FindByID(ctx, userID)
	identityLookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)

	if errors.Is(err, sentinel.ErrNotFound) {
		return Resolution{Outcome: OutcomeUserNotFound}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("load identity: %w", err)
	}

	return Resolution{Outcome: OutcomeAuthenticated, Identity: ident}, nil
}
