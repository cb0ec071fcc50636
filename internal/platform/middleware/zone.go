package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"zonegate/internal/platform/metrics"
	"zonegate/internal/session"
	"zonegate/internal/zone"
	"zonegate/pkg/platform/audit"
	dErrors "zonegate/pkg/domain-errors"
	"zonegate/pkg/platform/httputil"
	"zonegate/pkg/requestcontext"
)

// SessionCookieName is the cookie carrying the web session ID, written by the
// external login flow.
const SessionCookieName = "zonegate_session"

// WebResolver is the slice of the session resolver the zone gate needs.
type WebResolver interface {
	ResolveWeb(ctx context.Context, sessionID string) (session.Resolution, error)
}

// ZoneGate computes a guard decision per request and performs the redirect
// the decision calls for. The guard itself stays pure; this is the
// collaborator surface that turns decisions into HTTP.
type ZoneGate struct {
	guard    *zone.Guard
	resolver WebResolver
	metrics  *metrics.Metrics
	audit    audit.Publisher
	logger   *slog.Logger
}

// ZoneGateOption configures a ZoneGate.
type ZoneGateOption func(*ZoneGate)

// WithAudit attaches an audit publisher for redirected requests.
func WithAudit(pub audit.Publisher) ZoneGateOption {
	return func(z *ZoneGate) {
		z.audit = pub
	}
}

// NewZoneGate constructs the gate middleware.
func NewZoneGate(guard *zone.Guard, resolver WebResolver, m *metrics.Metrics, logger *slog.Logger, opts ...ZoneGateOption) *ZoneGate {
	z := &ZoneGate{
		guard:    guard,
		resolver: resolver,
		metrics:  m,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(z)
		}
	}
	return z
}

// Require gates every request behind the target zone's precondition. Allowed
// requests proceed with the resolved identity (possibly nil) on the context;
// everything else is redirected to the entry path the guard picked. Decisions
// are computed fresh on every request.
func (z *ZoneGate) Require(target zone.Zone) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				sessionID = cookie.Value
			}

			res, err := z.resolver.ResolveWeb(ctx, sessionID)
			if err != nil {
				z.logger.ErrorContext(ctx, "zone gate resolution failed",
					"error", err,
					"zone", string(target),
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve session"))
				return
			}

			// UserNotFound on the web surface degrades to anonymous: the
			// stale cookie points at a deleted account, so gate the
			// request as unauthenticated.
			var ident = res.Identity

			decision := z.guard.Evaluate(target, ident)
			if decision.Allow {
				z.metrics.IncrementGuardDecision(string(target), "allow")
				next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, ident)))
				return
			}

			z.metrics.IncrementGuardDecision(string(target), "redirect")
			if z.audit != nil {
				event := audit.Event{
					Action:    audit.ActionZoneRedirected,
					Subject:   string(target),
					Detail:    decision.RedirectTo,
					RequestID: requestcontext.RequestID(ctx),
				}
				if ident != nil {
					event.UserID = ident.ID.String()
				}
				if err := z.audit.Emit(ctx, event); err != nil {
					z.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
				}
			}

			http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
		})
	}
}
