// Package zone decides whether a request may enter one of the four mutually
// exclusive navigation zones. Evaluation is a pure function of the identity
// snapshot and the target zone; the HTTP layer performs the actual redirect.
package zone

import "zonegate/internal/identity"

// Zone names a navigation region with its own access precondition.
type Zone string

const (
	// ZoneAuth hosts login and signup pages; only anonymous callers belong here.
	ZoneAuth Zone = "AUTH"
	// ZoneOnboarding hosts the first-run flow for users that have not finished it.
	ZoneOnboarding Zone = "ONBOARDING"
	// ZoneApp is the main application surface for any authenticated user.
	ZoneApp Zone = "APP"
	// ZoneAdmin is restricted to the ADMIN role.
	ZoneAdmin Zone = "ADMIN"
)

// EntryPath returns the canonical path a redirect into this zone targets.
func (z Zone) EntryPath() string {
	switch z {
	case ZoneAuth:
		return "/login"
	case ZoneOnboarding:
		return "/onboarding"
	case ZoneAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// Decision is the allow/redirect verdict for one request against one zone.
// Decisions are computed fresh per request and never cached, since role and
// onboarding state can change between requests.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirectTo(z Zone) Decision {
	return Decision{RedirectTo: z.EntryPath()}
}

// Guard evaluates zone entry. The single deployment knob is whether the APP
// zone bounces users with unfinished onboarding back into the onboarding flow.
type Guard struct {
	enforceOnboarding bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithOnboardingEnforcement controls the APP-zone onboarding redirect. It is
// off by default: signed-in users with unfinished onboarding may still use the
// main app unless a deployment opts in.
func WithOnboardingEnforcement(enforce bool) Option {
	return func(g *Guard) {
		g.enforceOnboarding = enforce
	}
}

// NewGuard constructs a zone guard.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Evaluate maps (authenticated?, role, onboardingCompleted) to a decision for
// the target zone. Checks run in a fixed order: authenticated first, then role
// for ADMIN, then onboarding where it applies. The first failing check picks
// the redirect target, so an anonymous admin-zone request goes to the auth
// entry, never to the app.
func (g *Guard) Evaluate(z Zone, ident *identity.Identity) Decision {
	switch z {
	case ZoneAuth:
		if ident != nil {
			return redirectTo(ZoneApp)
		}
		return allow()

	case ZoneOnboarding:
		if ident == nil {
			return redirectTo(ZoneAuth)
		}
		if ident.OnboardingCompleted {
			return redirectTo(ZoneApp)
		}
		return allow()

	case ZoneApp:
		if ident == nil {
			return redirectTo(ZoneAuth)
		}
		if g.enforceOnboarding && !ident.OnboardingCompleted {
			return redirectTo(ZoneOnboarding)
		}
		return allow()

	case ZoneAdmin:
		if ident == nil {
			return redirectTo(ZoneAuth)
		}
		if !ident.IsAdmin() {
			return redirectTo(ZoneApp)
		}
		return allow()

	default:
		// Unknown zones fail closed.
		return redirectTo(ZoneAuth)
	}
}
