package zone

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"zonegate/internal/identity"
)

func ident(role identity.Role, onboarded bool) *identity.Identity {
	return &identity.Identity{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		Role:                role,
		OnboardingCompleted: onboarded,
	}
}

// TestEvaluate_Table exhaustively checks every (authenticated, role,
// onboardingCompleted) combination against every zone with the default guard.
func TestEvaluate_Table(t *testing.T) {
	guard := NewGuard()

	type input struct {
		authenticated bool
		role          identity.Role
		onboarded     bool
	}
	inputs := []input{}
	for _, authenticated := range []bool{true, false} {
		for _, role := range []identity.Role{identity.RoleUser, identity.RoleAdmin} {
			for _, onboarded := range []bool{true, false} {
				inputs = append(inputs, input{authenticated, role, onboarded})
			}
		}
	}

	expect := func(in input, z Zone) Decision {
		switch z {
		case ZoneAuth:
			if in.authenticated {
				return Decision{RedirectTo: "/"}
			}
			return Decision{Allow: true}
		case ZoneOnboarding:
			if !in.authenticated {
				return Decision{RedirectTo: "/login"}
			}
			if in.onboarded {
				return Decision{RedirectTo: "/"}
			}
			return Decision{Allow: true}
		case ZoneApp:
			if !in.authenticated {
				return Decision{RedirectTo: "/login"}
			}
			return Decision{Allow: true}
		case ZoneAdmin:
			if !in.authenticated {
				return Decision{RedirectTo: "/login"}
			}
			if in.role != identity.RoleAdmin {
				return Decision{RedirectTo: "/"}
			}
			return Decision{Allow: true}
		}
		t.Fatalf("unexpected zone %s", z)
		return Decision{}
	}

	for _, z := range []Zone{ZoneAuth, ZoneOnboarding, ZoneApp, ZoneAdmin} {
		for _, in := range inputs {
			name := fmt.Sprintf("%s/auth=%t/role=%s/onboarded=%t", z, in.authenticated, in.role, in.onboarded)
			t.Run(name, func(t *testing.T) {
				var who *identity.Identity
				if in.authenticated {
					who = ident(in.role, in.onboarded)
				}
				assert.Equal(t, expect(in, z), guard.Evaluate(z, who))
			})
		}
	}
}

func TestEvaluate_AnonymousAdminRequestRedirectsToAuth(t *testing.T) {
	// The authenticated check runs before the role check, so an anonymous
	// caller lands on the auth entry, never the app.
	d := NewGuard().Evaluate(ZoneAdmin, nil)
	assert.False(t, d.Allow)
	assert.Equal(t, "/login", d.RedirectTo)
}

func TestEvaluate_OnboardingEnforcement(t *testing.T) {
	enforcing := NewGuard(WithOnboardingEnforcement(true))

	t.Run("unfinished onboarding redirects out of app", func(t *testing.T) {
		d := enforcing.Evaluate(ZoneApp, ident(identity.RoleUser, false))
		assert.Equal(t, Decision{RedirectTo: "/onboarding"}, d)
	})

	t.Run("finished onboarding enters app", func(t *testing.T) {
		d := enforcing.Evaluate(ZoneApp, ident(identity.RoleUser, true))
		assert.Equal(t, Decision{Allow: true}, d)
	})

	t.Run("anonymous check still wins", func(t *testing.T) {
		d := enforcing.Evaluate(ZoneApp, nil)
		assert.Equal(t, Decision{RedirectTo: "/login"}, d)
	})
}

func TestEvaluate_Idempotent(t *testing.T) {
	guard := NewGuard()
	who := ident(identity.RoleAdmin, true)

	first := guard.Evaluate(ZoneAdmin, who)
	second := guard.Evaluate(ZoneAdmin, who)
	assert.Equal(t, first, second)
}

func TestEvaluate_UnknownZoneFailsClosed(t *testing.T) {
	d := NewGuard().Evaluate(Zone("BOGUS"), ident(identity.RoleAdmin, true))
	assert.False(t, d.Allow)
	assert.Equal(t, "/login", d.RedirectTo)
}
