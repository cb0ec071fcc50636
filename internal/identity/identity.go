// Package identity defines the user identity snapshot consumed by the
// resolver and zone guard. The store is the sole owner of identity state;
// this core only ever reads it.
package identity

import "github.com/google/uuid"

// Role is the coarse authorization level attached to an identity.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is an immutable per-request snapshot of a user record. Name and
// Image are nullable by contract; OnboardingCompleted is mandatory so callers
// never probe for field presence.
type Identity struct {
	ID                  uuid.UUID
	Email               string
	Name                *string
	Image               *string
	Role                Role
	OnboardingCompleted bool
}

// IsAdmin reports whether the identity may enter the admin zone.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
