// Package store provides identity persistence behind a narrow read interface.
// The authentication core never writes identities; account creation and
// onboarding updates happen elsewhere.
package store

import (
	"context"

	"github.com/google/uuid"

	"zonegate/internal/identity"
)

// Store is the read surface the session resolver depends on.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error)
}

// Writer extends Store for implementations that also accept records, used by
// seeding and tests. Production resolution code depends on Store only.
type Writer interface {
	Store
	Save(ctx context.Context, ident *identity.Identity) error
	Delete(ctx context.Context, id uuid.UUID) error
}
