// Package revocation closes the stateless-token gap for deployments that need
// it: verified access-token claims are checked against a denylist keyed by
// user ID before being trusted. The base design leaves tokens valid until
// natural expiry, so wiring a denylist is an explicit opt-in.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Denylist answers whether a user's tokens have been revoked out-of-band.
type Denylist interface {
	IsRevoked(ctx context.Context, userID string) (bool, error)
	Revoke(ctx context.Context, userID string, ttl time.Duration) error
}

// InMemoryDenylist backs tests and single-node deployments.
type InMemoryDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   func() time.Time
}

// InMemoryOption configures an InMemoryDenylist.
type InMemoryOption func(*InMemoryDenylist)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(d *InMemoryDenylist) {
		if clock != nil {
			d.clock = clock
		}
	}
}

func NewInMemory(opts ...InMemoryOption) *InMemoryDenylist {
	d := &InMemoryDenylist{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *InMemoryDenylist) Revoke(_ context.Context, userID string, ttl time.Duration) error {
	if userID == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[userID] = d.clock().Add(ttl)
	return nil
}

func (d *InMemoryDenylist) IsRevoked(_ context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	d.mu.RLock()
	until, ok := d.revoked[userID]
	d.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if d.clock().After(until) {
		d.mu.Lock()
		delete(d.revoked, userID)
		d.mu.Unlock()
		return false, nil
	}
	return true, nil
}
