package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"zonegate/internal/identity"
	"zonegate/pkg/platform/sentinel"
)

// InMemoryStore keeps identities in a map. It favors clarity over performance
// and backs unit tests plus single-node deployments.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]identity.Identity
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[uuid.UUID]identity.Identity)}
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		// Copy out so callers cannot mutate the stored record.
		snapshot := user
		return &snapshot, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Save(_ context.Context, ident *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[ident.ID] = *ident
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
