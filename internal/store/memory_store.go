package store

import (
	"context"
	"sync"

	"github.com/spec-kit/revdup-client/internal/domain"
	"github.com/spec-kit/revdup-client/pkg/util"
)

// MemoryStore is an in-process SessionStore, used by tests and as a sink when
// durability is explicitly not wanted.
type MemoryStore struct {
	watchHub

	mu      sync.Mutex
	session domain.Session
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *MemoryStore) Write(ctx context.Context, token string, role domain.Role) error {
	if token == "" || role == "" {
		return util.NewValidationError("token and role must both be set", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = domain.Session{Token: token, Role: role}
	s.mu.Unlock()

	s.publish(domain.Session{Token: token, Role: role})
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	s.publish(domain.Session{})
	return nil
}
