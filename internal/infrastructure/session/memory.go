// Package session provides the ephemeral in-process session backend: the
// simplest SessionManager, holding sessions in a mutex-guarded map. Sessions
// survive only as long as the process and carry no explicit expiry; they end
// on revocation or restart. Suitable for local development and the smallest
// deployments.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

// MemoryStore is an in-process SessionManager. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Issue creates a session with no explicit expiry. The reference is the
// session ID itself.
func (m *MemoryStore) Issue(_ context.Context, identity *domain.Identity) (*domain.Session, string, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		SubjectID: identity.ID,
		Email:     identity.Email,
		IssuedAt:  m.now().UTC(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, s.ID, nil
}

// Validate looks the reference up in the map. Absent or revoked references
// return domain.ErrSessionInvalid.
func (m *MemoryStore) Validate(_ context.Context, reference string) (*domain.Session, time.Duration, error) {
	m.mu.RLock()
	s, ok := m.sessions[reference]
	m.mu.RUnlock()

	if !ok {
		return nil, 0, domain.ErrSessionInvalid
	}

	copy := *s
	return &copy, copy.Remaining(m.now()), nil
}

// Revoke deletes the session. Deleting an absent reference is a no-op.
func (m *MemoryStore) Revoke(_ context.Context, reference string) error {
	m.mu.Lock()
	delete(m.sessions, reference)
	m.mu.Unlock()
	return nil
}
