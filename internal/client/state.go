package client

import (
	"context"
	"sync"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

// AuthState is the client-side cache of "am I logged in, as whom". It exists
// so UI gating does not need a server round trip on every render; it is never
// authoritative, the server gate decides actual access. Construct one per
// running client, Refresh once at startup, and discard it on shutdown.
type AuthState struct {
	client *Client

	mu       sync.RWMutex
	loggedIn bool
	identity *domain.PublicIdentity
}

func NewAuthState(c *Client) *AuthState {
	return &AuthState{client: c}
}

// Refresh queries the server's current-session endpoint and replaces the
// cached tuple with the authoritative answer.
func (s *AuthState) Refresh(ctx context.Context) error {
	loggedIn, identity, err := s.client.Session(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.loggedIn = loggedIn
	s.identity = identity
	s.mu.Unlock()
	return nil
}

// Login authenticates through the underlying client and updates the cache
// synchronously with the issuance, so the UI never observes a logged-in
// session with a stale cache.
func (s *AuthState) Login(ctx context.Context, email, password string) error {
	identity, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.OnLogin(identity)
	return nil
}

// Logout revokes the session and clears the cache. Idempotent, like the
// server-side operation it wraps.
func (s *AuthState) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		return err
	}
	s.OnLogout()
	return nil
}

// OnLogin records a successful login in the cache.
func (s *AuthState) OnLogin(identity *domain.PublicIdentity) {
	s.mu.Lock()
	s.loggedIn = true
	s.identity = identity
	s.mu.Unlock()
}

// OnLogout clears the cache.
func (s *AuthState) OnLogout() {
	s.mu.Lock()
	s.loggedIn = false
	s.identity = nil
	s.mu.Unlock()
}

// Current returns the cached tuple. Display purposes only.
func (s *AuthState) Current() (bool, *domain.PublicIdentity) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn, s.identity
}
