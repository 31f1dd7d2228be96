package ports

import (
	"context"
	"time"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

type AuthService interface {
	// Signup creates a new identity. Returns domain.ErrIdentityExists for a
	// duplicate email and domain.ErrInvalidCredentials for unusable input.
	Signup(ctx context.Context, email, password string) (*domain.Identity, error)

	// Login verifies credentials and issues a session, returning the session
	// reference the client presents on subsequent requests. Every failure to
	// authenticate is domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.Identity, error)

	// Logout revokes the presented session reference. Idempotent: an absent,
	// expired, or already-revoked reference is not an error.
	Logout(ctx context.Context, reference string) error

	// Session validates a reference and returns the bound session plus its
	// remaining validity. Invalid references return domain.ErrSessionInvalid.
	Session(ctx context.Context, reference string) (*domain.Session, time.Duration, error)
}
