package ports

import (
	"context"
	"time"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

// SessionManager is the capability behind session issuance, validation, and
// revocation. Three interchangeable backends implement it: an ephemeral
// in-process store, a Redis-held opaque-ID store, and a self-contained signed
// token. The access gate and the auth service are identical regardless of
// which one is configured.
type SessionManager interface {
	// Issue creates a session for a verified identity and returns it together
	// with the opaque or signed reference handed to the client. Fails only on
	// storage or signing errors, wrapped in domain.ErrIssuanceFailed.
	Issue(ctx context.Context, identity *domain.Identity) (*domain.Session, string, error)

	// Validate resolves a presented reference. Read-only and safe for
	// concurrent use; every invalid outcome (absent, expired, revoked,
	// malformed, bad signature) is domain.ErrSessionInvalid.
	Validate(ctx context.Context, reference string) (*domain.Session, time.Duration, error)

	// Revoke invalidates a reference. Idempotent; revoking an unknown or
	// already-revoked reference returns nil.
	Revoke(ctx context.Context, reference string) error
}
