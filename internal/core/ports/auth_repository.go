package ports

import (
	"context"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

// IdentityRepository is the credential store: identity records keyed by a
// case-normalized unique email. Uniqueness must be enforced atomically by the
// backing store; Create returns domain.ErrIdentityExists on a duplicate, so
// two concurrent signups for the same email yield exactly one success.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
