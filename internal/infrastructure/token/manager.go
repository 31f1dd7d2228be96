// Package token implements the self-contained session backend: an HS256
// signed JWT carrying the subject, issue time, and expiry. Validation needs
// only the signing secret, no store round trip; revocation-before-expiry
// requires the optional denylist.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Revoker records revoked token IDs until their natural expiry. Typically the
// Redis denylist; nil disables revocation-before-expiry, in which case logout
// relies on the client discarding its reference.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager issues and validates signed session tokens.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	denylist Revoker
	now      func() time.Time
}

// NewManager builds a Manager. An empty secret is a configuration failure:
// the service must not start accepting unsigned or unverifiable sessions.
func NewManager(secret string, ttl time.Duration, denylist Revoker) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: denylist,
		now:      time.Now,
	}, nil
}

// Issue signs a token for the identity. The token ID doubles as the session
// ID and as the denylist key on revocation.
func (m *Manager) Issue(_ context.Context, identity *domain.Identity) (*domain.Session, string, error) {
	now := m.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		SubjectID: identity.ID,
		Email:     identity.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.SubjectID,
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("%w: sign token: %v", domain.ErrIssuanceFailed, err)
	}
	return sess, signed, nil
}

// Validate checks signature and expiry, then the denylist when one is
// configured. Signature failure, malformed payload, and expiry all collapse
// into domain.ErrSessionInvalid.
func (m *Manager) Validate(ctx context.Context, reference string) (*domain.Session, time.Duration, error) {
	c, err := m.parse(reference)
	if err != nil {
		return nil, 0, domain.ErrSessionInvalid
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(ctx, c.ID)
		if err != nil {
			return nil, 0, err
		}
		if revoked {
			return nil, 0, domain.ErrSessionInvalid
		}
	}

	sess := &domain.Session{
		ID:        c.ID,
		SubjectID: c.Subject,
		Email:     c.Email,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}
	return sess, sess.Remaining(m.now()), nil
}

// Revoke denylists the token until its natural expiry. Without a denylist it
// is a no-op; either way an invalid or already-expired reference returns nil,
// keeping logout idempotent.
func (m *Manager) Revoke(ctx context.Context, reference string) error {
	if m.denylist == nil {
		return nil
	}

	c, err := m.parse(reference)
	if err != nil {
		return nil
	}

	remaining := c.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	return m.denylist.Revoke(ctx, c.ID, remaining)
}

// parse verifies the signature (pinned to HS256) and the registered claims.
func (m *Manager) parse(reference string) (*claims, error) {
	c := &claims{}
	tkn, err := jwt.ParseWithClaims(reference, c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrSessionInvalid
	}
	if c.Subject == "" || c.ID == "" || c.IssuedAt == nil || c.ExpiresAt == nil {
		return nil, domain.ErrSessionInvalid
	}
	return c, nil
}
