package domain

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors for the authentication core. Handlers and the central HTTP
// error handler map these to status codes; everything else is treated as a
// storage or server failure.
var (
	// ErrInvalidCredentials covers every authentication failure: wrong
	// password, unknown email, missing fields at the service layer. Callers
	// must never be able to tell which one occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIdentityExists is the one deliberate exception to the generic rule:
	// signup reports duplicates specifically (409), accepting the narrower
	// enumeration surface at registration time.
	ErrIdentityExists = errors.New("identity already exists")

	// ErrIdentityNotFound is internal to the repository layer. The verifier
	// converts it to ErrInvalidCredentials before it can reach a client.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrSessionInvalid covers every invalid session outcome: absent,
	// expired, revoked, malformed, or bad signature.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrIssuanceFailed wraps storage or signing failures while creating a
	// session. Verification is a precondition, so this is never a business
	// outcome.
	ErrIssuanceFailed = errors.New("session issuance failed")
)

// Identity is a registered principal. The password hash is bcrypt output and
// is never serialized to clients or logs.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail canonicalizes an email for storage and lookup so that
// uniqueness and comparison are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Public returns the client-safe view of the identity.
func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        i.ID,
		Email:     i.Email,
		CreatedAt: i.CreatedAt,
	}
}

// PublicIdentity is the subset of Identity exposed over the API and cached by
// the client-side auth state.
type PublicIdentity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
