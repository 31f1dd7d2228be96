package service

import (
	"context"
	"errors"
	"time"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
	"github.com/sessionlab/gatekeeper/internal/core/ports"
)

// fallbackDummyHash is a valid bcrypt hash of random bytes, used only if
// generating a fresh dummy hash at construction somehow fails.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements signup, credential verification, and the session
// lifecycle on top of an identity repository and a pluggable session backend.
type AuthService struct {
	repo      ports.IdentityRepository
	sessions  ports.SessionManager
	hasher    *Hasher
	dummyHash string
}

func NewAuthService(repo ports.IdentityRepository, sessions ports.SessionManager, hasher *Hasher) *AuthService {
	if hasher == nil {
		hasher = NewHasher(0, 0)
	}
	// A real hash to compare against when the email is unknown, so that
	// "no such user" costs the same bcrypt work as "wrong password".
	dummy, err := hasher.Hash(context.Background(), "gatekeeper.dummy.credential")
	if err != nil {
		dummy = fallbackDummyHash
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		hasher:    hasher,
		dummyHash: dummy,
	}
}

// Signup registers a new identity. The email is case-normalized before
// storage; uniqueness is enforced atomically by the repository.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	return s.repo.Create(ctx, identity)
}

// Login verifies the credentials and issues a session on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	identity, err := s.verify(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	_, reference, err := s.sessions.Issue(ctx, identity)
	if err != nil {
		return "", nil, err
	}
	return reference, identity, nil
}

// Logout revokes the presented reference. Calling it with no active session
// is not an error.
func (s *AuthService) Logout(ctx context.Context, reference string) error {
	if reference == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, reference)
}

// Session validates a reference and returns the session plus remaining
// validity. The empty reference short-circuits to ErrSessionInvalid.
func (s *AuthService) Session(ctx context.Context, reference string) (*domain.Session, time.Duration, error) {
	if reference == "" {
		return nil, 0, domain.ErrSessionInvalid
	}
	return s.sessions.Validate(ctx, reference)
}

// verify looks up the identity and checks the password. Unknown email and
// wrong password are indistinguishable to the caller: both burn a bcrypt
// compare and both return ErrInvalidCredentials.
func (s *AuthService) verify(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			_, cmpErr := s.hasher.Compare(ctx, s.dummyHash, password)
			if cmpErr != nil {
				return nil, cmpErr
			}
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(ctx, identity.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return identity, nil
}
