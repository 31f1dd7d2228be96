package token

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[tokenID]
	return ok, nil
}

func newTestManager(t *testing.T, denylist Revoker) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", time.Hour, denylist)
	if err != nil {
		t.Fatalf("manager setup failed: %v", err)
	}
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager("", time.Hour, nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestManager_RoundTrip(t *testing.T) {
	m := newTestManager(t, nil)
	identity := &domain.Identity{ID: "id-1", Email: "a@x.com"}

	sess, reference, err := m.Issue(context.Background(), identity)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if reference == "" || reference == sess.ID {
		t.Fatalf("reference should be the signed token, not the session ID")
	}

	got, remaining, err := m.Validate(context.Background(), reference)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got.SubjectID != "id-1" || got.Email != "a@x.com" || got.ID != sess.ID {
		t.Fatalf("unexpected session: %+v", got)
	}
	if remaining <= 0 || remaining > time.Hour {
		t.Fatalf("unexpected remaining validity: %v", remaining)
	}
}

// A well-formed, correctly signed token is still invalid once its expiry has
// passed.
func TestManager_Expired(t *testing.T) {
	m := newTestManager(t, nil)

	_, reference, err := m.Issue(context.Background(), &domain.Identity{ID: "id-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, _, err := m.Validate(context.Background(), reference); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}
}

func TestManager_TamperedSignature(t *testing.T) {
	m := newTestManager(t, nil)

	_, reference, err := m.Issue(context.Background(), &domain.Identity{ID: "id-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(reference, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, _, err := m.Validate(context.Background(), tampered); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected tampered token to be invalid, got %v", err)
	}
}

func TestManager_WrongSecret(t *testing.T) {
	other, err := NewManager("other-secret", time.Hour, nil)
	if err != nil {
		t.Fatalf("manager setup failed: %v", err)
	}
	_, reference, err := other.Issue(context.Background(), &domain.Identity{ID: "id-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	m := newTestManager(t, nil)
	if _, _, err := m.Validate(context.Background(), reference); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected foreign token to be invalid, got %v", err)
	}
}

func TestManager_RejectsUnexpectedAlg(t *testing.T) {
	m := newTestManager(t, nil)

	// Signed with the right secret but HS384. The validator pins HS256.
	t384 := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.RegisteredClaims{
		ID:        "jti-1",
		Subject:   "id-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := t384.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, _, err := m.Validate(context.Background(), signed); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected HS384 token to be invalid, got %v", err)
	}
}

func TestManager_Malformed(t *testing.T) {
	m := newTestManager(t, nil)

	for _, ref := range []string{"not-a-token", "a.b.c", ""} {
		if _, _, err := m.Validate(context.Background(), ref); !errors.Is(err, domain.ErrSessionInvalid) {
			t.Fatalf("expected %q to be invalid, got %v", ref, err)
		}
	}
}

func TestManager_DenylistRevocation(t *testing.T) {
	dl := newFakeRevoker()
	m := newTestManager(t, dl)

	sess, reference, err := m.Issue(context.Background(), &domain.Identity{ID: "id-1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, _, err := m.Validate(context.Background(), reference); err != nil {
		t.Fatalf("validate before revoke failed: %v", err)
	}

	if err := m.Revoke(context.Background(), reference); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if ttl, ok := dl.revoked[sess.ID]; !ok || ttl <= 0 {
		t.Fatalf("expected denylist entry with positive TTL, got %v (present=%v)", ttl, ok)
	}

	if _, _, err := m.Validate(context.Background(), reference); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected revoked token to be invalid, got %v", err)
	}

	// Revoking again is a no-op, not an error.
	if err := m.Revoke(context.Background(), reference); err != nil {
		t.Fatalf("second revoke errored: %v", err)
	}
}

// Without a denylist revocation is a documented no-op; an invalid reference
// is also not an error, keeping logout idempotent everywhere.
func TestManager_RevokeWithoutDenylist(t *testing.T) {
	m := newTestManager(t, nil)

	if err := m.Revoke(context.Background(), "garbage"); err != nil {
		t.Fatalf("revoke errored: %v", err)
	}

	m2 := newTestManager(t, newFakeRevoker())
	if err := m2.Revoke(context.Background(), "garbage"); err != nil {
		t.Fatalf("revoke of malformed reference errored: %v", err)
	}
}
