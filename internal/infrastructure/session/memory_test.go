package session

import (
	"context"
	"errors"
	"testing"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

func TestMemoryStore_IssueValidateRevoke(t *testing.T) {
	store := NewMemoryStore()
	identity := &domain.Identity{ID: "id-1", Email: "a@x.com"}

	sess, ref, err := store.Issue(context.Background(), identity)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if ref == "" || ref != sess.ID {
		t.Fatalf("reference should be the session ID, got %q", ref)
	}
	if !sess.ExpiresAt.IsZero() {
		t.Fatalf("ephemeral sessions carry no explicit expiry")
	}

	got, remaining, err := store.Validate(context.Background(), ref)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got.SubjectID != "id-1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if remaining != 0 {
		t.Fatalf("no-expiry session should report zero remaining, got %v", remaining)
	}

	if err := store.Revoke(context.Background(), ref); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, _, err := store.Validate(context.Background(), ref); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after revoke, got %v", err)
	}
	// Revoked stays revoked.
	if _, _, err := store.Validate(context.Background(), ref); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("revoked session resurrected")
	}
}

func TestMemoryStore_RevokeIdempotent(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Revoke(context.Background(), "never-issued"); err != nil {
		t.Fatalf("revoke of unknown reference errored: %v", err)
	}
	if err := store.Revoke(context.Background(), "never-issued"); err != nil {
		t.Fatalf("second revoke errored: %v", err)
	}
}

func TestMemoryStore_UnknownReference(t *testing.T) {
	store := NewMemoryStore()

	if _, _, err := store.Validate(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestMemoryStore_IndependentSessions(t *testing.T) {
	store := NewMemoryStore()
	identity := &domain.Identity{ID: "id-1", Email: "a@x.com"}

	_, ref1, _ := store.Issue(context.Background(), identity)
	_, ref2, _ := store.Issue(context.Background(), identity)
	if ref1 == ref2 {
		t.Fatalf("expected distinct references for concurrent logins")
	}

	_ = store.Revoke(context.Background(), ref1)
	if _, _, err := store.Validate(context.Background(), ref2); err != nil {
		t.Fatalf("revoking one session invalidated another: %v", err)
	}
}
