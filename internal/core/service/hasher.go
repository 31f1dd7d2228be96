package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const defaultHashSlots = 8

// Hasher runs bcrypt work through a bounded semaphore so a burst of logins or
// signups cannot monopolize CPU and starve unrelated requests. Acquisition
// respects the caller's deadline: a cancelled request never leaves work
// queued behind it.
type Hasher struct {
	cost int
	sem  chan struct{}
}

// NewHasher creates a Hasher with the given bcrypt cost and at most
// maxConcurrent hashes in flight. Out-of-range values fall back to
// bcrypt.DefaultCost and defaultHashSlots.
func NewHasher(cost, maxConcurrent int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultHashSlots
	}
	return &Hasher{
		cost: cost,
		sem:  make(chan struct{}, maxConcurrent),
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.sem
}

// Hash produces a bcrypt hash of the plaintext password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare recomputes the hash of password with the salt and parameters
// embedded in hash and reports whether they match. The error return is
// reserved for cancellation; a plain mismatch is (false, nil).
func (h *Hasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Malformed stored hash. Treated as a mismatch rather than surfaced:
	// the caller must not distinguish failure causes.
	return false, nil
}
