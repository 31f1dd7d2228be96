package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sessionlab/gatekeeper/internal/core/domain"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 24 * time.Hour
)

// SessionStore is the server-held session backend: opaque session IDs mapped
// to JSON session records in Redis with a TTL. Validation is a store lookup;
// revocation deletes the record, taking effect immediately.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore wraps the given Redis client. A non-positive ttl falls back
// to defaultSessionTTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

func (s *SessionStore) key(id string) string {
	return sessionKeyPrefix + id
}

// Issue stores a new session record under a random ID and returns that ID as
// the client-facing reference. Redis expires the key at the session expiry.
func (s *SessionStore) Issue(ctx context.Context, identity *domain.Identity) (*domain.Session, string, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		SubjectID: identity.ID,
		Email:     identity.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, "", fmt.Errorf("%w: encode session: %v", domain.ErrIssuanceFailed, err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), payload, s.ttl).Err(); err != nil {
		return nil, "", fmt.Errorf("%w: store session: %v", domain.ErrIssuanceFailed, err)
	}
	return sess, sess.ID, nil
}

// Validate looks the reference up. A missing key (never issued, expired, or
// revoked) and a past-expiry record both return domain.ErrSessionInvalid;
// only store unavailability surfaces as a distinct error.
func (s *SessionStore) Validate(ctx context.Context, reference string) (*domain.Session, time.Duration, error) {
	payload, err := s.client.Get(ctx, s.key(reference)).Bytes()
	if err == redis.Nil {
		return nil, 0, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, 0, fmt.Errorf("session lookup: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, 0, domain.ErrSessionInvalid
	}

	now := s.now()
	if sess.Expired(now) {
		return nil, 0, domain.ErrSessionInvalid
	}
	return &sess, sess.Remaining(now), nil
}

// Revoke deletes the session record. DEL on an absent key is a no-op, which
// makes revocation idempotent.
func (s *SessionStore) Revoke(ctx context.Context, reference string) error {
	if err := s.client.Del(ctx, s.key(reference)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
