package domain

import "time"

// Session is one authenticated browsing period bound to an identity. The
// ephemeral in-memory backend issues sessions with a zero ExpiresAt, meaning
// no explicit expiry; every other backend sets one.
type Session struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Expired reports whether the session's explicit expiry has passed. Sessions
// without an expiry never expire passively; they end only on revocation.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Remaining returns the validity left at now, or zero for sessions without an
// explicit expiry.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Subject returns the public identity view embedded in the session, used by
// the current-session query and the client state cache.
func (s *Session) Subject() PublicIdentity {
	return PublicIdentity{ID: s.SubjectID, Email: s.Email}
}
