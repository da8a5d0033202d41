// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, authorized session for one account.
// The raw token value is only ever held by the client; the service stores a
// SHA-256 hash of it so a database leak does not expose usable credentials.
//
// Revoked is monotonic: once true it never reverts. Expiry and activity are
// derived, never stored.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	AccountID uuid.UUID // Links this session to the Account it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token value.
	ExpiresAt time.Time // The exact time when this refresh token expires.
	Revoked   bool      // True once the token has been rotated away from, logged out, or cascaded.
	CreatedAt time.Time // Timestamp of when this session was created.
}

// Expired reports whether the token's lifetime has passed at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Active reports whether the token can still be exchanged: not revoked and
// not expired.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}
