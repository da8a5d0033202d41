package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims defines the custom claims carried by access tokens.
type AccessClaims struct {
	AccountID uuid.UUID `json:"accountId"`
	Email     string    `json:"email"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for minting the two credential kinds:
// a signed, self-contained access token and an opaque random refresh value.
// Refresh values are stored hashed; HashToken maps a raw value to its
// storage key.
type TokenService interface {
	// GenerateAccessToken creates a signed access token for the account and
	// returns it together with its expiry instant.
	GenerateAccessToken(accountID uuid.UUID, email string) (token string, expiresAt time.Time, err error)

	// ParseAccessToken verifies an access token's signature and expiry and
	// returns its claims.
	ParseAccessToken(token string) (*AccessClaims, error)

	// GenerateRefreshToken creates a new opaque refresh token value.
	GenerateRefreshToken() (string, error)

	// HashToken derives the storage key for a raw refresh token value.
	HashToken(raw string) string

	// AccessTokenDuration returns the configured lifetime for access tokens.
	AccessTokenDuration() time.Duration

	// RefreshTokenDuration returns the configured lifetime for refresh tokens.
	RefreshTokenDuration() time.Duration
}
