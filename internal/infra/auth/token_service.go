// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gatekeeper/config"
	"gatekeeper/internal/domain/service"
)

// refreshTokenBytes is the entropy of a raw refresh token value before encoding.
const refreshTokenBytes = 32

// tokenService is a concrete implementation of the TokenService interface.
// Access tokens are HS256-signed JWTs; refresh tokens are opaque random
// values whose SHA-256 hash is the storage key.
type tokenService struct {
	accessSecret string
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewTokenService is the constructor for tokenService.
// It takes configuration values to create a new token service instance.
func NewTokenService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Auth == nil || cfg.Auth.AccessSecret == "" {
		return nil, errors.New("access token secret must be provided")
	}

	return &tokenService{
		accessSecret: cfg.Auth.AccessSecret,
		accessTTL:    cfg.Auth.AccessTokenTTL,
		refreshTTL:   cfg.Auth.RefreshTokenTTL,
	}, nil
}

// GenerateAccessToken creates a signed access token carrying the account's
// identity and email, and returns it with its expiry instant.
func (s *tokenService) GenerateAccessToken(accountID uuid.UUID, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := service.AccessClaims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.accessSecret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign access token")
	}

	return token, expiresAt, nil
}

// ParseAccessToken verifies an access token's signature and expiry and
// returns its claims. Only HS256 signatures are accepted.
func (s *tokenService) ParseAccessToken(token string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.accessSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse access token")
	}
	if !parsed.Valid {
		return nil, errors.New("access token is not valid")
	}

	return claims, nil
}

// GenerateRefreshToken creates a new opaque refresh token value from
// cryptographically secure randomness.
func (s *tokenService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes for refresh token")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken derives the storage key for a raw refresh token value.
func (s *tokenService) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

// AccessTokenDuration returns the configured lifetime for access tokens.
func (s *tokenService) AccessTokenDuration() time.Duration {
	return s.accessTTL
}

// RefreshTokenDuration returns the configured lifetime for refresh tokens.
func (s *tokenService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}
