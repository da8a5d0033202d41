// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"gatekeeper/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines the interface for refresh token lifecycle operations.
//
// Revocation is expressed as conditional state transitions rather than
// read-then-write: MarkRevoked only flips a token that is still unrevoked and
// reports whether this call was the one that flipped it. Combined with a
// surrounding transaction this gives rotation its at-most-one-winner
// guarantee.
type RefreshTokenRepository interface {
	// Create persists a new refresh token, representing a session.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash retrieves a refresh token record by its securely stored hash,
	// regardless of revocation or expiry state.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindByAccountID retrieves all refresh tokens for an account, newest first.
	FindByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.RefreshToken, error)

	// MarkRevoked atomically flips revoked from false to true for the token
	// with the given hash. It returns true if this call performed the
	// transition, false if the token was already revoked. A missing token
	// yields ErrRefreshTokenNotFound.
	MarkRevoked(ctx context.Context, tokenHash string) (bool, error)

	// RevokeAllByAccountID marks every unrevoked token of the account as
	// revoked and returns the number of tokens affected.
	RevokeAllByAccountID(ctx context.Context, accountID uuid.UUID) (int, error)

	// DeleteExpired removes tokens whose expiry has passed. Revocation state
	// is irrelevant once a token has expired; this is storage hygiene only.
	DeleteExpired(ctx context.Context) (int, error)

	// CountActiveByAccountID returns the number of unrevoked, unexpired tokens
	// owned by the account.
	CountActiveByAccountID(ctx context.Context, accountID uuid.UUID) (int, error)
}
