// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"gatekeeper/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginInput defines the data required for an account holder to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// Profile is the public, read-only projection of an account.
// It deliberately omits the password hash and the active flag.
type Profile struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
}

// ProfileFromAccount builds the public projection of an account entity.
func ProfileFromAccount(account *entity.Account) *Profile {
	if account == nil {
		return nil
	}

	return &Profile{
		ID:        account.ID,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

// Session is the credential pair handed to a client after registration,
// login, or rotation. RefreshToken carries the raw opaque value; this is the
// only time it exists outside the client.
type Session struct {
	AccessToken          string
	AccessTokenExpiresAt time.Time
	RefreshToken         string
	Profile              *Profile
}

// AuthUsecase defines the interface for credential lifecycle operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Register creates a new active account and issues its first session.
	Register(ctx context.Context, input *RegisterInput) (*Session, error)

	// Login verifies credentials, invalidates every pre-existing session of
	// the account, and issues a fresh one.
	Login(ctx context.Context, input *LoginInput) (*Session, error)

	// Rotate exchanges a still-active refresh token for a new session,
	// revoking the presented token in the same transaction.
	Rotate(ctx context.Context, refreshToken string) (*Session, error)

	// Revoke terminates the session identified by the refresh token.
	// Revoking an already-revoked token succeeds without effect.
	Revoke(ctx context.Context, refreshToken string) error
}
