package usecase

import (
	"context"

	"github.com/google/uuid"
)

// UpdateProfileInput defines the mutable profile fields. Nil pointers leave
// the corresponding field untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// AccountStats aggregates account counts for operational insight.
type AccountStats struct {
	TotalAccounts      int
	ActiveAccounts     int
	InactiveAccounts   int
	RegisteredLastWeek int
}

// AccountUsecase defines the interface for account state operations.
type AccountUsecase interface {
	// GetProfile returns the public projection of an active account.
	GetProfile(ctx context.Context, accountID uuid.UUID) (*Profile, error)

	// UpdateProfile applies partial changes to an active account's profile.
	// Email changes are re-checked for uniqueness across all accounts.
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input *UpdateProfileInput) (*Profile, error)

	// ListAccounts returns the public projections of all active accounts.
	ListAccounts(ctx context.Context) ([]*Profile, error)

	// Deactivate soft-deletes the account and revokes every refresh token it
	// owns in one atomic unit of work.
	Deactivate(ctx context.Context, accountID uuid.UUID) error

	// GetStats returns aggregate account counts.
	GetStats(ctx context.Context) (*AccountStats, error)
}
