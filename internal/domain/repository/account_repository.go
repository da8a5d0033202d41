// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"gatekeeper/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAccountNotFound is a domain-specific error returned when an account is not found.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// The application layer will depend on this interface, not the concrete implementation.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by email, matched case-insensitively.
	// Inactive accounts are included: email uniqueness spans deactivated rows too.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindActiveByEmail retrieves an active account by email, matched case-insensitively.
	FindActiveByEmail(ctx context.Context, email string) (*entity.Account, error)

	// ListActive retrieves all active accounts ordered by creation time.
	ListActive(ctx context.Context) ([]*entity.Account, error)

	// Create persists a new account entity to the storage.
	Create(ctx context.Context, account *entity.Account) error

	// Update modifies an existing account entity in the storage.
	Update(ctx context.Context, account *entity.Account) error

	// CountByActive returns the number of accounts with the given active state.
	CountByActive(ctx context.Context, active bool) (int, error)

	// CountCreatedSince returns the number of accounts created at or after the given time.
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}
