// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the core entity in the system, representing a registered person.
// The password hash lives here because email/password is the only credential
// type the service supports; it must never leave the service through a
// profile projection.
type Account struct {
	ID           uuid.UUID // The unique identifier for the account, generated by the database.
	FirstName    string    // The account holder's given name.
	LastName     string    // The account holder's family name.
	Email        string    // Login identifier; stored lowercased and trimmed, unique across all accounts.
	PasswordHash string    // bcrypt hash of the account's password.
	IsActive     bool      // False once the account has been deactivated (soft delete).
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this account.
}

// FullName returns the display name composed from the stored name parts.
func (a *Account) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}

	return a.FirstName + " " + a.LastName
}
