// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Roles assignable to a user. Route-level authorization compares against
// these values.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a registered user in the system.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Name is the display name supplied at registration.
	Name string `gorm:"size:255"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users and is stored lowercased.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// Role determines which routes the user may access (USER or ADMIN).
	Role string `gorm:"size:32;not null;default:USER"`

	// IsActive marks whether the account may log in. Inactive accounts
	// are rejected with the same error as bad credentials.
	IsActive bool `gorm:"not null;default:true"`

	// TwoFactorEnabled marks whether TOTP verification is required at login.
	// It is only set after a successful confirmation of the secret.
	TwoFactorEnabled bool `gorm:"not null;default:false"`

	// TwoFactorSecret is the base32 TOTP shared secret. Empty means no
	// secret has been provisioned. A secret may exist while enabled is
	// still false (pending confirmation).
	TwoFactorSecret string `gorm:"size:64"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
