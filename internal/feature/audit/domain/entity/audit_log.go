// Package entity defines the domain entities for the audit feature.
package entity

import "time"

// AuditLog records a single authentication-related event.
// Entries are append-only; nothing in the system updates or deletes them.
type AuditLog struct {
	// ID is the unique identifier for the entry.
	ID uint `gorm:"primaryKey"`

	// UserID is the acting user, zero when the actor is unknown
	// (e.g. a failed login against a non-existent email).
	UserID uint `gorm:"index"`

	// Email is the email address involved in the event, when applicable.
	Email string `gorm:"size:255"`

	// Action names the event, e.g. "login.success" or "2fa.enabled".
	Action string `gorm:"size:64;index;not null"`

	// IPAddress is the client address the request came from.
	IPAddress string `gorm:"size:45"`

	// UserAgent is the client's User-Agent header.
	UserAgent string `gorm:"size:512"`

	// CreatedAt is when the event happened.
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (AuditLog) TableName() string {
	return "audit_logs"
}
