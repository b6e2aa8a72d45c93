package usecase

import (
	"context"
	"time"

	"shop_backend/internal/feature/auth/domain/entity"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user to the storage.
	// It returns ErrEmailAlreadyExists if the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a user matching the specified email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user matching the specified ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// UpdatePassword replaces the stored password hash in a single statement.
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error

	// UpdateEmail replaces the stored email address.
	// It returns ErrEmailAlreadyExists if the email is taken.
	UpdateEmail(ctx context.Context, id uint, email string) error

	// SetPendingTwoFactorSecret stores a freshly generated TOTP secret
	// without enabling two-factor authentication.
	SetPendingTwoFactorSecret(ctx context.Context, id uint, secret string) error

	// EnableTwoFactor flips the enabled flag for a user that has a pending
	// secret. Implementations must do this in a single statement.
	EnableTwoFactor(ctx context.Context, id uint) error

	// DisableTwoFactor clears the secret and the enabled flag together, in
	// a single statement.
	DisableTwoFactor(ctx context.Context, id uint) error
}

// SessionRepository abstracts the persistence layer for session entities.
type SessionRepository interface {
	// Create persists a new session to the storage.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its ID (refresh token value).
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindByUserID retrieves all active sessions for a given user.
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error)

	// Revoke marks a session as revoked by setting RevokedAt.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID revokes all sessions for a given user.
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired removes all expired sessions from storage.
	// Returns the number of deleted sessions.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID returns the number of active sessions for a user.
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID deletes the oldest session for a user.
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}

// ResetTokenRepository stores single-use password reset tokens.
// Tokens are stored hashed; the plaintext value only travels by email.
type ResetTokenRepository interface {
	// Store saves a reset token hash for a user with a time-to-live.
	Store(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error

	// Consume resolves a token hash to a user ID and deletes it atomically,
	// so a token can be redeemed exactly once. Returns ErrResetTokenNotFound
	// for unknown, expired, or already-consumed tokens.
	Consume(ctx context.Context, tokenHash string) (uint, error)
}

// ReplayGuard tracks TOTP codes that were already accepted, so a code
// cannot be redeemed twice within its validity window.
type ReplayGuard interface {
	// TryConsume records the code as used and reports whether it was fresh.
	// Implementations should fail open: if the guard's backing store is
	// unavailable, the code is treated as fresh.
	TryConsume(ctx context.Context, userID uint, code string) bool
}
