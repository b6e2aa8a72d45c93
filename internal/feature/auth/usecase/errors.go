// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when the email, password, or account
	// state does not allow a login. Unknown email, wrong password, and
	// deactivated account all map here to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")

	// ErrInvalidRefreshToken is returned when a refresh token is invalid or malformed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrTwoFactorRequired is returned at login when the account has 2FA
	// enabled and no code was supplied.
	ErrTwoFactorRequired = errors.New("two-factor code required")

	// ErrInvalidTwoFactorCode is returned when a supplied TOTP code fails
	// verification or has already been consumed in its window.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// ErrTwoFactorNotSetup is returned when a 2FA operation needs a
	// provisioned secret and the user has none.
	ErrTwoFactorNotSetup = errors.New("two-factor authentication is not set up")

	// ErrTwoFactorNotEnabled is returned when disabling 2FA on an account
	// that never completed enrollment.
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")

	// ErrResetTokenNotFound is returned when a password reset token is
	// unknown, expired, or already consumed.
	ErrResetTokenNotFound = errors.New("reset token not found")
)
