package dto

import "time"

// ErrorResponse is the error envelope returned by every handler.
// Error carries a translatable message key, never an internal error string.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the generic acknowledgment envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenRes represents the response for a successful login or token refresh.
type TokenRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserRes represents the public view of a user. It never carries the
// password hash or the TOTP secret.
type UserRes struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// TwoFactorSetupRes represents the response for /auth/2fa/setup.
type TwoFactorSetupRes struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"`
}
