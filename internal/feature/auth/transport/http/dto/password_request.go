package dto

// RequestPasswordResetReq represents the request body for /auth/request-password-reset.
type RequestPasswordResetReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq represents the request body for /auth/reset-password.
type ResetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangeEmailReq represents the request body for /auth/change-email.
type ChangeEmailReq struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}
