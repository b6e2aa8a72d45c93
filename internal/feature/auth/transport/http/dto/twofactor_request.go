package dto

// TwoFactorCodeReq represents the request body for /auth/2fa/verify and
// /auth/2fa/disable. The code is checked structurally here; cryptographic
// verification happens in the usecase.
type TwoFactorCodeReq struct {
	Token string `json:"token" binding:"required,min=4"`
}
