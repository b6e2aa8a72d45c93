package dto

// RefreshReq represents the request for token refresh.
type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutReq represents the optional request body for logout.
// When RefreshToken is empty, every session of the user is revoked.
type LogoutReq struct {
	RefreshToken string `json:"refresh_token"`
}
