// Package middleware provides the per-request two-factor gate for
// sensitive routes.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/auth/usecase"
	jwtmw "shop_backend/internal/platform/jwt"
)

// HeaderTwoFactorToken carries the one-time code for 2FA-gated requests.
const HeaderTwoFactorToken = "x-2fa-token"

// TwoFactorChecker verifies a one-time code for the acting user.
// Users without 2FA enabled pass the check with no code.
type TwoFactorChecker interface {
	VerifyForRequest(ctx context.Context, userID uint, code string) error
}

// TwoFactorGate returns a middleware that enforces a valid one-time code on
// every request when the acting user has 2FA enabled. The user's 2FA state
// is re-read per request, never cached, so disabling or enabling takes
// effect immediately. It must run after AuthRequired.
func TwoFactorGate(checker TwoFactorChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(jwtmw.ContextUserID)
		code := c.GetHeader(HeaderTwoFactorToken)

		err := checker.VerifyForRequest(c.Request.Context(), userID, code)
		if err == nil {
			c.Next()
			return
		}

		switch {
		case errors.Is(err, usecase.ErrTwoFactorRequired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth.2fa_required"})
		case errors.Is(err, usecase.ErrInvalidTwoFactorCode):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth.invalid_2fa_token"})
		default:
			slog.Error("2fa gate check failed", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal.error"})
		}
	}
}
