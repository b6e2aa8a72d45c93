// Package jwtmw provides JWT token issuance, verification, and the gin
// middleware that gates authenticated routes.
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired for downstream handlers.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth.token_required"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. Parse and verify JWT signature
		claims, err := verifier.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth.token_invalid"})
			return
		}

		// 3. Attach resolved identity to the request context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)

		// 4. Pass control to the next handler
		c.Next()
	}
}

// RoleRequired returns a middleware that rejects requests whose resolved
// role does not match the required one. It must run after AuthRequired.
func RoleRequired(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := c.Get(ContextUserRole)
		if !ok || got != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "auth.forbidden"})
			return
		}
		c.Next()
	}
}
