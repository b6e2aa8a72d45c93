package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verifier.Parse for any token that fails
// signature, expiry, or structural checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims holds the identity resolved from a verified access token.
type Claims struct {
	UserID uint
	Email  string
	Role   string
}

// Generator creates signed access tokens.
type Generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// Expiration returns the configured access token lifetime.
func (g *Generator) Expiration() time.Duration {
	return g.expiration
}

// GenerateToken creates a signed JWT token with standard claims plus the
// user's role.
func (g *Generator) GenerateToken(userID uint, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   time.Now().Add(g.expiration).Unix(),
		"iat":   time.Now().Unix(),
		"email": email,
		"role":  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verifier parses and validates access tokens.
// The signing secret is injected once at construction instead of being read
// from the environment on every request.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a new Verifier with the provided signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Parse verifies the signature and expiry of an access token and extracts
// its identity claims. Any failure maps to ErrInvalidToken; callers must not
// forward parser internals to clients.
func (v *Verifier) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if sub, ok := mc["sub"].(float64); ok { // JWT numbers are decoded as float64
		claims.UserID = uint(sub)
	} else {
		return nil, ErrInvalidToken
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := mc["role"].(string); ok {
		claims.Role = role
	}

	return claims, nil
}
