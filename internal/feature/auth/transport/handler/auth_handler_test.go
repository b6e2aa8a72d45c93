package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"shop_backend/internal/feature/auth/usecase"
	jwtmw "shop_backend/internal/platform/jwt"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	SignupFunc               func(ctx context.Context, name, email, password string, meta usecase.Meta) (*usecase.PublicUser, error)
	LoginFunc                func(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error)
	RefreshFunc              func(ctx context.Context, refreshToken string, meta usecase.Meta) (*usecase.TokenPair, error)
	LogoutFunc               func(ctx context.Context, userID uint, refreshToken string, meta usecase.Meta) error
	MeFunc                   func(ctx context.Context, userID uint) (*usecase.PublicUser, error)
	ChangeEmailFunc          func(ctx context.Context, userID uint, newEmail string, meta usecase.Meta) error
	RequestPasswordResetFunc func(ctx context.Context, email string, meta usecase.Meta) error
	ResetPasswordFunc        func(ctx context.Context, token, newPassword string, meta usecase.Meta) error
}

func (m *mockAuthUsecase) Signup(ctx context.Context, name, email, password string, meta usecase.Meta) (*usecase.PublicUser, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, name, email, password, meta)
	}
	return testPublicUser(), nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, twoFACode, meta)
	}
	return nil, usecase.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, refreshToken string, meta usecase.Meta) (*usecase.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken, meta)
	}
	return nil, usecase.ErrInvalidRefreshToken
}

func (m *mockAuthUsecase) Logout(ctx context.Context, userID uint, refreshToken string, meta usecase.Meta) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID, refreshToken, meta)
	}
	return nil
}

func (m *mockAuthUsecase) Me(ctx context.Context, userID uint) (*usecase.PublicUser, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, userID)
	}
	return testPublicUser(), nil
}

func (m *mockAuthUsecase) ChangeEmail(ctx context.Context, userID uint, newEmail string, meta usecase.Meta) error {
	if m.ChangeEmailFunc != nil {
		return m.ChangeEmailFunc(ctx, userID, newEmail, meta)
	}
	return nil
}

func (m *mockAuthUsecase) RequestPasswordReset(ctx context.Context, email string, meta usecase.Meta) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email, meta)
	}
	return nil
}

func (m *mockAuthUsecase) ResetPassword(ctx context.Context, token, newPassword string, meta usecase.Meta) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword, meta)
	}
	return nil
}

func testPublicUser() *usecase.PublicUser {
	return &usecase.PublicUser{
		ID:        1,
		Name:      "Test User",
		Email:     "test@example.com",
		Role:      "USER",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testTokenPair() *usecase.TokenPair {
	return &usecase.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: strings.Repeat("a", 64),
		ExpiresIn:    900,
	}
}

// setUser simulates a request that passed the JWT middleware.
func setUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, userID)
		c.Next()
	}
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockSignupFunc func(ctx context.Context, name, email, password string, meta usecase.Meta) (*usecase.PublicUser, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success: user registration",
			requestBody:    gin.H{"name": "Test User", "email": "test@example.com", "password": "password123"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"name": "Test User", "email": "invalid-email", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation.invalid_request",
		},
		{
			name:           "failure: short password",
			requestBody:    gin.H{"name": "Test User", "email": "test@example.com", "password": "short"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation.invalid_request",
		},
		{
			name:           "failure: missing name",
			requestBody:    gin.H{"email": "test@example.com", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation.invalid_request",
		},
		{
			name:        "failure: duplicate email",
			requestBody: gin.H{"name": "Test User", "email": "existing@example.com", "password": "password123"},
			mockSignupFunc: func(ctx context.Context, name, email, password string, meta usecase.Meta) (*usecase.PublicUser, error) {
				return nil, usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "email.taken",
		},
		{
			name:        "failure: internal error",
			requestBody: gin.H{"name": "Test User", "email": "test@example.com", "password": "password123"},
			mockSignupFunc: func(ctx context.Context, name, email, password string, meta usecase.Meta) (*usecase.PublicUser, error) {
				return nil, errors.New("database down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal.error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthUsecase{SignupFunc: tt.mockSignupFunc})
			router := gin.New()
			router.POST("/auth/register", handler.Register)

			w := postJSON(router, "/auth/register", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			} else {
				assert.Contains(t, w.Body.String(), "test@example.com")
				assert.NotContains(t, w.Body.String(), "password", "response must not leak credentials")
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockLoginFunc  func(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "success: user login",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error) {
				return testTokenPair(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: wrong credentials",
			requestBody:    gin.H{"email": "test@example.com", "password": "wrong"},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "auth.invalid_credentials",
		},
		{
			name:        "failure: 2FA code required",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error) {
				return nil, usecase.ErrTwoFactorRequired
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "auth.2fa_required",
		},
		{
			name:        "failure: bad 2FA code",
			requestBody: gin.H{"email": "test@example.com", "password": "password123", "two_factor_code": "000000"},
			mockLoginFunc: func(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error) {
				return nil, usecase.ErrInvalidTwoFactorCode
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "auth.invalid_2fa_token",
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "test@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation.invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCode string
			mockFn := tt.mockLoginFunc
			handler := NewAuthHandler(&mockAuthUsecase{
				LoginFunc: func(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error) {
					gotCode = twoFACode
					if mockFn != nil {
						return mockFn(ctx, email, password, twoFACode, meta)
					}
					return nil, usecase.ErrInvalidCredentials
				},
			})
			router := gin.New()
			router.POST("/auth/login", handler.Login)

			w := postJSON(router, "/auth/login", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			} else {
				var res map[string]any
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
				assert.Equal(t, "access-token", res["access_token"])
				assert.Len(t, res["refresh_token"], 64)
				assert.EqualValues(t, 900, res["expires_in"])
			}
			if code, ok := tt.requestBody["two_factor_code"]; ok && tt.expectedStatus != http.StatusBadRequest {
				assert.Equal(t, code, gotCode, "2FA code was not forwarded")
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success: token rotation", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{
			RefreshFunc: func(ctx context.Context, refreshToken string, meta usecase.Meta) (*usecase.TokenPair, error) {
				return testTokenPair(), nil
			},
		})
		router := gin.New()
		router.POST("/auth/refresh", handler.Refresh)

		w := postJSON(router, "/auth/refresh", gin.H{"refresh_token": strings.Repeat("b", 64)})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "access-token")
	})

	t.Run("failure: invalid token", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{})
		router := gin.New()
		router.POST("/auth/refresh", handler.Refresh)

		w := postJSON(router, "/auth/refresh", gin.H{"refresh_token": "bogus"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "auth.invalid_token")
	})

	t.Run("failure: missing token", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{})
		router := gin.New()
		router.POST("/auth/refresh", handler.Refresh)

		w := postJSON(router, "/auth/refresh", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logout with refresh token", func(t *testing.T) {
		var gotUserID uint
		var gotToken string
		handler := NewAuthHandler(&mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, userID uint, refreshToken string, meta usecase.Meta) error {
				gotUserID = userID
				gotToken = refreshToken
				return nil
			},
		})
		router := gin.New()
		router.POST("/auth/logout", setUser(7), handler.Logout)

		w := postJSON(router, "/auth/logout", gin.H{"refresh_token": strings.Repeat("c", 64)})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(7), gotUserID)
		assert.Equal(t, strings.Repeat("c", 64), gotToken)
	})

	t.Run("logout without body revokes everything", func(t *testing.T) {
		var gotToken string
		handler := NewAuthHandler(&mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, userID uint, refreshToken string, meta usecase.Meta) error {
				gotToken = refreshToken
				return nil
			},
		})
		router := gin.New()
		router.POST("/auth/logout", setUser(7), handler.Logout)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, gotToken, "no body means no specific session")
	})
}

func TestAuthHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the profile", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{})
		router := gin.New()
		router.GET("/auth/me", setUser(1), handler.Me)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "test@example.com")
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("deleted user maps to 401", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{
			MeFunc: func(ctx context.Context, userID uint) (*usecase.PublicUser, error) {
				return nil, usecase.ErrUserNotFound
			},
		})
		router := gin.New()
		router.GET("/auth/me", setUser(1), handler.Me)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "auth.token_invalid")
	})
}

func TestAuthHandler_ChangeEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockFunc       func(ctx context.Context, userID uint, newEmail string, meta usecase.Meta) error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success",
			requestBody:    gin.H{"new_email": "new@example.com"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "failure: invalid address",
			requestBody:    gin.H{"new_email": "not-an-email"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation.invalid_request",
		},
		{
			name:        "failure: address taken",
			requestBody: gin.H{"new_email": "taken@example.com"},
			mockFunc: func(ctx context.Context, userID uint, newEmail string, meta usecase.Meta) error {
				return usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "email.taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&mockAuthUsecase{ChangeEmailFunc: tt.mockFunc})
			router := gin.New()
			router.POST("/auth/change-email", setUser(1), handler.ChangeEmail)

			w := postJSON(router, "/auth/change-email", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("request always reports success", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{
			RequestPasswordResetFunc: func(ctx context.Context, email string, meta usecase.Meta) error {
				return errors.New("smtp down")
			},
		})
		router := gin.New()
		router.POST("/auth/request-password-reset", handler.RequestPasswordReset)

		w := postJSON(router, "/auth/request-password-reset", gin.H{"email": "anyone@example.com"})

		assert.Equal(t, http.StatusOK, w.Code, "internal failures must not be observable")
	})

	t.Run("reset with valid token", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{})
		router := gin.New()
		router.POST("/auth/reset-password", handler.ResetPassword)

		w := postJSON(router, "/auth/reset-password", gin.H{
			"token":        strings.Repeat("d", 64),
			"new_password": "fresh-password",
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reset with consumed token", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{
			ResetPasswordFunc: func(ctx context.Context, token, newPassword string, meta usecase.Meta) error {
				return usecase.ErrResetTokenNotFound
			},
		})
		router := gin.New()
		router.POST("/auth/reset-password", handler.ResetPassword)

		w := postJSON(router, "/auth/reset-password", gin.H{
			"token":        strings.Repeat("d", 64),
			"new_password": "fresh-password",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "auth.invalid_or_expired_reset_token")
	})

	t.Run("reset with short password", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{})
		router := gin.New()
		router.POST("/auth/reset-password", handler.ResetPassword)

		w := postJSON(router, "/auth/reset-password", gin.H{
			"token":        strings.Repeat("d", 64),
			"new_password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
