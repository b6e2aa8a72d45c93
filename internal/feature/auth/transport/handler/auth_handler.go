// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/auth/transport/http/dto"
	"shop_backend/internal/feature/auth/usecase"
	jwtmw "shop_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は指定された名前・メールアドレス・パスワードで新規ユーザーを登録します。
	Signup(ctx context.Context, name, email, password string, meta usecase.Meta) (*usecase.PublicUser, error)
	// Login はユーザーを認証し、成功時にトークンペアを返します。
	Login(ctx context.Context, email, password, twoFACode string, meta usecase.Meta) (*usecase.TokenPair, error)
	// Refresh はリフレッシュトークンをローテーションします。
	Refresh(ctx context.Context, refreshToken string, meta usecase.Meta) (*usecase.TokenPair, error)
	// Logout はリフレッシュセッションを失効させます。
	Logout(ctx context.Context, userID uint, refreshToken string, meta usecase.Meta) error
	// Me は公開プロフィールを返します。
	Me(ctx context.Context, userID uint) (*usecase.PublicUser, error)
	// ChangeEmail はメールアドレスを変更します。
	ChangeEmail(ctx context.Context, userID uint, newEmail string, meta usecase.Meta) error
	// RequestPasswordReset はパスワードリセットのメール送信を要求します。
	RequestPasswordReset(ctx context.Context, email string, meta usecase.Meta) error
	// ResetPassword はリセットトークンを消費してパスワードを更新します。
	ResetPassword(ctx context.Context, token, newPassword string, meta usecase.Meta) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// requestMeta はリクエストからセッション・監査用メタデータを取り出します。
func requestMeta(c *gin.Context) usecase.Meta {
	return usecase.Meta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

// userRes はユースケースの公開ユーザーをレスポンスDTOに変換します。
func userRes(u *usecase.PublicUser) dto.UserRes {
	return dto.UserRes{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
	}
}

// tokenRes はトークンペアをレスポンスDTOに変換します。
func tokenRes(p *usecase.TokenPair) dto.TokenRes {
	return dto.TokenRes{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    p.ExpiresIn,
	}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時は201で公開ユーザー情報を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password, requestMeta(c))
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			slog.Warn("signup rejected, email taken", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "email.taken"})
			return
		}
		slog.Error("signup failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	slog.Info("user signup successful", "email", user.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, userRes(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は401を返却（メール未登録・パスワード不一致は区別しない）
// - 2FA有効ユーザーはコード未提示で401 auth.2fa_requiredを返却
// - 成功時はトークンペア付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.TwoFactorCode, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTwoFactorRequired):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "auth.2fa_required"})
		case errors.Is(err, usecase.ErrInvalidTwoFactorCode):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "auth.invalid_2fa_token"})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "auth.invalid_credentials"})
		default:
			slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		}
		return
	}

	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, tokenRes(pair))
}

// Refresh はトークンローテーションAPIエンドポイントを処理します。
// 無効・失効・期限切れのリフレッシュトークンはいずれも401を返却します。
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "auth.invalid_token"})
			return
		}
		slog.Error("token refresh failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	c.JSON(http.StatusOK, tokenRes(pair))
}

// Logout はログアウトAPIエンドポイントを処理します。
// ボディは任意です。refresh_token指定時は当該セッションのみ、未指定時は全セッションを失効します。
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
			return
		}
	}

	userID := c.GetUint(jwtmw.ContextUserID)
	if err := h.auth.Logout(c.Request.Context(), userID, req.RefreshToken, requestMeta(c)); err != nil {
		slog.Error("logout failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Me は認証済みユーザーのプロフィール取得APIエンドポイントを処理します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			// トークンは有効だがユーザーが存在しない（削除済み等）
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "auth.token_invalid"})
			return
		}
		slog.Error("profile lookup failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	c.JSON(http.StatusOK, userRes(user))
}

// ChangeEmail はメールアドレス変更APIエンドポイントを処理します。
// 2FA有効ユーザーはルータ側の2FAゲートを通過している必要があります。
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	var req dto.ChangeEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
		return
	}

	userID := c.GetUint(jwtmw.ContextUserID)
	if err := h.auth.ChangeEmail(c.Request.Context(), userID, req.NewEmail, requestMeta(c)); err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "email.taken"})
			return
		}
		slog.Error("email change failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// RequestPasswordReset はパスワードリセット要求APIエンドポイントを処理します。
// メールアドレスの存在有無にかかわらず200を返却します（アカウント列挙攻撃の防止）。
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.RequestPasswordResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		// 内部エラーでも外部的には成功扱い（列挙攻撃の防止）
		slog.Error("password reset request failed", "error", err, "remote_addr", c.ClientIP())
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// ResetPassword はパスワードリセット実行APIエンドポイントを処理します。
// トークンは1回だけ使用できます。無効・期限切れ・使用済みはいずれも400を返却します。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation.invalid_request"})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, requestMeta(c)); err != nil {
		if errors.Is(err, usecase.ErrResetTokenNotFound) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "auth.invalid_or_expired_reset_token"})
			return
		}
		slog.Error("password reset failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}
