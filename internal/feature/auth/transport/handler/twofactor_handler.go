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

// TwoFactorUsecase は2FA操作のユースケースを定義します。
type TwoFactorUsecase interface {
	// Setup は新しいシークレットを保留状態で発行します。
	Setup(ctx context.Context, userID uint) (*usecase.TwoFactorSetup, error)
	// Confirm は保留中のシークレットを確認して2FAを有効化します。
	Confirm(ctx context.Context, userID uint, code string, meta usecase.Meta) error
	// Disable は有効なコードを条件に2FAを解除します。
	Disable(ctx context.Context, userID uint, code string, meta usecase.Meta) error
}

// TwoFactorHandler は2FA操作のHTTPリクエストを処理します。
type TwoFactorHandler struct {
	twofa TwoFactorUsecase
}

// NewTwoFactorHandler はTwoFactorHandlerの新しいインスタンスを生成します。
func NewTwoFactorHandler(twofa TwoFactorUsecase) *TwoFactorHandler {
	return &TwoFactorHandler{twofa: twofa}
}

// Setup は2FAセットアップAPIエンドポイントを処理します。
// シークレットとQRコードを返却します。この時点では2FAは有効化されません。
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	userID := c.GetUint(jwtmw.ContextUserID)

	setup, err := h.twofa.Setup(c.Request.Context(), userID)
	if err != nil {
		slog.Error("2fa setup failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		return
	}

	c.JSON(http.StatusOK, dto.TwoFactorSetupRes{
		Secret:     setup.Secret,
		OtpauthURL: setup.OtpauthURL,
		QRCode:     setup.QRCode,
	})
}

// Verify は2FA有効化確認APIエンドポイントを処理します。
// - コード未提示・形式不正は400 2fa.token_requiredを返却
// - シークレット未発行は400 2fa.not_setupを返却
// - コード不正は400 2fa.invalid_codeを返却（シークレットは保持されたまま）
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	var req dto.TwoFactorCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.token_required"})
		return
	}

	userID := c.GetUint(jwtmw.ContextUserID)
	if err := h.twofa.Confirm(c.Request.Context(), userID, req.Token, requestMeta(c)); err != nil {
		switch {
		case errors.Is(err, usecase.ErrTwoFactorNotSetup):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.not_setup"})
		case errors.Is(err, usecase.ErrInvalidTwoFactorCode):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.invalid_code"})
		default:
			slog.Error("2fa confirm failed", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		}
		return
	}

	slog.Info("2fa enabled", "user_id", userID)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Disable は2FA解除APIエンドポイントを処理します。
// 有効なコードの提示が必要です。失敗時はシークレットを保持します。
func (h *TwoFactorHandler) Disable(c *gin.Context) {
	var req dto.TwoFactorCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.token_required"})
		return
	}

	userID := c.GetUint(jwtmw.ContextUserID)
	if err := h.twofa.Disable(c.Request.Context(), userID, req.Token, requestMeta(c)); err != nil {
		switch {
		case errors.Is(err, usecase.ErrTwoFactorNotEnabled):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.not_enabled"})
		case errors.Is(err, usecase.ErrTwoFactorNotSetup):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.not_setup"})
		case errors.Is(err, usecase.ErrInvalidTwoFactorCode):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "2fa.invalid_code"})
		default:
			slog.Error("2fa disable failed", "error", err, "user_id", userID)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal.error"})
		}
		return
	}

	slog.Info("2fa disabled", "user_id", userID)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}
