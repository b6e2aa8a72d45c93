package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/feature/audit/domain/entity"
)

// AuditUsecase は監査ログ参照のユースケースを定義します。
type AuditUsecase interface {
	// List は監査ログを新しい順に返却します。
	List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, error)
}

// AuditHandler は監査ログのHTTPリクエストを処理します。
type AuditHandler struct {
	audit AuditUsecase
}

// NewAuditHandler はAuditHandlerの新しいインスタンスを生成します。
func NewAuditHandler(audit AuditUsecase) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// auditLogRes is the JSON shape of a single audit entry.
type auditLogRes struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Action    string `json:"action"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	CreatedAt string `json:"created_at"`
}

// List は監査ログ一覧APIエンドポイントを処理します。
// クエリパラメータ limit / offset でページングします。管理者専用です。
func (h *AuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.audit.List(c.Request.Context(), limit, offset)
	if err != nil {
		slog.Error("failed to list audit logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal.error"})
		return
	}

	res := make([]auditLogRes, 0, len(logs))
	for _, l := range logs {
		res = append(res, auditLogRes{
			ID:        l.ID,
			UserID:    l.UserID,
			Email:     l.Email,
			Action:    l.Action,
			IPAddress: l.IPAddress,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"logs": res, "limit": limit, "offset": offset})
}
