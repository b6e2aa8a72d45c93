package router

import (
	audithandler "shop_backend/internal/feature/audit/transport/handler"
	"shop_backend/internal/feature/auth/domain/entity"
	authhandler "shop_backend/internal/feature/auth/transport/handler"
	authmw "shop_backend/internal/feature/auth/transport/middleware"
	"shop_backend/internal/interface/handler"
	jwtmw "shop_backend/internal/platform/jwt"
	"shop_backend/internal/shared/ratelimiter"

	"github.com/gin-gonic/gin"
)

// Deps はルータが必要とするハンドラとミドルウェア依存をまとめます。
type Deps struct {
	Auth      *authhandler.AuthHandler
	TwoFactor *authhandler.TwoFactorHandler
	Audit     *audithandler.AuditHandler
	Verifier  *jwtmw.Verifier
	Limiter   ratelimiter.Limiter
	TwoFAGate authmw.TwoFactorChecker
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)

	// ブルートフォース対策：認証系の入口にレート制限を適用
	limited := ratelimiter.Middleware(d.Limiter, "auth")

	auth := r.Group("/auth")
	{
		// 新規ユーザー登録
		auth.POST("/register", limited, d.Auth.Register)
		// ログイン（JWT 発行、2FA有効時はコード必須）
		auth.POST("/login", limited, d.Auth.Login)
		// リフレッシュトークンのローテーション
		auth.POST("/refresh", d.Auth.Refresh)
		// パスワードリセット要求（メール送信）
		auth.POST("/request-password-reset", limited, d.Auth.RequestPasswordReset)
		// パスワードリセット実行
		auth.POST("/reset-password", d.Auth.ResetPassword)
	}

	// 認証必須のルート
	protected := r.Group("/auth")
	protected.Use(jwtmw.AuthRequired(d.Verifier))
	{
		protected.POST("/logout", d.Auth.Logout)
		protected.GET("/me", d.Auth.Me)
		// 2FAのセットアップ・確認・解除
		protected.POST("/2fa/setup", d.TwoFactor.Setup)
		protected.POST("/2fa/verify", d.TwoFactor.Verify)
		protected.POST("/2fa/disable", d.TwoFactor.Disable)
		// メールアドレス変更は2FAゲートを通過する必要がある
		protected.POST("/change-email", authmw.TwoFactorGate(d.TwoFAGate), d.Auth.ChangeEmail)
	}

	// 管理者専用のルート
	admin := r.Group("/admin")
	admin.Use(jwtmw.AuthRequired(d.Verifier), jwtmw.RoleRequired(entity.RoleAdmin))
	{
		admin.GET("/audit-logs", d.Audit.List)
	}

	return r
}
