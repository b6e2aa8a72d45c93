package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"shop_backend/internal/app/di"
	"shop_backend/internal/app/router"
	"shop_backend/internal/config"
	auditadapters "shop_backend/internal/feature/audit/adapters"
	audithandler "shop_backend/internal/feature/audit/transport/handler"
	auditusecase "shop_backend/internal/feature/audit/usecase"
	authadapters "shop_backend/internal/feature/auth/adapters"
	authhandler "shop_backend/internal/feature/auth/transport/handler"
	authusecase "shop_backend/internal/feature/auth/usecase"
	"shop_backend/internal/platform/cache"
	infradb "shop_backend/internal/platform/db"
	jwtmw "shop_backend/internal/platform/jwt"
	"shop_backend/internal/platform/mail"
	infraredis "shop_backend/internal/platform/redis"
	"shop_backend/internal/platform/totp"
	"shop_backend/internal/shared/ratelimiter"
)

func main() {
	// .envがあれば読み込む（本番では環境変数を直接設定）
	_ = godotenv.Load()
	cfg := config.Load()

	// db
	db := infradb.OpenDB(cfg)

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := authadapters.NewUserPostgres(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	auditRepo := auditadapters.NewAuditPostgres(db)

	// ユーザー参照はRedisキャッシュでラップ（rdbがnilなら素通し）
	cachedUserRepo := cache.NewCachingUserRepository(rdb, 5*time.Minute, userRepo, "users")

	// Redisの有無でリセットトークン保管とリプレイ防止の実装を切り替える
	var resetRepo authusecase.ResetTokenRepository
	var replayGuard authusecase.ReplayGuard
	if rdb != nil {
		resetRepo = authadapters.NewResetTokenRedis(rdb, "pwreset")
		replayGuard = authadapters.NewReplayGuardRedis(rdb, "2fa:used")
	} else {
		resetRepo = authadapters.NewResetTokenMemory()
		replayGuard = authadapters.NewNoopReplayGuard()
	}

	// Platform
	tokenGen := jwtmw.NewGenerator(cfg.JWTSecret, cfg.AccessTokenTTL)
	verifier := jwtmw.NewVerifier(cfg.JWTSecret)
	totpProvider := totp.NewProvider(cfg.TOTPIssuer)

	var mailer mail.Sender
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		mailer = mail.NewLogSender()
	}

	var limiter ratelimiter.Limiter
	if rdb != nil {
		limiter = ratelimiter.NewRedisLimiter(rdb, "rl", cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimiter.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	// Usecase
	auditUC := auditusecase.NewAuditUsecase(auditRepo)
	authUC := authusecase.NewAuthUsecase(
		cachedUserRepo, sessionRepo, resetRepo, replayGuard,
		tokenGen, totpProvider, mailer, auditUC,
		authusecase.AuthConfig{
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			ResetTokenTTL:   cfg.ResetTokenTTL,
			AppBaseURL:      cfg.AppBaseURL,
		},
	)
	twofaUC := authusecase.NewTwoFactorUsecase(cachedUserRepo, totpProvider, replayGuard, auditUC)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	twofaH := authhandler.NewTwoFactorHandler(twofaUC)
	auditH := audithandler.NewAuditHandler(auditUC)

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Auth:      authH,
		TwoFactor: twofaH,
		Audit:     auditH,
		Verifier:  verifier,
		Limiter:   limiter,
		TwoFAGate: twofaUC,
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
