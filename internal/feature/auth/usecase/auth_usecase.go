package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shop_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// maxSessionsPerUser は1ユーザーあたりの同時セッション数の上限です。
	// 上限を超えた場合、最も古いセッションが削除されます。
	maxSessionsPerUser = 5

	// refreshTokenBytes はリフレッシュトークンの乱数バイト数です（hexで64文字）。
	refreshTokenBytes = 32
)

// 監査ログに記録するアクション名。
const (
	actionSignup            = "signup"
	actionLoginSuccess      = "login.success"
	actionLoginFailure      = "login.failure"
	actionLogout            = "logout"
	actionEmailChanged      = "email.changed"
	actionResetRequested    = "password.reset.requested"
	actionResetCompleted    = "password.reset.completed"
	actionTwoFactorEnabled  = "2fa.enabled"
	actionTwoFactorDisabled = "2fa.disabled"
)

// dummyHash はユーザー未検出時のタイミング攻撃緩和用ダミーハッシュです。
// bcrypt.CompareHashAndPasswordが常に実行されることを保証します。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenGenerator はアクセストークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みアクセストークンを生成します。
	GenerateToken(userID uint, email, role string) (string, error)
	// Expiration はアクセストークンの有効期間を返します。
	Expiration() time.Duration
}

// TOTPValidator はワンタイムコードの検証インターフェースを定義します。
type TOTPValidator interface {
	// Validate はコードをシークレットに対して検証します（±1ステップ許容）。
	Validate(code, secret string) bool
}

// Mailer はアカウント関連メールの送信インターフェースを定義します。
type Mailer interface {
	// SendPasswordReset はパスワードリセットリンクを送信します。
	SendPasswordReset(to, resetURL string) error
}

// AuditLogger は認証イベントの監査記録インターフェースを定義します。
// 記録の失敗はリクエストの成否に影響してはなりません。
type AuditLogger interface {
	Record(ctx context.Context, userID uint, email, action, ip, userAgent string)
}

// Meta はリクエスト元のメタデータ（セッション・監査記録用）です。
type Meta struct {
	UserAgent string
	IPAddress string
}

// TokenPair は発行されたアクセストークンとリフレッシュトークンの組です。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // アクセストークンの有効期間（秒）
}

// PublicUser はクライアントに公開してよいユーザー情報です。
// パスワードハッシュとTOTPシークレットは決して含めません。
type PublicUser struct {
	ID               uint
	Name             string
	Email            string
	Role             string
	TwoFactorEnabled bool
	CreatedAt        time.Time
}

// AuthConfig はAuthUsecaseの動作設定です。
type AuthConfig struct {
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	AppBaseURL      string
}

// AuthUsecase は認証ビジネスロジックを実装します。
type AuthUsecase struct {
	users    UserRepository
	sessions SessionRepository
	resets   ResetTokenRepository
	replay   ReplayGuard
	tokens   TokenGenerator
	totp     TOTPValidator
	mailer   Mailer
	audit    AuditLogger
	cfg      AuthConfig
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(
	users UserRepository,
	sessions SessionRepository,
	resets ResetTokenRepository,
	replay ReplayGuard,
	tokens TokenGenerator,
	totp TOTPValidator,
	mailer Mailer,
	audit AuditLogger,
	cfg AuthConfig,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
		resets:   resets,
		replay:   replay,
		tokens:   tokens,
		totp:     totp,
		mailer:   mailer,
		audit:    audit,
		cfg:      cfg,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// normalizeEmail はメールアドレスを小文字化・トリムして正規化します。
// ルックアップと一意インデックスの双方がこの形を前提とします。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newOpaqueToken は暗号学的乱数からhex文字列トークンを生成します。
func newOpaqueToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashToken はリセットトークンの保存用ハッシュ（SHA-256 hex）を返します。
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// publicUser はエンティティから公開用ユーザー情報を生成します。
func publicUser(u *entity.User) *PublicUser {
	return &PublicUser{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
	}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
// メールアドレスが既に使用されている場合、ErrEmailAlreadyExistsを返します。
func (u *AuthUsecase) Signup(ctx context.Context, name, email, password string, meta Meta) (*PublicUser, error) {
	// パスワード強度を検証
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: string(hashed),
		Role:     entity.RoleUser,
		IsActive: true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.audit.Record(ctx, user.ID, user.Email, actionSignup, meta.IPAddress, meta.UserAgent)
	return publicUser(user), nil
}

// Login はユーザーを認証し、成功時にトークンペアを発行します。
// メールアドレス未登録・アカウント無効・パスワード不一致はいずれも
// 同一のErrInvalidCredentialsを返します（アカウント列挙攻撃の防止）。
// 2FA有効ユーザーは有効なワンタイムコードの提示が必要です。
func (u *AuthUsecase) Login(ctx context.Context, email, password, twoFACode string, meta Meta) (*TokenPair, error) {
	email = normalizeEmail(email)
	user, err := u.users.FindByEmail(ctx, email)

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := dummyHash
	if err == nil && user.IsActive {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出・無効アカウント・パスワード不一致の場合、汎用エラーを返す
	if err != nil || !user.IsActive || compareErr != nil {
		u.audit.Record(ctx, 0, email, actionLoginFailure, meta.IPAddress, meta.UserAgent)
		return nil, ErrInvalidCredentials
	}

	// 2FA有効ユーザーはコード必須
	if user.TwoFactorEnabled {
		if twoFACode == "" {
			return nil, ErrTwoFactorRequired
		}
		if !u.totp.Validate(twoFACode, user.TwoFactorSecret) || !u.replay.TryConsume(ctx, user.ID, twoFACode) {
			u.audit.Record(ctx, user.ID, email, actionLoginFailure, meta.IPAddress, meta.UserAgent)
			return nil, ErrInvalidTwoFactorCode
		}
	}

	pair, err := u.issueTokens(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	u.audit.Record(ctx, user.ID, email, actionLoginSuccess, meta.IPAddress, meta.UserAgent)
	return pair, nil
}

// issueTokens はアクセストークンと新規リフレッシュセッションを発行します。
// セッション数が上限を超える場合、最も古いセッションを削除します。
func (u *AuthUsecase) issueTokens(ctx context.Context, user *entity.User, meta Meta) (*TokenPair, error) {
	access, err := u.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	// セッション上限の確認（超過時は最古を削除）
	if count, err := u.sessions.CountByUserID(ctx, user.ID); err == nil && count >= maxSessionsPerUser {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			slog.Warn("failed to evict oldest session", "user_id", user.ID, "error", err)
		}
	}

	now := time.Now()
	session := &entity.Session{
		ID:        refresh,
		UserID:    user.ID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.cfg.RefreshTokenTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(u.tokens.Expiration().Seconds()),
	}, nil
}

// Refresh はリフレッシュトークンをローテーションし、新しいトークンペアを発行します。
// 提示されたセッションは失効し、以降再利用できません。失効済みセッションの
// 再利用はトークン窃取の兆候とみなし、当該ユーザーの全セッションを失効させます。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string, meta Meta) (*TokenPair, error) {
	if len(refreshToken) != refreshTokenBytes*2 {
		return nil, ErrInvalidRefreshToken
	}

	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if session.IsRevoked() {
		// ローテーション済みトークンの再利用を検出
		slog.Warn("revoked refresh token reused", "user_id", session.UserID)
		if err := u.sessions.RevokeAllByUserID(ctx, session.UserID); err != nil {
			slog.Warn("failed to revoke sessions after token reuse", "user_id", session.UserID, "error", err)
		}
		return nil, ErrInvalidRefreshToken
	}
	if session.IsExpired() {
		return nil, ErrInvalidRefreshToken
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	// ローテーション: 旧セッションを失効させてから新セッションを発行
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	return u.issueTokens(ctx, user, meta)
}

// Logout はリフレッシュセッションを失効させます。
// トークン指定時は本人のセッションのみ失効、未指定時は全セッションを失効します。
// 冪等な操作であり、既に失効済みでもエラーにはなりません。
func (u *AuthUsecase) Logout(ctx context.Context, userID uint, refreshToken string, meta Meta) error {
	if refreshToken == "" {
		if err := u.sessions.RevokeAllByUserID(ctx, userID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
	} else {
		session, err := u.sessions.FindByID(ctx, refreshToken)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				return err
			}
			// 未知のトークンは無視（冪等）
		} else if session.UserID == userID && !session.IsRevoked() {
			if err := u.sessions.Revoke(ctx, session.ID); err != nil {
				return fmt.Errorf("failed to revoke session: %w", err)
			}
		}
	}

	u.audit.Record(ctx, userID, "", actionLogout, meta.IPAddress, meta.UserAgent)
	return nil
}

// Me は認証済みユーザーの公開プロフィールを返します。
func (u *AuthUsecase) Me(ctx context.Context, userID uint) (*PublicUser, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}

// ChangeEmail はメールアドレスを変更します。
// 既に使用されている場合、ErrEmailAlreadyExistsを返します。
func (u *AuthUsecase) ChangeEmail(ctx context.Context, userID uint, newEmail string, meta Meta) error {
	email := normalizeEmail(newEmail)
	if err := u.users.UpdateEmail(ctx, userID, email); err != nil {
		return err
	}
	u.audit.Record(ctx, userID, email, actionEmailChanged, meta.IPAddress, meta.UserAgent)
	return nil
}

// RequestPasswordReset は単回使用・期限付きのリセットトークンを発行してメール送信します。
// メールアドレスの存在有無にかかわらず成功を返します（アカウント列挙攻撃の防止）。
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string, meta Meta) error {
	email = normalizeEmail(email)
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil || !user.IsActive {
		// 存在しない・無効なアカウントでも外部的には成功扱い
		return nil
	}

	token, err := newOpaqueToken()
	if err != nil {
		return err
	}

	// 平文トークンはメールにのみ載せ、ストアにはハッシュを保存する
	if err := u.resets.Store(ctx, hashToken(token), user.ID, u.cfg.ResetTokenTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", u.cfg.AppBaseURL, token)
	if err := u.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		// 送信失敗もクライアントには漏らさない
		slog.Error("failed to send password reset email", "user_id", user.ID, "error", err)
		return nil
	}

	u.audit.Record(ctx, user.ID, email, actionResetRequested, meta.IPAddress, meta.UserAgent)
	return nil
}

// ResetPassword はリセットトークンを1回だけ消費してパスワードを更新します。
// 成功時は既存の全セッションを失効させます。
func (u *AuthUsecase) ResetPassword(ctx context.Context, token, newPassword string, meta Meta) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	userID, err := u.resets.Consume(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return ErrResetTokenNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	// 資格情報が変わったため既存セッションは全て失効
	if err := u.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		slog.Warn("failed to revoke sessions after password reset", "user_id", userID, "error", err)
	}

	u.audit.Record(ctx, userID, "", actionResetCompleted, meta.IPAddress, meta.UserAgent)
	return nil
}
