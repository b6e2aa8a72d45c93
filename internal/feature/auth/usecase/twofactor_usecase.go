package usecase

import (
	"context"
)

// TOTPProvider はTOTPシークレットの生成と検証のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/totp）ではなくコンシューマー（usecase）が定義します。
type TOTPProvider interface {
	// GenerateSecret は新しいシークレットとプロビジョニング用QRを生成します。
	GenerateSecret(account string) (secret, otpauthURL, qrCode string, err error)
	// Validate はコードをシークレットに対して検証します（±1ステップ許容）。
	Validate(code, secret string) bool
}

// TwoFactorSetup は2FAセットアップ時にクライアントへ返す情報です。
type TwoFactorSetup struct {
	Secret     string
	OtpauthURL string
	QRCode     string
}

// TwoFactorUsecase は2FAの登録・確認・検証・解除のビジネスロジックを実装します。
type TwoFactorUsecase struct {
	users  UserRepository
	totp   TOTPProvider
	replay ReplayGuard
	audit  AuditLogger
}

// NewTwoFactorUsecase はTwoFactorUsecaseの新しいインスタンスを生成します。
func NewTwoFactorUsecase(users UserRepository, totp TOTPProvider, replay ReplayGuard, audit AuditLogger) *TwoFactorUsecase {
	return &TwoFactorUsecase{
		users:  users,
		totp:   totp,
		replay: replay,
		audit:  audit,
	}
}

// Setup は新しいTOTPシークレットを生成してユーザーに保留状態で保存します。
// この時点では2FAは有効化されません。有効化にはConfirmの成功が必要です。
// 再実行すると古い保留シークレットは新しいものに置き換わります。
func (u *TwoFactorUsecase) Setup(ctx context.Context, userID uint) (*TwoFactorSetup, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, otpauthURL, qrCode, err := u.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}

	if err := u.users.SetPendingTwoFactorSecret(ctx, userID, secret); err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret:     secret,
		OtpauthURL: otpauthURL,
		QRCode:     qrCode,
	}, nil
}

// Confirm は保留中のシークレットに対するコードを検証し、成功時に2FAを有効化します。
// コードが不正な場合、シークレットは保持されたまま有効化されません。
func (u *TwoFactorUsecase) Confirm(ctx context.Context, userID uint, code string, meta Meta) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetup
	}

	if !u.totp.Validate(code, user.TwoFactorSecret) || !u.replay.TryConsume(ctx, userID, code) {
		return ErrInvalidTwoFactorCode
	}

	if err := u.users.EnableTwoFactor(ctx, userID); err != nil {
		return err
	}

	u.audit.Record(ctx, userID, user.Email, actionTwoFactorEnabled, meta.IPAddress, meta.UserAgent)
	return nil
}

// Verify はユーザーの保存済みシークレットに対してコードを検証します。
// 状態は変更しません。リプレイガードにより同一コードの再利用は拒否されます。
func (u *TwoFactorUsecase) Verify(ctx context.Context, userID uint, code string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return ErrTwoFactorNotSetup
	}

	if !u.totp.Validate(code, user.TwoFactorSecret) || !u.replay.TryConsume(ctx, userID, code) {
		return ErrInvalidTwoFactorCode
	}
	return nil
}

// VerifyForRequest は2FAゲート用の検証です。2FAが無効なユーザーはそのまま通過し、
// 有効なユーザーはリクエストごとに有効なコードの提示が必要です。
func (u *TwoFactorUsecase) VerifyForRequest(ctx context.Context, userID uint, code string) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return nil
	}
	if code == "" {
		return ErrTwoFactorRequired
	}

	if !u.totp.Validate(code, user.TwoFactorSecret) || !u.replay.TryConsume(ctx, userID, code) {
		return ErrInvalidTwoFactorCode
	}
	return nil
}

// Disable は有効なコードの提示を条件に2FAを解除します。
// 成功時はシークレットと有効化フラグを同時にクリアします。
func (u *TwoFactorUsecase) Disable(ctx context.Context, userID uint, code string, meta Meta) error {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if !u.totp.Validate(code, user.TwoFactorSecret) || !u.replay.TryConsume(ctx, userID, code) {
		return ErrInvalidTwoFactorCode
	}

	if err := u.users.DisableTwoFactor(ctx, userID); err != nil {
		return err
	}

	u.audit.Record(ctx, userID, user.Email, actionTwoFactorDisabled, meta.IPAddress, meta.UserAgent)
	return nil
}
