package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"shop_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// It simulates database operations during testing.
type mockUserRepository struct {
	CreateFunc                    func(ctx context.Context, user *entity.User) error
	FindByEmailFunc               func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc                  func(ctx context.Context, id uint) (*entity.User, error)
	UpdatePasswordFunc            func(ctx context.Context, id uint, passwordHash string) error
	UpdateEmailFunc               func(ctx context.Context, id uint, email string) error
	SetPendingTwoFactorSecretFunc func(ctx context.Context, id uint, secret string) error
	EnableTwoFactorFunc           func(ctx context.Context, id uint) error
	DisableTwoFactorFunc          func(ctx context.Context, id uint) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *mockUserRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	if m.UpdateEmailFunc != nil {
		return m.UpdateEmailFunc(ctx, id, email)
	}
	return nil
}

func (m *mockUserRepository) SetPendingTwoFactorSecret(ctx context.Context, id uint, secret string) error {
	if m.SetPendingTwoFactorSecretFunc != nil {
		return m.SetPendingTwoFactorSecretFunc(ctx, id, secret)
	}
	return nil
}

func (m *mockUserRepository) EnableTwoFactor(ctx context.Context, id uint) error {
	if m.EnableTwoFactorFunc != nil {
		return m.EnableTwoFactorFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) DisableTwoFactor(ctx context.Context, id uint) error {
	if m.DisableTwoFactorFunc != nil {
		return m.DisableTwoFactorFunc(ctx, id)
	}
	return nil
}

// mockSessionRepository is an in-memory implementation of SessionRepository.
// Individual methods can be overridden through the function fields.
type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session

	CreateFunc              func(ctx context.Context, session *entity.Session) error
	FindByIDFunc            func(ctx context.Context, id string) (*entity.Session, error)
	RevokeAllByUserIDCalled int
	DeleteOldestCalled      int
	CountByUserIDFunc       func(ctx context.Context, userID uint) (int64, error)
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*entity.Session)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepository) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Session
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsValid() {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSessionRepository) Revoke(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *mockSessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RevokeAllByUserIDCalled++
	now := time.Now()
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockSessionRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsValid() {
			n++
		}
	}
	return n, nil
}

func (m *mockSessionRepository) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteOldestCalled++
	var oldest *entity.Session
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.ID)
	}
	return nil
}

// mockResetTokenRepository is an in-memory implementation of ResetTokenRepository.
type mockResetTokenRepository struct {
	mu     sync.Mutex
	stored map[string]uint

	StoreFunc func(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error
}

func newMockResetTokenRepository() *mockResetTokenRepository {
	return &mockResetTokenRepository{stored: make(map[string]uint)}
}

func (m *mockResetTokenRepository) Store(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, tokenHash, userID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[tokenHash] = userID
	return nil
}

func (m *mockResetTokenRepository) Consume(ctx context.Context, tokenHash string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.stored[tokenHash]
	if !ok {
		return 0, ErrResetTokenNotFound
	}
	delete(m.stored, tokenHash)
	return id, nil
}

// mockReplayGuard is a mock implementation of the ReplayGuard interface.
// The default behavior treats every code as fresh.
type mockReplayGuard struct {
	TryConsumeFunc func(ctx context.Context, userID uint, code string) bool
}

func (m *mockReplayGuard) TryConsume(ctx context.Context, userID uint, code string) bool {
	if m.TryConsumeFunc != nil {
		return m.TryConsumeFunc(ctx, userID, code)
	}
	return true
}

// mockTokenGenerator is a mock implementation of the TokenGenerator interface.
type mockTokenGenerator struct {
	GenerateTokenFunc func(userID uint, email, role string) (string, error)
}

func (m *mockTokenGenerator) GenerateToken(userID uint, email, role string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email, role)
	}
	return "mock-jwt-token", nil
}

func (m *mockTokenGenerator) Expiration() time.Duration {
	return 15 * time.Minute
}

// mockTOTP is a mock implementation of the TOTPValidator / TOTPProvider
// interfaces. By default only the code "123456" validates.
type mockTOTP struct {
	GenerateSecretFunc func(account string) (secret, otpauthURL, qrCode string, err error)
	ValidateFunc       func(code, secret string) bool
}

func (m *mockTOTP) GenerateSecret(account string) (secret, otpauthURL, qrCode string, err error) {
	if m.GenerateSecretFunc != nil {
		return m.GenerateSecretFunc(account)
	}
	return "MOCKSECRET", "otpauth://totp/mock", "data:image/png;base64,mock", nil
}

func (m *mockTOTP) Validate(code, secret string) bool {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(code, secret)
	}
	return code == "123456"
}

// mockMailer is a mock implementation of the Mailer interface.
type mockMailer struct {
	SendPasswordResetFunc func(to, resetURL string) error

	mu   sync.Mutex
	sent []string // reset URLs, in order
}

func (m *mockMailer) SendPasswordReset(to, resetURL string) error {
	if m.SendPasswordResetFunc != nil {
		return m.SendPasswordResetFunc(to, resetURL)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, resetURL)
	return nil
}

// mockAudit records audit actions for assertions.
type mockAudit struct {
	mu      sync.Mutex
	actions []string
}

func (m *mockAudit) Record(ctx context.Context, userID uint, email, action, ip, userAgent string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

func (m *mockAudit) has(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a == action {
			return true
		}
	}
	return false
}

var errDatabase = errors.New("database error")
