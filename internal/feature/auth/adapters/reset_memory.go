package adapters

import (
	"context"
	"sync"
	"time"

	"shop_backend/internal/feature/auth/usecase"
)

// resetTokenMemory はResetTokenRepositoryのインメモリ実装です。
// Redisが使えない環境向けのフォールバックで、プロセス再起動で消えます。
type resetTokenMemory struct {
	mu      sync.Mutex
	entries map[string]resetEntry
}

type resetEntry struct {
	userID    uint
	expiresAt time.Time
}

// Compile-time check to ensure resetTokenMemory implements ResetTokenRepository.
var _ usecase.ResetTokenRepository = (*resetTokenMemory)(nil)

// NewResetTokenMemory はresetTokenMemoryの新しいインスタンスを生成します。
func NewResetTokenMemory() *resetTokenMemory {
	return &resetTokenMemory{entries: make(map[string]resetEntry)}
}

// Store はトークンハッシュとユーザーIDをTTL付きで保存します。
func (r *resetTokenMemory) Store(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tokenHash] = resetEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Consume はトークンハッシュを消費（取得と同時に削除）します。
// 未登録・期限切れはErrResetTokenNotFoundを返します。
func (r *resetTokenMemory) Consume(ctx context.Context, tokenHash string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[tokenHash]
	if !ok {
		return 0, usecase.ErrResetTokenNotFound
	}
	delete(r.entries, tokenHash)
	if time.Now().After(e.expiresAt) {
		return 0, usecase.ErrResetTokenNotFound
	}
	return e.userID, nil
}
