package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shop_backend/internal/feature/auth/usecase"
)

// replayWindow covers the full span in which a TOTP code can validate
// (current step plus one step of skew on each side).
const replayWindow = 90 * time.Second

// replayGuardRedis remembers accepted TOTP codes so the same code cannot be
// redeemed twice within its validity window.
type replayGuardRedis struct {
	client *redis.Client
	prefix string
}

// Compile-time check to ensure replayGuardRedis implements ReplayGuard.
var _ usecase.ReplayGuard = (*replayGuardRedis)(nil)

// NewReplayGuardRedis creates a new instance of replayGuardRedis.
func NewReplayGuardRedis(client *redis.Client, prefix string) *replayGuardRedis {
	if prefix == "" {
		prefix = "2fa:used"
	}
	return &replayGuardRedis{client: client, prefix: prefix}
}

// TryConsume marks the code as used via SETNX. It fails open: when Redis is
// unreachable the code counts as fresh, which degrades to the plain RFC 6238
// window behaviour.
func (g *replayGuardRedis) TryConsume(ctx context.Context, userID uint, code string) bool {
	key := fmt.Sprintf("%s:%d:%s", g.prefix, userID, code)
	ok, err := g.client.SetNX(ctx, key, "1", replayWindow).Result()
	if err != nil {
		slog.Warn("replay guard unavailable, accepting code", "error", err)
		return true
	}
	return ok
}

// noopReplayGuard is the fallback when Redis is not configured. Codes are
// then reusable within their window, the documented degraded behaviour.
type noopReplayGuard struct{}

// NewNoopReplayGuard creates a guard that never rejects a code.
func NewNoopReplayGuard() *noopReplayGuard {
	return &noopReplayGuard{}
}

// TryConsume always reports the code as fresh.
func (noopReplayGuard) TryConsume(ctx context.Context, userID uint, code string) bool {
	return true
}
