package adapters

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shop_backend/internal/feature/auth/usecase"
)

// resetTokenRedis stores single-use password reset tokens in Redis.
// Keys hold the token hash, values the user ID; expiry is Redis TTL and
// single use is guaranteed by consuming with GETDEL.
type resetTokenRedis struct {
	client *redis.Client
	prefix string
}

// Compile-time check to ensure resetTokenRedis implements ResetTokenRepository.
var _ usecase.ResetTokenRepository = (*resetTokenRedis)(nil)

// NewResetTokenRedis creates a new instance of resetTokenRedis.
func NewResetTokenRedis(client *redis.Client, prefix string) *resetTokenRedis {
	if prefix == "" {
		prefix = "pwreset"
	}
	return &resetTokenRedis{client: client, prefix: prefix}
}

// key returns the Redis key for a token hash.
func (r *resetTokenRedis) key(tokenHash string) string {
	return fmt.Sprintf("%s:%s", r.prefix, tokenHash)
}

// Store saves the token hash with the configured TTL.
func (r *resetTokenRedis) Store(ctx context.Context, tokenHash string, userID uint, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(tokenHash), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

// Consume resolves and deletes the token hash atomically (GETDEL), so a
// second redemption of the same token fails.
func (r *resetTokenRedis) Consume(ctx context.Context, tokenHash string) (uint, error) {
	val, err := r.client.GetDel(ctx, r.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, usecase.ErrResetTokenNotFound
		}
		return 0, err
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt reset token entry: %w", err)
	}
	return uint(id), nil
}
