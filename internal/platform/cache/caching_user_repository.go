// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of
// by-ID profile reads. It implements the decorator pattern, transparently
// adding caching without modifying the underlying repository. Any Redis
// failure degrades to a pass-through read; mutations invalidate the entry.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// cacheKey generates the cache key for a user ID.
func (c *CachingUserRepository) cacheKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

// invalidate removes a cached user entry (best effort).
func (c *CachingUserRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.cacheKey(id)).Err()
}

// FindByID retrieves a user, checking cache first then falling back to the database.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Create passes through; there is nothing cached for a brand-new user.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	return c.inner.Create(ctx, user)
}

// FindByEmail always goes to the database. Login reads must see the current
// credential state, so email lookups are deliberately uncached.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// UpdatePassword updates the store and invalidates the cached profile.
func (c *CachingUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	if err := c.inner.UpdatePassword(ctx, id, passwordHash); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// UpdateEmail updates the store and invalidates the cached profile.
func (c *CachingUserRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	if err := c.inner.UpdateEmail(ctx, id, email); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// SetPendingTwoFactorSecret updates the store and invalidates the cached profile.
func (c *CachingUserRepository) SetPendingTwoFactorSecret(ctx context.Context, id uint, secret string) error {
	if err := c.inner.SetPendingTwoFactorSecret(ctx, id, secret); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// EnableTwoFactor updates the store and invalidates the cached profile.
func (c *CachingUserRepository) EnableTwoFactor(ctx context.Context, id uint) error {
	if err := c.inner.EnableTwoFactor(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// DisableTwoFactor updates the store and invalidates the cached profile.
func (c *CachingUserRepository) DisableTwoFactor(ctx context.Context, id uint) error {
	if err := c.inner.DisableTwoFactor(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}
