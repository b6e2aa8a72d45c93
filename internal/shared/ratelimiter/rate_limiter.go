// Package ratelimiter throttles brute-force-sensitive endpoints per client.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Result reports a single rate-limit decision.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter decides whether an operation identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter is a fixed-window limiter (INCR + EXPIRE per window bucket).
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter creates a RedisLimiter allowing max hits per window.
func NewRedisLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		window: window,
	}
}

// Allow counts a hit against the current window for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, winStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	hits := incr.Val()
	// Set expiry on first hit in this window
	if hits == 1 {
		_ = l.client.Expire(ctx, redisKey, l.window).Err()
	}

	if hits > l.max {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: winStart.Add(l.window).Sub(now),
		}, nil
	}
	return Result{Allowed: true, Remaining: l.max - hits}, nil
}

// MemoryLimiter is the in-process fallback used when Redis is unavailable.
// Counters reset when their window elapses.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string]int64
	starts map[string]time.Time
	max    int64
	window time.Duration
}

// NewMemoryLimiter creates a MemoryLimiter allowing max hits per window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string]int64),
		starts: make(map[string]time.Time),
		max:    int64(max),
		window: window,
	}
}

// Allow counts a hit against the current window for key.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	start, ok := l.starts[key]
	if !ok || now.Sub(start) >= l.window {
		l.starts[key] = now
		l.hits[key] = 0
		start = now
	}

	l.hits[key]++
	if l.hits[key] > l.max {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: start.Add(l.window).Sub(now),
		}, nil
	}
	return Result{Allowed: true, Remaining: l.max - l.hits[key]}, nil
}

// Middleware applies the limiter per client IP within a named scope.
// Limiter errors fail open: an unreachable Redis must not lock everyone out.
func Middleware(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		res, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !res.Allowed {
			retry := int(res.RetryAfter.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate.limited",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
