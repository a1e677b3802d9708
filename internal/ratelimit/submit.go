package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keySubmitPrincipal = "submit:principal:%s"
	keyGrantRunLock    = "jobs:grants:lock"

	grantRunLockTTL = 10 * time.Minute
)

// SubmitLimiter throttles submission creation per principal and
// guards the monthly grant run with a single-holder lock. Both are
// disabled when no redis address is configured; every check then
// passes.
type SubmitLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewSubmitLimiter(cfg config.Config) *SubmitLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" || cfg.SubmitRate <= 0 || cfg.SubmitBurst <= 0 {
		return &SubmitLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &SubmitLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.SubmitRate,
		burst:   cfg.SubmitBurst,
	}
}

func (l *SubmitLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowSubmit takes one token from the principal's bucket.
func (l *SubmitLimiter) AllowSubmit(ctx context.Context, principalID snowflake.ID) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keySubmitPrincipal, principalID), l.rate, l.burst)
}

// TryLockGrantRun claims the grant-run lock. The grant job is
// idempotent either way; the lock just keeps overlapping instances
// from burning the same work twice.
func (l *SubmitLimiter) TryLockGrantRun(ctx context.Context) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keyGrantRunLock, grantRunLockTTL)
}

func (l *SubmitLimiter) ReleaseGrantRun(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keyGrantRunLock, token)
}
