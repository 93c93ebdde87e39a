package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"userauth/internal/cache"
)

const loginFailureKeyPrefix = "login_fail:"

// LoginLimiter counts failed logins per email and locks the email out once a
// threshold is reached.
type LoginLimiter interface {
	// Allow reports whether a login attempt may proceed.
	Allow(ctx context.Context, email string) (bool, error)
	// Failure records a failed attempt.
	Failure(ctx context.Context, email string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, email string) error
}

// RedisLimiter keeps failure counters in redis. Counters expire after the
// lockout window, which also ends the lockout.
type RedisLimiter struct {
	cache       *cache.Client
	maxFailures int64
	window      time.Duration
}

var _ LoginLimiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter. maxFailures <= 0 disables limiting.
func NewRedisLimiter(c *cache.Client, maxFailures int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{cache: c, maxFailures: int64(maxFailures), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if l.maxFailures <= 0 {
		return true, nil
	}
	data, err := l.cache.Get(ctx, l.key(email))
	if err != nil || data == nil {
		return true, nil
	}
	failures, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return true, nil
	}
	return failures < l.maxFailures, nil
}

func (l *RedisLimiter) Failure(ctx context.Context, email string) error {
	if l.maxFailures <= 0 {
		return nil
	}
	_, err := l.cache.Incr(ctx, l.key(email), l.window)
	return err
}

func (l *RedisLimiter) Reset(ctx context.Context, email string) error {
	if l.maxFailures <= 0 {
		return nil
	}
	return l.cache.Delete(ctx, l.key(email))
}

func (l *RedisLimiter) key(email string) string {
	return loginFailureKeyPrefix + strings.ToLower(email)
}

// NopLimiter allows every attempt.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NopLimiter) Failure(context.Context, string) error       { return nil }
func (NopLimiter) Reset(context.Context, string) error         { return nil }
