package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"stackit.dev/forum/pkg/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ScopeGlobal   = "global"
	ScopeQuestion = "question"
	ScopeAnswer   = "answer"
	ScopeComment  = "comment"
)

type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(userID, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uuid.UUID, action string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key(userID, action)).Err()
}

type Cooldowns struct {
	Global   time.Duration
	Question time.Duration
	Answer   time.Duration
	Comment  time.Duration
}

func (c Cooldowns) forScope(scope string) time.Duration {
	switch scope {
	case ScopeQuestion:
		return c.Question
	case ScopeAnswer:
		return c.Answer
	case ScopeComment:
		return c.Comment
	default:
		return 0
	}
}

// Limiter enforces a per-user global cooldown plus one cooldown per write scope.
// A nil Limiter, or one without redis, allows everything.
type Limiter struct {
	rdb       *redis.Client
	cooldowns Cooldowns
}

func New(rdb *redis.Client, cooldowns Cooldowns) *Limiter {
	return &Limiter{rdb: rdb, cooldowns: cooldowns}
}

// Acquire takes the global and scope locks. The returned release func clears
// both and is meant to be called when the write that follows fails.
func (l *Limiter) Acquire(ctx context.Context, userID uuid.UUID, scope string) (func(), error) {
	noop := func() {}
	if l == nil || l.rdb == nil {
		return noop, nil
	}

	allowed, err := CheckAndSetRateLimit(ctx, l.rdb, userID, ScopeGlobal, l.cooldowns.Global)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, l.rdb, userID, ScopeGlobal)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	limit := l.cooldowns.forScope(scope)
	allowed, err = CheckAndSetRateLimit(ctx, l.rdb, userID, scope, limit)
	if err != nil {
		_ = ClearRateLimit(ctx, l.rdb, userID, ScopeGlobal)
		return nil, err
	}
	if !allowed {
		_ = ClearRateLimit(ctx, l.rdb, userID, ScopeGlobal)
		ttl, _ := GetRateLimitTTL(ctx, l.rdb, userID, scope)
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("you can only post one %s every %s, please wait %.0f seconds", scope, limit, ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	release := func() {
		_ = ClearRateLimit(context.Background(), l.rdb, userID, ScopeGlobal)
		_ = ClearRateLimit(context.Background(), l.rdb, userID, scope)
	}
	return release, nil
}
