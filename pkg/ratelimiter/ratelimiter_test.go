package ratelimiter

import (
	"context"
	"testing"
	"time"

	"stackit.dev/forum/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, Cooldowns{
		Global:   5 * time.Second,
		Question: time.Minute,
		Answer:   15 * time.Second,
		Comment:  5 * time.Second,
	}), s
}

func TestAcquireBlocksSecondWriteInsideCooldown(t *testing.T) {
	l, _ := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := l.Acquire(ctx, userID, ScopeQuestion)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, userID, ScopeQuestion)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))
}

func TestAcquireScopeCooldownOutlivesGlobal(t *testing.T) {
	l, s := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := l.Acquire(ctx, userID, ScopeQuestion)
	require.NoError(t, err)

	s.FastForward(6 * time.Second)

	// global has expired, question cooldown has not
	_, err = l.Acquire(ctx, userID, ScopeQuestion)
	require.Error(t, err)

	// the failed attempt must not leave a global lock behind
	_, err = l.Acquire(ctx, userID, ScopeComment)
	require.NoError(t, err)
}

func TestReleaseClearsLocks(t *testing.T) {
	l, _ := setupLimiter(t)
	ctx := context.Background()
	userID := uuid.New()

	release, err := l.Acquire(ctx, userID, ScopeAnswer)
	require.NoError(t, err)
	release()

	_, err = l.Acquire(ctx, userID, ScopeAnswer)
	assert.NoError(t, err)
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	release, err := l.Acquire(context.Background(), uuid.New(), ScopeQuestion)
	require.NoError(t, err)
	release()
}

func TestUsersDoNotShareCooldowns(t *testing.T) {
	l, _ := setupLimiter(t)
	ctx := context.Background()

	_, err := l.Acquire(ctx, uuid.New(), ScopeComment)
	require.NoError(t, err)
	_, err = l.Acquire(ctx, uuid.New(), ScopeComment)
	assert.NoError(t, err)
}
