package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(context.Background())

	err := s.Register(Func("broken", "every now and then", func(ctx context.Context) error { return nil }))

	require.Error(t, err)
	assert.Empty(t, s.Names())
}

func TestRunByName(t *testing.T) {
	s := NewScheduler(context.Background())
	var ran atomic.Int32
	boom := errors.New("boom")

	require.NoError(t, s.Register(Func("count", "", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})))
	require.NoError(t, s.Register(Func("fail", "", func(ctx context.Context) error { return boom })))

	assert.Equal(t, []string{"count", "fail"}, s.Names())
	require.NoError(t, s.RunByName(context.Background(), "count"))
	assert.Equal(t, int32(1), ran.Load())
	assert.ErrorIs(t, s.RunByName(context.Background(), "fail"), boom)
	assert.Error(t, s.RunByName(context.Background(), "missing"))
}

func TestScheduledJobRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(ctx)
	var ran atomic.Int32
	require.NoError(t, s.Register(Func("tick", "@every 1s", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})))

	s.Start()

	assert.Eventually(t, func() bool { return ran.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
