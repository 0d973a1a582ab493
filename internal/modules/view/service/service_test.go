package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViewRepo struct {
	mu    sync.Mutex
	views map[uuid.UUID]int64
	err   error
}

func (f *fakeViewRepo) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.views[id] += n
	return nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *fakeViewRepo, ViewService) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &fakeViewRepo{views: map[uuid.UUID]int64{}}
	return mr, repo, NewViewService(rdb, repo)
}

func TestRecordViewDedupesViewer(t *testing.T) {
	mr, repo, svc := setup(t)
	ctx := context.Background()
	q := uuid.New()

	require.NoError(t, svc.RecordView(ctx, q, "user-1"))
	require.NoError(t, svc.RecordView(ctx, q, "user-1"))
	require.NoError(t, svc.RecordView(ctx, q, "user-2"))

	n, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(2), repo.views[q])

	mr.FastForward(viewerTTL + time.Second)
	require.NoError(t, svc.RecordView(ctx, q, "user-1"))
	_, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), repo.views[q], "the same viewer counts again after an hour")
}

func TestSyncIsIncremental(t *testing.T) {
	_, repo, svc := setup(t)
	ctx := context.Background()
	q := uuid.New()

	require.NoError(t, svc.RecordView(ctx, q, "a"))
	_, err := svc.Sync(ctx)
	require.NoError(t, err)

	n, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing pending after a flush")
	assert.Equal(t, int64(1), repo.views[q])
}

func TestSyncKeepsCountsWhenFlushFails(t *testing.T) {
	mr, repo, svc := setup(t)
	ctx := context.Background()
	q := uuid.New()

	require.NoError(t, svc.RecordView(ctx, q, "a"))
	repo.err = errors.New("db down")
	n, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists(pendingKey))

	repo.err = nil
	n, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), repo.views[q])
}
