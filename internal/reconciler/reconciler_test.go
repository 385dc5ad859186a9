package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/store"
)

type mapSource map[store.CounterKey]int64

func (m mapSource) Load(_ context.Context, key store.CounterKey) (int64, error) {
	n, ok := m[key]
	if !ok {
		return 0, errors.New("no such counter")
	}
	return n, nil
}

func newStore(t *testing.T) *store.RedisCounterStore {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := store.NewRedisCounterStore(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReconcile_RewritesHotKeysFromSource(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	likes := store.CounterKey{Kind: store.CounterLikes, ID: "snippet:s1"}
	followers := store.CounterKey{Kind: store.CounterFollowers, ID: "u1"}
	broken := store.CounterKey{Kind: store.CounterBookmarks, ID: "doc:d1"}

	require.NoError(t, s.Set(ctx, likes, 99))
	require.NoError(t, s.Set(ctx, followers, 7))
	for _, k := range []store.CounterKey{likes, followers, broken} {
		require.NoError(t, s.RecordAccess(ctx, k))
	}

	r := New(s, mapSource{likes: 3, followers: 7}, config.ReconcilerConfig{TopN: 10})
	assert.Equal(t, 2, r.Reconcile(ctx))

	n, found, err := s.Get(ctx, likes)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), n)

	_, found, err = s.Get(ctx, broken)
	require.NoError(t, err)
	assert.False(t, found)

	hot, err := s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, hot)
}

type writingSource struct {
	s     *store.RedisCounterStore
	count int64
}

// Load simulates a toggle committing while the count is being read.
func (w writingSource) Load(ctx context.Context, key store.CounterKey) (int64, error) {
	if err := w.s.CondIncr(ctx, key); err != nil {
		return 0, err
	}
	return w.count, nil
}

func TestReconcile_WriteDuringLoadDropsEntry(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	likes := store.CounterKey{Kind: store.CounterLikes, ID: "snippet:s1"}
	require.NoError(t, s.Set(ctx, likes, 99))
	require.NoError(t, s.RecordAccess(ctx, likes))

	r := New(s, writingSource{s: s, count: 4}, config.ReconcilerConfig{TopN: 10})
	assert.Equal(t, 0, r.Reconcile(ctx))

	_, found, err := s.Get(ctx, likes)
	require.NoError(t, err)
	assert.False(t, found, "raced entry must be dropped, not left stale")
}

func TestReconcile_NoHotKeys(t *testing.T) {
	r := New(store.NopCounterStore{}, mapSource{}, config.ReconcilerConfig{})
	assert.Equal(t, 0, r.Reconcile(context.Background()))
}

func TestStartStop(t *testing.T) {
	r := New(store.NopCounterStore{}, mapSource{}, config.ReconcilerConfig{Interval: 10 * time.Millisecond})
	r.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(store.NopCounterStore{}, mapSource{}, config.ReconcilerConfig{})
	r.Start(ctx)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop on context cancel")
	}
}
