package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisCounterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisCounterStore(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestCounterKey_RoundTrip(t *testing.T) {
	key := CounterKey{Kind: CounterLikes, ID: "snippet:abc"}
	assert.Equal(t, "likes:snippet:abc", key.String())

	got, ok := ParseCounterKey(key.String())
	require.True(t, ok)
	assert.Equal(t, key, got)

	for _, bad := range []string{"", "likes", "likes:", "views:1"} {
		_, ok := ParseCounterKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestRedisCounterStore_CondIncrDecr(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	key := CounterKey{Kind: CounterFollowers, ID: "u1"}

	require.NoError(t, s.CondIncr(ctx, key))
	_, hit, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit, "missing counter must not be seeded by an increment")

	require.NoError(t, s.Set(ctx, key, 1))
	require.NoError(t, s.CondIncr(ctx, key))
	n, hit, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 2, n)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CondDecr(ctx, key))
	}
	n, _, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n, "counter must not go negative")
	assert.True(t, mr.Exists("codegram:count:followers:u1"))

	require.NoError(t, s.Delete(ctx, key))
	_, hit, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCounterStore_HotKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	hot := CounterKey{Kind: CounterUnread, ID: "u1"}
	cold := CounterKey{Kind: CounterLikes, ID: "doc:d1"}

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordAccess(ctx, hot))
	}
	require.NoError(t, s.RecordAccess(ctx, cold))

	keys, err := s.GetTopHotKeys(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []CounterKey{hot}, keys)

	require.NoError(t, s.ResetHotKeyScores(ctx))
	keys, err = s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisCounterStore_FillRejectsRacedWrite(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	key := CounterKey{Kind: CounterUnread, ID: "u1"}

	v, err := s.Version(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, v)

	// A write lands between the version read and the fill.
	require.NoError(t, s.CondIncr(ctx, key))
	stored, err := s.Fill(ctx, key, 0, v)
	require.NoError(t, err)
	assert.False(t, stored)
	_, hit, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	v, err = s.Version(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	stored, err = s.Fill(ctx, key, 1, v)
	require.NoError(t, err)
	assert.True(t, stored)

	n, hit, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, time.Minute, mr.TTL("codegram:count:unread:u1"))

	mr.FastForward(2 * time.Minute)
	_, hit, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit, "cached counters expire")
}

func TestRedisCounterStore_DeleteBumpsVersion(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	key := CounterKey{Kind: CounterFollowers, ID: "u2"}

	v, err := s.Version(ctx, key)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, key))

	stored, err := s.Fill(ctx, key, 5, v)
	require.NoError(t, err)
	assert.False(t, stored)
}
