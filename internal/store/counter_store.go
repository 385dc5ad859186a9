package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	counterKeyPrefix = "codegram:count:"
	versionKeyPrefix = "codegram:countver:"
	hotKeyScoresKey  = "codegram:hotkey:scores"

	// DefaultCounterTTL bounds how long a cached counter lives without a
	// reload.
	DefaultCounterTTL = 10 * time.Minute
)

// CounterKind names what a counter counts.
type CounterKind string

const (
	CounterFollowers CounterKind = "followers"
	CounterLikes     CounterKind = "likes"
	CounterBookmarks CounterKind = "bookmarks"
	CounterUnread    CounterKind = "unread"
)

// CounterKey identifies one cached counter. For likes and bookmarks ID is
// "<contentKind>:<contentID>", otherwise a user ID.
type CounterKey struct {
	Kind CounterKind
	ID   string
}

func (k CounterKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// ParseCounterKey reverses CounterKey.String.
func ParseCounterKey(s string) (CounterKey, bool) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return CounterKey{}, false
	}
	switch CounterKind(kind) {
	case CounterFollowers, CounterLikes, CounterBookmarks, CounterUnread:
		return CounterKey{Kind: CounterKind(kind), ID: id}, true
	}
	return CounterKey{}, false
}

// CounterStore caches counters and tracks which ones are read most.
//
// A cache fill is a Version read, a database load, then Fill with the version
// read first. Every write path bumps the version, so a fill that raced a
// write is rejected and the next read loads again.
type CounterStore interface {
	Get(ctx context.Context, key CounterKey) (int64, bool, error)
	Version(ctx context.Context, key CounterKey) (int64, error)
	Fill(ctx context.Context, key CounterKey, count, version int64) (bool, error)
	CondIncr(ctx context.Context, key CounterKey) error
	CondDecr(ctx context.Context, key CounterKey) error
	Delete(ctx context.Context, key CounterKey) error
	RecordAccess(ctx context.Context, key CounterKey) error
	GetTopHotKeys(ctx context.Context, n int64) ([]CounterKey, error)
	ResetHotKeyScores(ctx context.Context) error
	Close() error
}

// RedisCounterStore implements CounterStore backed by Redis.
type RedisCounterStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCounterStore connects to Redis and verifies the connection. Cached
// counters expire after ttl; non-positive values use DefaultCounterTTL.
func NewRedisCounterStore(address, password string, db int, ttl time.Duration) (*RedisCounterStore, error) {
	if ttl <= 0 {
		ttl = DefaultCounterTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCounterStore{client: client, ttl: ttl}, nil
}

func redisKey(key CounterKey) string {
	return counterKeyPrefix + key.String()
}

func versionKey(key CounterKey) string {
	return versionKeyPrefix + key.String()
}

func (s *RedisCounterStore) keys(key CounterKey) []string {
	return []string{redisKey(key), versionKey(key)}
}

func (s *RedisCounterStore) ttlMillis() int64 {
	return s.ttl.Milliseconds()
}

// Get returns (count, true, nil) on hit and (0, false, nil) on miss.
func (s *RedisCounterStore) Get(ctx context.Context, key CounterKey) (int64, bool, error) {
	val, err := s.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get counter: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse counter %s: %w", key, err)
	}
	return count, true, nil
}

// Set overwrites a counter without a version check.
func (s *RedisCounterStore) Set(ctx context.Context, key CounterKey, count int64) error {
	if err := s.client.Set(ctx, redisKey(key), count, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set counter: %w", err)
	}
	return nil
}

// Version returns the key's write version, 0 if it was never written.
func (s *RedisCounterStore) Version(ctx context.Context, key CounterKey) (int64, error) {
	v, err := s.client.Get(ctx, versionKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get counter version: %w", err)
	}
	return v, nil
}

// fillScript stores the count only if no write bumped the version since it
// was read.
var fillScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[2]) or "0")
if current ~= tonumber(ARGV[1]) then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Fill caches count if key's version still equals version. It reports
// whether the value was stored.
func (s *RedisCounterStore) Fill(ctx context.Context, key CounterKey, count, version int64) (bool, error) {
	n, err := fillScript.Run(ctx, s.client, s.keys(key), version, count, s.ttlMillis()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis fill counter: %w", err)
	}
	return n == 1, nil
}

// condIncrScript increments the key only if it exists, so a counter is never
// seeded from a single delta. The version is bumped either way.
var condIncrScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
if redis.call("EXISTS", KEYS[1]) == 1 then
  return redis.call("INCR", KEYS[1])
end
return 0
`)

// condDecrScript decrements the key only if it exists and stays >= 0. The
// version is bumped either way.
var condDecrScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
if redis.call("EXISTS", KEYS[1]) == 1 then
  local val = tonumber(redis.call("GET", KEYS[1]))
  if val and val > 0 then
    return redis.call("DECR", KEYS[1])
  end
end
return 0
`)

// deleteScript drops the counter and bumps its version.
var deleteScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return redis.call("DEL", KEYS[1])
`)

// CondIncr increments a cached counter if it is present.
func (s *RedisCounterStore) CondIncr(ctx context.Context, key CounterKey) error {
	err := condIncrScript.Run(ctx, s.client, s.keys(key), s.ttlMillis()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond incr counter: %w", err)
	}
	return nil
}

// CondDecr decrements a cached counter if it is present and positive.
func (s *RedisCounterStore) CondDecr(ctx context.Context, key CounterKey) error {
	err := condDecrScript.Run(ctx, s.client, s.keys(key), s.ttlMillis()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond decr counter: %w", err)
	}
	return nil
}

// Delete drops a cached counter so the next read reloads it.
func (s *RedisCounterStore) Delete(ctx context.Context, key CounterKey) error {
	if err := deleteScript.Run(ctx, s.client, s.keys(key), s.ttlMillis()).Err(); err != nil {
		return fmt.Errorf("redis delete counter: %w", err)
	}
	return nil
}

// RecordAccess bumps the key's score in the hot key sorted set.
func (s *RedisCounterStore) RecordAccess(ctx context.Context, key CounterKey) error {
	if err := s.client.ZIncrBy(ctx, hotKeyScoresKey, 1, key.String()).Err(); err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// GetTopHotKeys returns the n most read counter keys.
func (s *RedisCounterStore) GetTopHotKeys(ctx context.Context, n int64) ([]CounterKey, error) {
	members, err := s.client.ZRevRange(ctx, hotKeyScoresKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get top hot keys: %w", err)
	}
	keys := make([]CounterKey, 0, len(members))
	for _, m := range members {
		if k, ok := ParseCounterKey(m); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// ResetHotKeyScores clears the hot key sorted set.
func (s *RedisCounterStore) ResetHotKeyScores(ctx context.Context) error {
	if err := s.client.Del(ctx, hotKeyScoresKey).Err(); err != nil {
		return fmt.Errorf("redis reset hot key scores: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

var _ CounterStore = (*RedisCounterStore)(nil)
