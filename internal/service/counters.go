package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/internal/store"
	"github.com/codegram/codegram-live/pkg/log"
)

// Counters serves counts from the cache and falls back to the database.
// Cache failures degrade to database reads and are never returned.
type Counters struct {
	store         store.CounterStore
	follows       repository.FollowRepository
	likes         repository.ReactionRepository
	bookmarks     repository.ReactionRepository
	notifications repository.NotificationRepository
}

func NewCounters(
	s store.CounterStore,
	follows repository.FollowRepository,
	likes repository.ReactionRepository,
	bookmarks repository.ReactionRepository,
	notifications repository.NotificationRepository,
) *Counters {
	return &Counters{
		store:         s,
		follows:       follows,
		likes:         likes,
		bookmarks:     bookmarks,
		notifications: notifications,
	}
}

func followersKey(userID string) store.CounterKey {
	return store.CounterKey{Kind: store.CounterFollowers, ID: userID}
}

func unreadKey(userID string) store.CounterKey {
	return store.CounterKey{Kind: store.CounterUnread, ID: userID}
}

func contentKey(kind store.CounterKind, contentKind domain.ContentKind, id string) store.CounterKey {
	return store.CounterKey{Kind: kind, ID: string(contentKind) + ":" + id}
}

// Get returns the count for key, populating the cache on a miss.
func (c *Counters) Get(ctx context.Context, key store.CounterKey) (int64, error) {
	l := log.Ctx(ctx)

	if err := c.store.RecordAccess(ctx, key); err != nil {
		l.Warn().Err(err).Str("counter", key.String()).Msg("failed to record hot key access")
	}

	count, found, err := c.store.Get(ctx, key)
	if err != nil {
		l.Warn().Err(err).Str("counter", key.String()).Msg("counter cache read failed, falling back to db")
	}
	if found {
		return count, nil
	}

	return c.Refresh(ctx, key)
}

// Refresh loads the count for key from the database and caches it unless a
// write raced the load.
func (c *Counters) Refresh(ctx context.Context, key store.CounterKey) (int64, error) {
	l := log.Ctx(ctx)

	version, verr := c.store.Version(ctx, key)
	if verr != nil {
		l.Warn().Err(verr).Str("counter", key.String()).Msg("counter version read failed, skipping cache fill")
	}

	count, err := c.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	if verr != nil {
		return count, nil
	}

	stored, err := c.store.Fill(ctx, key, count, version)
	if err != nil {
		l.Warn().Err(err).Str("counter", key.String()).Msg("failed to populate counter cache")
	} else if !stored {
		l.Debug().Str("counter", key.String()).Msg("counter changed during load, cache fill skipped")
	}
	return count, nil
}

// Load computes the count for key from the database.
func (c *Counters) Load(ctx context.Context, key store.CounterKey) (int64, error) {
	switch key.Kind {
	case store.CounterFollowers:
		return c.follows.FollowersCount(ctx, key.ID)
	case store.CounterUnread:
		return c.notifications.UnreadCount(ctx, key.ID)
	case store.CounterLikes, store.CounterBookmarks:
		kind, id, ok := strings.Cut(key.ID, ":")
		if !ok {
			return 0, fmt.Errorf("malformed counter key %s", key)
		}
		repo := c.likes
		if key.Kind == store.CounterBookmarks {
			repo = c.bookmarks
		}
		return repo.Count(ctx, domain.ContentKind(kind), id)
	}
	return 0, fmt.Errorf("unknown counter kind %q", key.Kind)
}

// Incr bumps a cached counter after a row was inserted.
func (c *Counters) Incr(ctx context.Context, key store.CounterKey) {
	if err := c.store.CondIncr(ctx, key); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("counter", key.String()).Msg("failed to increment counter cache")
	}
}

// Decr lowers a cached counter after a row was deleted.
func (c *Counters) Decr(ctx context.Context, key store.CounterKey) {
	if err := c.store.CondDecr(ctx, key); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("counter", key.String()).Msg("failed to decrement counter cache")
	}
}

// Invalidate drops a cached counter so the next read reloads it.
func (c *Counters) Invalidate(ctx context.Context, key store.CounterKey) {
	if err := c.store.Delete(ctx, key); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("counter", key.String()).Msg("failed to invalidate counter cache")
	}
}
