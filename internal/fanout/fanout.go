// Package fanout pushes an author's events to every follower's room.
package fanout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/pkg/log"
)

const (
	defaultConcurrency = 32
	defaultTimeout     = 30 * time.Second
)

// FollowerSource lists the followers of a user.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// Broadcaster emits to followers' rooms. Emission is best effort: failures
// are logged and never returned.
type Broadcaster struct {
	followers   FollowerSource
	rt          realtime.Broadcaster
	concurrency int
	timeout     time.Duration
}

// New creates a fan-out broadcaster. concurrency bounds in-flight room
// emissions and timeout bounds one whole fan-out; non-positive values use
// the defaults.
func New(followers FollowerSource, rt realtime.Broadcaster, concurrency int, timeout time.Duration) *Broadcaster {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Broadcaster{followers: followers, rt: rt, concurrency: concurrency, timeout: timeout}
}

// EmitToFollowers sends event to user:<follower> for every follower of
// authorID and to user:<authorID>. Order across rooms is unspecified.
func (b *Broadcaster) EmitToFollowers(ctx context.Context, authorID, event string, payload any) {
	l := log.Ctx(ctx)
	if authorID == "" || event == "" || payload == nil {
		l.Warn().Str(log.FieldAuthorID, authorID).Str(log.FieldEvent, event).Msg("invalid parameters for fan-out")
		return
	}

	// Emission outlives the request but not the fan-out deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	followerIDs, err := b.followers.FollowerIDs(ctx, authorID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldAuthorID, authorID).Str(log.FieldEvent, event).Msg("fan-out follower lookup failed")
		followerIDs = nil
	}

	rooms := make([]string, 0, len(followerIDs)+1)
	for _, id := range followerIDs {
		if id != authorID {
			rooms = append(rooms, realtime.UserRoom(id))
		}
	}
	rooms = append(rooms, realtime.UserRoom(authorID))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for _, room := range rooms {
		g.Go(func() error {
			if err := b.rt.EmitToRoom(ctx, room, event, payload); err != nil {
				l.Error().Err(err).Str(log.FieldRoom, room).Str(log.FieldEvent, event).Msg("fan-out emit failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	l.Debug().
		Str(log.FieldAuthorID, authorID).
		Str(log.FieldEvent, event).
		Int("follower_count", len(followerIDs)).
		Msg("event emitted to followers")
}
