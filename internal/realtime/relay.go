package realtime

import (
	"context"
	"time"

	"github.com/codegram/codegram-live/pkg/log"
	"github.com/codegram/codegram-live/pkg/pubsub"
)

// RoomSink delivers a frame to the local members of a room.
type RoomSink interface {
	BroadcastToRoom(room, event string, payload any) error
}

// Relay subscribes to every room channel on the bus and hands events to the
// local hub.
type Relay struct {
	sub    pubsub.Subscriber
	sink   RoomSink
	doneCh chan struct{}
}

// NewRelay creates a relay from sub to sink.
func NewRelay(sub pubsub.Subscriber, sink RoomSink) *Relay {
	return &Relay{
		sub:    sub,
		sink:   sink,
		doneCh: make(chan struct{}),
	}
}

// Done returns a channel that is closed when Run exits.
func (r *Relay) Done() <-chan struct{} { return r.doneCh }

// Run relays events until ctx is done, resubscribing when the bus drops the
// subscription.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.doneCh)
	l := log.L()

	for {
		err := r.runSubscription(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.Warn().Err(err).Msg("relay subscription error, resubscribing in 2s")
		} else {
			l.Warn().Msg("relay subscription closed, resubscribing in 2s")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *Relay) runSubscription(ctx context.Context) error {
	events, err := r.sub.SubscribePattern(ctx, pubsub.PatternAllRooms)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.handleEvent(ev)
		}
	}
}

func (r *Relay) handleEvent(ev *pubsub.Event) {
	if ev == nil || ev.Room == "" || ev.Type == "" {
		return
	}
	if err := r.sink.BroadcastToRoom(ev.Room, ev.Type, ev.Payload); err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldRoom, ev.Room).Str(log.FieldEvent, ev.Type).Msg("relay broadcast error")
	}
}
