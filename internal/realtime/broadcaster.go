package realtime

import (
	"context"
	"fmt"

	"github.com/codegram/codegram-live/pkg/pubsub"
)

// Broadcaster emits an event to every connection in a room, wherever that
// connection is held.
type Broadcaster interface {
	EmitToRoom(ctx context.Context, room, event string, payload any) error
}

// BusBroadcaster publishes room events to the message bus.
type BusBroadcaster struct {
	pub pubsub.Publisher
}

// NewBusBroadcaster creates a broadcaster over pub.
func NewBusBroadcaster(pub pubsub.Publisher) *BusBroadcaster {
	return &BusBroadcaster{pub: pub}
}

// EmitToRoom publishes event with payload on the room's channel.
func (b *BusBroadcaster) EmitToRoom(ctx context.Context, room, event string, payload any) error {
	ev, err := pubsub.NewEvent(event, room, payload)
	if err != nil {
		return fmt.Errorf("encode %s for %s: %w", event, room, err)
	}
	if err := b.pub.Publish(ctx, pubsub.RoomChannel(room), ev); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, room, err)
	}
	return nil
}

var _ Broadcaster = (*BusBroadcaster)(nil)
