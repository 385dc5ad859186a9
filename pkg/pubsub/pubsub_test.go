package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestRoomChannel(t *testing.T) {
	ch := RoomChannel("user:42")
	assert.Equal(t, "codegram:room:user:42", ch)

	room, ok := RoomFromChannel(ch)
	require.True(t, ok)
	assert.Equal(t, "user:42", room)

	_, ok = RoomFromChannel("other:user:42")
	assert.False(t, ok)
}

func TestChannelToTopicAndKey(t *testing.T) {
	topic, key, err := channelToTopicAndKey(RoomChannel("content:abc"))
	require.NoError(t, err)
	assert.Equal(t, "codegram-room-content", topic)
	assert.Equal(t, "abc", key)

	_, _, err = channelToTopicAndKey("codegram:room:nokind")
	assert.Error(t, err)

	topics, err := patternToTopics(PatternAllRooms)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"codegram-room-user", "codegram-room-content"}, topics)

	topics, err = patternToTopics("codegram:room:user:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"codegram-room-user"}, topics)
}

func TestMemoryPubSub_PatternAndChannel(t *testing.T) {
	bus := NewMemoryPubSub(8)
	defer bus.Close()
	ctx := context.Background()

	all, err := bus.SubscribePattern(ctx, PatternAllRooms)
	require.NoError(t, err)
	one, err := bus.Subscribe(ctx, RoomChannel("user:1"))
	require.NoError(t, err)

	ev, err := NewEvent("new_notification", "user:1", map[string]string{"id": "n1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, RoomChannel("user:1"), ev))

	got := receive(t, all)
	assert.Equal(t, "user:1", got.Room)
	got = receive(t, one)
	assert.Equal(t, "new_notification", got.Type)

	var payload map[string]string
	require.NoError(t, got.UnmarshalPayload(&payload))
	assert.Equal(t, "n1", payload["id"])

	other, err := NewEvent("x", "user:2", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, RoomChannel("user:2"), other))
	assert.Equal(t, "user:2", receive(t, all).Room)
	select {
	case <-one:
		t.Fatal("user:1 subscriber received user:2 event")
	default:
	}
}

func TestMemoryPubSub_ContextCancelClosesChannel(t *testing.T) {
	bus := NewMemoryPubSub(1)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, "c")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryPubSub_ClosedRejectsPublish(t *testing.T) {
	bus := NewMemoryPubSub(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, _ := NewEvent("x", "user:1", nil)
	assert.ErrorIs(t, bus.Publish(context.Background(), "c", ev), ErrClosed)
}

func TestMemoryPubSub_FullSubscriberBlocksInsteadOfDropping(t *testing.T) {
	bus := NewMemoryPubSub(2)
	defer bus.Close()
	ctx := context.Background()

	ch, err := bus.Subscribe(ctx, "c")
	require.NoError(t, err)

	const total = 50
	published := make(chan error, 1)
	go func() {
		for i := 0; i < total; i++ {
			ev, _ := NewEvent("tick", "user:1", i)
			if err := bus.Publish(ctx, "c", ev); err != nil {
				published <- err
				return
			}
		}
		published <- nil
	}()

	for i := 0; i < total; i++ {
		receive(t, ch)
	}
	require.NoError(t, <-published)
}

func TestMemoryPubSub_BlockedPublishHonoursContext(t *testing.T) {
	bus := NewMemoryPubSub(1)
	defer bus.Close()

	_, err := bus.Subscribe(context.Background(), "c")
	require.NoError(t, err)

	ev, _ := NewEvent("tick", "user:1", nil)
	require.NoError(t, bus.Publish(context.Background(), "c", ev))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(ctx, "c", ev), context.DeadlineExceeded)
}

func TestMemoryPubSub_CloseReleasesBlockedPublisher(t *testing.T) {
	bus := NewMemoryPubSub(1)

	_, err := bus.Subscribe(context.Background(), "c")
	require.NoError(t, err)

	ev, _ := NewEvent("tick", "user:1", nil)
	require.NoError(t, bus.Publish(context.Background(), "c", ev))

	published := make(chan error, 1)
	go func() { published <- bus.Publish(context.Background(), "c", ev) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, bus.Close())

	select {
	case err := <-published:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("publisher still blocked after Close")
	}
}

func TestRedisPubSub_PatternDelivery(t *testing.T) {
	mr := miniredis.RunT(t)

	bus, err := NewRedisPubSub(RedisConfig{Address: mr.Addr()}, 8)
	require.NoError(t, err)
	defer bus.Close()

	ctx := context.Background()
	ch, err := bus.SubscribePattern(ctx, PatternAllRooms)
	require.NoError(t, err)

	ev, err := NewEvent("new_comment", "content:9", map[string]string{"id": "c1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, RoomChannel("content:9"), ev))

	got := receive(t, ch)
	assert.Equal(t, "new_comment", got.Type)
	assert.Equal(t, "content:9", got.Room)
}

func TestNewPubSub_UnknownDriver(t *testing.T) {
	_, err := NewPubSub(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)

	ps, err := NewPubSub(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &MemoryPubSub{}, ps)
	require.NoError(t, ps.Close())
}
