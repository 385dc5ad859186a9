package fanout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/hub"
	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/internal/testutil"
	"github.com/codegram/codegram-live/pkg/log"
	"github.com/codegram/codegram-live/pkg/pubsub"
)

type staticFollowers struct {
	ids map[string][]string
	err error
}

func (s staticFollowers) FollowerIDs(_ context.Context, userID string) ([]string, error) {
	return s.ids[userID], s.err
}

func TestEmitToFollowers_ReachesFollowersAndAuthor(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(staticFollowers{ids: map[string][]string{"x": {"f1", "f2"}}}, rec, 2, 0)

	b.EmitToFollowers(context.Background(), "x", "new-snippet", map[string]string{"id": "s1"})

	assert.ElementsMatch(t, []string{"user:f1", "user:f2", "user:x"}, rec.Rooms("new-snippet"))
	assert.Len(t, rec.Emissions(), 3)
}

func TestEmitToFollowers_NoFollowersStillReachesAuthor(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(staticFollowers{}, rec, 0, 0)

	b.EmitToFollowers(context.Background(), "x", "new-doc", map[string]string{"id": "d1"})

	assert.Equal(t, []string{"user:x"}, rec.Rooms("new-doc"))
}

func TestEmitToFollowers_InvalidArgumentsEmitNothing(t *testing.T) {
	rec := &testutil.Recorder{}
	b := New(staticFollowers{ids: map[string][]string{"x": {"f1"}}}, rec, 0, 0)

	b.EmitToFollowers(context.Background(), "", "new-bug", "p")
	b.EmitToFollowers(context.Background(), "x", "", "p")
	b.EmitToFollowers(context.Background(), "x", "new-bug", nil)

	assert.Empty(t, rec.Emissions())
}

func TestEmitToFollowers_LogsAuthorField(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(log.Config{Level: "debug", Output: &buf}))

	New(staticFollowers{}, &testutil.Recorder{}, 0, 0).EmitToFollowers(ctx, "x", "", "p")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "x", entry[log.FieldAuthorID])
	assert.Equal(t, "author_id", log.FieldAuthorID)
}

func TestEmitToFollowers_FailuresAreSwallowed(t *testing.T) {
	rec := &testutil.Recorder{Err: errors.New("bus down")}
	b := New(staticFollowers{ids: map[string][]string{"x": {"f1"}}}, rec, 0, 0)

	assert.NotPanics(t, func() {
		b.EmitToFollowers(context.Background(), "x", "new-bug", "p")
	})
	assert.Len(t, rec.Emissions(), 2)

	rec = &testutil.Recorder{}
	b = New(staticFollowers{err: errors.New("db down")}, rec, 0, 0)
	b.EmitToFollowers(context.Background(), "x", "new-bug", "p")
	assert.Equal(t, []string{"user:x"}, rec.Rooms("new-bug"), "lookup failure still reaches the author")
}

func TestEmitToFollowers_ConnectedFollowersReceiveThroughSmallBus(t *testing.T) {
	const (
		followerCount = 5000
		connected     = 20
		busBuffer     = 16
	)

	bus := pubsub.NewMemoryPubSub(busBuffer)
	h := hub.NewHub(config.WebSocketConfig{SendBuffer: 8})
	relay := realtime.NewRelay(bus, h)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	go relay.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-relay.Done()
		<-h.Done()
		bus.Close()
	})

	join := func(userID string) *hub.Client {
		c := hub.NewClient("c-"+userID, userID, h, nil, config.WebSocketConfig{SendBuffer: 8}, time.Minute)
		t.Cleanup(c.Limiter.Stop)
		h.Register(c)
		h.Join(c, realtime.UserRoom(userID))
		return c
	}

	// Wait until the relay is subscribed.
	warm := join("warm")
	rt := realtime.NewBusBroadcaster(bus)
	require.Eventually(t, func() bool {
		_ = rt.EmitToRoom(ctx, realtime.UserRoom("warm"), "ping", "x")
		return len(warm.Send) > 0
	}, 2*time.Second, 10*time.Millisecond)

	ids := make([]string, followerCount)
	for i := range ids {
		ids[i] = fmt.Sprintf("f%04d", i)
	}
	clients := make([]*hub.Client, 0, connected)
	for i := 0; i < connected; i++ {
		clients = append(clients, join(ids[i*(followerCount/connected)]))
	}

	b := New(staticFollowers{ids: map[string][]string{"author": ids}}, rt, 0, 10*time.Second)
	b.EmitToFollowers(context.Background(), "author", "new-snippet", map[string]string{"id": "s1"})

	for _, c := range clients {
		select {
		case data := <-c.Send:
			var f hub.Frame
			require.NoError(t, json.Unmarshal(data, &f))
			assert.Equal(t, "new-snippet", f.Type, "client %s", c.ID)
		case <-time.After(2 * time.Second):
			t.Fatalf("connected follower %s missed the push", c.UserID)
		}
	}
}
