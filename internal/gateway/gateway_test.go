package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/hub"
	"github.com/codegram/codegram-live/pkg/jwt"
	"github.com/codegram/codegram-live/pkg/middleware"
)

var (
	testWS = config.WebSocketConfig{
		PingInterval:   time.Second,
		PongWait:       5 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     16,
	}
	testLimits = config.RateLimitConfig{
		Window:           time.Minute,
		JoinUserRoom:     5,
		JoinContentRoom:  10,
		LeaveContentRoom: 10,
	}
)

type fixture struct {
	hub     *hub.Hub
	handler *Handler
	tokens  *jwt.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := jwt.NewManager("test-secret", time.Hour, "codegram")
	require.NoError(t, err)

	h := hub.NewHub(testWS)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})

	return &fixture{
		hub:     h,
		handler: NewHandler(h, middleware.NewAuthMiddleware(tokens), testWS, testLimits, nil),
		tokens:  tokens,
	}
}

func (f *fixture) client(t *testing.T, userID string) *hub.Client {
	t.Helper()
	c := hub.NewClient("c-"+userID, userID, f.hub, nil, testWS, testLimits.Window)
	t.Cleanup(c.Limiter.Stop)
	return c
}

func TestJoinUserRoom_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "u1")

	for name, v := range map[string]any{
		"empty":      "",
		"too long":   strings.Repeat("u", 51),
		"non-string": float64(12345),
		"other user": "u2",
	} {
		t.Run(name, func(t *testing.T) {
			c.Limiter.Reset()
			assert.False(t, f.handler.JoinUserRoom(c, v))
		})
	}
	assert.Zero(t, f.hub.RoomSize("user:u2"))

	c.Limiter.Reset()
	assert.True(t, f.handler.JoinUserRoom(c, "u1"))
	assert.True(t, f.hub.InRoom(c, "user:u1"))
}

func TestJoinUserRoom_AnonymousRejected(t *testing.T) {
	f := newFixture(t)
	anon := f.client(t, "")
	assert.False(t, f.handler.JoinUserRoom(anon, ""))
	assert.False(t, f.handler.JoinUserRoom(anon, "u1"))
	assert.True(t, f.handler.JoinContentRoom(anon, "snippet-1"))
}

func TestContentRoom_RateLimit(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "u1")

	for i := 0; i < 10; i++ {
		require.True(t, f.handler.JoinContentRoom(c, "content-1"), "join %d", i+1)
	}
	assert.False(t, f.handler.JoinContentRoom(c, "content-2"), "11th join in the window is dropped")
	assert.Zero(t, f.hub.RoomSize("content:content-2"))

	assert.True(t, f.handler.LeaveContentRoom(c, "content-1"), "leave has its own counter")
	assert.Zero(t, f.hub.RoomSize("content:content-1"))

	c.Limiter.Reset()
	assert.True(t, f.handler.JoinContentRoom(c, "content-2"))
}

func TestContentRoom_WindowResetByTimer(t *testing.T) {
	f := newFixture(t)
	c := hub.NewClient("c1", "", f.hub, nil, testWS, 50*time.Millisecond)
	defer c.Limiter.Stop()

	for i := 0; i < 10; i++ {
		f.handler.JoinContentRoom(c, "content-1")
	}
	require.False(t, f.handler.JoinContentRoom(c, "content-1"))

	assert.Eventually(t, func() bool {
		return f.handler.JoinContentRoom(c, "content-1")
	}, time.Second, 20*time.Millisecond)
}

func TestHandleMessage_DecodesFrames(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "u1")

	f.handler.HandleMessage(c, []byte(`{"type":"join-content-room","data":"doc-9"}`))
	assert.True(t, f.hub.InRoom(c, "content:doc-9"))

	f.handler.HandleMessage(c, []byte(`{"type":"join-content-room","data":12345}`))
	f.handler.HandleMessage(c, []byte(`{"type":"join-content-room"}`))
	f.handler.HandleMessage(c, []byte(`not json`))
	f.handler.HandleMessage(c, []byte(`{"type":"unknown","data":"x"}`))
	assert.Zero(t, f.hub.RoomSize("content:12345"))

	f.handler.HandleMessage(c, []byte(`{"type":"leave-content-room","data":"doc-9"}`))
	assert.False(t, f.hub.InRoom(c, "content:doc-9"))
}

func TestServeHTTP_EndToEnd(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	token, _, err := f.tokens.GenerateAccessToken("alice-id", "alice", "USER")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "join-user-room", "data": "alice-id"}))
	require.Eventually(t, func() bool { return f.hub.RoomSize("user:alice-id") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.hub.BroadcastToRoom("user:alice-id", "new-follower", map[string]string{"username": "bob"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "new-follower", frame.Type)
	assert.JSONEq(t, `{"username":"bob"}`, string(frame.Data))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.hub.RoomSize("user:alice-id") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeHTTP_InvalidTokenRejected(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
