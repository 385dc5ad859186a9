// Package gateway serves the websocket endpoint and applies client room
// events to the hub.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/hub"
	"github.com/codegram/codegram-live/internal/realtime"
	"github.com/codegram/codegram-live/internal/validation"
	"github.com/codegram/codegram-live/pkg/jwt"
	"github.com/codegram/codegram-live/pkg/log"
)

var errNotOwnRoom = errors.New("user room does not belong to the connection")

// Authenticator resolves a request's bearer token. It returns nil claims for
// anonymous requests.
type Authenticator interface {
	Authenticate(r *http.Request) (*jwt.Claims, error)
}

// inbound is the client to server frame: {"type": "...", "data": ...}.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Handler struct {
	hub      *hub.Hub
	auth     Authenticator
	upgrader websocket.Upgrader
	wsCfg    config.WebSocketConfig
	limits   config.RateLimitConfig
}

func NewHandler(h *hub.Hub, auth Authenticator, wsCfg config.WebSocketConfig, limits config.RateLimitConfig, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    h,
		auth:   auth,
		wsCfg:  wsCfg,
		limits: limits,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeHTTP upgrades the connection. A present but invalid token is rejected
// before the upgrade; no token yields an anonymous client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := log.Ctx(r.Context())

	claims, err := h.auth.Authenticate(r)
	if err != nil {
		l.Warn().Err(err).Msg("websocket auth failed")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	var userID string
	if claims != nil {
		userID = claims.UserID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.NewString(), userID, h.hub, conn, h.wsCfg, h.limits.Window)
	h.hub.Register(client)
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldUserID, userID).Msg("websocket connection established")

	go client.WritePump()
	go client.ReadPump(h.HandleMessage)
}

// HandleMessage dispatches one client frame. Rejected frames are logged and
// dropped without a reply.
func (h *Handler) HandleMessage(c *hub.Client, message []byte) {
	var msg inbound
	if err := json.Unmarshal(message, &msg); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldClientID, c.ID).Msg("invalid websocket frame")
		return
	}

	var data any
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			data = nil
		}
	}

	switch msg.Type {
	case domain.EventJoinUserRoom:
		h.JoinUserRoom(c, data)
	case domain.EventJoinContentRoom:
		h.JoinContentRoom(c, data)
	case domain.EventLeaveContentRoom:
		h.LeaveContentRoom(c, data)
	default:
		l := log.L()
		l.Warn().Str(log.FieldClientID, c.ID).Str(log.FieldEvent, msg.Type).Msg("unknown websocket event")
	}
}

// JoinUserRoom subscribes c to its own private room. The id must be a
// non-empty string of at most 50 characters equal to the connection's
// verified user id.
func (h *Handler) JoinUserRoom(c *hub.Client, v any) bool {
	if !h.allow(c, domain.EventJoinUserRoom, h.limits.JoinUserRoom) {
		return false
	}
	userID, err := validation.RoomID(v)
	if err == nil && userID != c.UserID {
		err = errNotOwnRoom
	}
	if err != nil {
		h.reject(c, domain.EventJoinUserRoom, v, err)
		return false
	}

	room := realtime.UserRoom(userID)
	h.hub.Join(c, room)
	l := log.L()
	l.Debug().Str(log.FieldClientID, c.ID).Str(log.FieldRoom, room).Msg("client joined user room")
	return true
}

// JoinContentRoom subscribes c to a content item's comment room.
func (h *Handler) JoinContentRoom(c *hub.Client, v any) bool {
	if !h.allow(c, domain.EventJoinContentRoom, h.limits.JoinContentRoom) {
		return false
	}
	contentID, err := validation.RoomID(v)
	if err != nil {
		h.reject(c, domain.EventJoinContentRoom, v, err)
		return false
	}

	room := realtime.ContentRoom(contentID)
	h.hub.Join(c, room)
	l := log.L()
	l.Debug().Str(log.FieldClientID, c.ID).Str(log.FieldRoom, room).Msg("client joined content room")
	return true
}

// LeaveContentRoom unsubscribes c from a content item's comment room.
func (h *Handler) LeaveContentRoom(c *hub.Client, v any) bool {
	if !h.allow(c, domain.EventLeaveContentRoom, h.limits.LeaveContentRoom) {
		return false
	}
	contentID, err := validation.RoomID(v)
	if err != nil {
		h.reject(c, domain.EventLeaveContentRoom, v, err)
		return false
	}

	room := realtime.ContentRoom(contentID)
	h.hub.Leave(c, room)
	l := log.L()
	l.Debug().Str(log.FieldClientID, c.ID).Str(log.FieldRoom, room).Msg("client left content room")
	return true
}

func (h *Handler) allow(c *hub.Client, event string, limit int) bool {
	if c.Limiter.Allow(event, limit) {
		return true
	}
	l := log.L()
	l.Warn().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldEvent, event).
		Int("count", c.Limiter.Count(event)).
		Msg("websocket rate limit exceeded")
	return false
}

func (h *Handler) reject(c *hub.Client, event string, v any, err error) {
	l := log.L()
	l.Warn().
		Err(err).
		Str(log.FieldClientID, c.ID).
		Str(log.FieldUserID, c.UserID).
		Str(log.FieldEvent, event).
		Interface("value", v).
		Msg("rejected room event")
}
