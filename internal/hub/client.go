package hub

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/ratelimit"
	"github.com/codegram/codegram-live/pkg/log"
)

// Client is one websocket connection. UserID is the verified identity from
// the connection's token and is empty for anonymous clients.
type Client struct {
	ID      string
	UserID  string
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Limiter *ratelimit.Limiter
	config  config.WebSocketConfig
}

func NewClient(id, userID string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig, window time.Duration) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:      id,
		UserID:  userID,
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, buffer),
		Limiter: ratelimit.New(window),
		config:  cfg,
	}
}

// ReadPump hands each inbound frame to handler in arrival order. On any read
// error, including a missed pong, the client leaves every room and its rate
// limiter is released.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.Limiter.Stop()
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	if c.config.MaxMessageSize > 0 {
		c.Conn.SetReadLimit(c.config.MaxMessageSize)
	}
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldClientID, c.ID).Msg("websocket read error")
			}
			return
		}
		handler(c, message)
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
