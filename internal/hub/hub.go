// Package hub keeps the process-local room registry: which websocket
// clients are subscribed to which rooms.
package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/pkg/log"
)

type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // room -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomMessage
	done       chan struct{}
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// RoomMessage is a pre-encoded frame for every client in Room.
type RoomMessage struct {
	Room    string
	Message []byte
}

// Frame is the server to client envelope.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomMessage, 256),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// Run processes registrations and broadcasts until ctx is done. Once it
// returns every remaining client's send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	l := log.L()
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			clear(h.rooms)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l.Debug().Str(log.FieldClientID, client.ID).Str(log.FieldUserID, client.UserID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for room, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, room)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.rooms[msg.Room] {
				select {
				case client.Send <- msg.Message:
				default:
					l.Warn().Str(log.FieldClientID, client.ID).Str(log.FieldRoom, msg.Room).Msg("client send buffer full, dropping client")
					go h.Unregister(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed when Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Join subscribes client to room.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[client.ID] = client
}

// Leave unsubscribes client from room.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// BroadcastToRoom encodes event and payload as a Frame and queues it for
// every client currently in room.
func (h *Hub) BroadcastToRoom(room, event string, payload any) error {
	data, err := json.Marshal(Frame{Type: event, Data: payload})
	if err != nil {
		return err
	}
	h.BroadcastRaw(room, data)
	return nil
}

// BroadcastRaw queues an already encoded frame for room.
func (h *Hub) BroadcastRaw(room string, data []byte) {
	select {
	case h.broadcast <- &RoomMessage{Room: room, Message: data}:
	case <-h.done:
	}
}

// RoomSize returns the number of clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// InRoom reports whether client is subscribed to room.
func (h *Hub) InRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][client.ID]
	return ok
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
