package push

import (
	"sync"

	"go.uber.org/zap"
)

const clientBufferSize = 16

// Envelope is one push-channel message. Payloads are advisory: clients are
// expected to re-fetch via the API rather than trust them as source of truth.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Client is one connected socket's seat in the hub.
type Client struct {
	room string
	send chan Envelope
}

// Receive exposes the client's outbound queue for the socket write loop.
func (c *Client) Receive() <-chan Envelope {
	return c.send
}

// Room returns the room the client joined.
func (c *Client) Room() string {
	return c.room
}

// Hub is the room registry for the push channel: room id (user id) to the
// set of connected clients. It is process-local and rebuilt from scratch on
// restart; delivery is best-effort with no queueing for absent clients.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	logger *zap.Logger
}

// NewHub constructs an empty registry. Build one per process and inject it;
// the hub is never ambient state.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

// Join registers a new client in the given room and returns its handle.
func (h *Hub) Join(room string) *Client {
	client := &Client{room: room, send: make(chan Envelope, clientBufferSize)}

	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("client joined room", zap.String("room", room))
	return client
}

// Leave removes the client and closes its queue. Safe to call once per
// client; membership cleanup happens here on socket teardown.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	if members, ok := h.rooms[client.room]; ok {
		if _, present := members[client]; present {
			delete(members, client)
			close(client.send)
		}
		if len(members) == 0 {
			delete(h.rooms, client.room)
		}
	}
	h.mu.Unlock()
}

// Broadcast delivers the envelope to every current member of the room.
// Clients whose buffers are full are skipped: a slow consumer misses events
// rather than blocking the dispatch point.
func (h *Hub) Broadcast(room string, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		h.deliver(client, env)
	}
}

// BroadcastAll delivers the envelope to every connected client.
func (h *Hub) BroadcastAll(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, members := range h.rooms {
		for client := range members {
			h.deliver(client, env)
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) deliver(client *Client, env Envelope) {
	select {
	case client.send <- env:
	default:
		h.logger.Debug("dropping push event for slow client",
			zap.String("room", client.room), zap.String("event", env.Event))
	}
}
