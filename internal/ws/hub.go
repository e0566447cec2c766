package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client wraps a websocket connection. Writes are serialized through a mutex
// since broadcasts and error replies race on the same connection.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	Info    ConnInfo
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{conn: conn, Info: info}
}

// Send writes a single text frame.
func (c *Client) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Hub is the in-process registry of room subscriptions. It only knows about
// connections on this instance; cross-instance visibility comes from the
// broker feeding Broadcast on every node.
type Hub struct {
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Join subscribes a client to a room group.
func (h *Hub) Join(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// Leave removes a client from a room group.
func (h *Hub) Leave(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// LeaveAll removes a client from every room group it joined.
func (h *Hub) LeaveAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, clients := range h.rooms {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// RoomSize reports how many local connections are joined to the room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Broadcast delivers the payload to every local connection in the room group.
// Fire-and-forget: a failed write drops that subscriber and nothing else.
func (h *Hub) Broadcast(roomID string, payload []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for client := range h.rooms[roomID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.Send(payload); err != nil {
			log.Warn().Err(err).Str("room_id", roomID).Msg("websocket write failed, dropping client")
			client.Close()
			h.Leave(roomID, client)
		}
	}
}
