package realtime

import (
	"fmt"
	"sync"

	"github.com/bhakti2406/local-service-finder/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminRoom is the shared room every connected admin joins. Publishing to it
// fans out to the whole admin pool.
const AdminRoom = "role:admin"

// UserRoom names the private room of a single user.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// Client is one realtime connection. A user connected from two devices holds
// two clients in the same rooms.
type Client struct {
	ID     string
	UserID int64
	Send   chan []byte
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[string]*Client
	sendBuffer int
	logger     *zerolog.Logger
}

func NewHub(sendBuffer int, logger *zerolog.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// NewClient allocates a client with a bounded send buffer. The client is not
// visible to Publish until Register.
func (h *Hub) NewClient(userID int64) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, h.sendBuffer),
	}
}

// Register places the client into the given rooms.
func (h *Hub) Register(client *Client, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[string]*Client)
			h.rooms[room] = members
		}
		members[client.ID] = client
	}
}

// Unregister removes the client from every room and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	found := false
	for room, members := range h.rooms {
		if _, ok := members[client.ID]; !ok {
			continue
		}
		found = true
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if found {
		close(client.Send)
	}
}

// Publish delivers the payload to every current member of the room. Sends are
// non-blocking: a client whose buffer is full loses this frame, never stalls
// the publisher.
func (h *Hub) Publish(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[room] {
		select {
		case client.Send <- payload:
		default:
			metrics.IncDroppedFrame()
			h.logger.Warn().
				Str("client_id", client.ID).
				Int64("user_id", client.UserID).
				Str("room", room).
				Msg("dropping frame for slow client")
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
