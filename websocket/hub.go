package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/services"
)

const (
	EventIdentified      = "identified"
	EventMessageReceived = "message_received"
)

// Event is the server-to-client frame envelope.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Conn is the slice of the websocket connection the hub needs. Satisfied by
// *websocket.Conn from gofiber/contrib.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Client is one live connection. A user with several tabs open holds
// several clients, all members of the same identity room.
type Client struct {
	UserID uuid.UUID
	Conn   Conn

	mu sync.Mutex
}

// Send writes one JSON frame. Serialized per client because the gateway may
// relay to the same connection from several publishes at once.
func (c *Client) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maps rooms (a user's identity or one conversation) to the clients
// subscribed to them. Membership is ephemeral: it lives for the process and
// is rebuilt from zero on restart, since clients re-identify on reconnect.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Join subscribes a client to a room. Idempotent.
func (h *Hub) Join(client *Client, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
}

// Leave unsubscribes a client from a room.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RemoveClient releases every room membership for a disconnected client.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish broadcasts an event to every member of a room.
func (h *Hub) Publish(room string, event Event) {
	for _, client := range h.members(room) {
		if err := client.Send(event); err != nil {
			log.Printf("Error sending %s to client %s: %v", event.Event, client.UserID, err)
		}
	}
}

// RelayMessage delivers a persisted message to the conversation's room and
// to each participant's identity room, never back to the sender's own
// connections and at most once per connection. Implements services.Notifier.
func (h *Hub) RelayMessage(message *services.MessageResponse, participantIDs []uuid.UUID) {
	if message == nil || len(participantIDs) == 0 {
		log.Printf("Dropping relay with missing participants for message %v", message)
		return
	}

	senderID := message.Sender.ID
	targets := make(map[*Client]struct{})

	for _, client := range h.members(message.ConversationID.String()) {
		targets[client] = struct{}{}
	}
	for _, participantID := range participantIDs {
		if participantID == senderID {
			continue
		}
		for _, client := range h.members(participantID.String()) {
			targets[client] = struct{}{}
		}
	}

	event := Event{Event: EventMessageReceived, Data: message}
	for client := range targets {
		if client.UserID == senderID {
			continue
		}
		if err := client.Send(event); err != nil {
			log.Printf("Error relaying message to client %s: %v", client.UserID, err)
		}
	}
}

func (h *Hub) members(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	return members
}
