package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait (seconds) drive the websocket heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub is the process-wide room registry: team id -> set of connections.
// Rooms exist only while they have members. Delivery is fire-and-forget; a
// client whose send buffer is full misses the event.
//
// With Redis configured the hub also bridges rooms across instances: events
// are published to the team's channel and each instance broadcasts to its
// local members on receipt.
type Hub struct {
	rooms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per room
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RoomPublisher
	sub    RoomSubscriber
}

// RoomPublisher publishes a room event for cross-instance delivery.
type RoomPublisher interface {
	PublishTeamEvent(teamID uuid.UUID, event string, payload []byte) error
}

// RoomSubscriber subscribes to a room's channel and invokes handler for
// incoming events.
type RoomSubscriber interface {
	SubscribeTeam(teamID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a hub. pub and sub may be nil, which degrades the hub to
// local-only broadcast.
func NewHub(logger *zap.Logger, pub RoomPublisher, sub RoomSubscriber) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Join adds a client to a team room. Idempotent; a client may be joined to
// several rooms at once. The first member of a room starts its Redis
// subscription.
func (h *Hub) Join(c *Client, teamID uuid.UUID) {
	h.mu.Lock()
	if h.rooms[teamID] == nil {
		h.rooms[teamID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeTeam(teamID, func(event string, payload []byte) {
				h.Broadcast(teamID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[teamID] = cancel
			}
		}
	}
	h.rooms[teamID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined room", zap.String("client_id", c.ID), zap.String("team_id", teamID.String()))
}

// RemoveClient drops a client from every room it joined. The last member to
// leave a room cancels its Redis subscription.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	for teamID, room := range h.rooms {
		if _, ok := room[c.ID]; !ok {
			continue
		}
		delete(room, c.ID)
		if len(room) == 0 {
			delete(h.rooms, teamID)
			if cancel, ok := h.subs[teamID]; ok {
				cancel()
				delete(h.subs, teamID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID))
}

// Broadcast sends an event to every local member of a team room, the sender
// included.
func (h *Hub) Broadcast(teamID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	room := h.rooms[teamID]
	clients := make([]*Client, 0, len(room))
	for _, c := range room {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish routes an event through Redis so every instance (this one
// included) delivers it exactly once to its local room members. Without
// Redis it falls back to a direct local broadcast.
func (h *Hub) Publish(teamID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		_ = h.pub.PublishTeamEvent(teamID, event, data)
		return
	}
	h.Broadcast(teamID, event, json.RawMessage(data))
}

// RoomSize returns the number of local connections in a team room.
func (h *Hub) RoomSize(teamID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[teamID])
}
