package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan WSMessage
	logger *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop. The socket
// carries no credentials and room joins are unchecked; a known gap kept for
// client compatibility (see DESIGN.md).
func ServeWs(hub *Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:     uuid.New().String(),
			hub:    hub,
			conn:   conn,
			send:   make(chan WSMessage, 256),
			logger: logger,
		}
		go client.writePump()
		client.readPump()
	}
}

// teamEvent is the payload shape shared by joinTeam and sendMessage; both
// carry the target room in teamId.
type teamEvent struct {
	TeamID string `json:"teamId"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "joinTeam":
			if teamID, ok := c.parseTeamID(msg.Data); ok {
				c.hub.Join(c, teamID)
			}
		case "sendMessage":
			// Relay to the room named by the payload's teamId, sender
			// included. Persistence is a separate REST write path; the two
			// are not linked and may race.
			if teamID, ok := c.parseTeamID(msg.Data); ok {
				c.hub.Publish(teamID, "newMessage", json.RawMessage(msg.Data))
			}
		default:
			// no error channel: unknown and malformed events are dropped
		}
	}
}

// parseTeamID extracts the room id from an event payload. Malformed payloads
// are silently ignored.
func (c *Client) parseTeamID(data json.RawMessage) (uuid.UUID, bool) {
	var ev teamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return uuid.Nil, false
	}
	teamID, err := uuid.Parse(ev.TeamID)
	if err != nil {
		return uuid.Nil, false
	}
	return teamID, true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
