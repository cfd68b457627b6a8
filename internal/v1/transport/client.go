package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sketchroom/sketchroom/internal/v1/logging"
	"github.com/sketchroom/sketchroom/internal/v1/room"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// wsConnection defines the interface for WebSocket connection operations.
// In production this is *websocket.Conn; tests substitute mocks.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
}

// envelope is the wire frame for both directions: a named event with a
// JSON payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client represents a single user's connection. It implements
// types.ClientInterface. A client belongs to at most one room at a time;
// the slot is lost permanently when the socket drops.
type Client struct {
	conn wsConnection
	hub  *Hub

	id       types.ClientIDType
	username types.UsernameType
	color    string

	mu   sync.RWMutex // protects room, username, color, closed
	room *room.Room

	closed    bool
	closeOnce sync.Once

	send chan []byte // buffered outgoing frames
}

// --- types.ClientInterface ---

func (c *Client) GetID() types.ClientIDType {
	return c.id
}

func (c *Client) GetUsername() types.UsernameType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

func (c *Client) GetColor() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.color
}

// Send marshals the event envelope immediately and queues the frame. The
// channel is buffered; a slow consumer loses frames rather than blocking
// the room.
func (c *Client) Send(event string, payload any) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal event payload",
			zap.String("event", event), zap.Error(err))
		return
	}
	frame, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal event envelope",
			zap.String("event", event), zap.Error(err))
		return
	}

	// The channel may close between the flag check and the push.
	defer func() {
		if r := recover(); r != nil {
			logging.Warn(context.Background(), "Recovered from send on closed client",
				zap.String("user_id", string(c.id)))
		}
	}()

	select {
	case c.send <- frame:
	default:
		logging.Warn(context.Background(), "Client send channel full, dropping frame",
			zap.String("user_id", string(c.id)), zap.String("event", event))
	}
}

// Disconnect forcefully closes the connection.
func (c *Client) Disconnect() {
	c.conn.Close()
}

// --- Room binding ---

func (c *Client) getRoom() *room.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Client) setRoom(r *room.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = r
}

func (c *Client) setIdentity(username types.UsernameType, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
	c.color = color
}

// --- Pumps ---

// readPump continuously processes incoming frames from the client and routes
// them: room lifecycle events to the hub, everything else to the bound room.
func (c *Client) readPump() {
	defer func() {
		c.hub.handleDisconnect(c)
		c.markClosed()
		c.conn.Close()
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Warn(context.Background(), "Failed to unmarshal frame",
				zap.String("user_id", string(c.id)), zap.Error(err))
			continue
		}

		c.route(msg)
	}
}

// route dispatches one inbound frame.
func (c *Client) route(msg envelope) {
	switch msg.Event {
	case types.EventCreateRoom:
		var p types.CreateRoomPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			c.Send(types.EventError, types.ErrorPayload{Error: "malformed payload"})
			return
		}
		if err := p.Validate(); err != nil {
			c.Send(types.EventError, types.ErrorPayload{Error: err.Error()})
			return
		}
		if c.getRoom() != nil {
			return
		}
		c.hub.createRoom(c, p)

	case types.EventJoinRoom:
		var p types.JoinRoomPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			c.Send(types.EventError, types.ErrorPayload{Error: "malformed payload"})
			return
		}
		if err := p.Validate(); err != nil {
			c.Send(types.EventError, types.ErrorPayload{Error: err.Error()})
			return
		}
		c.hub.joinRoom(c, p)

	default:
		r := c.getRoom()
		if r == nil {
			return
		}
		r.Router(c, msg.Event, msg.Data)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	writeWait := 10 * time.Second

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Error(context.Background(), "error writing message", zap.Error(err))
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// markClosed stops further sends and lets writePump drain out.
func (c *Client) markClosed() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.send)
	})
}
