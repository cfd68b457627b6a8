// Package transport owns the WebSocket edge: connection upgrades, the
// per-connection read/write pumps, and the registry of active rooms.
package transport

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sketchroom/sketchroom/internal/v1/game"
	"github.com/sketchroom/sketchroom/internal/v1/logging"
	"github.com/sketchroom/sketchroom/internal/v1/metrics"
	"github.com/sketchroom/sketchroom/internal/v1/room"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// Hub is the central coordinator: it upgrades connections, mints rooms on
// create-room, routes join-room, and evicts rooms that have emptied.
//
// The Hub's mutex protects only the room registry and the shared RNG.
// Individual rooms serialize their own state independently.
type Hub struct {
	mu    sync.Mutex
	rooms map[types.RoomIDType]*room.Room

	allowedOrigin string
	now           func() time.Time
	rng           *rand.Rand // guarded by mu
	bank          *game.WordBank
}

// NewHub creates a Hub with the default word bank and wall clock.
func NewHub(allowedOrigin string) *Hub {
	return NewHubWithDeps(allowedOrigin, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())), game.DefaultBank())
}

// NewHubWithDeps creates a Hub with explicit clock, RNG, and word bank.
func NewHubWithDeps(allowedOrigin string, now func() time.Time, rng *rand.Rand, bank *game.WordBank) *Hub {
	return &Hub{
		rooms:         make(map[types.RoomIDType]*room.Room),
		allowedOrigin: allowedOrigin,
		now:           now,
		rng:           rng,
		bank:          bank,
	}
}

// ServeWs upgrades an HTTP request to a WebSocket connection and starts the
// client's pumps. Room membership is established later by create-room or
// join-room events on the socket.
func (h *Hub) ServeWs(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Allow non-browser clients (e.g., for testing)
			}
			originURL, err := url.Parse(origin)
			if err != nil {
				return false
			}
			allowedURL, err := url.Parse(h.allowedOrigin)
			if err != nil {
				return false
			}
			return originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host
		},
		WriteBufferPool: &sync.Pool{
			New: func() any {
				return make([]byte, 4096)
			},
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to upgrade connection", zap.Error(err))
		return
	}

	h.HandleConnection(conn)
}

// HandleConnection wires an established WebSocket connection into a Client
// and starts its pumps. Split from ServeWs so tests can drive mock
// connections without HTTP.
func (h *Hub) HandleConnection(conn wsConnection) *Client {
	client := &Client{
		conn: conn,
		hub:  h,
		send: make(chan []byte, 256),
		id:   types.ClientIDType(uuid.NewString()),
	}

	metrics.IncConnection()

	go client.writePump()
	go client.readPump()
	return client
}

// createRoom mints a room for the client and joins it.
func (h *Hub) createRoom(client *Client, p types.CreateRoomPayload) {
	roomID := types.RoomIDType(uuid.NewString())

	h.mu.Lock()
	client.setIdentity(types.UsernameType(p.Username), types.RandomColor(h.rng))
	r := room.NewRoom(roomID, p.RoomName, h.removeRoom, h.now, rand.New(rand.NewSource(h.rng.Int63())), h.bank)
	h.rooms[roomID] = r
	metrics.ActiveRooms.Inc()
	h.mu.Unlock()

	r.AddUser(client)
	client.setRoom(r)

	logging.Info(context.Background(), "Room created",
		zap.String("room_id", string(roomID)),
		zap.String("room_name", p.RoomName),
		zap.String("user_id", string(client.id)),
	)

	client.Send(types.EventRoomCreated, roomCreatedPayload{
		RoomID:   roomID,
		RoomName: p.RoomName,
		User:     types.UserInfo{ID: client.id, Username: client.username, Color: client.color},
	})
}

// joinRoom attaches the client to an existing room and replies with the full
// state snapshot. Unknown room ids produce an error event to the originator.
func (h *Hub) joinRoom(client *Client, p types.JoinRoomPayload) {
	h.mu.Lock()
	r, ok := h.rooms[types.RoomIDType(p.RoomID)]
	var color string
	if ok {
		color = types.RandomColor(h.rng)
	}
	h.mu.Unlock()

	if !ok {
		client.Send(types.EventError, types.ErrorPayload{Error: "Room not found"})
		return
	}

	// A connection already inside a different room keeps its slot there.
	current := client.getRoom()
	if current != nil && current != r {
		return
	}
	if current == nil {
		client.setIdentity(types.UsernameType(p.Username), color)
	}

	snapshot := r.Join(client)
	client.setRoom(r)
	client.Send(types.EventRoomJoined, snapshot)
}

// handleDisconnect reclaims the client's state after its socket drops.
func (h *Hub) handleDisconnect(client *Client) {
	if r := client.getRoom(); r != nil {
		r.HandleClientDisconnect(client)
	}
	metrics.DecConnection()
}

// removeRoom evicts a room once its last user has disconnected. The room's
// emptiness is re-checked under the registry lock.
func (h *Hub) removeRoom(roomID types.RoomIDType) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok || !r.IsEmpty() {
		return
	}
	delete(h.rooms, roomID)
	metrics.ActiveRooms.Dec()

	logging.Info(context.Background(), "Removed empty room", zap.String("room_id", string(roomID)))
}

// --- REST introspection ---

// ListRooms returns summaries of all active rooms.
func (h *Hub) ListRooms() []room.Summary {
	h.mu.Lock()
	rooms := make([]*room.Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	summaries := make([]room.Summary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summarize())
	}
	return summaries
}

// GetRoom returns a single room's summary.
func (h *Hub) GetRoom(id types.RoomIDType) (room.Summary, bool) {
	h.mu.Lock()
	r, ok := h.rooms[id]
	h.mu.Unlock()
	if !ok {
		return room.Summary{}, false
	}
	return r.Summarize(), true
}

// RoomExists reports whether a room id is live.
func (h *Hub) RoomExists(id types.RoomIDType) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[id]
	return ok
}

// Shutdown closes all active rooms and their connections.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	rooms := make([]*room.Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.rooms = make(map[types.RoomIDType]*room.Room)
	h.mu.Unlock()

	for _, r := range rooms {
		r.Shutdown()
		r.DisconnectAll()
	}

	logging.Info(ctx, "All rooms closed", zap.Int("count", len(rooms)))
}

// roomCreatedPayload is the reply to a successful create-room.
type roomCreatedPayload struct {
	RoomID   types.RoomIDType `json:"roomId"`
	RoomName string           `json:"roomName"`
	User     types.UserInfo   `json:"user"`
}
