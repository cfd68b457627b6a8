// Package room implements a single game room: ordered membership, the
// drawing log, the chat history, and the per-room serialization that the
// game state machine and all event handlers run under.
package room

import (
	"container/list"
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sketchroom/sketchroom/internal/v1/drawing"
	"github.com/sketchroom/sketchroom/internal/v1/game"
	"github.com/sketchroom/sketchroom/internal/v1/logging"
	"github.com/sketchroom/sketchroom/internal/v1/metrics"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// Room holds all state shared by the users of one game room. Every mutation
// and every broadcast derived from an inbound event or a timer callback runs
// while holding mu; rooms are shared-nothing islands with respect to each
// other.
type Room struct {
	ID        types.RoomIDType
	Name      string
	CreatedAt time.Time

	mu    sync.Mutex
	users []types.ClientInterface // insertion order
	byID  map[types.ClientIDType]types.ClientInterface

	log  *drawing.Log
	game *game.Game

	chatHistory          *list.List
	maxChatHistoryLength int

	now    func() time.Time
	rng    *rand.Rand
	closed bool

	onEmpty func(types.RoomIDType)
}

// NewRoom creates an empty room. The game is created with it and lives
// exactly as long as the room does.
func NewRoom(id types.RoomIDType, name string, onEmpty func(types.RoomIDType), now func() time.Time, rng *rand.Rand, bank *game.WordBank) *Room {
	r := &Room{
		ID:                   id,
		Name:                 name,
		CreatedAt:            now(),
		byID:                 make(map[types.ClientIDType]types.ClientInterface),
		log:                  drawing.NewLog(),
		chatHistory:          list.New(),
		maxChatHistoryLength: 100,
		now:                  now,
		rng:                  rng,
		onEmpty:              onEmpty,
	}
	r.game = game.New(r, r, now, rng, bank)
	return r
}

// --- game.Scheduler ---

// After schedules fn once after d. The callback re-enters the room lock, so
// it is serialized with every other operation on this room; after the room is
// destroyed it no-ops. The returned cancel stops an unfired callback.
func (r *Room) After(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return
		}
		fn()
	})
	return func() { t.Stop() }
}

// --- game.Emitter ---

// ToPlayer sends an event to a single member.
func (r *Room) ToPlayer(id types.ClientIDType, event string, payload any) {
	if c, ok := r.byID[id]; ok {
		c.Send(event, payload)
	}
}

// ToOthers sends an event to every member except one.
func (r *Room) ToOthers(exclude types.ClientIDType, event string, payload any) {
	for _, c := range r.users {
		if c.GetID() != exclude {
			c.Send(event, payload)
		}
	}
}

// ToAll sends an event to every member.
func (r *Room) ToAll(event string, payload any) {
	for _, c := range r.users {
		c.Send(event, payload)
	}
}

// ClearCanvas wipes the drawing log and tells everyone. Used by the game on
// start and at every round boundary, and by the clear-canvas handler.
func (r *Room) ClearCanvas() {
	r.log.Clear()
	r.ToAll(types.EventCanvasCleared, struct{}{})
}

// --- Membership ---

// AddUser joins a client to the room and registers it as a game player.
// Joining with an id already present is a no-op; the user list and the
// player list never hold duplicates.
func (r *Room) AddUser(client types.ClientInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addUserLocked(client)
}

func (r *Room) addUserLocked(client types.ClientInterface) {
	if _, exists := r.byID[client.GetID()]; exists {
		return
	}
	r.users = append(r.users, client)
	r.byID[client.GetID()] = client
	r.game.AddPlayer(client.GetID(), client.GetUsername())

	metrics.RoomUsers.WithLabelValues(string(r.ID)).Set(float64(len(r.users)))
	logging.Info(context.Background(), "User joined room",
		zap.String("room_id", string(r.ID)),
		zap.String("user_id", string(client.GetID())),
		zap.String("username", string(client.GetUsername())),
	)
}

// UserCount reports the number of members.
func (r *Room) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// IsEmpty reports whether the room has no members.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users) == 0
}

// Users returns the member list, insertion-ordered, as wire shapes.
func (r *Room) Users() []types.UserInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersLocked()
}

func (r *Room) usersLocked() []types.UserInfo {
	out := make([]types.UserInfo, len(r.users))
	for i, c := range r.users {
		out[i] = types.UserInfo{ID: c.GetID(), Username: c.GetUsername(), Color: c.GetColor()}
	}
	return out
}

// HandleClientDisconnect removes a departing member, ends the round if the
// member was the drawer, and destroys the room when it empties.
func (r *Room) HandleClientDisconnect(client types.ClientInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := client.GetID()
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, c := range r.users {
		if c.GetID() == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			break
		}
	}

	user := types.UserInfo{ID: id, Username: client.GetUsername(), Color: client.GetColor()}
	r.ToAll(types.EventUserLeft, userPayload{User: user})

	// May end the round and emit round-ended when the drawer departs.
	r.game.RemovePlayer(id)

	logging.Info(context.Background(), "User left room",
		zap.String("room_id", string(r.ID)),
		zap.String("user_id", string(id)),
	)

	if len(r.users) == 0 {
		r.closed = true
		r.game.Shutdown()
		metrics.RoomUsers.DeleteLabelValues(string(r.ID))
		if r.onEmpty != nil {
			go r.onEmpty(r.ID)
		}
		return
	}
	metrics.RoomUsers.WithLabelValues(string(r.ID)).Set(float64(len(r.users)))
}

// Shutdown cancels the game's timers and marks the room dead so that any
// in-flight timer callback no-ops. Used on server shutdown.
func (r *Room) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.game.Shutdown()
}

// DisconnectAll force-closes every member connection. Each close surfaces
// through the transport's disconnect path.
func (r *Room) DisconnectAll() {
	r.mu.Lock()
	targets := make([]types.ClientInterface, len(r.users))
	copy(targets, r.users)
	r.mu.Unlock()

	for _, c := range targets {
		c.Disconnect()
	}
}

// --- Snapshots ---

// JoinSnapshot is the full room state handed to a joining client.
type JoinSnapshot struct {
	RoomID      types.RoomIDType `json:"roomId"`
	RoomName    string           `json:"roomName"`
	User        types.UserInfo   `json:"user"`
	Users       []types.UserInfo `json:"users"`
	DrawingData []drawing.Event  `json:"drawingData"`
	GameState   game.State       `json:"gameState"`
	ChatHistory []ChatMessage    `json:"chatHistory"`
}

// Join adds the client and returns the snapshot for its room-joined reply,
// broadcasting user-joined to the existing members.
func (r *Room) Join(client types.ClientInterface) JoinSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, already := r.byID[client.GetID()]
	r.addUserLocked(client)

	user := types.UserInfo{ID: client.GetID(), Username: client.GetUsername(), Color: client.GetColor()}
	if !already {
		r.ToOthers(client.GetID(), types.EventUserJoined, userPayload{User: user})
	}

	return JoinSnapshot{
		RoomID:      r.ID,
		RoomName:    r.Name,
		User:        user,
		Users:       r.usersLocked(),
		DrawingData: r.log.Snapshot(),
		GameState:   r.game.Snapshot(),
		ChatHistory: r.recentChatsLocked(),
	}
}

// Summary is the REST enumeration shape.
type Summary struct {
	ID        types.RoomIDType `json:"id"`
	Name      string           `json:"name"`
	UserCount int              `json:"userCount"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Summarize returns the read-only REST view of the room.
func (r *Room) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		ID:        r.ID,
		Name:      r.Name,
		UserCount: len(r.users),
		CreatedAt: r.CreatedAt,
	}
}

// userPayload wraps a user for user-joined / user-left events.
type userPayload struct {
	User types.UserInfo `json:"user"`
}
