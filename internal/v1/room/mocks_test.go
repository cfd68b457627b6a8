package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sketchroom/sketchroom/internal/v1/game"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// sentEvent is one emission captured by a mock client.
type sentEvent struct {
	Event   string
	Payload any
}

// mockClient implements types.ClientInterface and records everything sent
// to it.
type mockClient struct {
	id       types.ClientIDType
	username types.UsernameType
	color    string

	mu           sync.Mutex
	events       []sentEvent
	disconnected bool
}

func newMockClient(id, username string) *mockClient {
	return &mockClient{
		id:       types.ClientIDType(id),
		username: types.UsernameType(username),
		color:    "#e6194b",
	}
}

func (m *mockClient) GetID() types.ClientIDType      { return m.id }
func (m *mockClient) GetUsername() types.UsernameType { return m.username }
func (m *mockClient) GetColor() string               { return m.color }

func (m *mockClient) Send(event string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, sentEvent{Event: event, Payload: payload})
}

func (m *mockClient) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = true
}

func (m *mockClient) named(event string) []sentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentEvent
	for _, e := range m.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockClient) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func newTestRoom(onEmpty func(types.RoomIDType), words ...string) *Room {
	bank := game.DefaultBank()
	if len(words) > 0 {
		entries := make([]game.Word, len(words))
		for i, w := range words {
			entries[i] = game.Word{Text: w, Category: "test"}
		}
		bank = game.NewWordBank(entries)
	}
	return NewRoom("room-1", "Test Room", onEmpty, time.Now, rand.New(rand.NewSource(1)), bank)
}
