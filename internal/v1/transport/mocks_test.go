package transport

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// mockConn is a scripted WebSocket connection: tests push inbound frames and
// inspect everything written back.
type mockConn struct {
	inbound chan []byte

	mu      sync.Mutex
	written [][]byte

	closeOnce sync.Once
	closeCh   chan struct{}
}

func newMockConn() *mockConn {
	return &mockConn{
		inbound: make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-m.inbound:
		return websocket.TextMessage, frame, nil
	case <-m.closeCh:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-m.closeCh:
		return errors.New("connection closed")
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, append([]byte(nil), data...))
	return nil
}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closeCh) })
	return nil
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return nil
}

// push delivers an inbound event frame.
func (m *mockConn) push(t *testing.T, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(envelope{Event: event, Data: data})
	require.NoError(t, err)
	m.inbound <- frame
}

// received returns the decoded envelopes written so far for one event name.
func (m *mockConn) received(t *testing.T, event string) []envelope {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []envelope
	for _, frame := range m.written {
		var msg envelope
		if err := json.Unmarshal(frame, &msg); err != nil {
			continue // close frames are not JSON
		}
		if msg.Event == event {
			out = append(out, msg)
		}
	}
	return out
}
