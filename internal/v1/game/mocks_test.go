package game

import (
	"time"

	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// recordedEvent captures one emission for assertions.
type recordedEvent struct {
	Target  string // "all", "player:<id>", or "others:<id>"
	Event   string
	Payload any
}

// mockEmitter records every emission in order.
type mockEmitter struct {
	events       []recordedEvent
	canvasClears int
}

func (m *mockEmitter) ToPlayer(id types.ClientIDType, event string, payload any) {
	m.events = append(m.events, recordedEvent{Target: "player:" + string(id), Event: event, Payload: payload})
}

func (m *mockEmitter) ToOthers(exclude types.ClientIDType, event string, payload any) {
	m.events = append(m.events, recordedEvent{Target: "others:" + string(exclude), Event: event, Payload: payload})
}

func (m *mockEmitter) ToAll(event string, payload any) {
	m.events = append(m.events, recordedEvent{Target: "all", Event: event, Payload: payload})
}

func (m *mockEmitter) ClearCanvas() {
	m.canvasClears++
}

func (m *mockEmitter) named(event string) []recordedEvent {
	var out []recordedEvent
	for _, e := range m.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockEmitter) last(event string) (recordedEvent, bool) {
	named := m.named(event)
	if len(named) == 0 {
		return recordedEvent{}, false
	}
	return named[len(named)-1], true
}

func (m *mockEmitter) reset() {
	m.events = nil
	m.canvasClears = 0
}

// scheduledTask is a callback captured by the manual scheduler.
type scheduledTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// manualScheduler collects callbacks and fires them only when the test says
// so, standing in for the room's timer service.
type manualScheduler struct {
	tasks []*scheduledTask
}

func (s *manualScheduler) After(d time.Duration, fn func()) (cancel func()) {
	task := &scheduledTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() { task.cancelled = true }
}

// fireNext runs the oldest pending task and reports whether one ran.
func (s *manualScheduler) fireNext() bool {
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			t.fired = true
			t.fn()
			return true
		}
	}
	return false
}

// fireAll drains pending tasks, including ones scheduled while draining.
func (s *manualScheduler) fireAll() {
	for s.fireNext() {
	}
}

// pending counts tasks that are neither fired nor cancelled.
func (s *manualScheduler) pending() int {
	count := 0
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			count++
		}
	}
	return count
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
