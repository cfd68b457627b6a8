// Package drawing implements the per-room stroke history that is replayed
// to late joiners.
package drawing

import (
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// EventType distinguishes stroke kinds.
type EventType string

const (
	EventTypeDraw  EventType = "draw"
	EventTypeErase EventType = "erase"
)

// Point is a single canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Data is the client-supplied stroke content of a drawing event.
type Data struct {
	Type      EventType `json:"type"`
	Points    []Point   `json:"points"`
	Color     string    `json:"color"`
	LineWidth float64   `json:"lineWidth"`
}

// Event is a stroke as stored in the log: the stroke data plus the
// authorship and arrival metadata the server attaches.
type Event struct {
	Data
	UserID    types.ClientIDType `json:"userId"`
	Timestamp types.Timestamp    `json:"timestamp"`
}

// Log is an append-only stroke history. It is owned by a single Room and
// must only be accessed while holding that room's lock.
type Log struct {
	events []Event
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records a stroke in arrival order.
func (l *Log) Append(ev Event) {
	l.events = append(l.events, ev)
}

// Snapshot returns a copy of the history for replay to a late joiner.
func (l *Log) Snapshot() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Clear drops the history.
func (l *Log) Clear() {
	l.events = nil
}

// Len reports the number of stored strokes.
func (l *Log) Len() int {
	return len(l.events)
}
