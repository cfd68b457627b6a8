package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the drawing game server.
//
// Naming convention: namespace_subsystem_name
// - namespace: sketchroom (application-level grouping)
// - subsystem: websocket, room, game (feature-level grouping)
// - name: specific metric (connections_active, events_total, etc.)
//
// Metric Types:
// - Gauge: Current state (connections, rooms, players)
// - Counter: Cumulative events (events processed, guesses, games)

var (
	// ActiveWebSocketConnections tracks the current number of active WebSocket connections
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sketchroom",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of active rooms
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sketchroom",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// RoomUsers tracks the number of users in each room
	RoomUsers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sketchroom",
		Subsystem: "room",
		Name:      "users_count",
		Help:      "Number of users in each room",
	}, []string{"room_id"})

	// WebsocketEvents tracks the total number of WebSocket events processed
	WebsocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sketchroom",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total WebSocket events processed",
	}, []string{"event_type", "status"})

	// GamesStarted tracks the total number of games started
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sketchroom",
		Subsystem: "game",
		Name:      "started_total",
		Help:      "Total games started",
	})

	// GamesCompleted tracks the total number of games that ran to completion
	GamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sketchroom",
		Subsystem: "game",
		Name:      "completed_total",
		Help:      "Total games completed",
	})

	// Guesses tracks chat messages adjudicated as guesses, by outcome
	Guesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sketchroom",
		Subsystem: "game",
		Name:      "guesses_total",
		Help:      "Total guesses adjudicated during active rounds",
	}, []string{"outcome"})

	// DrawingEvents tracks the total number of stroke events appended to drawing logs
	DrawingEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sketchroom",
		Subsystem: "room",
		Name:      "drawing_events_total",
		Help:      "Total stroke events appended to drawing logs",
	})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
