package room

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/sketchroom/sketchroom/internal/v1/drawing"
	"github.com/sketchroom/sketchroom/internal/v1/game"
	"github.com/sketchroom/sketchroom/internal/v1/logging"
	"github.com/sketchroom/sketchroom/internal/v1/metrics"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// Router dispatches an inbound event from a member connection. The sender is
// already bound to this room by the transport layer; payload room ids are not
// re-checked, the binding is authoritative. Validation failures are silent
// drops: the server is authoritative and the client resynchronizes from the
// next broadcast.
func (r *Room) Router(client types.ClientInterface, event string, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, member := r.byID[client.GetID()]; !member {
		metrics.WebsocketEvents.WithLabelValues(event, "dropped").Inc()
		return
	}

	switch event {
	case types.EventDrawing:
		var p drawingPayload
		if err := json.Unmarshal(data, &p); err != nil {
			r.dropEvent(client, event, "malformed payload")
			return
		}
		r.handleDrawingLocked(client, p.DrawingData)

	case types.EventClearCanvas:
		r.ClearCanvas()

	case types.EventChatMessage:
		var p types.ChatMessagePayload
		if err := json.Unmarshal(data, &p); err != nil || p.Message == "" {
			r.dropEvent(client, event, "malformed payload")
			return
		}
		r.handleChatLocked(client, p.Message)

	case types.EventStartGame:
		var p types.StartGamePayload
		if err := json.Unmarshal(data, &p); err != nil {
			r.dropEvent(client, event, "malformed payload")
			return
		}
		r.handleStartGameLocked(client, p.Settings)

	case types.EventSelectWord:
		var p types.SelectWordPayload
		if err := json.Unmarshal(data, &p); err != nil {
			r.dropEvent(client, event, "malformed payload")
			return
		}
		if err := r.game.SelectWord(client.GetID(), p.Word); err != nil {
			r.dropEvent(client, event, err.Error())
			return
		}

	case types.EventRequestHint:
		r.handleHintLocked(client)

	case types.EventEndRound:
		r.game.EndRound()

	default:
		r.dropEvent(client, event, "unknown event")
		return
	}

	metrics.WebsocketEvents.WithLabelValues(event, "ok").Inc()
}

// drawingPayload is the inbound drawing envelope.
type drawingPayload struct {
	RoomID      string       `json:"roomId"`
	DrawingData drawing.Data `json:"drawingData"`
}

// drawingBroadcast is the relayed stroke sent to the other members.
type drawingBroadcast struct {
	DrawingData drawing.Data       `json:"drawingData"`
	UserID      types.ClientIDType `json:"userId"`
}

// handleDrawingLocked appends a stroke and relays it. During an active round
// only the drawer may draw; anyone may draw between rounds.
func (r *Room) handleDrawingLocked(client types.ClientInterface, data drawing.Data) {
	if r.game.IsRoundActive() && client.GetID() != r.game.CurrentDrawerID() {
		return
	}

	r.log.Append(drawing.Event{
		Data:      data,
		UserID:    client.GetID(),
		Timestamp: types.Timestamp(r.now().UnixMilli()),
	})
	metrics.DrawingEvents.Inc()

	// Not echoed to the sender; they already rendered locally.
	r.ToOthers(client.GetID(), types.EventDrawing, drawingBroadcast{
		DrawingData: data,
		UserID:      client.GetID(),
	})
}

// handleStartGameLocked validates settings and starts the game. Starting an
// already-active game is a no-op.
func (r *Room) handleStartGameLocked(client types.ClientInterface, settings types.GameSettingsPayload) {
	err := r.game.Start(game.Settings{Rounds: settings.Rounds, DrawTime: settings.DrawTime})
	if err != nil {
		r.dropEvent(client, types.EventStartGame, err.Error())
		return
	}
	metrics.GamesStarted.Inc()
}

// handleHintLocked reveals one character to every guesser. Ignored unless a
// round is active.
func (r *Room) handleHintLocked(client types.ClientInterface) {
	hint, err := r.game.Hint()
	if err != nil {
		r.dropEvent(client, types.EventRequestHint, err.Error())
		return
	}
	r.ToOthers(r.game.CurrentDrawerID(), types.EventHintRevealed, hintPayload{Hint: hint})
}

type hintPayload struct {
	Hint string `json:"hint"`
}

func (r *Room) dropEvent(client types.ClientInterface, event, reason string) {
	metrics.WebsocketEvents.WithLabelValues(event, "dropped").Inc()
	logging.Debug(context.Background(), "Dropped event",
		zap.String("room_id", string(r.ID)),
		zap.String("user_id", string(client.GetID())),
		zap.String("event", event),
		zap.String("reason", reason),
	)
}
