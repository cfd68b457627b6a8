package room

import (
	"github.com/sketchroom/sketchroom/internal/v1/metrics"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// ChatMessage is a chat entry as broadcast and as stored in the history.
type ChatMessage struct {
	User      types.UserInfo  `json:"user"`
	Message   string          `json:"message"`
	Timestamp types.Timestamp `json:"timestamp"`
	IsGuess   bool            `json:"isGuess"`
}

// handleChatLocked adjudicates a chat message. During an active round a
// non-drawer's message is first treated as a guess; a correct guess is
// consumed by the game (scored and announced) and never echoed as chat, so
// the word cannot leak to the other guessers. Everything else is broadcast
// as a chat entry, tagged isGuess when it was a failed guess attempt.
func (r *Room) handleChatLocked(client types.ClientInterface, message string) {
	id := client.GetID()

	wasGuess := r.game.IsRoundActive() && id != r.game.CurrentDrawerID()
	if r.game.Guess(id, message) {
		metrics.Guesses.WithLabelValues("correct").Inc()
		return
	}
	if wasGuess {
		metrics.Guesses.WithLabelValues("wrong").Inc()
	}

	entry := ChatMessage{
		User:      types.UserInfo{ID: id, Username: client.GetUsername(), Color: client.GetColor()},
		Message:   message,
		Timestamp: types.Timestamp(r.now().UnixMilli()),
		IsGuess:   wasGuess,
	}
	r.addChatLocked(entry)
	r.ToAll(types.EventChatMessage, entry)
}

// addChatLocked appends to the bounded history.
func (r *Room) addChatLocked(msg ChatMessage) {
	r.chatHistory.PushBack(msg)
	for r.chatHistory.Len() > r.maxChatHistoryLength {
		r.chatHistory.Remove(r.chatHistory.Front())
	}
}

// recentChatsLocked returns the stored history oldest-first.
func (r *Room) recentChatsLocked() []ChatMessage {
	messages := make([]ChatMessage, 0, r.chatHistory.Len())
	for e := r.chatHistory.Front(); e != nil; e = e.Next() {
		if msg, ok := e.Value.(ChatMessage); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
