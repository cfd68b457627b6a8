// Package game implements the per-room round state machine: drawer rotation,
// word offering and selection, timed guessing, scoring, hints, and game
// termination.
//
// A Game never locks anything itself. Every method, including the callbacks
// handed to the Scheduler, runs under the owning room's serialization; the
// room guarantees no two operations on the same game interleave.
package game

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/sketchroom/sketchroom/internal/v1/metrics"
	"github.com/sketchroom/sketchroom/internal/v1/types"
)

// Emitter fans game events out to the room's members. Implemented by the room.
type Emitter interface {
	ToPlayer(id types.ClientIDType, event string, payload any)
	ToOthers(exclude types.ClientIDType, event string, payload any)
	ToAll(event string, payload any)
	// ClearCanvas wipes the room's drawing log and notifies everyone.
	ClearCanvas()
}

// Scheduler runs a callback once after a delay, under the room's
// serialization. The returned cancel function stops an unfired callback.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

const (
	startRoundDelay   = 3 * time.Second
	interRoundDelay   = 5 * time.Second
	endGameDelay      = 5 * time.Second
	allGuessedDelay   = 2 * time.Second
	wordSelectTimeout = 15 * time.Second

	wordOptionCount      = 3
	drawerPointsPerGuess = 25
)

// guessBasePoints awards by 1-based guess order; orders past the table's end
// earn the final entry.
var guessBasePoints = [4]int{100, 75, 50, 25}

var (
	ErrGameActive    = errors.New("game already active")
	ErrGameInactive  = errors.New("no active game")
	ErrNotDrawer     = errors.New("only the current drawer may do this")
	ErrRoundActive   = errors.New("round already active")
	ErrNoWordPending = errors.New("no word selection pending")
	ErrInvalidWord   = errors.New("word is not among the offered options")
	ErrInvalidConfig = errors.New("invalid game settings")
)

// Settings are the per-game configurable knobs.
type Settings struct {
	Rounds   int
	DrawTime int // seconds
}

// DefaultSettings returns the settings used when a start-game request leaves
// fields unset.
func DefaultSettings() Settings {
	return Settings{Rounds: 3, DrawTime: 60}
}

// Normalize fills zero fields with defaults and rejects out-of-range values.
func (s Settings) Normalize() (Settings, error) {
	def := DefaultSettings()
	if s.Rounds == 0 {
		s.Rounds = def.Rounds
	}
	if s.DrawTime == 0 {
		s.DrawTime = def.DrawTime
	}
	if s.Rounds < 1 || s.Rounds > 10 {
		return s, ErrInvalidConfig
	}
	if s.DrawTime < 30 || s.DrawTime > 180 {
		return s, ErrInvalidConfig
	}
	return s, nil
}

// Player is a participant's per-game record.
type Player struct {
	ID         types.ClientIDType `json:"id"`
	Username   types.UsernameType `json:"username"`
	Score      int                `json:"score"`
	HasGuessed bool               `json:"hasGuessed"`
}

// PlayerRef names a player in event payloads without carrying score state.
type PlayerRef struct {
	ID       types.ClientIDType `json:"id"`
	Username types.UsernameType `json:"username"`
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	ID       types.ClientIDType `json:"id"`
	Username types.UsernameType `json:"username"`
	Score    int                `json:"score"`
}

// State is the snapshot handed to late joiners.
type State struct {
	IsActive      bool                 `json:"isActive"`
	IsRoundActive bool                 `json:"isRoundActive"`
	CurrentRound  int                  `json:"currentRound"`
	TotalRounds   int                  `json:"totalRounds"`
	DrawTime      int                  `json:"drawTime"`
	CurrentDrawer *PlayerRef           `json:"currentDrawer"`
	MaskedWord    string               `json:"maskedWord,omitempty"`
	Players       []Player             `json:"players"`
	Guessed       []types.ClientIDType `json:"guessedPlayers"`
}

// Game is a single room's state machine. All access is serialized by the room.
type Game struct {
	emit     Emitter
	schedule Scheduler
	now      func() time.Time
	rng      *rand.Rand
	bank     *WordBank

	settings      Settings
	isActive      bool
	isRoundActive bool
	currentRound  int
	drawerID      types.ClientIDType
	currentWord   string
	wordOptions   []string
	usedWords     map[string]bool
	roundStart    time.Time
	players       []*Player
	guessed       []types.ClientIDType

	cancelRoundEnd func() // drawTime expiry for the active round
	cancelPending  func() // next-round / game-end / all-guessed delay
	cancelAutoPick func() // word-selection fallback
}

// New creates an idle game.
func New(emit Emitter, schedule Scheduler, now func() time.Time, rng *rand.Rand, bank *WordBank) *Game {
	return &Game{
		emit:      emit,
		schedule:  schedule,
		now:       now,
		rng:       rng,
		bank:      bank,
		settings:  DefaultSettings(),
		usedWords: make(map[string]bool),
	}
}

// --- Membership ---

// AddPlayer registers a participant. Adding an id already present is a no-op.
func (g *Game) AddPlayer(id types.ClientIDType, username types.UsernameType) {
	if g.playerByID(id) != nil {
		return
	}
	g.players = append(g.players, &Player{ID: id, Username: username})
}

// RemovePlayer drops a participant. If the departing player is the current
// drawer while a round is active or a word selection is pending, the round
// ends immediately.
func (g *Game) RemovePlayer(id types.ClientIDType) {
	idx := -1
	for i, p := range g.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	g.players = append(g.players[:idx], g.players[idx+1:]...)

	for i, gid := range g.guessed {
		if gid == id {
			g.guessed = append(g.guessed[:i], g.guessed[i+1:]...)
			break
		}
	}

	if g.isActive && id == g.drawerID && (g.isRoundActive || g.waitingForWord()) {
		g.finishRound()
	}
}

// Players returns the participants in insertion order.
func (g *Game) Players() []Player {
	out := make([]Player, len(g.players))
	for i, p := range g.players {
		out[i] = *p
	}
	return out
}

// --- Lifecycle ---

// Start begins a new game. Starting an already-active game is rejected.
func (g *Game) Start(s Settings) error {
	if g.isActive {
		return ErrGameActive
	}
	normalized, err := s.Normalize()
	if err != nil {
		return err
	}

	g.settings = normalized
	g.isActive = true
	g.isRoundActive = false
	g.currentRound = 0
	g.currentWord = ""
	g.wordOptions = nil
	g.drawerID = ""
	g.usedWords = make(map[string]bool)
	g.guessed = nil
	for _, p := range g.players {
		p.Score = 0
		p.HasGuessed = false
	}

	g.emit.ClearCanvas()
	g.emit.ToAll(types.EventGameStarted, gameStartedPayload{
		Rounds:   g.settings.Rounds,
		DrawTime: g.settings.DrawTime,
	})
	g.cancelPending = g.schedule.After(startRoundDelay, g.StartRound)
	return nil
}

// StartRound advances to the next round: picks the drawer round-robin, offers
// word options, and resets per-round state. Ends the game instead when all
// rounds are played or the bank is exhausted.
func (g *Game) StartRound() {
	if !g.isActive {
		return
	}
	g.stopTimers()

	g.currentRound++
	if g.currentRound > g.settings.Rounds || len(g.players) == 0 {
		g.EndGame()
		return
	}

	drawer := g.players[(g.currentRound-1)%len(g.players)]
	g.drawerID = drawer.ID

	g.wordOptions = g.bank.Pick(g.rng, wordOptionCount, g.usedWords)
	if len(g.wordOptions) == 0 {
		g.EndGame()
		return
	}

	g.currentWord = ""
	g.guessed = nil
	for _, p := range g.players {
		p.HasGuessed = false
	}

	g.emit.ClearCanvas()
	g.emit.ToPlayer(drawer.ID, types.EventRoundStartedDrawer, roundStartedDrawerPayload{
		Drawer:      PlayerRef{ID: drawer.ID, Username: drawer.Username},
		WordOptions: g.wordOptions,
		Round:       g.currentRound,
		TotalRounds: g.settings.Rounds,
	})
	g.emit.ToOthers(drawer.ID, types.EventRoundStartedGuesser, roundStartedGuesserPayload{
		Drawer:      PlayerRef{ID: drawer.ID, Username: drawer.Username},
		Round:       g.currentRound,
		TotalRounds: g.settings.Rounds,
	})

	g.cancelAutoPick = g.schedule.After(wordSelectTimeout, g.autoSelectWord)
}

// SelectWord records the drawer's choice and opens the guessing window.
func (g *Game) SelectWord(id types.ClientIDType, word string) error {
	if !g.isActive {
		return ErrGameInactive
	}
	if id != g.drawerID {
		return ErrNotDrawer
	}
	if g.isRoundActive {
		return ErrRoundActive
	}
	if len(g.wordOptions) == 0 {
		return ErrNoWordPending
	}
	if !contains(g.wordOptions, word) {
		return ErrInvalidWord
	}

	stop(&g.cancelAutoPick)

	g.currentWord = word
	g.usedWords[word] = true
	g.roundStart = g.now()
	g.isRoundActive = true

	g.emit.ToPlayer(id, types.EventWordSelected, wordSelectedDrawerPayload{Word: word})
	g.emit.ToOthers(id, types.EventWordSelected, wordSelectedGuesserPayload{
		MaskedWord: Mask(word),
		WordLength: WordLength(word),
	})

	g.cancelRoundEnd = g.schedule.After(time.Duration(g.settings.DrawTime)*time.Second, g.EndRound)
	return nil
}

// autoSelectWord picks the first offered option when the drawer lets the
// selection window lapse.
func (g *Game) autoSelectWord() {
	if !g.waitingForWord() {
		return
	}
	_ = g.SelectWord(g.drawerID, g.wordOptions[0])
}

// Guess adjudicates a chat message from a guesser during an active round.
// It returns true when the message was consumed as a correct guess (the
// caller must not echo it as chat); false means the message is ordinary chat.
func (g *Game) Guess(id types.ClientIDType, message string) bool {
	if !g.isRoundActive || id == g.drawerID {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(message), g.currentWord) {
		return false
	}

	guesser := g.playerByID(id)
	if guesser == nil {
		return false
	}
	if guesser.HasGuessed {
		// Repeated correct guess: consume silently so the word never leaks.
		return true
	}

	order := len(g.guessed) + 1
	points := g.scoreGuess(order)
	guesser.Score += points
	guesser.HasGuessed = true
	g.guessed = append(g.guessed, id)

	if drawer := g.playerByID(g.drawerID); drawer != nil {
		drawer.Score += drawerPointsPerGuess
	}

	ref := PlayerRef{ID: guesser.ID, Username: guesser.Username}
	word := g.currentWord
	g.emit.ToOthers(id, types.EventCorrectGuess, correctGuessPayload{Player: ref, Points: points})
	g.emit.ToPlayer(id, types.EventCorrectGuess, correctGuessPayload{Player: ref, Points: points, Word: &word})
	g.emit.ToAll(types.EventLeaderboardUpdate, leaderboardPayload{Leaderboard: g.Leaderboard()})

	if len(g.guessed) >= len(g.players)-1 {
		stop(&g.cancelPending)
		g.cancelPending = g.schedule.After(allGuessedDelay, g.EndRound)
	}
	return true
}

// scoreGuess computes base plus time bonus for a correct guess.
func (g *Game) scoreGuess(order int) int {
	idx := order - 1
	if idx >= len(guessBasePoints) {
		idx = len(guessBasePoints) - 1
	}
	elapsed := int(g.now().Sub(g.roundStart).Seconds())
	bonus := (g.settings.DrawTime - elapsed) / 2
	if bonus < 0 {
		bonus = 0
	}
	return guessBasePoints[idx] + bonus
}

// EndRound closes the guessing window and schedules what comes next. Calling
// it when no round is active is a no-op.
func (g *Game) EndRound() {
	if !g.isActive || !g.isRoundActive {
		return
	}
	g.finishRound()
}

// finishRound performs the round teardown. Unlike EndRound it also applies to
// a pending word selection, which is how a drawer departure mid-offer is
// resolved: the round ends with a null word.
func (g *Game) finishRound() {
	g.stopTimers()

	var word *string
	if g.currentWord != "" {
		w := g.currentWord
		word = &w
	}

	g.isRoundActive = false
	g.currentWord = ""
	g.wordOptions = nil

	g.emit.ToAll(types.EventRoundEnded, roundEndedPayload{
		Word:   word,
		Scores: g.Leaderboard(),
	})

	if g.currentRound >= g.settings.Rounds {
		g.cancelPending = g.schedule.After(endGameDelay, g.EndGame)
	} else {
		g.cancelPending = g.schedule.After(interRoundDelay, g.StartRound)
	}
}

// EndGame terminates the game and announces the winner. The machine returns
// to idle so a new game can start in the same room.
func (g *Game) EndGame() {
	if !g.isActive {
		return
	}
	g.stopTimers()

	g.isActive = false
	g.isRoundActive = false
	g.currentWord = ""
	g.wordOptions = nil
	g.drawerID = ""

	scores := g.Leaderboard()
	var winner *ScoreEntry
	if len(scores) > 0 {
		w := scores[0]
		winner = &w
	}
	g.emit.ToAll(types.EventGameEnded, gameEndedPayload{Winner: winner, Scores: scores})
	metrics.GamesCompleted.Inc()
}

// Shutdown cancels every pending timer. Called when the room is destroyed.
func (g *Game) Shutdown() {
	g.stopTimers()
	g.isActive = false
	g.isRoundActive = false
}

// --- Queries ---

// IsActive reports whether a game is running.
func (g *Game) IsActive() bool { return g.isActive }

// IsRoundActive reports whether a guessing window is open.
func (g *Game) IsRoundActive() bool { return g.isRoundActive }

// CurrentDrawerID returns the drawer of the current round, empty when idle.
func (g *Game) CurrentDrawerID() types.ClientIDType { return g.drawerID }

// CurrentRound returns the 1-based round counter.
func (g *Game) CurrentRound() int { return g.currentRound }

// UsedWords returns the set of words selected so far this game.
func (g *Game) UsedWords() map[string]bool {
	out := make(map[string]bool, len(g.usedWords))
	for w := range g.usedWords {
		out[w] = true
	}
	return out
}

// WordOptions returns the options currently offered to the drawer.
func (g *Game) WordOptions() []string {
	return append([]string(nil), g.wordOptions...)
}

// GuessedPlayers returns the ids that guessed correctly this round, in order.
func (g *Game) GuessedPlayers() []types.ClientIDType {
	return append([]types.ClientIDType(nil), g.guessed...)
}

// Hint reveals one random character of the current word. Only valid while a
// round is active.
func (g *Game) Hint() (string, error) {
	if !g.isRoundActive {
		return "", ErrGameInactive
	}
	return Hint(g.currentWord, 1, g.rng), nil
}

// Leaderboard returns players sorted by score descending; ties keep
// insertion order.
func (g *Game) Leaderboard() []ScoreEntry {
	entries := make([]ScoreEntry, len(g.players))
	for i, p := range g.players {
		entries[i] = ScoreEntry{ID: p.ID, Username: p.Username, Score: p.Score}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Snapshot builds the state sent to a late joiner. The word itself is never
// included; an active round carries only the masked rendering.
func (g *Game) Snapshot() State {
	st := State{
		IsActive:      g.isActive,
		IsRoundActive: g.isRoundActive,
		CurrentRound:  g.currentRound,
		TotalRounds:   g.settings.Rounds,
		DrawTime:      g.settings.DrawTime,
		Players:       g.Players(),
		Guessed:       g.GuessedPlayers(),
	}
	if g.drawerID != "" {
		if drawer := g.playerByID(g.drawerID); drawer != nil {
			st.CurrentDrawer = &PlayerRef{ID: drawer.ID, Username: drawer.Username}
		}
	}
	if g.isRoundActive {
		st.MaskedWord = Mask(g.currentWord)
	}
	return st
}

// --- Helpers ---

func (g *Game) playerByID(id types.ClientIDType) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// waitingForWord reports the state between drawer selection and word choice.
func (g *Game) waitingForWord() bool {
	return g.isActive && !g.isRoundActive && len(g.wordOptions) > 0
}

func (g *Game) stopTimers() {
	stop(&g.cancelRoundEnd)
	stop(&g.cancelPending)
	stop(&g.cancelAutoPick)
}

func stop(cancel *func()) {
	if *cancel != nil {
		(*cancel)()
		*cancel = nil
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
