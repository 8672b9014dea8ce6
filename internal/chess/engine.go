package chess

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/neon-grid/arcade/internal/game"
)

// hillCaptureChance is the per-tick probability the acting king takes the
// center hill square and ends the game.
const hillCaptureChance = 0.05

// Player is one of the four kings racing for the hill.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// State is the four-color king-of-the-hill game state. Move legality is not
// modeled; the board exists only as the hill square and a turn cycle.
type State struct {
	Status        game.Status `json:"status"`
	Players       []*Player   `json:"players"`
	CurrentPlayer int         `json:"currentPlayer"`
	Round         int         `json:"round"`
	HillSquare    string      `json:"hillSquare"`
	WinnerID      string      `json:"winnerId"`
	Turn          int         `json:"turn"`
}

// Engine cycles four colors, emitting a flavor move per tick until one king
// captures the hill.
type Engine struct {
	mu        sync.RWMutex
	rng       *rand.Rand
	state     *State
	gameLog   *game.Log
	loop      *game.Loop
	listeners []game.Listener
}

// New constructs the engine. A nil rng selects a time-seeded source.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		rng:     rng,
		gameLog: game.NewLog(),
	}
	e.loop = game.NewLoop(e.tick)
	e.state = initialState()
	return e
}

func initialState() *State {
	return &State{
		Status: game.StatusWaiting,
		Players: []*Player{
			{ID: "c1", Name: "White King", Color: "white"},
			{ID: "c2", Name: "Red King", Color: "red"},
			{ID: "c3", Name: "Black King", Color: "black"},
			{ID: "c4", Name: "Blue King", Color: "blue"},
		},
		Round:      1,
		HillSquare: "e5",
		Turn:       1,
	}
}

var flavorMoves = []string{
	"advances the king one square",
	"shuffles behind a pawn wall",
	"probes the center",
	"sidesteps a check threat",
	"trades a knight for tempo",
	"castles long at last",
	"marches up the long diagonal",
	"feints toward the queenside",
}

// Name implements game.Engine.
func (e *Engine) Name() string { return "chess" }

// Start begins the simulation loop.
func (e *Engine) Start(interval time.Duration) {
	e.mu.Lock()
	if e.state.Status == game.StatusEnded {
		e.mu.Unlock()
		return
	}
	e.state.Status = game.StatusPlaying
	e.mu.Unlock()
	e.loop.Start(interval)
}

// Stop cancels the loop without altering game status.
func (e *Engine) Stop() { e.loop.Stop() }

// SetSpeed restarts the loop with a new interval.
func (e *Engine) SetSpeed(interval time.Duration) { e.loop.SetInterval(interval) }

// Interval returns the configured tick period.
func (e *Engine) Interval() time.Duration { return e.loop.Interval() }

// Reset stops the loop, reinitializes state and clears the log.
func (e *Engine) Reset() {
	e.loop.Stop()

	e.mu.Lock()
	e.state = initialState()
	e.gameLog.Clear()
	entry := game.NewEntry(0, "system", "reset", "game reset")
	e.gameLog.Append(entry)
	e.mu.Unlock()

	e.notify(entry)
}

// Status reports the lifecycle stage.
func (e *Engine) Status() game.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Status
}

// State returns the live game state. Callers must not mutate it.
func (e *Engine) State() any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Log returns a defensive copy of the game log.
func (e *Engine) Log() []game.Entry { return e.gameLog.Snapshot() }

// Subscribe registers a listener for future log entries.
func (e *Engine) Subscribe(l game.Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) notify(entries ...game.Entry) {
	e.mu.RLock()
	ls := make([]game.Listener, len(e.listeners))
	copy(ls, e.listeners)
	e.mu.RUnlock()

	for _, entry := range entries {
		for _, l := range ls {
			l(entry)
		}
	}
}

func (e *Engine) tick() {
	e.mu.Lock()
	var emitted []game.Entry
	emit := func(actor, action, detail string) {
		entry := game.NewEntry(e.state.Turn, actor, action, detail)
		e.gameLog.Append(entry)
		emitted = append(emitted, entry)
	}

	if e.state.Status == game.StatusPlaying {
		e.processMove(emit)
		e.state.Turn++
	}
	ended := e.state.Status == game.StatusEnded
	e.mu.Unlock()

	e.notify(emitted...)
	if ended {
		e.loop.Stop()
	}
}

func (e *Engine) processMove(emit func(actor, action, detail string)) {
	s := e.state
	p := s.Players[s.CurrentPlayer]

	if e.rng.Float64() < hillCaptureChance {
		s.Status = game.StatusEnded
		s.WinnerID = p.ID
		emit(p.Name, "hill", fmt.Sprintf("king reaches %s and claims the hill", s.HillSquare))
		return
	}

	emit(p.Name, "move", flavorMoves[e.rng.Intn(len(flavorMoves))])
	s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
	if s.CurrentPlayer == 0 {
		s.Round++
	}
}
