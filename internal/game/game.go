package game

import "time"

// Status represents the lifecycle stage of a simulated game.
type Status string

const (
	// StatusWaiting indicates the engine is constructed but not ticking.
	StatusWaiting Status = "waiting"
	// StatusPlaying indicates the simulation loop is advancing the game.
	StatusPlaying Status = "playing"
	// StatusEnded indicates the game reached a terminal state.
	StatusEnded Status = "ended"
)

// Entry is a single record in a game's append-only log.
type Entry struct {
	Turn      int    `json:"turn"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	Timestamp int64  `json:"ts"` // unix milliseconds
}

// Listener receives each log entry as it is emitted. Listeners are invoked
// synchronously on the tick goroutine and must not block.
type Listener func(entry Entry)

// Engine is the uniform surface every game simulation exposes to the host.
type Engine interface {
	// Name returns the stable game identifier used in routes and events.
	Name() string
	// Start begins the simulation loop with the given tick interval.
	Start(interval time.Duration)
	// Stop cancels the simulation loop without altering game status.
	Stop()
	// SetSpeed restarts the loop with a new interval; progress toward the
	// next tick is discarded.
	SetSpeed(interval time.Duration)
	// Reset stops the loop, rebuilds a fresh game state and clears the log.
	Reset()
	// Status reports the current lifecycle stage.
	Status() Status
	// Interval returns the configured tick period, zero before first Start.
	Interval() time.Duration
	// State returns the live game state for encoding. Callers must not mutate.
	State() any
	// Log returns a defensive copy of the game log.
	Log() []Entry
	// Subscribe registers a listener for future log entries.
	Subscribe(l Listener)
}

// NewEntry builds a log entry stamped with the current wall clock.
func NewEntry(turn int, actor, action, detail string) Entry {
	return Entry{
		Turn:      turn,
		Actor:     actor,
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now().UnixMilli(),
	}
}
