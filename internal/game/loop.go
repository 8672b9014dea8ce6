package game

import (
	"sync"
	"time"
)

// firstTickDelay is how long after Start the first advance fires, so a slow
// interval still shows progress immediately.
const firstTickDelay = 50 * time.Millisecond

// Loop drives an engine's per-tick advance function on a fixed period.
// Start, Stop and SetInterval are safe to call in any order; mis-ordered
// calls are no-ops rather than panics, since the host UI drives them from
// user actions.
type Loop struct {
	mu       sync.Mutex
	tick     func()
	interval time.Duration
	cancel   chan struct{}
}

// NewLoop creates a loop that invokes tick on each period.
func NewLoop(tick func()) *Loop {
	return &Loop{tick: tick}
}

// Start begins periodic ticking. If the loop is already running it is
// restarted with the new interval. Non-positive intervals are ignored.
func (l *Loop) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()
	l.interval = interval
	l.cancel = make(chan struct{})
	go l.run(l.cancel, interval)
}

// Stop cancels future ticks. A tick already in progress runs to completion.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// SetInterval restarts the loop with a new period. Progress toward the next
// scheduled tick is discarded. A no-op if the loop is not running.
func (l *Loop) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil {
		return
	}
	l.stopLocked()
	l.interval = interval
	l.cancel = make(chan struct{})
	go l.run(l.cancel, interval)
}

// Running reports whether the loop is ticking.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Interval returns the configured tick period.
func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

func (l *Loop) stopLocked() {
	if l.cancel != nil {
		close(l.cancel)
		l.cancel = nil
	}
}

func (l *Loop) run(cancel chan struct{}, interval time.Duration) {
	first := time.NewTimer(firstTickDelay)
	defer first.Stop()

	select {
	case <-first.C:
		l.tick()
	case <-cancel:
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.tick()
		case <-cancel:
			return
		}
	}
}
