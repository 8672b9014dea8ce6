package arcade

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/neon-grid/arcade/internal/chess"
	"github.com/neon-grid/arcade/internal/dal"
	"github.com/neon-grid/arcade/internal/dba"
	"github.com/neon-grid/arcade/internal/game"
	"github.com/neon-grid/arcade/internal/logger"
	"github.com/neon-grid/arcade/internal/models"
	"github.com/neon-grid/arcade/internal/monopoly"
	"github.com/neon-grid/arcade/internal/pubsub"
	"github.com/neon-grid/arcade/internal/spades"
)

// entryFlushSize is how many buffered log entries trigger a ClickHouse batch
// insert.
const entryFlushSize = 100

// Analytics receives batched log entries. Satisfied by clickhouse.Client and
// by the local-development mock.
type Analytics interface {
	InsertEntries(ctx context.Context, gameName string, entries []game.Entry) error
	Close() error
}

// Hub owns the four game engines and bridges their log entries to the
// pubsub fan-out, the results store and the analytics sink.
type Hub struct {
	mu        sync.Mutex
	engines   map[string]game.Engine
	dbaEng    *dba.Engine
	ps        *pubsub.PubSub
	store     dal.ResultDAL
	analytics Analytics // optional

	pending  map[string][]game.Entry
	recorded map[string]bool
}

// New constructs the hub with a fresh engine per game. analytics may be nil
// when no ClickHouse instance is configured.
func New(ps *pubsub.PubSub, store dal.ResultDAL, analytics Analytics) *Hub {
	dbaEng := dba.New(nil)
	return newHub(ps, store, analytics, dbaEng, []game.Engine{
		monopoly.New(nil),
		spades.New(nil),
		dbaEng,
		chess.New(nil),
	})
}

// NewSeeded is New with deterministic engine randomness, for tests.
func NewSeeded(ps *pubsub.PubSub, store dal.ResultDAL, seed int64) *Hub {
	dbaEng := dba.New(rand.New(rand.NewSource(seed + 2)))
	return newHub(ps, store, nil, dbaEng, []game.Engine{
		monopoly.New(rand.New(rand.NewSource(seed))),
		spades.New(rand.New(rand.NewSource(seed + 1))),
		dbaEng,
		chess.New(rand.New(rand.NewSource(seed + 3))),
	})
}

func newHub(ps *pubsub.PubSub, store dal.ResultDAL, analytics Analytics, dbaEng *dba.Engine, engines []game.Engine) *Hub {
	h := &Hub{
		engines:   make(map[string]game.Engine, len(engines)),
		dbaEng:    dbaEng,
		ps:        ps,
		store:     store,
		analytics: analytics,
		pending:   make(map[string][]game.Entry),
		recorded:  make(map[string]bool),
	}

	for _, e := range engines {
		h.engines[e.Name()] = e
		name := e.Name()
		e.Subscribe(func(entry game.Entry) {
			h.onEntry(name, entry)
		})
	}
	return h
}

// onEntry is the single listener attached to every engine. It fans the entry
// out to pubsub, buffers it for analytics and persists a result when the
// engine just ended.
func (h *Hub) onEntry(name string, entry game.Entry) {
	h.ps.Publish(pubsub.Event{
		Type: "game:entry",
		Game: name,
		Payload: map[string]any{
			"turn":   entry.Turn,
			"actor":  entry.Actor,
			"action": entry.Action,
			"detail": entry.Detail,
			"ts":     entry.Timestamp,
		},
	})

	h.mu.Lock()
	if entry.Action == "reset" {
		h.recorded[name] = false
	}
	h.pending[name] = append(h.pending[name], entry)
	flush := len(h.pending[name]) >= entryFlushSize
	h.mu.Unlock()

	if flush {
		h.flushEntries(name)
	}

	eng := h.engines[name]
	if eng.Status() == game.StatusEnded {
		h.recordResult(name, eng)
	}
}

// flushEntries batch-inserts the buffered entries for one game.
func (h *Hub) flushEntries(name string) {
	if h.analytics == nil {
		h.mu.Lock()
		h.pending[name] = nil
		h.mu.Unlock()
		return
	}

	h.mu.Lock()
	entries := h.pending[name]
	h.pending[name] = nil
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.analytics.InsertEntries(ctx, name, entries); err != nil {
		logger.Error("Failed to flush entries to ClickHouse", "game", name, "error", err)
	}
}

// recordResult persists one GameResult per finished game and announces it.
func (h *Hub) recordResult(name string, eng game.Engine) {
	h.mu.Lock()
	if h.recorded[name] {
		h.mu.Unlock()
		return
	}
	h.recorded[name] = true
	h.mu.Unlock()

	result := resultFor(name, eng.State())
	if result == nil {
		return
	}

	if _, err := h.store.SaveResult(result); err != nil {
		logger.Error("Failed to persist game result", "game", name, "error", err)
	}
	h.ps.Publish(pubsub.Event{
		Type: "game:result",
		Game: name,
		Payload: map[string]any{
			"winner": result.Winner,
			"detail": result.Detail,
			"turns":  result.Turns,
		},
	})
	h.flushEntries(name)

	logger.Info("Game finished", "game", name, "winner", result.Winner, "turns", result.Turns)
}

// resultFor extracts the winner from a finished game's typed state.
func resultFor(name string, state any) *models.GameResult {
	switch s := state.(type) {
	case *monopoly.State:
		winner := s.WinnerID
		for _, p := range s.Players {
			if p.ID == s.WinnerID {
				winner = p.Name
			}
		}
		return &models.GameResult{
			Game:   name,
			Winner: winner,
			Detail: fmt.Sprintf("won after %d rounds", s.Round),
			Turns:  s.Round,
		}
	case *spades.State:
		if s.WinnerTeam < 0 {
			return nil
		}
		var names []string
		for _, p := range s.Players {
			if p.Team == s.WinnerTeam {
				names = append(names, p.Name)
			}
		}
		winner := fmt.Sprintf("%s & %s", names[0], names[1])
		return &models.GameResult{
			Game:   name,
			Winner: winner,
			Detail: fmt.Sprintf("reached %d points in %d hands", s.TeamScores[s.WinnerTeam], s.HandNumber),
			Turns:  s.Turn,
		}
	case *dba.State:
		winner := s.ChampionID
		for _, t := range s.Standings {
			if t.ID == s.ChampionID {
				winner = t.Name
			}
		}
		return &models.GameResult{
			Game:   name,
			Winner: winner,
			Detail: fmt.Sprintf("season %d champions", s.Season),
			Turns:  s.Turn,
		}
	case *chess.State:
		winner := s.WinnerID
		for _, p := range s.Players {
			if p.ID == s.WinnerID {
				winner = p.Name
			}
		}
		return &models.GameResult{
			Game:   name,
			Winner: winner,
			Detail: fmt.Sprintf("claimed the hill in round %d", s.Round),
			Turns:  s.Turn,
		}
	}
	return nil
}

// Engine returns the named engine.
func (h *Hub) Engine(name string) (game.Engine, bool) {
	e, ok := h.engines[name]
	return e, ok
}

// DBA returns the fantasy league engine for its extra operations.
func (h *Hub) DBA() *dba.Engine {
	return h.dbaEng
}

// Analytics returns the configured analytics sink, nil when unset.
func (h *Hub) Analytics() Analytics {
	return h.analytics
}

// Games summarizes every engine for the API, in display order.
func (h *Hub) Games() []models.GameInfo {
	infos := make([]models.GameInfo, 0, len(h.engines))
	for _, name := range models.AllGames {
		e := h.engines[string(name)]
		infos = append(infos, models.GameInfo{
			Name:       string(name),
			Status:     string(e.Status()),
			IntervalMs: e.Interval().Milliseconds(),
			LogLength:  len(e.Log()),
		})
	}
	return infos
}

// StopAll stops every engine loop and flushes buffered analytics.
func (h *Hub) StopAll() {
	for name, e := range h.engines {
		e.Stop()
		h.flushEntries(name)
	}
}
