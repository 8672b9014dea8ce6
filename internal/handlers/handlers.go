package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/neon-grid/arcade/internal/arcade"
	"github.com/neon-grid/arcade/internal/dal"
	"github.com/neon-grid/arcade/internal/logger"
	"github.com/neon-grid/arcade/internal/pubsub"
)

// defaultIntervalMs is used when a start request omits the tick interval
const defaultIntervalMs = 2000

// APIHandlers contains all API handler methods
type APIHandlers struct {
	hub    *arcade.Hub
	store  dal.ResultDAL
	pubsub *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(hub *arcade.Hub, store dal.ResultDAL, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		hub:    hub,
		store:  store,
		pubsub: ps,
	}
}

// ListGames returns a live summary of every engine
func (h *APIHandlers) ListGames(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.hub.Games())
}

// engineFromQuery resolves the engine named by the request's game parameter,
// writing the HTTP error itself when the name is missing or unknown
func (h *APIHandlers) engineFromQuery(w http.ResponseWriter, r *http.Request) (gameName string, ok bool) {
	name := r.URL.Query().Get("game")
	if name == "" {
		http.Error(w, "Missing game parameter", http.StatusBadRequest)
		return "", false
	}
	if _, found := h.hub.Engine(name); !found {
		http.Error(w, "Unknown game", http.StatusNotFound)
		return "", false
	}
	return name, true
}

// GetGameState returns the named engine's live state
func (h *APIHandlers) GetGameState(w http.ResponseWriter, r *http.Request) {
	name, ok := h.engineFromQuery(w, r)
	if !ok {
		return
	}
	eng, _ := h.hub.Engine(name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"game":   name,
		"status": eng.Status(),
		"state":  eng.State(),
	})
}

// GetGameLog returns the named engine's log
func (h *APIHandlers) GetGameLog(w http.ResponseWriter, r *http.Request) {
	name, ok := h.engineFromQuery(w, r)
	if !ok {
		return
	}
	eng, _ := h.hub.Engine(name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eng.Log())
}

type controlRequest struct {
	Game       string `json:"game"`
	IntervalMs int64  `json:"intervalMs,omitempty"`
}

// decodeControl parses a control request body and validates the game name
func (h *APIHandlers) decodeControl(w http.ResponseWriter, r *http.Request) (*controlRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode control request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if _, found := h.hub.Engine(req.Game); !found {
		http.Error(w, "Unknown game", http.StatusNotFound)
		return nil, false
	}
	return &req, true
}

// StartGame begins the named engine's simulation loop
func (h *APIHandlers) StartGame(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeControl(w, r)
	if !ok {
		return
	}

	interval := req.IntervalMs
	if interval <= 0 {
		interval = defaultIntervalMs
	}

	eng, _ := h.hub.Engine(req.Game)
	logger.Info("Starting game", "game", req.Game, "interval_ms", interval)
	eng.Start(time.Duration(interval) * time.Millisecond)

	h.pubsub.Publish(pubsub.Event{
		Type: "game:start",
		Game: req.Game,
		Payload: map[string]any{
			"intervalMs": interval,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// StopGame cancels the named engine's simulation loop
func (h *APIHandlers) StopGame(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeControl(w, r)
	if !ok {
		return
	}

	eng, _ := h.hub.Engine(req.Game)
	logger.Info("Stopping game", "game", req.Game)
	eng.Stop()

	h.pubsub.Publish(pubsub.Event{Type: "game:stop", Game: req.Game})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// SetGameSpeed restarts the named engine's loop with a new interval
func (h *APIHandlers) SetGameSpeed(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeControl(w, r)
	if !ok {
		return
	}
	if req.IntervalMs <= 0 {
		http.Error(w, "intervalMs must be positive", http.StatusBadRequest)
		return
	}

	eng, _ := h.hub.Engine(req.Game)
	eng.SetSpeed(time.Duration(req.IntervalMs) * time.Millisecond)

	h.pubsub.Publish(pubsub.Event{
		Type: "game:speed",
		Game: req.Game,
		Payload: map[string]any{
			"intervalMs": req.IntervalMs,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ResetGame rebuilds the named engine's state
func (h *APIHandlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeControl(w, r)
	if !ok {
		return
	}

	eng, _ := h.hub.Engine(req.Game)
	logger.Info("Resetting game", "game", req.Game)
	eng.Reset()

	h.pubsub.Publish(pubsub.Event{Type: "game:reset", Game: req.Game})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// AdvanceWeek runs one manual league simulation step outside the timer
func (h *APIHandlers) AdvanceWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger.Info("Advancing league week manually")
	h.hub.DBA().AdvanceWeek()

	h.pubsub.Publish(pubsub.Event{Type: "game:advance", Game: "dba"})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// GetStandings returns the rank-ordered league teams
func (h *APIHandlers) GetStandings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.hub.DBA().Standings())
}

// GetUserTeam returns the user-controlled franchise
func (h *APIHandlers) GetUserTeam(w http.ResponseWriter, r *http.Request) {
	team := h.hub.DBA().UserTeam()
	if team == nil {
		http.Error(w, "No user team", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(team)
}

// GetLeaguePlayers returns every generated league player
func (h *APIHandlers) GetLeaguePlayers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.hub.DBA().Players())
}

// ListResults returns persisted game results, newest first
func (h *APIHandlers) ListResults(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		n, err := strconv.Atoi(ls)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	results, err := h.store.ListResults(game, limit)
	if err != nil {
		logger.Error("Failed to list results", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetLeaderboard returns aggregated win counts
func (h *APIHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.store.Leaderboard()
	if err != nil {
		logger.Error("Failed to load leaderboard", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(board)
}

// actionCounter is implemented by analytics sinks that can aggregate entries
// per action.
type actionCounter interface {
	ActionCounts(ctx context.Context, gameName string) (map[string]uint64, error)
}

// actorRanker is implemented by analytics sinks that can rank actors by
// entry volume.
type actorRanker interface {
	TopActors(ctx context.Context, limit int) (map[string]uint64, error)
}

// GetActionCounts returns per-action entry counts for one game from the
// analytics sink
func (h *APIHandlers) GetActionCounts(w http.ResponseWriter, r *http.Request) {
	name, ok := h.engineFromQuery(w, r)
	if !ok {
		return
	}

	ac, ok := h.hub.Analytics().(actionCounter)
	if !ok {
		http.Error(w, "Analytics not configured", http.StatusServiceUnavailable)
		return
	}

	counts, err := ac.ActionCounts(r.Context(), name)
	if err != nil {
		logger.Error("Failed to query action counts", "game", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

// GetTopActors returns the busiest non-system actors across all games
func (h *APIHandlers) GetTopActors(w http.ResponseWriter, r *http.Request) {
	ar, ok := h.hub.Analytics().(actorRanker)
	if !ok {
		http.Error(w, "Analytics not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 10
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if n, err := strconv.Atoi(ls); err == nil && n > 0 {
			limit = n
		}
	}

	actors, err := ar.TopActors(r.Context(), limit)
	if err != nil {
		logger.Error("Failed to query top actors", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(actors)
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Subscribe to events
	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	// Send initial connection message
	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// Listen for events
	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// Send keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
