package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/neon-grid/arcade/internal/arcade"
	"github.com/neon-grid/arcade/internal/dal"
	"github.com/neon-grid/arcade/internal/dba"
	"github.com/neon-grid/arcade/internal/game"
	"github.com/neon-grid/arcade/internal/mocks"
	"github.com/neon-grid/arcade/internal/models"
	"github.com/neon-grid/arcade/internal/pubsub"
)

func newTestHandlers(seed int64) (*APIHandlers, *arcade.Hub, *dal.MemoryDAL, *pubsub.PubSub) {
	ps := pubsub.New()
	store := dal.NewMemoryDAL()
	hub := arcade.NewSeeded(ps, store, seed)
	return NewAPIHandlers(hub, store, ps), hub, store, ps
}

func TestListGames(t *testing.T) {
	h, _, _, _ := newTestHandlers(1)

	req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
	w := httptest.NewRecorder()
	h.ListGames(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var infos []models.GameInfo
	if err := json.NewDecoder(w.Body).Decode(&infos); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(infos) != len(models.AllGames) {
		t.Fatalf("got %d games, want %d", len(infos), len(models.AllGames))
	}
	for i, name := range models.AllGames {
		if infos[i].Name != string(name) {
			t.Errorf("game %d = %s, want %s", i, infos[i].Name, name)
		}
	}
}

func TestGetGameStateValidation(t *testing.T) {
	h, _, _, _ := newTestHandlers(2)

	tests := []struct {
		name     string
		url      string
		wantCode int
	}{
		{"missing game", "/api/game/state", http.StatusBadRequest},
		{"unknown game", "/api/game/state?game=pinball", http.StatusNotFound},
		{"valid game", "/api/game/state?game=spades", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			h.GetGameState(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestGetGameStateShape(t *testing.T) {
	h, _, _, _ := newTestHandlers(3)

	req := httptest.NewRequest(http.MethodGet, "/api/game/state?game=monopoly", nil)
	w := httptest.NewRecorder()
	h.GetGameState(w, req)

	var body struct {
		Game   string          `json:"game"`
		Status string          `json:"status"`
		State  json.RawMessage `json:"state"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Game != "monopoly" {
		t.Errorf("game = %s, want monopoly", body.Game)
	}
	if body.Status != string(game.StatusWaiting) {
		t.Errorf("status = %s, want waiting", body.Status)
	}
	if len(body.State) == 0 {
		t.Error("state payload is empty")
	}
}

func TestGetGameLog(t *testing.T) {
	h, hub, _, _ := newTestHandlers(4)

	eng, _ := hub.Engine("chess")
	eng.Reset()

	req := httptest.NewRequest(http.MethodGet, "/api/game/log?game=chess", nil)
	w := httptest.NewRecorder()
	h.GetGameLog(w, req)

	var entries []game.Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Action != "reset" {
		t.Errorf("action = %s, want reset", entries[0].Action)
	}
}

func TestStartAndStopGame(t *testing.T) {
	h, hub, _, _ := newTestHandlers(5)

	req := httptest.NewRequest(http.MethodPost, "/api/game/start",
		strings.NewReader(`{"game":"monopoly","intervalMs":60000}`))
	w := httptest.NewRecorder()
	h.StartGame(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200: %s", w.Code, w.Body.String())
	}

	eng, _ := hub.Engine("monopoly")
	if eng.Status() != game.StatusPlaying {
		t.Errorf("engine status = %s, want playing", eng.Status())
	}
	if eng.Interval() != 60*time.Second {
		t.Errorf("interval = %v, want 60s", eng.Interval())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/game/stop",
		strings.NewReader(`{"game":"monopoly"}`))
	w = httptest.NewRecorder()
	h.StopGame(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", w.Code)
	}
}

func TestStartGameDefaultsInterval(t *testing.T) {
	h, hub, _, _ := newTestHandlers(6)

	req := httptest.NewRequest(http.MethodPost, "/api/game/start",
		strings.NewReader(`{"game":"spades"}`))
	w := httptest.NewRecorder()
	h.StartGame(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	eng, _ := hub.Engine("spades")
	defer eng.Stop()
	if eng.Interval() != defaultIntervalMs*time.Millisecond {
		t.Errorf("interval = %v, want %dms", eng.Interval(), defaultIntervalMs)
	}
}

func TestControlEndpointsRejectGet(t *testing.T) {
	h, _, _, _ := newTestHandlers(7)

	handlers := map[string]http.HandlerFunc{
		"start":   h.StartGame,
		"stop":    h.StopGame,
		"speed":   h.SetGameSpeed,
		"reset":   h.ResetGame,
		"advance": h.AdvanceWeek,
	}

	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/game/"+name, nil)
			w := httptest.NewRecorder()
			fn(w, req)
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", w.Code)
			}
		})
	}
}

func TestControlRejectsUnknownGame(t *testing.T) {
	h, _, _, _ := newTestHandlers(8)

	req := httptest.NewRequest(http.MethodPost, "/api/game/start",
		strings.NewReader(`{"game":"pinball"}`))
	w := httptest.NewRecorder()
	h.StartGame(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSetSpeedRequiresPositiveInterval(t *testing.T) {
	h, _, _, _ := newTestHandlers(9)

	req := httptest.NewRequest(http.MethodPost, "/api/game/speed",
		strings.NewReader(`{"game":"chess","intervalMs":0}`))
	w := httptest.NewRecorder()
	h.SetGameSpeed(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResetGame(t *testing.T) {
	h, hub, _, _ := newTestHandlers(10)

	eng, _ := hub.Engine("chess")
	eng.Start(time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	eng.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/game/reset",
		strings.NewReader(`{"game":"chess"}`))
	w := httptest.NewRecorder()
	h.ResetGame(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if eng.Status() != game.StatusWaiting {
		t.Errorf("status after reset = %s, want waiting", eng.Status())
	}
	if len(eng.Log()) != 1 {
		t.Errorf("log length after reset = %d, want 1", len(eng.Log()))
	}
}

func TestAdvanceWeekAndStandings(t *testing.T) {
	h, hub, _, _ := newTestHandlers(11)

	req := httptest.NewRequest(http.MethodPost, "/api/dba/advance", nil)
	w := httptest.NewRecorder()
	h.AdvanceWeek(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("advance status = %d, want 200", w.Code)
	}

	state := hub.DBA().State().(*dba.State)
	if state.CurrentWeek != 2 {
		t.Errorf("current week = %d, want 2", state.CurrentWeek)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/dba/standings", nil)
	w = httptest.NewRecorder()
	h.GetStandings(w, req)

	var standings []dba.Team
	if err := json.NewDecoder(w.Body).Decode(&standings); err != nil {
		t.Fatalf("failed to decode standings: %v", err)
	}
	if len(standings) != 8 {
		t.Fatalf("got %d teams, want 8", len(standings))
	}
	if standings[0].LeagueRank != 1 {
		t.Errorf("top team rank = %d, want 1", standings[0].LeagueRank)
	}
}

func TestGetUserTeam(t *testing.T) {
	h, _, _, _ := newTestHandlers(12)

	req := httptest.NewRequest(http.MethodGet, "/api/dba/team", nil)
	w := httptest.NewRecorder()
	h.GetUserTeam(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var team dba.Team
	if err := json.NewDecoder(w.Body).Decode(&team); err != nil {
		t.Fatalf("failed to decode team: %v", err)
	}
	if team.Owner != "user" {
		t.Errorf("owner = %s, want user", team.Owner)
	}
}

func TestListResults(t *testing.T) {
	h, _, store, _ := newTestHandlers(13)

	for _, r := range []*models.GameResult{
		{Game: "chess", Winner: "Red King"},
		{Game: "spades", Winner: "Jinx & Mirage"},
		{Game: "chess", Winner: "Blue King"},
	} {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatalf("failed to seed result: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/results?game=chess", nil)
	w := httptest.NewRecorder()
	h.ListResults(w, req)

	var results []models.GameResult
	if err := json.NewDecoder(w.Body).Decode(&results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Game != "chess" {
			t.Errorf("result game = %s, want chess", r.Game)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/api/results?limit=bogus", nil)
	w = httptest.NewRecorder()
	h.ListResults(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}
}

func TestGetLeaderboard(t *testing.T) {
	h, _, store, _ := newTestHandlers(14)

	for i := 0; i < 3; i++ {
		if _, err := store.SaveResult(&models.GameResult{Game: "chess", Winner: "Red King"}); err != nil {
			t.Fatalf("failed to seed result: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	w := httptest.NewRecorder()
	h.GetLeaderboard(w, req)

	var board []models.LeaderboardRow
	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatalf("failed to decode leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Wins != 3 {
		t.Fatalf("leaderboard = %+v, want one row with 3 wins", board)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	// Without an analytics sink the endpoints degrade to 503.
	h, _, _, _ := newTestHandlers(16)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/actions?game=chess", nil)
	w := httptest.NewRecorder()
	h.GetActionCounts(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("actions without sink: status = %d, want 503", w.Code)
	}

	// With the in-memory sink both endpoints serve aggregates.
	ps := pubsub.New()
	store := dal.NewMemoryDAL()
	hub := arcade.New(ps, store, mocks.NewMockAnalytics())
	h = NewAPIHandlers(hub, store, ps)

	req = httptest.NewRequest(http.MethodGet, "/api/analytics/actions?game=chess", nil)
	w = httptest.NewRecorder()
	h.GetActionCounts(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("actions status = %d, want 200", w.Code)
	}
	var counts map[string]uint64
	if err := json.NewDecoder(w.Body).Decode(&counts); err != nil {
		t.Fatalf("failed to decode counts: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/analytics/actors?limit=5", nil)
	w = httptest.NewRecorder()
	h.GetTopActors(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("actors status = %d, want 200", w.Code)
	}
}

func TestEventsSSE(t *testing.T) {
	h, _, _, ps := newTestHandlers(15)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.EventsSSE(w, req)
		close(done)
	}()

	// Let the handler subscribe before publishing.
	time.Sleep(50 * time.Millisecond)
	ps.Publish(pubsub.Event{Type: "game:start", Game: "monopoly"})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("SSE handler did not exit on context cancel")
	}

	body := w.Body.String()
	if !strings.Contains(body, `"type":"connected"`) {
		t.Error("missing initial connected message")
	}
	if !strings.Contains(body, "game:start") {
		t.Error("published event not written to stream")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %s, want text/event-stream", ct)
	}
}
