package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/neon-grid/arcade/internal/game"
	"github.com/neon-grid/arcade/internal/logger"
)

// MockAnalytics provides a mock ClickHouse sink for local development. Entries
// are held in memory so the analytics queries still return something useful.
type MockAnalytics struct {
	mu      sync.Mutex
	entries map[string][]game.Entry
}

// NewMockAnalytics creates a mock analytics sink
func NewMockAnalytics() *MockAnalytics {
	logger.Info("Using MOCK ClickHouse (in-memory analytics) for local development")

	return &MockAnalytics{
		entries: make(map[string][]game.Entry),
	}
}

// InsertEntries buffers a batch of log entries in memory
func (m *MockAnalytics) InsertEntries(_ context.Context, gameName string, entries []game.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[gameName] = append(m.entries[gameName], entries...)
	return nil
}

// ActionCounts tallies buffered entries per action for one game
func (m *MockAnalytics) ActionCounts(_ context.Context, gameName string) (map[string]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]uint64)
	for _, e := range m.entries[gameName] {
		counts[e.Action]++
	}
	return counts, nil
}

// TopActors tallies buffered entries per actor across all games, skipping
// system entries. Only the `limit` busiest actors are returned, matching the
// real query's LIMIT clause.
func (m *MockAnalytics) TopActors(_ context.Context, limit int) (map[string]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]uint64)
	for _, entries := range m.entries {
		for _, e := range entries {
			if e.Actor == "system" {
				continue
			}
			counts[e.Actor]++
		}
	}

	if limit <= 0 || len(counts) <= limit {
		return counts, nil
	}

	type actorCount struct {
		actor string
		count uint64
	}
	ranked := make([]actorCount, 0, len(counts))
	for actor, count := range counts {
		ranked = append(ranked, actorCount{actor, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].actor < ranked[j].actor
	})

	top := make(map[string]uint64, limit)
	for _, ac := range ranked[:limit] {
		top[ac.actor] = ac.count
	}
	return top, nil
}

// EntryCount reports how many entries have been buffered for one game
func (m *MockAnalytics) EntryCount(gameName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[gameName])
}

// Close is a no-op for mock client
func (m *MockAnalytics) Close() error {
	return nil
}
