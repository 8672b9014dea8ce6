package dal

import (
	"sync"
	"time"

	"github.com/neon-grid/arcade/internal/models"
)

// MemoryDAL implements ResultDAL using in-memory storage
type MemoryDAL struct {
	mu      sync.RWMutex
	results []models.GameResult
}

// NewMemoryDAL creates a new in-memory data access layer
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{results: []models.GameResult{}}
}

func (m *MemoryDAL) SaveResult(result *models.GameResult) (*models.GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if result.ID == "" {
		result.ID = genID("result")
	}
	if result.TS == 0 {
		result.TS = time.Now().UnixMilli()
	}

	m.results = append(m.results, *result)
	return result, nil
}

func (m *MemoryDAL) ListResults(game string, limit int) ([]models.GameResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first, copied to avoid race conditions
	out := []models.GameResult{}
	for i := len(m.results) - 1; i >= 0; i-- {
		r := m.results[i]
		if game != "" && r.Game != game {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryDAL) Leaderboard() ([]models.LeaderboardRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return aggregateLeaderboard(m.results), nil
}

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = []models.GameResult{}
	return nil
}

func (m *MemoryDAL) Close() error {
	return nil
}
