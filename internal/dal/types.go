package dal

import "github.com/neon-grid/arcade/internal/models"

// ResultDAL defines the interface for persisted game results
type ResultDAL interface {
	SaveResult(result *models.GameResult) (*models.GameResult, error)
	ListResults(game string, limit int) ([]models.GameResult, error)
	Leaderboard() ([]models.LeaderboardRow, error)
	Reset() error
	Close() error
}
