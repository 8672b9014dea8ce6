package dal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/neon-grid/arcade/internal/models"
)

// SQLiteDAL implements ResultDAL using SQLite
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL creates a new SQLite data access layer
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, err
	}

	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_results (
		id TEXT PRIMARY KEY,
		game TEXT NOT NULL,
		winner TEXT NOT NULL,
		detail TEXT,
		turns INTEGER NOT NULL DEFAULT 0,
		ts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_game_results_game ON game_results(game);
	CREATE INDEX IF NOT EXISTS idx_game_results_ts ON game_results(ts);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDAL) SaveResult(result *models.GameResult) (*models.GameResult, error) {
	if result.ID == "" {
		result.ID = genID("result")
	}
	if result.TS == 0 {
		result.TS = time.Now().UnixMilli()
	}

	_, err := s.db.Exec(`
		INSERT INTO game_results (id, game, winner, detail, turns, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.ID, result.Game, result.Winner, result.Detail, result.Turns, result.TS)

	return result, err
}

func (s *SQLiteDAL) ListResults(game string, limit int) ([]models.GameResult, error) {
	query := `
		SELECT id, game, winner, detail, turns, ts
		FROM game_results
	`
	args := []any{}
	if game != "" {
		query += ` WHERE game = ?`
		args = append(args, game)
	}
	query += ` ORDER BY ts DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.GameResult{}
	for rows.Next() {
		var r models.GameResult
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &r.Game, &r.Winner, &detail, &r.Turns, &r.TS); err != nil {
			return nil, err
		}
		if detail.Valid {
			r.Detail = detail.String
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteDAL) Leaderboard() ([]models.LeaderboardRow, error) {
	rows, err := s.db.Query(`
		SELECT game, winner, COUNT(*) AS wins
		FROM game_results
		WHERE winner != ''
		GROUP BY game, winner
		ORDER BY wins DESC, game ASC, winner ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	board := []models.LeaderboardRow{}
	for rows.Next() {
		var row models.LeaderboardRow
		if err := rows.Scan(&row.Game, &row.Winner, &row.Wins); err != nil {
			return nil, err
		}
		board = append(board, row)
	}
	return board, rows.Err()
}

func (s *SQLiteDAL) Reset() error {
	_, err := s.db.Exec("DELETE FROM game_results")
	return err
}

func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}
