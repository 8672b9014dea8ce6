package dal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/neon-grid/arcade/internal/models"
)

// PostgresDAL implements ResultDAL using PostgreSQL
type PostgresDAL struct {
	db *sql.DB
}

// NewPostgresDAL creates a new PostgreSQL data access layer optimized for CloudNativePG
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// Settings tuned for CloudNativePG high-availability clusters
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Retry the first ping: Kubernetes DNS propagation can lag pod startup
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	dal := &PostgresDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, err
	}

	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_results (
		id TEXT PRIMARY KEY,
		game TEXT NOT NULL,
		winner TEXT NOT NULL,
		detail TEXT,
		turns INTEGER NOT NULL DEFAULT 0,
		ts BIGINT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_game_results_game ON game_results(game);
	CREATE INDEX IF NOT EXISTS idx_game_results_ts ON game_results(ts DESC);
	`

	_, err := p.db.Exec(schema)
	return err
}

func (p *PostgresDAL) SaveResult(result *models.GameResult) (*models.GameResult, error) {
	if result.ID == "" {
		result.ID = genID("result")
	}
	if result.TS == 0 {
		result.TS = time.Now().UnixMilli()
	}

	_, err := p.db.Exec(`
		INSERT INTO game_results (id, game, winner, detail, turns, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, result.ID, result.Game, result.Winner, result.Detail, result.Turns, result.TS)

	return result, err
}

func (p *PostgresDAL) ListResults(game string, limit int) ([]models.GameResult, error) {
	query := `
		SELECT id, game, winner, detail, turns, ts
		FROM game_results
	`
	args := []any{}
	if game != "" {
		args = append(args, game)
		query += fmt.Sprintf(` WHERE game = $%d`, len(args))
	}
	query += ` ORDER BY ts DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := p.db.Query(query, args...)
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

func (p *PostgresDAL) Leaderboard() ([]models.LeaderboardRow, error) {
	rows, err := p.db.Query(`
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

func (p *PostgresDAL) Reset() error {
	_, err := p.db.Exec("DELETE FROM game_results")
	return err
}

func (p *PostgresDAL) Close() error {
	return p.db.Close()
}
