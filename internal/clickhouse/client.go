package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/neon-grid/arcade/internal/game"
)

// Client provides ClickHouse integration for game-event analytics
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn}, nil
}

// InsertEntries batch-inserts a slice of game log entries
func (c *Client) InsertEntries(ctx context.Context, gameName string, entries []game.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO game_entries (game, turn, actor, action, detail, ts)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, e := range entries {
		err := batch.Append(gameName, int32(e.Turn), e.Actor, e.Action, e.Detail,
			time.UnixMilli(e.Timestamp))
		if err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
	}

	return batch.Send()
}

// ActionCounts returns per-action event counts for one game over the last
// 30 days, for the activity dashboard
func (c *Client) ActionCounts(ctx context.Context, gameName string) (map[string]uint64, error) {
	counts := make(map[string]uint64)

	query := `
		SELECT action, count() AS events
		FROM game_entries
		WHERE game = $1
		AND ts >= now() - INTERVAL 30 DAY
		GROUP BY action
	`

	rows, err := c.conn.Query(ctx, query, gameName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var events uint64
		if err := rows.Scan(&action, &events); err != nil {
			return nil, err
		}
		counts[action] = events
	}

	return counts, nil
}

// TopActors returns the most active actors across all games over the last
// 30 days
func (c *Client) TopActors(ctx context.Context, limit int) (map[string]uint64, error) {
	actors := make(map[string]uint64)

	query := `
		SELECT actor, count() AS events
		FROM game_entries
		WHERE ts >= now() - INTERVAL 30 DAY
		AND actor != 'system'
		GROUP BY actor
		ORDER BY events DESC
		LIMIT $1
	`

	rows, err := c.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var actor string
		var events uint64
		if err := rows.Scan(&actor, &events); err != nil {
			return nil, err
		}
		actors[actor] = events
	}

	return actors, nil
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
