package dal

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/neon-grid/arcade/internal/models"
)

func genID(prefix string) string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

// aggregateLeaderboard folds result rows into win counts per (game, winner),
// sorted by wins descending then game/winner for a stable order. Shared by
// backends without a GROUP BY path.
func aggregateLeaderboard(results []models.GameResult) []models.LeaderboardRow {
	type key struct{ game, winner string }
	counts := map[key]int{}
	for _, r := range results {
		if r.Winner == "" {
			continue
		}
		counts[key{r.Game, r.Winner}]++
	}

	rows := make([]models.LeaderboardRow, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, models.LeaderboardRow{Game: k.game, Winner: k.winner, Wins: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].Game != rows[j].Game {
			return rows[i].Game < rows[j].Game
		}
		return rows[i].Winner < rows[j].Winner
	})
	return rows
}
