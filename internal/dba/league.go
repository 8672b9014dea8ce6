package dba

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

const (
	teamCount      = 8
	benchSize      = 3
	seasonWeeks    = 18
	poolSize       = 120
	startingBudget = 100_000_000
)

// Record is a team's win/loss tally.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Pct is the record's win percentage.
func (r Record) Pct() float64 {
	total := r.Wins + r.Losses
	if total == 0 {
		return 0
	}
	return float64(r.Wins) / float64(total)
}

// Team is one franchise in the league. Exactly one team is user-owned.
type Team struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Owner          string                 `json:"owner"` // "user" or an AI tag
	Players        []*NBAPlayer           `json:"players"`
	StartingLineup map[Position]*NBAPlayer `json:"startingLineup"`
	Bench          []*NBAPlayer           `json:"bench"`
	Budget         int                    `json:"budget"`
	LeagueRank     int                    `json:"leagueRank"`
	Record         Record                 `json:"record"`
	TotalValue     float64                `json:"totalValue"`
}

// LineupRating sums the weighted slot scores of the starting five.
func (t *Team) LineupRating() float64 {
	total := 0.0
	for _, p := range t.StartingLineup {
		if p != nil {
			total += lineupScore(p)
		}
	}
	return total
}

// optimizeLineup fills each starting slot with the rostered player of that
// position maximizing the slot formula, then rebuilds the bench.
func (t *Team) optimizeLineup() {
	t.StartingLineup = map[Position]*NBAPlayer{}
	starters := map[string]bool{}

	for _, pos := range positions {
		var best *NBAPlayer
		for _, p := range t.Players {
			if p.Position != pos || starters[p.ID] {
				continue
			}
			if best == nil || lineupScore(p) > lineupScore(best) {
				best = p
			}
		}
		t.StartingLineup[pos] = best
		if best != nil {
			starters[best.ID] = true
		}
	}

	t.Bench = t.Bench[:0]
	for _, p := range t.Players {
		if !starters[p.ID] {
			t.Bench = append(t.Bench, p)
		}
	}

	t.TotalValue = 0
	for _, p := range t.Players {
		t.TotalValue += p.Value
	}
}

var teamNames = []string{
	"Neon Dunkers", "Grid Reapers", "Chrome Cobras", "Static Kings",
	"Voltage Vipers", "Pixel Pistons", "Cipher City Hawks", "Darknet Dragons",
}

// GameStatus is a scheduled game's lifecycle stage.
type GameStatus string

const (
	GameScheduled GameStatus = "scheduled"
	GameCompleted GameStatus = "completed"
)

// BoxLine is one player's single-game stat line plus its fantasy score.
type BoxLine struct {
	PlayerID      string   `json:"playerId"`
	PlayerName    string   `json:"playerName"`
	TeamID        string   `json:"teamId"`
	Stats         StatLine `json:"stats"`
	FantasyPoints float64  `json:"fantasyPoints"`
}

// GameResult is the immutable outcome of one simulated game.
type GameResult struct {
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	WinnerID  string    `json:"winnerId"`
	MVP       string    `json:"mvp"`
	BoxScore  []BoxLine `json:"boxScore"`
}

// Game is one scheduled matchup. Result is set exactly once on completion.
type Game struct {
	ID       string      `json:"id"`
	Week     int         `json:"week"`
	HomeID   string      `json:"homeId"`
	AwayID   string      `json:"awayId"`
	Date     string      `json:"date"`
	Status   GameStatus  `json:"status"`
	Result   *GameResult `json:"result,omitempty"`
}

// draftTeams builds the 8 franchises and drafts players from the pool without
// replacement: one random player per starting slot, then bench fills.
func draftTeams(pool []*NBAPlayer, rng *rand.Rand) ([]*Team, []*NBAPlayer) {
	remaining := append([]*NBAPlayer(nil), pool...)

	takeByPosition := func(pos Position) *NBAPlayer {
		candidates := []int{}
		for i, p := range remaining {
			if p.Position == pos {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			return nil
		}
		i := candidates[rng.Intn(len(candidates))]
		p := remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)
		return p
	}
	takeAny := func() *NBAPlayer {
		if len(remaining) == 0 {
			return nil
		}
		i := rng.Intn(len(remaining))
		p := remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)
		return p
	}

	teams := make([]*Team, 0, teamCount)
	for i := 0; i < teamCount; i++ {
		owner := fmt.Sprintf("cpu-%d", i)
		if i == 0 {
			owner = "user"
		}
		t := &Team{
			ID:     fmt.Sprintf("team-%d", i+1),
			Name:   teamNames[i],
			Owner:  owner,
			Budget: startingBudget,
		}
		for _, pos := range positions {
			if p := takeByPosition(pos); p != nil {
				p.Team = t.Name
				p.Contract.Team = t.Name
				t.Players = append(t.Players, p)
			}
		}
		for j := 0; j < benchSize; j++ {
			if p := takeAny(); p != nil {
				p.Team = t.Name
				p.Contract.Team = t.Name
				t.Players = append(t.Players, p)
			}
		}
		t.optimizeLineup()
		teams = append(teams, t)
	}
	return teams, remaining
}

// buildSchedule pairs teams across the season. Each week every team plays
// once, rotating opponents round-robin style; dates are derived from the
// week number.
func buildSchedule(teams []*Team, seasonStart time.Time) []*Game {
	n := len(teams)
	// Circle method: fix teams[0], rotate the rest.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var schedule []*Game
	gameID := 0
	for week := 1; week <= seasonWeeks; week++ {
		date := seasonStart.AddDate(0, 0, (week-1)*7).Format("2006-01-02")
		for i := 0; i < n/2; i++ {
			home := teams[idx[i]]
			away := teams[idx[n-1-i]]
			if week%2 == 0 {
				home, away = away, home
			}
			gameID++
			schedule = append(schedule, &Game{
				ID:     fmt.Sprintf("g-%03d", gameID),
				Week:   week,
				HomeID: home.ID,
				AwayID: away.ID,
				Date:   date,
				Status: GameScheduled,
			})
		}
		// Rotate all but the first entry.
		last := idx[n-1]
		copy(idx[2:], idx[1:n-1])
		idx[1] = last
	}
	return schedule
}

// sortStandings orders teams by win percentage, ties broken by raw wins, and
// stamps each team's league rank.
func sortStandings(teams []*Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		pi, pj := teams[i].Record.Pct(), teams[j].Record.Pct()
		if pi != pj {
			return pi > pj
		}
		return teams[i].Record.Wins > teams[j].Record.Wins
	})
	for i, t := range teams {
		t.LeagueRank = i + 1
	}
}
