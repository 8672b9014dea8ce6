package models

// GameName identifies one of the hosted simulations
type GameName string

const (
	GameMonopoly GameName = "monopoly"
	GameSpades   GameName = "spades"
	GameDBA      GameName = "dba"
	GameChess    GameName = "chess"
)

// AllGames lists every hosted simulation in display order
var AllGames = []GameName{GameMonopoly, GameSpades, GameDBA, GameChess}

// Valid reports whether the name identifies a hosted game
func (g GameName) Valid() bool {
	for _, n := range AllGames {
		if n == g {
			return true
		}
	}
	return false
}

// GameInfo is the live summary of one engine, as served by the API
type GameInfo struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	IntervalMs int64  `json:"intervalMs"`
	LogLength  int    `json:"logLength"`
}

// GameResult is a persisted record of one finished simulation
type GameResult struct {
	ID     string `json:"id"`
	Game   string `json:"game"`
	Winner string `json:"winner"`
	Detail string `json:"detail"`
	Turns  int    `json:"turns"`
	TS     int64  `json:"ts"`
}

// LeaderboardRow aggregates wins per winner within one game
type LeaderboardRow struct {
	Game   string `json:"game"`
	Winner string `json:"winner"`
	Wins   int    `json:"wins"`
}
