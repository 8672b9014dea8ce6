package dba

import (
	"fmt"
	"math/rand"
)

// Position is one of the five starting slots.
type Position string

const (
	PointGuard   Position = "PG"
	ShootingGuard Position = "SG"
	SmallForward Position = "SF"
	PowerForward Position = "PF"
	Center       Position = "C"
)

// positions is the fixed slot order used for pool cycling and lineups.
var positions = []Position{PointGuard, ShootingGuard, SmallForward, PowerForward, Center}

// Rarity tiers scale a player's stats, salary and market value.
type Rarity string

const (
	Common    Rarity = "Common"
	Uncommon  Rarity = "Uncommon"
	Rare      Rarity = "Rare"
	Epic      Rarity = "Epic"
	Legendary Rarity = "Legendary"
)

// rarityWeights is the draw distribution, in percent.
var rarityWeights = []struct {
	rarity Rarity
	weight int
}{
	{Common, 50},
	{Uncommon, 25},
	{Rare, 15},
	{Epic, 8},
	{Legendary, 2},
}

var rarityMultiplier = map[Rarity]float64{
	Common:    1.0,
	Uncommon:  1.15,
	Rare:      1.35,
	Epic:      1.6,
	Legendary: 2.0,
}

// StatLine holds per-game season averages or a single game's box line.
type StatLine struct {
	Points       float64 `json:"points"`
	Rebounds     float64 `json:"rebounds"`
	Assists      float64 `json:"assists"`
	Steals       float64 `json:"steals"`
	Blocks       float64 `json:"blocks"`
	ThreePM      float64 `json:"threePm"`
	FGPercent    float64 `json:"fgPercent"`
	ThreePercent float64 `json:"threePercent"`
	FTPercent    float64 `json:"ftPercent"`
}

// Contract is a player's current deal.
type Contract struct {
	Team      string `json:"team"`
	Salary    int    `json:"salary"`
	YearsLeft int    `json:"yearsLeft"`
}

// NBAPlayer is a generated pool entity. Each player belongs to at most one
// team roster and at most one starting slot on that team.
type NBAPlayer struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Team     string   `json:"team"`
	Position Position `json:"position"`
	Stats    StatLine `json:"stats"`
	Contract Contract `json:"contract"`
	Rarity   Rarity   `json:"rarity"`
	Value    float64  `json:"value"`
}

// statTemplates gives the per-position baseline averages before rarity
// scaling and jitter.
var statTemplates = map[Position]StatLine{
	PointGuard:   {Points: 14, Rebounds: 3, Assists: 7, Steals: 1.4, Blocks: 0.2, ThreePM: 2.0, FGPercent: 44, ThreePercent: 36, FTPercent: 82},
	ShootingGuard: {Points: 16, Rebounds: 4, Assists: 3.5, Steals: 1.1, Blocks: 0.3, ThreePM: 2.4, FGPercent: 45, ThreePercent: 37, FTPercent: 80},
	SmallForward: {Points: 15, Rebounds: 6, Assists: 3, Steals: 1.0, Blocks: 0.6, ThreePM: 1.8, FGPercent: 46, ThreePercent: 35, FTPercent: 77},
	PowerForward: {Points: 13, Rebounds: 8, Assists: 2.5, Steals: 0.8, Blocks: 1.0, ThreePM: 1.0, FGPercent: 49, ThreePercent: 33, FTPercent: 73},
	Center:       {Points: 12, Rebounds: 10, Assists: 2, Steals: 0.6, Blocks: 1.6, ThreePM: 0.3, FGPercent: 55, ThreePercent: 28, FTPercent: 68},
}

var firstNames = []string{
	"Marcus", "Jalen", "Darius", "Tyrese", "Zion", "Kawhi", "Devin", "Trae",
	"Luka", "Jayson", "Damian", "Bradley", "Khris", "Pascal", "Domantas",
	"Andre", "Victor", "Malik", "Jordan", "Isaiah", "CJ", "Fred", "Kyle",
	"Derrick", "Terry",
}

var lastNames = []string{
	"Holiday", "Brooks", "Carter", "Mitchell", "Washington", "Porter",
	"Barnes", "Murray", "Johnson", "Williams", "Grant", "Bridges", "Turner",
	"Collins", "Allen", "Hart", "Reaves", "Sharpe", "Wiggins", "Bane",
	"Maxey", "Herro", "Sengun", "Suggs", "Mathurin",
}

// drawRarity samples a tier from the weighted distribution.
func drawRarity(rng *rand.Rand) Rarity {
	roll := rng.Intn(100)
	for _, rw := range rarityWeights {
		if roll < rw.weight {
			return rw.rarity
		}
		roll -= rw.weight
	}
	return Common
}

// jitter scales v by a uniform factor in [0.8, 1.2].
func jitter(v float64, rng *rand.Rand) float64 {
	return v * (0.8 + rng.Float64()*0.4)
}

// generatePlayer synthesizes one pool player for the given position.
func generatePlayer(idx int, pos Position, rng *rand.Rand) *NBAPlayer {
	rarity := drawRarity(rng)
	mult := rarityMultiplier[rarity]
	tpl := statTemplates[pos]

	stats := StatLine{
		Points:   jitter(tpl.Points*mult, rng),
		Rebounds: jitter(tpl.Rebounds*mult, rng),
		Assists:  jitter(tpl.Assists*mult, rng),
		Steals:   jitter(tpl.Steals*mult, rng),
		Blocks:   jitter(tpl.Blocks*mult, rng),
		ThreePM:  jitter(tpl.ThreePM*mult, rng),
		// Percentages jitter but never scale with rarity past realistic caps.
		FGPercent:    clampPct(jitter(tpl.FGPercent, rng)),
		ThreePercent: clampPct(jitter(tpl.ThreePercent, rng)),
		FTPercent:    clampPct(jitter(tpl.FTPercent, rng)),
	}

	name := fmt.Sprintf("%s %s",
		firstNames[rng.Intn(len(firstNames))],
		lastNames[rng.Intn(len(lastNames))])

	value := playerValue(stats, rarity)
	p := &NBAPlayer{
		ID:       fmt.Sprintf("nba-%03d", idx),
		Name:     name,
		Position: pos,
		Stats:    stats,
		Rarity:   rarity,
		Value:    value,
		Contract: Contract{
			Salary:    int(value * 10000),
			YearsLeft: 1 + rng.Intn(4),
		},
	}
	return p
}

func clampPct(v float64) float64 {
	if v > 99 {
		return 99
	}
	return v
}

// playerValue derives market value deterministically from stats and rarity.
func playerValue(s StatLine, r Rarity) float64 {
	base := s.Points + s.Rebounds*1.2 + s.Assists*1.5 + s.Steals*2 + s.Blocks*2 + s.ThreePM*0.5
	return base * rarityMultiplier[r] * 10
}

// generatePool builds the full draft pool, cycling positions so each slot has
// an even share of candidates.
func generatePool(size int, rng *rand.Rand) []*NBAPlayer {
	pool := make([]*NBAPlayer, 0, size)
	for i := 0; i < size; i++ {
		pos := positions[i%len(positions)]
		pool = append(pool, generatePlayer(i, pos, rng))
	}
	return pool
}

// lineupScore weighs stats by what the player's slot is expected to deliver.
// It drives both lineup optimization and team game scores.
func lineupScore(p *NBAPlayer) float64 {
	s := p.Stats
	switch p.Position {
	case PointGuard:
		return s.Points + s.Assists*2
	case ShootingGuard:
		return s.Points*1.5 + s.ThreePM*2
	case SmallForward:
		return s.Points + s.Rebounds
	case PowerForward:
		return s.Points + s.Rebounds*1.5
	case Center:
		return s.Rebounds*1.5 + s.Blocks*3 + s.Points*0.5
	}
	return s.Points
}
