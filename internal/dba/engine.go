package dba

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/neon-grid/arcade/internal/game"
)

// State is the full league state.
type State struct {
	Status      game.Status `json:"status"`
	Season      int         `json:"season"`
	CurrentWeek int         `json:"currentWeek"`
	Standings   []*Team     `json:"standings"`
	Schedule    []*Game     `json:"schedule"`
	FreeAgents  []*NBAPlayer `json:"freeAgents"`
	ChampionID  string      `json:"championId"`
	Turn        int         `json:"turn"`
}

// Engine simulates a fantasy basketball league. One tick simulates every game
// scheduled for the current week, then advances the week counter.
type Engine struct {
	mu        sync.RWMutex
	rng       *rand.Rand
	state     *State
	gameLog   *game.Log
	loop      *game.Loop
	listeners []game.Listener
}

// New builds a league: player pool, eight drafted teams and a full season
// schedule. A nil rng selects a time-seeded source.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		rng:     rng,
		gameLog: game.NewLog(),
	}
	e.loop = game.NewLoop(e.tick)
	e.state = e.initialState()
	return e
}

func (e *Engine) initialState() *State {
	pool := generatePool(poolSize, e.rng)
	teams, freeAgents := draftTeams(pool, e.rng)

	seasonStart := time.Date(time.Now().Year(), time.October, 15, 0, 0, 0, 0, time.UTC)
	s := &State{
		Status:      game.StatusWaiting,
		Season:      1,
		CurrentWeek: 1,
		Standings:   teams,
		Schedule:    buildSchedule(teams, seasonStart),
		FreeAgents:  freeAgents,
		Turn:        1,
	}
	sortStandings(s.Standings)
	return s
}

// Name implements game.Engine.
func (e *Engine) Name() string { return "dba" }

// Start begins the weekly simulation loop.
func (e *Engine) Start(interval time.Duration) {
	e.mu.Lock()
	if e.state.Status == game.StatusEnded {
		e.mu.Unlock()
		return
	}
	e.state.Status = game.StatusPlaying
	e.mu.Unlock()
	e.loop.Start(interval)
}

// Stop cancels the loop without altering league status.
func (e *Engine) Stop() { e.loop.Stop() }

// SetSpeed restarts the loop with a new interval.
func (e *Engine) SetSpeed(interval time.Duration) { e.loop.SetInterval(interval) }

// Interval returns the configured tick period.
func (e *Engine) Interval() time.Duration { return e.loop.Interval() }

// Reset stops the loop and rebuilds the league from a fresh pool.
func (e *Engine) Reset() {
	e.loop.Stop()

	e.mu.Lock()
	e.state = e.initialState()
	e.gameLog.Clear()
	entry := game.NewEntry(0, "system", "reset", "league reset")
	e.gameLog.Append(entry)
	e.mu.Unlock()

	e.notify(entry)
}

// Status reports the lifecycle stage.
func (e *Engine) Status() game.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Status
}

// State returns the live league state. Callers must not mutate it.
func (e *Engine) State() any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Log returns a defensive copy of the game log.
func (e *Engine) Log() []game.Entry { return e.gameLog.Snapshot() }

// Subscribe registers a listener for future log entries.
func (e *Engine) Subscribe(l game.Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Standings returns the rank-ordered teams.
func (e *Engine) Standings() []*Team {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Team, len(e.state.Standings))
	copy(out, e.state.Standings)
	return out
}

// UserTeam returns the user-controlled franchise.
func (e *Engine) UserTeam() *Team {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, t := range e.state.Standings {
		if t.Owner == "user" {
			return t
		}
	}
	return nil
}

// Players returns every rostered player plus the free-agent pool.
func (e *Engine) Players() []*NBAPlayer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*NBAPlayer
	for _, t := range e.state.Standings {
		out = append(out, t.Players...)
	}
	out = append(out, e.state.FreeAgents...)
	return out
}

// AdvanceWeek runs one simulation step outside the timer, for an explicit
// user action. No-op once the season has ended.
func (e *Engine) AdvanceWeek() {
	e.mu.Lock()
	var emitted []game.Entry
	if e.state.Status != game.StatusEnded {
		if e.state.Status == game.StatusWaiting {
			e.state.Status = game.StatusPlaying
		}
		emitted = e.simulateWeek()
		e.state.Turn++
	}
	e.mu.Unlock()
	e.notify(emitted...)
}

func (e *Engine) notify(entries ...game.Entry) {
	e.mu.RLock()
	ls := make([]game.Listener, len(e.listeners))
	copy(ls, e.listeners)
	e.mu.RUnlock()

	for _, entry := range entries {
		for _, l := range ls {
			l(entry)
		}
	}
}

func (e *Engine) tick() {
	e.mu.Lock()
	var emitted []game.Entry
	if e.state.Status == game.StatusPlaying {
		emitted = e.simulateWeek()
		e.state.Turn++
	}
	ended := e.state.Status == game.StatusEnded
	e.mu.Unlock()

	e.notify(emitted...)
	if ended {
		e.loop.Stop()
	}
}

// simulateWeek completes every game scheduled for the current week, re-sorts
// the standings and advances the week counter. Caller holds the write lock.
func (e *Engine) simulateWeek() []game.Entry {
	s := e.state
	var emitted []game.Entry
	emit := func(actor, action, detail string) {
		entry := game.NewEntry(s.Turn, actor, action, detail)
		e.gameLog.Append(entry)
		emitted = append(emitted, entry)
	}

	teamsByID := map[string]*Team{}
	for _, t := range s.Standings {
		teamsByID[t.ID] = t
	}

	for _, g := range s.Schedule {
		if g.Week != s.CurrentWeek || g.Status != GameScheduled {
			continue
		}
		home, away := teamsByID[g.HomeID], teamsByID[g.AwayID]
		g.Result = e.simulateGame(home, away)
		g.Status = GameCompleted

		winner := home
		if g.Result.WinnerID == away.ID {
			winner = away
		}
		emit("league", "game", fmt.Sprintf("%s %d - %d %s (%s win, MVP %s)",
			home.Name, g.Result.HomeScore, g.Result.AwayScore, away.Name,
			winner.Name, g.Result.MVP))
	}

	sortStandings(s.Standings)
	emit("league", "week", fmt.Sprintf("week %d complete", s.CurrentWeek))
	s.CurrentWeek++

	if s.CurrentWeek > seasonWeeks {
		champion := s.Standings[0]
		s.ChampionID = champion.ID
		s.Status = game.StatusEnded
		emit("league", "champion", fmt.Sprintf("%s win the season %d title (%d-%d)",
			champion.Name, s.Season, champion.Record.Wins, champion.Record.Losses))
	}
	return emitted
}

// simulateGame produces scores, records, a box score and an MVP.
func (e *Engine) simulateGame(home, away *Team) *GameResult {
	homeScore := e.teamScore(home)
	awayScore := e.teamScore(away)
	// Replay coin-flip ties so every game has a winner.
	for homeScore == awayScore {
		awayScore = e.teamScore(away)
	}

	result := &GameResult{HomeScore: homeScore, AwayScore: awayScore}
	if homeScore > awayScore {
		result.WinnerID = home.ID
		home.Record.Wins++
		away.Record.Losses++
	} else {
		result.WinnerID = away.ID
		away.Record.Wins++
		home.Record.Losses++
	}

	bestFP := math.Inf(-1)
	for _, t := range []*Team{home, away} {
		for _, p := range t.Players {
			line := e.boxLine(p)
			bl := BoxLine{
				PlayerID:      p.ID,
				PlayerName:    p.Name,
				TeamID:        t.ID,
				Stats:         line,
				FantasyPoints: FantasyPoints(line),
			}
			result.BoxScore = append(result.BoxScore, bl)
			if bl.FantasyPoints > bestFP {
				bestFP = bl.FantasyPoints
				result.MVP = p.Name
			}
		}
	}
	return result
}

// teamScore is the weekly score formula: a 90-point floor plus lineup
// strength plus uniform noise in [-10, 10].
func (e *Engine) teamScore(t *Team) int {
	noise := e.rng.Float64()*20 - 10
	return int(90 + t.LineupRating()/10 + noise)
}

// boxLine scales the player's season averages by a 70-130% performance
// factor, rounded to whole counting stats.
func (e *Engine) boxLine(p *NBAPlayer) StatLine {
	factor := func() float64 { return 0.7 + e.rng.Float64()*0.6 }
	s := p.Stats
	return StatLine{
		Points:       math.Round(s.Points * factor()),
		Rebounds:     math.Round(s.Rebounds * factor()),
		Assists:      math.Round(s.Assists * factor()),
		Steals:       math.Round(s.Steals * factor()),
		Blocks:       math.Round(s.Blocks * factor()),
		ThreePM:      math.Round(s.ThreePM * factor()),
		FGPercent:    s.FGPercent,
		ThreePercent: s.ThreePercent,
		FTPercent:    s.FTPercent,
	}
}
