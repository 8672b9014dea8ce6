package monopoly

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/neon-grid/arcade/internal/game"
)

const (
	boardSize      = 40
	jailPosition   = 10
	parkingSquare  = 20
	goToJailSquare = 30
	passGoBonus    = 200
	jailFine       = 50
	maxJailTurns   = 3
	roundCap       = 500
	startingMoney  = 1500
)

// Player is a participant in the property economy.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Money      int    `json:"money"`
	Position   int    `json:"position"`
	InJail     bool   `json:"inJail"`
	JailTurns  int    `json:"jailTurns"`
	Properties []int  `json:"properties"` // board positions owned
}

// State is the full Monopoly game state.
type State struct {
	Status         game.Status `json:"status"`
	Players        []*Player   `json:"players"`
	Board          []*Square   `json:"board"`
	CurrentPlayer  int         `json:"currentPlayer"`
	Round          int         `json:"round"`
	FreeParkingPot int         `json:"freeParkingPot"`
	LastRoll       [2]int      `json:"lastRoll"`
	WinnerID       string      `json:"winnerId,omitempty"`
}

// Engine simulates an autonomous four-player property economy. One tick
// processes one player's turn.
type Engine struct {
	mu        sync.RWMutex
	rng       *rand.Rand
	state     *State
	gameLog   *game.Log
	loop      *game.Loop
	listeners []game.Listener
}

// New constructs an engine with a fresh default game. A nil rng selects a
// time-seeded source.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		rng:     rng,
		gameLog: game.NewLog(),
	}
	e.loop = game.NewLoop(e.tick)
	e.state = initialState()
	return e
}

func initialState() *State {
	players := []*Player{
		{ID: "p1", Name: "Cipher", Color: "green"},
		{ID: "p2", Name: "Neon", Color: "cyan"},
		{ID: "p3", Name: "Ghost", Color: "magenta"},
		{ID: "p4", Name: "Raven", Color: "amber"},
	}
	for _, p := range players {
		p.Money = startingMoney
		p.Properties = []int{}
	}
	return &State{
		Status:  game.StatusWaiting,
		Players: players,
		Board:   newBoard(),
		Round:   1,
	}
}

// Name implements game.Engine.
func (e *Engine) Name() string { return "monopoly" }

// Start begins the simulation loop.
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

// Stop cancels the loop without altering game status.
func (e *Engine) Stop() { e.loop.Stop() }

// SetSpeed restarts the loop with a new interval.
func (e *Engine) SetSpeed(interval time.Duration) { e.loop.SetInterval(interval) }

// Interval returns the configured tick period.
func (e *Engine) Interval() time.Duration { return e.loop.Interval() }

// Reset stops the loop, rebuilds a fresh game and clears the log.
func (e *Engine) Reset() {
	e.loop.Stop()

	e.mu.Lock()
	e.state = initialState()
	e.gameLog.Clear()
	entry := game.NewEntry(0, "system", "reset", "game reset")
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

// State returns the live game state. Callers must not mutate it.
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
	emit := func(actor, action, detail string) {
		entry := game.NewEntry(e.state.Round, actor, action, detail)
		e.gameLog.Append(entry)
		emitted = append(emitted, entry)
	}

	if e.state.Status == game.StatusPlaying {
		e.processTurn(emit)
	}
	ended := e.state.Status == game.StatusEnded
	e.mu.Unlock()

	e.notify(emitted...)
	if ended {
		e.loop.Stop()
	}
}

type emitFunc func(actor, action, detail string)

// processTurn advances one player's turn. Caller holds the write lock.
func (e *Engine) processTurn(emit emitFunc) {
	s := e.state
	if len(s.Players) == 0 {
		s.Status = game.StatusEnded
		return
	}
	if s.CurrentPlayer >= len(s.Players) {
		s.CurrentPlayer = 0
	}
	p := s.Players[s.CurrentPlayer]

	if p.InJail {
		if !e.processJailTurn(p, emit) {
			// Failed escape: the turn ends with no movement.
			e.finishTurn(false, emit)
			return
		}
		// Released players take their movement roll on the same tick.
	}

	d1, d2 := e.rollDie(), e.rollDie()
	s.LastRoll = [2]int{d1, d2}
	sum := d1 + d2
	doubles := d1 == d2

	oldPos := p.Position
	p.Position = (p.Position + sum) % boardSize
	emit(p.Name, "roll", fmt.Sprintf("rolled %d+%d, moved to %s", d1, d2, s.Board[p.Position].Name))

	if p.Position < oldPos {
		p.Money += passGoBonus
		emit(p.Name, "pass_go", fmt.Sprintf("passed GO, collected $%d", passGoBonus))
	}

	bankrupted := e.resolveSquare(p, sum, emit)
	if e.checkWinner(emit) {
		return
	}

	if bankrupted {
		// Removing the player already moved the next player into this slot.
		e.finishTurn(true, emit)
		return
	}

	// Doubles grant another turn unless the roll jailed the player.
	again := doubles && !p.InJail
	e.finishTurn(again, emit)
}

func (e *Engine) rollDie() int { return e.rng.Intn(6) + 1 }

// processJailTurn resolves one jailed turn and reports whether the player was
// released.
func (e *Engine) processJailTurn(p *Player, emit emitFunc) bool {
	p.JailTurns++
	if p.JailTurns >= maxJailTurns {
		p.Money -= jailFine
		p.InJail = false
		p.JailTurns = 0
		emit(p.Name, "jail_release", fmt.Sprintf("paid $%d fine and left jail", jailFine))
		return true
	}

	d1, d2 := e.rollDie(), e.rollDie()
	if d1 == d2 {
		p.InJail = false
		p.JailTurns = 0
		emit(p.Name, "jail_release", fmt.Sprintf("rolled doubles (%d), escaped jail", d1))
		return true
	}
	emit(p.Name, "jail", fmt.Sprintf("stays in jail (turn %d)", p.JailTurns))
	return false
}

// resolveSquare applies the landed square's effect. Returns true when the
// acting player went bankrupt and was removed.
func (e *Engine) resolveSquare(p *Player, diceSum int, emit emitFunc) bool {
	sq := e.state.Board[p.Position]

	switch sq.Kind {
	case KindOrdinary, KindRailroad, KindUtility:
		return e.resolveOwnable(p, sq, diceSum, emit)
	case KindTax:
		p.Money -= sq.Price
		e.state.FreeParkingPot += sq.Price
		emit(p.Name, "tax", fmt.Sprintf("paid $%d %s", sq.Price, sq.Name))
	case KindCard:
		e.drawCard(p, sq, emit)
	case KindCorner:
		e.resolveCorner(p, sq, emit)
	}
	return false
}

func (e *Engine) resolveOwnable(p *Player, sq *Square, diceSum int, emit emitFunc) bool {
	if sq.OwnerID == "" {
		if p.Money >= sq.Price+500 && sq.Price <= p.Money*4/10 {
			p.Money -= sq.Price
			sq.OwnerID = p.ID
			p.Properties = append(p.Properties, sq.Position)
			emit(p.Name, "buy", fmt.Sprintf("bought %s for $%d", sq.Name, sq.Price))
		} else {
			emit(p.Name, "pass", fmt.Sprintf("passed on %s ($%d)", sq.Name, sq.Price))
		}
		return false
	}

	if sq.OwnerID == p.ID || sq.Mortgaged {
		return false
	}

	owner := e.playerByID(sq.OwnerID)
	if owner == nil {
		return false
	}

	rent := e.rentFor(sq, owner, diceSum)
	if p.Money < rent {
		e.bankrupt(p, owner, emit)
		return true
	}

	p.Money -= rent
	owner.Money += rent
	emit(p.Name, "rent", fmt.Sprintf("paid $%d rent to %s for %s", rent, owner.Name, sq.Name))
	return false
}

func (e *Engine) rentFor(sq *Square, owner *Player, diceSum int) int {
	switch sq.Kind {
	case KindRailroad:
		n := e.countKind(owner, KindRailroad)
		idx := n - 1
		if idx > 3 {
			idx = 3
		}
		if idx < 0 {
			idx = 0
		}
		return sq.Rents[idx]
	case KindUtility:
		if e.countKind(owner, KindUtility) == 1 {
			return diceSum * 4
		}
		return diceSum * 10
	default:
		level := sq.Houses
		if level >= len(sq.Rents) {
			level = len(sq.Rents) - 1
		}
		return sq.Rents[level]
	}
}

func (e *Engine) countKind(p *Player, kind SquareKind) int {
	n := 0
	for _, pos := range p.Properties {
		if e.state.Board[pos].Kind == kind {
			n++
		}
	}
	return n
}

func (e *Engine) drawCard(p *Player, sq *Square, emit emitFunc) {
	switch e.rng.Intn(4) {
	case 0:
		p.Position = 0
		p.Money += passGoBonus
		emit(p.Name, "card", fmt.Sprintf("%s: advance to GO, collect $%d", sq.Name, passGoBonus))
	case 1:
		p.Money -= 15
		e.state.FreeParkingPot += 15
		emit(p.Name, "card", fmt.Sprintf("%s: pay poor tax of $15", sq.Name))
	case 2:
		p.Money += 150
		emit(p.Name, "card", fmt.Sprintf("%s: bank pays you $150", sq.Name))
	default:
		e.sendToJail(p)
		emit(p.Name, "card", fmt.Sprintf("%s: go directly to jail", sq.Name))
	}
}

func (e *Engine) resolveCorner(p *Player, sq *Square, emit emitFunc) {
	switch sq.Position {
	case 0:
		p.Money += passGoBonus
		emit(p.Name, "go_bonus", fmt.Sprintf("landed on GO, collected $%d bonus", passGoBonus))
	case parkingSquare:
		if e.state.FreeParkingPot > 0 {
			p.Money += e.state.FreeParkingPot
			emit(p.Name, "free_parking", fmt.Sprintf("collected $%d from Free Parking", e.state.FreeParkingPot))
			e.state.FreeParkingPot = 0
		} else {
			emit(p.Name, "free_parking", "rested at Free Parking")
		}
	case goToJailSquare:
		e.sendToJail(p)
		emit(p.Name, "go_to_jail", "sent to jail")
	case jailPosition:
		emit(p.Name, "visit", "just visiting jail")
	}
}

func (e *Engine) sendToJail(p *Player) {
	p.Position = jailPosition
	p.InJail = true
	p.JailTurns = 0
}

// bankrupt transfers everything the debtor has to the creditor and removes the
// debtor from the active player list, clamping the turn index back into range.
func (e *Engine) bankrupt(debtor, creditor *Player, emit emitFunc) {
	for _, pos := range debtor.Properties {
		sq := e.state.Board[pos]
		sq.OwnerID = creditor.ID
		creditor.Properties = append(creditor.Properties, pos)
	}
	if debtor.Money > 0 {
		creditor.Money += debtor.Money
	}
	debtor.Money = 0
	debtor.Properties = nil

	players := e.state.Players[:0]
	for _, p := range e.state.Players {
		if p.ID != debtor.ID {
			players = append(players, p)
		}
	}
	e.state.Players = players
	if e.state.CurrentPlayer >= len(e.state.Players) {
		e.state.CurrentPlayer = 0
		e.state.Round++
	}

	emit(debtor.Name, "bankrupt", fmt.Sprintf("went bankrupt, assets transferred to %s", creditor.Name))
}

// finishTurn advances the turn index (unless the player rolled doubles) and
// ends the game when the round cap is reached.
func (e *Engine) finishTurn(sameAgain bool, emit emitFunc) {
	s := e.state
	if s.Status != game.StatusPlaying || len(s.Players) == 0 {
		return
	}

	if !sameAgain {
		next := (s.CurrentPlayer + 1) % len(s.Players)
		if next <= s.CurrentPlayer {
			s.Round++
		}
		s.CurrentPlayer = next
	}

	if s.Round > roundCap {
		e.endByNetWorth(emit)
	}
}

// checkWinner ends the game when only one solvent player remains.
func (e *Engine) checkWinner(emit emitFunc) bool {
	s := e.state
	var winner *Player
	if len(s.Players) == 1 {
		winner = s.Players[0]
	} else {
		count := 0
		var solvent *Player
		for _, p := range s.Players {
			if p.Money > 0 {
				solvent = p
				count++
			}
		}
		if count == 1 {
			winner = solvent
		}
	}
	if winner == nil {
		return false
	}

	s.Status = game.StatusEnded
	s.WinnerID = winner.ID
	emit(winner.Name, "win", fmt.Sprintf("%s wins as the last solvent player", winner.Name))
	return true
}

func (e *Engine) endByNetWorth(emit emitFunc) {
	s := e.state
	var best *Player
	bestWorth := 0
	for _, p := range s.Players {
		w := e.netWorth(p)
		if best == nil || w > bestWorth {
			best = p
			bestWorth = w
		}
	}
	if best == nil {
		s.Status = game.StatusEnded
		return
	}

	s.Status = game.StatusEnded
	s.WinnerID = best.ID
	emit(best.Name, "win", fmt.Sprintf("round cap reached, %s wins with net worth $%d", best.Name, bestWorth))
}

func (e *Engine) netWorth(p *Player) int {
	worth := p.Money
	for _, pos := range p.Properties {
		sq := e.state.Board[pos]
		worth += sq.Price + sq.Houses*sq.HouseCost
	}
	return worth
}

func (e *Engine) playerByID(id string) *Player {
	for _, p := range e.state.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
