package spades

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/neon-grid/arcade/internal/game"
)

// Phase is the stage within a hand.
type Phase string

const (
	PhaseBidding Phase = "bidding"
	PhasePlaying Phase = "playing"
	PhaseScoring Phase = "scoring"
)

const (
	winningScore = 500
	nilBidChance = 0.05
	tricksPerHand = 13
)

// Player is one of the four seats. Seats 0 and 2 form team 0, seats 1 and 3
// form team 1.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Team   int    `json:"team"`
	Hand   []Card `json:"hand"`
	Bid    int    `json:"bid"`
	HasBid bool   `json:"hasBid"`
	Tricks int    `json:"tricks"`
}

// PlayedCard is a card on the table within the current trick.
type PlayedCard struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// Trick is a resolved set of four played cards.
type Trick struct {
	Cards      []PlayedCard `json:"cards"`
	WinnerSeat int          `json:"winnerSeat"`
}

// State is the full Spades game state.
type State struct {
	Status          game.Status  `json:"status"`
	Phase           Phase        `json:"phase"`
	Players         []*Player    `json:"players"`
	CurrentTrick    []PlayedCard `json:"currentTrick"`
	CompletedTricks []Trick      `json:"completedTricks"`
	CurrentSeat     int          `json:"currentSeat"`
	LeadSeat        int          `json:"leadSeat"`
	DealerSeat      int          `json:"dealerSeat"`
	SpadesBroken    bool         `json:"spadesBroken"`
	TeamScores      [2]int       `json:"teamScores"`
	HandNumber      int          `json:"handNumber"`
	Turn            int          `json:"turn"`
	WinnerTeam      int          `json:"winnerTeam"` // -1 until the game ends
}

// Engine simulates a 2v2 trick-taking game. One tick is one bid or one card.
type Engine struct {
	mu        sync.RWMutex
	rng       *rand.Rand
	state     *State
	gameLog   *game.Log
	loop      *game.Loop
	listeners []game.Listener
}

// New constructs an engine with a fresh dealt hand. A nil rng selects a
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
	e.state = e.initialState()
	return e
}

func (e *Engine) initialState() *State {
	s := &State{
		Status: game.StatusWaiting,
		Phase:  PhaseBidding,
		Players: []*Player{
			{ID: "s1", Name: "Jinx", Seat: 0, Team: 0},
			{ID: "s2", Name: "Static", Seat: 1, Team: 1},
			{ID: "s3", Name: "Mirage", Seat: 2, Team: 0},
			{ID: "s4", Name: "Echo", Seat: 3, Team: 1},
		},
		HandNumber: 1,
		Turn:       1,
		WinnerTeam: -1,
	}
	e.deal(s)
	return s
}

// deal shuffles a fresh deck and distributes 13 cards per seat round-robin.
func (e *Engine) deal(s *State) {
	deck := newDeck()
	shuffle(deck, e.rng)

	for _, p := range s.Players {
		p.Hand = p.Hand[:0]
		p.Bid = 0
		p.HasBid = false
		p.Tricks = 0
	}
	for i, c := range deck {
		p := s.Players[i%4]
		p.Hand = append(p.Hand, c)
	}
	for _, p := range s.Players {
		sortHand(p.Hand)
	}

	s.CurrentTrick = nil
	s.CompletedTricks = nil
	s.SpadesBroken = false
	s.Phase = PhaseBidding
	s.CurrentSeat = (s.DealerSeat + 1) % 4
	s.LeadSeat = s.CurrentSeat
}

// Name implements game.Engine.
func (e *Engine) Name() string { return "spades" }

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

// Reset stops the loop, redeals a fresh game and clears the log.
func (e *Engine) Reset() {
	e.loop.Stop()

	e.mu.Lock()
	e.state = e.initialState()
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
		entry := game.NewEntry(e.state.Turn, actor, action, detail)
		e.gameLog.Append(entry)
		emitted = append(emitted, entry)
	}

	if e.state.Status == game.StatusPlaying {
		e.advance(emit)
		e.state.Turn++
	}
	ended := e.state.Status == game.StatusEnded
	e.mu.Unlock()

	e.notify(emitted...)
	if ended {
		e.loop.Stop()
	}
}

func (e *Engine) advance(emit func(actor, action, detail string)) {
	switch e.state.Phase {
	case PhaseBidding:
		e.advanceBidding(emit)
	case PhasePlaying:
		e.advancePlay(emit)
	case PhaseScoring:
		e.scoreHand(emit)
	}
}

func (e *Engine) advanceBidding(emit func(actor, action, detail string)) {
	s := e.state
	p := s.Players[s.CurrentSeat]
	if !p.HasBid {
		p.Bid = e.heuristicBid(p.Hand)
		p.HasBid = true
		if p.Bid == 0 {
			emit(p.Name, "bid", "bid nil")
		} else {
			emit(p.Name, "bid", fmt.Sprintf("bid %d", p.Bid))
		}
	}
	s.CurrentSeat = (s.CurrentSeat + 1) % 4

	for _, pl := range s.Players {
		if !pl.HasBid {
			return
		}
	}
	s.Phase = PhasePlaying
	s.CurrentSeat = s.LeadSeat
	emit("system", "phase", "bidding complete, play begins")
}

// heuristicBid weighs spade length against high-card count, with a small
// chance of a nil bid.
func (e *Engine) heuristicBid(hand []Card) int {
	if e.rng.Float64() < nilBidChance {
		return 0
	}
	spadesInHand := 0
	highCards := 0
	for _, c := range hand {
		if c.Suit == Spades {
			spadesInHand++
		}
		if c.Rank >= 11 {
			highCards++
		}
	}
	bid := int(float64(spadesInHand)*0.7 + float64(highCards)*0.3)
	if bid < 1 {
		bid = 1
	}
	return bid
}

func (e *Engine) advancePlay(emit func(actor, action, detail string)) {
	s := e.state
	p := s.Players[s.CurrentSeat]

	card := e.chooseCard(p)
	p.Hand = removeCard(p.Hand, card)
	s.CurrentTrick = append(s.CurrentTrick, PlayedCard{Seat: p.Seat, Card: card})

	if card.Suit == Spades && !s.SpadesBroken {
		s.SpadesBroken = true
		emit("system", "spades_broken", "spades are broken")
	}
	emit(p.Name, "play", fmt.Sprintf("played %s", card))

	if len(s.CurrentTrick) < 4 {
		s.CurrentSeat = (s.CurrentSeat + 1) % 4
		return
	}

	winner := resolveTrick(s.CurrentTrick)
	s.Players[winner].Tricks++
	s.CompletedTricks = append(s.CompletedTricks, Trick{Cards: s.CurrentTrick, WinnerSeat: winner})
	s.CurrentTrick = nil
	s.LeadSeat = winner
	s.CurrentSeat = winner
	emit(s.Players[winner].Name, "trick", fmt.Sprintf("won trick %d", len(s.CompletedTricks)))

	if len(s.CompletedTricks) == tricksPerHand {
		s.Phase = PhaseScoring
	}
}

// chooseCard picks a legal mid-strength card for the current seat.
func (e *Engine) chooseCard(p *Player) Card {
	legal := e.legalCards(p)
	// Mid-strength: middle of the legal cards ranked ascending.
	sortHand(legal)
	return legal[len(legal)/2]
}

// legalCards returns the playable subset of the hand. Leading is constrained
// to non-spades until spades are broken unless only spades remain; a follower
// must follow suit when possible.
func (e *Engine) legalCards(p *Player) []Card {
	s := e.state

	if len(s.CurrentTrick) == 0 {
		if s.SpadesBroken {
			return append([]Card(nil), p.Hand...)
		}
		var nonSpades []Card
		for _, c := range p.Hand {
			if c.Suit != Spades {
				nonSpades = append(nonSpades, c)
			}
		}
		if len(nonSpades) == 0 {
			return append([]Card(nil), p.Hand...)
		}
		return nonSpades
	}

	lead := s.CurrentTrick[0].Card.Suit
	var followers []Card
	for _, c := range p.Hand {
		if c.Suit == lead {
			followers = append(followers, c)
		}
	}
	if len(followers) > 0 {
		return followers
	}
	// Void in the lead suit: cut with a spade when holding one, otherwise
	// discard anything.
	var cuts []Card
	for _, c := range p.Hand {
		if c.Suit == Spades {
			cuts = append(cuts, c)
		}
	}
	if len(cuts) > 0 {
		return cuts
	}
	return append([]Card(nil), p.Hand...)
}

// resolveTrick returns the winning seat: highest spade if any spade was
// played, else the highest card of the lead suit.
func resolveTrick(trick []PlayedCard) int {
	winner := trick[0]
	for _, pc := range trick[1:] {
		c, w := pc.Card, winner.Card
		switch {
		case c.Suit == Spades && w.Suit != Spades:
			winner = pc
		case c.Suit == w.Suit && c.Rank > w.Rank:
			winner = pc
		}
	}
	return winner.Seat
}

// scoreHand applies the bid/trick formula per team, then either ends the game
// at 500 or rotates the dealer and redeals.
func (e *Engine) scoreHand(emit func(actor, action, detail string)) {
	s := e.state

	for team := 0; team < 2; team++ {
		bid, tricks := 0, 0
		for _, p := range s.Players {
			if p.Team == team {
				bid += p.Bid
				tricks += p.Tricks
			}
		}
		delta := HandScore(bid, tricks)
		s.TeamScores[team] += delta
		emit("system", "score", fmt.Sprintf("team %d bid %d, took %d: %+d (total %d)",
			team+1, bid, tricks, delta, s.TeamScores[team]))
	}

	for team := 0; team < 2; team++ {
		if s.TeamScores[team] >= winningScore {
			s.Status = game.StatusEnded
			s.WinnerTeam = team
			emit("system", "win", fmt.Sprintf("team %d wins with %d points", team+1, s.TeamScores[team]))
			return
		}
	}

	s.HandNumber++
	s.DealerSeat = (s.DealerSeat + 1) % 4
	e.deal(s)
	emit("system", "deal", fmt.Sprintf("hand %d dealt", s.HandNumber))
}

// HandScore computes a team's score delta for one hand.
func HandScore(bid, tricks int) int {
	if tricks >= bid {
		return bid*10 + (tricks - bid)
	}
	return -bid * 10
}
