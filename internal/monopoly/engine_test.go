package monopoly

import (
	"math/rand"
	"testing"

	"github.com/neon-grid/arcade/internal/game"
)

func newTestEngine(seed int64) *Engine {
	e := New(rand.New(rand.NewSource(seed)))
	e.state.Status = game.StatusPlaying
	return e
}

func TestBoardShape(t *testing.T) {
	board := newBoard()
	if len(board) != boardSize {
		t.Fatalf("expected %d squares, got %d", boardSize, len(board))
	}
	for i, sq := range board {
		if sq.Position != i {
			t.Errorf("square %d has position %d", i, sq.Position)
		}
		if sq.Kind == KindOrdinary && len(sq.Rents) != 6 {
			t.Errorf("%s: ordinary square needs 6 rent levels, has %d", sq.Name, len(sq.Rents))
		}
	}

	kinds := map[SquareKind]int{}
	for _, sq := range board {
		kinds[sq.Kind]++
	}
	if kinds[KindRailroad] != 4 || kinds[KindUtility] != 2 || kinds[KindCorner] != 4 {
		t.Errorf("unexpected kind counts: %v", kinds)
	}
}

func TestSingleTickChangesActingPlayer(t *testing.T) {
	e := newTestEngine(7)
	p := e.state.Players[0]
	before := p.Money

	e.tick()

	if e.gameLog.Len() == 0 {
		t.Fatal("expected at least one log entry after a tick")
	}
	if p.Position == 0 && p.Money == before {
		t.Error("acting player neither moved nor transacted")
	}
	// The money delta must be explained by the landed square.
	sq := e.state.Board[p.Position]
	delta := p.Money - before
	switch sq.Kind {
	case KindOrdinary, KindRailroad, KindUtility:
		if delta > 0 && delta != passGoBonus {
			t.Errorf("unexpected gain %d on %s", delta, sq.Name)
		}
	case KindTax:
		want := -sq.Price
		if delta != want && delta != want+passGoBonus {
			t.Errorf("tax square delta %d, want %d", delta, want)
		}
	}
}

func TestBuyHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		money   int
		price   int
		wantBuy bool
	}{
		{"rich buys cheap", 1500, 200, true},
		{"cannot keep reserve", 600, 200, false},
		{"price over 40 percent", 1000, 401, false},
		{"exactly at limits", 1000, 400, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(1)
			p := e.state.Players[0]
			p.Money = tt.money
			sq := &Square{Position: 1, Name: "Test Ave", Kind: KindOrdinary, Price: tt.price, Rents: []int{2, 10, 30, 90, 160, 250}}
			e.state.Board[1] = sq
			p.Position = 1

			e.resolveOwnable(p, sq, 7, func(string, string, string) {})

			bought := sq.OwnerID == p.ID
			if bought != tt.wantBuy {
				t.Errorf("money=%d price=%d: bought=%v want %v", tt.money, tt.price, bought, tt.wantBuy)
			}
			if bought && p.Money != tt.money-tt.price {
				t.Errorf("money after buy = %d, want %d", p.Money, tt.money-tt.price)
			}
		})
	}
}

func TestRentLookup(t *testing.T) {
	e := newTestEngine(1)
	owner := e.state.Players[1]

	// Ordinary rent by improvement level
	ord := &Square{Kind: KindOrdinary, Rents: []int{2, 10, 30, 90, 160, 250}, Houses: 2}
	if got := e.rentFor(ord, owner, 7); got != 30 {
		t.Errorf("ordinary rent = %d, want 30", got)
	}

	// Railroad rent scales with owned railroads
	owner.Properties = []int{5, 15, 25}
	for _, pos := range owner.Properties {
		e.state.Board[pos].OwnerID = owner.ID
	}
	rr := e.state.Board[5]
	if got := e.rentFor(rr, owner, 7); got != 100 {
		t.Errorf("railroad rent with 3 owned = %d, want 100", got)
	}

	// Utility rent multiplies the dice sum
	owner.Properties = []int{12}
	e.state.Board[12].OwnerID = owner.ID
	util := e.state.Board[12]
	if got := e.rentFor(util, owner, 7); got != 28 {
		t.Errorf("single utility rent = %d, want 28", got)
	}
	owner.Properties = []int{12, 28}
	e.state.Board[28].OwnerID = owner.ID
	if got := e.rentFor(util, owner, 7); got != 70 {
		t.Errorf("double utility rent = %d, want 70", got)
	}
}

func TestBankruptcyTransfersEverything(t *testing.T) {
	e := newTestEngine(1)
	debtor := e.state.Players[0]
	creditor := e.state.Players[1]

	debtor.Money = 37
	debtor.Properties = []int{1, 3}
	e.state.Board[1].OwnerID = debtor.ID
	e.state.Board[3].OwnerID = debtor.ID

	e.bankrupt(debtor, creditor, func(string, string, string) {})

	if len(e.state.Players) != 3 {
		t.Fatalf("expected 3 active players, got %d", len(e.state.Players))
	}
	for _, p := range e.state.Players {
		if p.ID == debtor.ID {
			t.Fatal("debtor still in active player list")
		}
	}
	if e.state.Board[1].OwnerID != creditor.ID || e.state.Board[3].OwnerID != creditor.ID {
		t.Error("properties not transferred to creditor")
	}
	if creditor.Money != startingMoney+37 {
		t.Errorf("creditor money = %d, want %d", creditor.Money, startingMoney+37)
	}
	if e.state.CurrentPlayer >= len(e.state.Players) {
		t.Errorf("current player index %d out of range", e.state.CurrentPlayer)
	}
}

func TestOwnershipInvariant(t *testing.T) {
	e := newTestEngine(42)

	for i := 0; i < 2000 && e.state.Status == game.StatusPlaying; i++ {
		e.tick()

		owners := map[int]string{}
		for _, p := range e.state.Players {
			for _, pos := range p.Properties {
				if prev, ok := owners[pos]; ok && prev != p.ID {
					t.Fatalf("square %d owned by both %s and %s", pos, prev, p.ID)
				}
				owners[pos] = p.ID
				if e.state.Board[pos].OwnerID != p.ID {
					t.Fatalf("square %d owner mismatch: board says %q, roster says %q",
						pos, e.state.Board[pos].OwnerID, p.ID)
				}
			}
		}
		if e.state.CurrentPlayer < 0 || e.state.CurrentPlayer >= len(e.state.Players) {
			t.Fatalf("current player index %d out of range [0,%d)", e.state.CurrentPlayer, len(e.state.Players))
		}
	}
}

func TestTurnMonotonicity(t *testing.T) {
	e := newTestEngine(9)
	lastRound := e.state.Round

	for i := 0; i < 500 && e.state.Status == game.StatusPlaying; i++ {
		e.tick()
		if e.state.Round < lastRound {
			t.Fatalf("round went backwards: %d -> %d", lastRound, e.state.Round)
		}
		lastRound = e.state.Round
	}
}

func TestTerminationWithinRoundCap(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		e := newTestEngine(seed)

		// Generous tick budget: four players, doubles and jail turns included.
		for i := 0; i < 50000 && e.state.Status != game.StatusEnded; i++ {
			e.tick()
		}

		if e.state.Status != game.StatusEnded {
			t.Fatalf("seed %d: game did not end within round cap (round=%d)", seed, e.state.Round)
		}
		if e.state.WinnerID == "" {
			t.Errorf("seed %d: game ended without a winner", seed)
		}
	}
}

func TestResetIdempotent(t *testing.T) {
	e := newTestEngine(3)
	for i := 0; i < 50; i++ {
		e.tick()
	}

	e.Reset()
	first := e.state
	firstLogLen := e.gameLog.Len()

	e.Reset()
	second := e.state

	if firstLogLen != 1 || e.gameLog.Len() != 1 {
		t.Errorf("expected exactly the reset entry after each reset, got %d then %d", firstLogLen, e.gameLog.Len())
	}
	if len(first.Players) != len(second.Players) {
		t.Fatalf("player counts differ after resets: %d vs %d", len(first.Players), len(second.Players))
	}
	for i := range first.Players {
		a, b := first.Players[i], second.Players[i]
		if a.ID != b.ID || a.Money != b.Money || a.Position != b.Position || a.InJail != b.InJail {
			t.Errorf("player %d differs across resets: %+v vs %+v", i, a, b)
		}
	}
	if first.Round != second.Round || first.FreeParkingPot != second.FreeParkingPot {
		t.Error("round or pot differ across resets")
	}
	if second.Status != game.StatusWaiting {
		t.Errorf("status after reset = %s, want waiting", second.Status)
	}
}

func TestJailThirdTurnForcesFine(t *testing.T) {
	e := newTestEngine(1)
	p := e.state.Players[0]
	p.InJail = true
	p.JailTurns = 2
	before := p.Money

	e.processJailTurn(p, func(string, string, string) {})

	if p.InJail {
		t.Error("player should be released on the third jailed turn")
	}
	if p.Money != before-jailFine {
		t.Errorf("money = %d, want %d", p.Money, before-jailFine)
	}
}

func TestJailReleaseMovesSameTick(t *testing.T) {
	e := newTestEngine(1)
	p := e.state.Players[0]
	p.InJail = true
	p.JailTurns = 2
	p.Position = jailPosition

	var actions []string
	e.processTurn(func(_, action, _ string) { actions = append(actions, action) })

	// The landed square may re-jail via a card, so assert on the log: the
	// fine is paid and the movement roll happens on this same tick.
	sawRelease, sawRoll := false, false
	for _, a := range actions {
		switch a {
		case "jail_release":
			sawRelease = true
		case "roll":
			if !sawRelease {
				t.Error("movement roll logged before jail release")
			}
			sawRoll = true
		}
	}
	if !sawRelease || !sawRoll {
		t.Fatalf("actions = %v, want jail_release followed by roll", actions)
	}
}

func TestFailedJailEscapeEndsTurn(t *testing.T) {
	// Both jail outcomes are dice-dependent, so check the invariant that
	// matches whichever branch each seed takes.
	for seed := int64(1); seed <= 10; seed++ {
		e := newTestEngine(seed)
		p := e.state.Players[0]
		p.InJail = true
		p.JailTurns = 0
		p.Position = jailPosition

		var actions []string
		e.processTurn(func(_, action, _ string) { actions = append(actions, action) })

		if actions[0] == "jail" {
			if !p.InJail || p.Position != jailPosition {
				t.Errorf("seed %d: failed escape must leave the player jailed in place", seed)
			}
			if e.state.CurrentPlayer != 1 {
				t.Errorf("seed %d: turn did not pass after failed escape", seed)
			}
		} else {
			sawRoll := false
			for _, a := range actions {
				if a == "roll" {
					sawRoll = true
				}
			}
			if !sawRoll {
				t.Errorf("seed %d: escaped player took no movement roll, actions = %v", seed, actions)
			}
		}
	}
}

func TestTerminationWithAdversarialMoney(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		e := newTestEngine(seed)
		e.state.Players = e.state.Players[:2]
		e.state.Players[0].Money = 1
		e.state.Players[1].Money = 5000

		for i := 0; i < 50000 && e.state.Status != game.StatusEnded; i++ {
			e.tick()
		}

		if e.state.Status != game.StatusEnded {
			t.Fatalf("seed %d: two-player game did not end (round=%d)", seed, e.state.Round)
		}
		if e.state.WinnerID == "" {
			t.Errorf("seed %d: game ended without a winner", seed)
		}
	}
}

func TestStartAfterEndIsNoOp(t *testing.T) {
	e := newTestEngine(1)
	e.state.Status = game.StatusEnded

	e.Start(10)
	if e.loop.Running() {
		t.Error("loop must not start on an ended game")
	}
	if e.Status() != game.StatusEnded {
		t.Error("status must remain ended")
	}
}
