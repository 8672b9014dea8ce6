package mocks

import (
	"context"
	"testing"

	"github.com/neon-grid/arcade/internal/game"
	"github.com/neon-grid/arcade/internal/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init()
}

func entriesFor(actor string, n int) []game.Entry {
	entries := make([]game.Entry, n)
	for i := range entries {
		entries[i] = game.Entry{Turn: i, Actor: actor, Action: "play"}
	}
	return entries
}

func TestMockAnalyticsActionCounts(t *testing.T) {
	m := NewMockAnalytics()
	ctx := context.Background()

	m.InsertEntries(ctx, "monopoly", []game.Entry{
		{Turn: 1, Actor: "Cipher", Action: "roll"},
		{Turn: 1, Actor: "Cipher", Action: "buy"},
		{Turn: 2, Actor: "Mirage", Action: "roll"},
	})

	counts, err := m.ActionCounts(ctx, "monopoly")
	if err != nil {
		t.Fatalf("ActionCounts failed: %v", err)
	}
	if counts["roll"] != 2 || counts["buy"] != 1 {
		t.Errorf("counts = %v, want roll:2 buy:1", counts)
	}

	// Counts are per game.
	other, err := m.ActionCounts(ctx, "spades")
	if err != nil {
		t.Fatalf("ActionCounts failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no counts for spades, got %v", other)
	}
}

func TestMockAnalyticsTopActorsHonorsLimit(t *testing.T) {
	m := NewMockAnalytics()
	ctx := context.Background()

	m.InsertEntries(ctx, "monopoly", entriesFor("Cipher", 9))
	m.InsertEntries(ctx, "monopoly", entriesFor("Mirage", 7))
	m.InsertEntries(ctx, "spades", entriesFor("Jinx", 5))
	m.InsertEntries(ctx, "spades", entriesFor("Vex", 3))
	m.InsertEntries(ctx, "dba", entriesFor("Nova", 1))
	m.InsertEntries(ctx, "chess", entriesFor("system", 20))

	top, err := m.TopActors(ctx, 3)
	if err != nil {
		t.Fatalf("TopActors failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 actors with limit 3, got %d: %v", len(top), top)
	}
	if top["Cipher"] != 9 || top["Mirage"] != 7 || top["Jinx"] != 5 {
		t.Errorf("top actors = %v, want Cipher:9 Mirage:7 Jinx:5", top)
	}
	if _, present := top["system"]; present {
		t.Error("system entries must never rank as actors")
	}
}

func TestMockAnalyticsTopActorsBelowLimit(t *testing.T) {
	m := NewMockAnalytics()
	ctx := context.Background()

	m.InsertEntries(ctx, "chess", entriesFor("Red King", 2))

	top, err := m.TopActors(ctx, 10)
	if err != nil {
		t.Fatalf("TopActors failed: %v", err)
	}
	if len(top) != 1 || top["Red King"] != 2 {
		t.Errorf("top actors = %v, want Red King:2", top)
	}
}

func TestMockAnalyticsEntryCount(t *testing.T) {
	m := NewMockAnalytics()
	ctx := context.Background()

	if m.EntryCount("monopoly") != 0 {
		t.Error("expected 0 entries before any insert")
	}
	m.InsertEntries(ctx, "monopoly", entriesFor("Cipher", 4))
	if m.EntryCount("monopoly") != 4 {
		t.Errorf("entry count = %d, want 4", m.EntryCount("monopoly"))
	}
}
