package game

import "testing"

func TestLogAppendSnapshot(t *testing.T) {
	l := NewLog()

	l.Append(NewEntry(1, "P1", "roll", "rolled 7"))
	l.Append(NewEntry(1, "P2", "roll", "rolled 4"))

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap[0].Actor != "P1" || snap[1].Actor != "P2" {
		t.Errorf("entries out of order: %+v", snap)
	}

	// Snapshot must be a copy
	snap[0].Actor = "mutated"
	if l.Snapshot()[0].Actor != "P1" {
		t.Error("Snapshot returned a live reference")
	}
}

func TestLogClear(t *testing.T) {
	l := NewLog()
	l.Append(NewEntry(1, "P1", "roll", "rolled 7"))
	l.Clear()

	if l.Len() != 0 {
		t.Errorf("expected empty log after Clear, got %d entries", l.Len())
	}

	// Clear on empty log should not panic
	l.Clear()
}

func TestNewEntryTimestamp(t *testing.T) {
	e := NewEntry(3, "P1", "buy", "bought Boardwalk")
	if e.Turn != 3 || e.Actor != "P1" || e.Action != "buy" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Timestamp == 0 {
		t.Error("expected timestamp to be set")
	}
}
