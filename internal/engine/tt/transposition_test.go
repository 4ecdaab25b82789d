package tt

import (
	"testing"

	"dysprosium/internal/board"
)

func TestProbeMissOnEmptyTable(t *testing.T) {
	table := NewTable(1)
	if _, ok := table.Probe(12345); ok {
		t.Fatal("expected a miss on an empty table")
	}
}

func TestStoreThenProbeRoundTrip(t *testing.T) {
	table := NewTable(1)
	hash := uint64(0xABCD1234)
	move := board.NewMove(board.E2, board.E4)

	table.Store(hash, 7, -150, move, Lower)

	e, ok := table.Probe(hash)
	if !ok {
		t.Fatal("expected a hit after Store")
	}
	if e.Depth != 7 || e.Eval != -150 || e.Move != move || e.NodeType != Lower {
		t.Errorf("got %+v, want depth=7 eval=-150 move=%v nodeType=Lower", e, move)
	}
}

func TestProbeRejectsWrongKeyAtSameIndex(t *testing.T) {
	table := NewTable(1)
	capacity := uint64(table.Capacity())

	table.Store(42, 3, 10, board.NewMove(board.A2, board.A4), Exact)
	// A different key that maps to the same slot index must miss: the slot
	// holds key 42's entry and Probe compares the full key.
	other := 42 + capacity
	if _, ok := table.Probe(other); ok {
		t.Fatal("expected a miss: slot holds a different key's entry")
	}
}

func TestLatestStoreWinsNoReplacementPolicy(t *testing.T) {
	table := NewTable(1)
	hash := uint64(7)

	table.Store(hash, 1, 1, board.NewMove(board.A2, board.A3), Exact)
	table.Store(hash, 20, 999, board.NewMove(board.H2, board.H4), Lower)

	e, ok := table.Probe(hash)
	if !ok {
		t.Fatal("expected a hit")
	}
	if e.Depth != 20 || e.Eval != 999 {
		t.Errorf("expected the most recent store to win, got %+v", e)
	}
}
