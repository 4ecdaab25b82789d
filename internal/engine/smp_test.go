package engine

import (
	"testing"
	"time"

	"dysprosium/internal/board"
	"dysprosium/internal/engine/tt"
	"dysprosium/internal/game"
)

// Scenario (b): helper threads started with StartSMP search the signaled
// position and accumulate their own node counts.
func TestCoordinatorHelpersAccumulateNodes(t *testing.T) {
	tm := NewTimeManager()
	tm.AllowFor(150 * time.Millisecond)
	tm.Start()

	table := tt.NewTable(1)
	params := DefaultParams()
	g := game.New(board.NewPosition())

	c := NewCoordinator()
	c.StartSMP(3, table, tm, params, g)
	if got := c.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}

	c.SignalNewPosition(g)
	time.Sleep(100 * time.Millisecond)

	helpers := c.helpers
	c.KillSMP()

	if c.Count() != 0 {
		t.Errorf("Count() after KillSMP = %d, want 0", c.Count())
	}
	var nodes uint64
	for _, w := range helpers {
		nodes += w.Nodes
	}
	if nodes == 0 {
		t.Error("expected helper threads to have searched some nodes")
	}
}

// StartSMP(0, ...) leaves the coordinator idle, and KillSMP on an idle
// coordinator is a safe no-op.
func TestCoordinatorZeroHelpersIsNoop(t *testing.T) {
	tm := NewTimeManager()
	tm.AllowFor(time.Second)
	tm.Start()

	c := NewCoordinator()
	c.StartSMP(0, tt.NewTable(1), tm, DefaultParams(), game.New(board.NewPosition()))
	if c.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", c.Count())
	}
	c.KillSMP() // must not block or panic
}

// KillSMP can be called twice in a row (e.g. resize_hash after an already
// idle engine) without blocking.
func TestCoordinatorKillTwiceIsSafe(t *testing.T) {
	tm := NewTimeManager()
	tm.AllowFor(100 * time.Millisecond)
	tm.Start()

	c := NewCoordinator()
	c.StartSMP(2, tt.NewTable(1), tm, DefaultParams(), game.New(board.NewPosition()))
	c.KillSMP()
	c.KillSMP()
}

// Restarting the pool (as resize_hash or a changed thread count would
// trigger) tears down the old helpers before starting new ones, leaving the
// shared stop flag usable again.
func TestCoordinatorRestartAfterKill(t *testing.T) {
	tm := NewTimeManager()
	tm.AllowFor(100 * time.Millisecond)
	tm.Start()

	table := tt.NewTable(1)
	params := DefaultParams()
	g := game.New(board.NewPosition())

	c := NewCoordinator()
	c.StartSMP(2, table, tm, params, g)
	c.KillSMP()

	tm2 := NewTimeManager()
	tm2.AllowFor(100 * time.Millisecond)
	tm2.Start()
	c.StartSMP(4, table, tm2, params, g)
	if got := c.Count(); got != 4 {
		t.Errorf("Count() after restart = %d, want 4", got)
	}
	c.KillSMP()
}
