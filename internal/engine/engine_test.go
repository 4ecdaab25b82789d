package engine

import (
	"testing"
	"time"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

// Spec §4.f step 2/3: depth 1 always returns a legal move, even with a
// near-zero time budget.
func TestBestMoveAlwaysReturnsDepthOne(t *testing.T) {
	g := game.New(board.NewPosition())
	e := NewEngine(g, 1*bytesPerMB)
	defer e.Close()
	e.AllowFor(1 * time.Nanosecond)

	result := e.BestMove(func(*Engine, BestMoveResult) bool { return false })

	if result.Depth != 1 {
		t.Fatalf("Depth = %d, want 1", result.Depth)
	}
	legal := g.Pos.GenerateLegalMoves()
	if !legal.Contains(result.Move) {
		t.Errorf("returned move %v is not legal at the root", result.Move)
	}
}

// With ample time and a callback that always continues, deeper iterations
// are reached and reported.
func TestBestMoveDeepensUntilCallbackStops(t *testing.T) {
	g := game.New(board.NewPosition())
	e := NewEngine(g, 1*bytesPerMB)
	defer e.Close()
	e.AllowFor(2 * time.Second)

	var depths []int
	result := e.BestMove(func(_ *Engine, r BestMoveResult) bool {
		depths = append(depths, r.Depth)
		return r.Depth < 4
	})

	if result.Depth != 4 {
		t.Errorf("final Depth = %d, want 4", result.Depth)
	}
	for i, d := range depths {
		if d != i+1 {
			t.Errorf("depths reported = %v, want strictly increasing from 1", depths)
			break
		}
	}
}

// FindPV never reports a move that wasn't legal at the point it was
// reached, and never exceeds the ply cap.
func TestFindPVRespectsCapAndLegality(t *testing.T) {
	g := game.New(board.NewPosition())
	e := NewEngine(g, 1*bytesPerMB)
	defer e.Close()
	e.AllowFor(500 * time.Millisecond)

	result := e.BestMove(func(_ *Engine, r BestMoveResult) bool { return r.Depth < 5 })
	pv := e.FindPV(result.Move, 3)

	if len(pv) == 0 {
		t.Fatal("expected a non-empty principal variation")
	}
	if len(pv) > 3 {
		t.Errorf("len(pv) = %d, want <= 3", len(pv))
	}
	if pv[0] != result.Move {
		t.Errorf("pv[0] = %v, want the reported best move %v", pv[0], result.Move)
	}
}

// ResizeHash discards table contents but leaves the engine searchable.
func TestResizeHashPreservesSearchability(t *testing.T) {
	g := game.New(board.NewPosition())
	e := NewEngine(g, 1*bytesPerMB)
	defer e.Close()
	e.AllowFor(100 * time.Millisecond)

	e.ResizeHash(2 * bytesPerMB)
	result := e.BestMove(func(*Engine, BestMoveResult) bool { return false })

	legal := g.Pos.GenerateLegalMoves()
	if !legal.Contains(result.Move) {
		t.Errorf("move %v not legal after resize", result.Move)
	}
}
