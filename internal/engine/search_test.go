package engine

import (
	"testing"
	"time"

	"dysprosium/internal/board"
	"dysprosium/internal/engine/tt"
	"dysprosium/internal/game"
)

func newTestWorker() *Worker {
	tm := NewTimeManager()
	tm.AllowFor(5 * time.Second)
	tm.Start()
	return NewWorker(tt.NewTable(1), tm, DefaultParams(), nil, 0)
}

func gameFromFEN(t *testing.T, fen string) *game.Game {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%s): %v", fen, err)
	}
	return game.New(pos)
}

// Scenario (a) / property 6: mate-in-1 is found with the correct distance.
func TestMateInOneFound(t *testing.T) {
	g := gameFromFEN(t, "8/8/8/8/8/3k4/3q4/3K4 b - - 0 1")
	want := mustParseMove(t, "d2d1", g.Pos)

	w := newTestWorker()
	move, eval := w.Search(g, 3)

	if move != want {
		t.Errorf("best move = %v, want %v", move, want)
	}
	if !eval.IsPositiveMate() {
		t.Fatalf("eval = %v, want a positive mate score", eval)
	}
	if dist := eval.MateDistance(); dist != 1 {
		t.Errorf("mate distance = %d, want 1", dist)
	}
}

// Scenario (d): two searches of an identical Engine state with no helper
// threads (thread index 0) return identical (move, eval).
func TestDeterminismWithoutSMP(t *testing.T) {
	fen := "r3k2r/pppbbppp/2n2n2/3pp3/3PP3/2N2N2/PPPBBPPP/R3K2R w KQkq - 0 1"

	g1 := gameFromFEN(t, fen)
	w1 := newTestWorker()
	m1, e1 := w1.Search(g1, 3)

	g2 := gameFromFEN(t, fen)
	w2 := newTestWorker()
	m2, e2 := w2.Search(g2, 3)

	if m1 != m2 || e1 != e2 {
		t.Errorf("search not deterministic: (%v,%v) != (%v,%v)", m1, e1, m2, e2)
	}
}

// Scenario (e): a position reached via threefold repetition is declared a
// draw and search reports eval 0.
func TestThreefoldRepetitionEvalZero(t *testing.T) {
	g := game.New(board.NewPosition())

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for round := 0; round < 2; round++ {
		for _, s := range shuffle {
			m := mustParseMove(t, s, g.Pos)
			g.MakeMove(m)
		}
	}

	if !g.CanDeclareDraw() {
		t.Fatal("expected CanDeclareDraw after returning to the start position three times")
	}

	w := newTestWorker()
	_, eval := w.Search(g, 2)
	if eval != 0 {
		t.Errorf("eval = %v, want 0 for a claimable repetition draw", eval)
	}
}

// Property 5: the returned move is always legal in the root position.
func TestReturnedMoveIsLegalAtRoot(t *testing.T) {
	g := game.New(board.NewPosition())
	w := newTestWorker()

	move, _ := w.Search(g, 3)
	legal := g.Pos.GenerateLegalMoves()
	if !legal.Contains(move) {
		t.Errorf("returned move %v is not legal in the root position", move)
	}
}

// Property 7: a zero-window search (beta == alpha+1) either fails high
// (s >= beta) or fails low (s <= beta-1); it never lands strictly between.
func TestNullWindowMonotonicity(t *testing.T) {
	g := game.New(board.NewPosition())
	w := newTestWorker()

	beta := Eval(50)
	alpha := beta - 1
	r := w.Negamax(g, alpha, beta, 4, 0, board.NoMove, false, true)

	if !(r.eval >= beta || r.eval <= beta-1) {
		t.Errorf("zero-window result %v violates fail-high/fail-low monotonicity around beta=%v", r.eval, beta)
	}
}

// Starting position at shallow depth returns a finite, non-mate eval
// (complements the static-eval symmetry check in eval_test.go with an
// end-to-end search check, spec §8 scenario c).
func TestSearchStartPositionIsNonMate(t *testing.T) {
	g := game.New(board.NewPosition())
	w := newTestWorker()

	_, eval := w.Search(g, 3)
	if eval.IsMate() {
		t.Errorf("eval = %v, want a non-mate score from the starting position", eval)
	}
}
