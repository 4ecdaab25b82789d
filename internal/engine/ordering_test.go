package engine

import (
	"testing"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

func TestButterflyTableGravityGrowsWithinMax(t *testing.T) {
	var b ButterflyTable
	m := board.NewMove(board.E2, board.E4)

	for i := 0; i < 50; i++ {
		b.Update(m, 1000)
	}
	if got := b.Get(m); got < 900 || got > gravityMax {
		t.Errorf("after repeated +1000 bonuses, score = %d, want between 900 and gravityMax (%d)", got, gravityMax)
	}
}

func TestButterflyTableClampsBonus(t *testing.T) {
	var b ButterflyTable
	m := board.NewMove(board.A2, board.A4)
	b.Update(m, 10_000_000)
	if got := b.Get(m); got > gravityMax {
		t.Errorf("score = %d, want <= gravityMax (%d)", got, gravityMax)
	}
}

func mustParseMove(t *testing.T, s string, pos *board.Position) board.Move {
	t.Helper()
	m, err := board.ParseMove(s, pos)
	if err != nil {
		t.Fatalf("ParseMove(%s): %v", s, err)
	}
	return m
}

func TestScoreMoveTTMoveWins(t *testing.T) {
	pos := board.NewPosition()
	g := game.New(pos)
	o := NewOrderer()

	tt := mustParseMove(t, "e2e4", g.Pos)
	other := mustParseMove(t, "d2d4", g.Pos)

	if got := o.ScoreMove(g, tt, tt, 0, board.NoMove); got != ttMoveScore {
		t.Errorf("TT move score = %d, want %d", got, ttMoveScore)
	}
	if got := o.ScoreMove(g, other, tt, 0, board.NoMove); got >= ttMoveScore {
		t.Errorf("non-TT move score = %d, must be less than ttMoveScore", got)
	}
}

func TestScoreMoveCaptureOutscoresQuiet(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/3n4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g := game.New(pos)
	o := NewOrderer()

	capture := mustParseMove(t, "e4d5", g.Pos)
	quiet := mustParseMove(t, "e1d1", g.Pos)

	cs := o.ScoreMove(g, capture, board.NoMove, 0, board.NoMove)
	qs := o.ScoreMove(g, quiet, board.NoMove, 0, board.NoMove)
	if cs <= qs {
		t.Errorf("capture score %d should outrank quiet score %d", cs, qs)
	}
}

func TestOnCutoffPenalizesEarlierQuiets(t *testing.T) {
	pos := board.NewPosition()
	g := game.New(pos)
	o := NewOrderer()

	tried := mustParseMove(t, "a2a3", g.Pos)
	cutoff := mustParseMove(t, "e2e4", g.Pos)

	o.OnCutoff(cutoff, 4, 0, []board.Move{tried}, board.NoMove)

	if got := o.History.Get(cutoff); got <= 0 {
		t.Errorf("cutoff move history = %d, want positive", got)
	}
	if got := o.History.Get(tried); got >= 0 {
		t.Errorf("penalized move history = %d, want negative", got)
	}
	if got := o.Killers[0].Get(cutoff); got <= 0 {
		t.Errorf("killer table not updated for cutoff move, got %d", got)
	}
}

func TestSortMovesPutsTTMoveFirst(t *testing.T) {
	pos := board.NewPosition()
	g := game.New(pos)
	o := NewOrderer()

	ml := pos.GenerateLegalMoves()
	tt := ml.Get(ml.Len() - 1)

	o.SortMoves(g, ml, tt, 0, board.NoMove)
	if ml.Get(0) != tt {
		t.Errorf("expected TT move first after sort, got %v", ml.Get(0))
	}
}
