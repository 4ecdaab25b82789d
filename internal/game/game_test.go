package game

import (
	"testing"

	"dysprosium/internal/board"
)

func TestFiftyMoveDraw(t *testing.T) {
	pos, err := board.ParseFEN("8/8/8/8/8/3k4/3q4/3K4 b - - 99 60")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g := New(pos)

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		t.Fatal("expected at least one legal move")
	}
	g.MakeMove(moves.Get(0))

	if !g.CanDeclareDraw() {
		t.Fatal("expected fifty-move draw after halfmove clock reaches 100")
	}
}

func TestThreefoldRepetition(t *testing.T) {
	pos := board.NewPosition()
	g := New(pos)

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}
	for _, s := range shuffle {
		m, err := board.ParseMove(s, g.Pos)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", s, err)
		}
		g.MakeMove(m)
	}

	if !g.CanDeclareDraw() {
		t.Fatal("expected threefold repetition draw after returning to start position three times")
	}
}

func TestMakeUnmakeRestoresHistory(t *testing.T) {
	pos := board.NewPosition()
	g := New(pos)
	before := g.HistoryLen()

	moves := pos.GenerateLegalMoves()
	m := moves.Get(0)
	undo := g.MakeMove(m)
	if g.HistoryLen() != before+1 {
		t.Fatalf("expected history length %d after move, got %d", before+1, g.HistoryLen())
	}

	g.UnmakeMove(m, undo)
	if g.HistoryLen() != before {
		t.Fatalf("expected history length restored to %d, got %d", before, g.HistoryLen())
	}
}

func TestFromFENRoundTrip(t *testing.T) {
	g, err := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if g.HistoryLen() != 1 {
		t.Fatalf("expected history length 1 at game start, got %d", g.HistoryLen())
	}
	if g.History[len(g.History)-1] != g.Pos.Hash {
		t.Fatal("last history entry must equal the current position hash")
	}
}
