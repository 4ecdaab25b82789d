package engine

import (
	"testing"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

func TestSEERookForQueen(t *testing.T) {
	pos, err := board.ParseFEN("7k/8/4r3/8/4Q3/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g := game.New(pos)

	m, err := board.ParseMove("e4e6", g.Pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	want := pieceValue[board.Rook] - pieceValue[board.Queen]
	if got := SEE(g, m); got != want {
		t.Errorf("SEE(e4e6) = %d, want %d", got, want)
	}
}

func TestSEEUndefendedPawnCapture(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g := game.New(pos)

	m, err := board.ParseMove("e4d5", g.Pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	want := pieceValue[board.Pawn] - pieceValue[board.Pawn]
	if got := SEE(g, m); got != want {
		t.Errorf("SEE(e4d5) = %d, want %d (undefended pawn: victim minus capturer)", got, want)
	}
}

func TestSEENonCaptureIsZero(t *testing.T) {
	pos := board.NewPosition()
	g := game.New(pos)

	m, err := board.ParseMove("e2e4", g.Pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	if got := SEE(g, m); got != 0 {
		t.Errorf("SEE(non-capture) = %d, want 0", got)
	}
}
