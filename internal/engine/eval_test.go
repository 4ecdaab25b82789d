package engine

import (
	"bytes"
	"testing"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

func TestEvalNegationInvolution(t *testing.T) {
	values := []Eval{0, 1, -1, 100, -100, evalMax, evalMin, Mate0, MateIn(0), MateIn(1), MateIn(5), MatedIn(0), MatedIn(1), MatedIn(5)}
	for _, e := range values {
		if got := e.Negate().Negate(); got != e {
			t.Errorf("Negate(Negate(%v)) = %v, want %v", e, got, e)
		}
	}
}

func TestIncrMateIdentityForNonMate(t *testing.T) {
	values := []Eval{0, 1, -1, 100, -100, evalMax, evalMin}
	for _, e := range values {
		if got := e.IncrMate(); got != e {
			t.Errorf("IncrMate(%v) = %v, want %v (not a mate score)", e, got, e)
		}
	}
}

func TestMateEncodingRoundTrip(t *testing.T) {
	for d := 0; d < 20; d++ {
		pos := MateIn(d)
		if !pos.IsPositiveMate() {
			t.Fatalf("MateIn(%d) = %#x is not a positive mate", d, uint16(pos))
		}
		if got := pos.MateDistance(); got != d {
			t.Errorf("MateIn(%d).MateDistance() = %d, want %d", d, got, d)
		}

		neg := MatedIn(d)
		if !neg.IsNegativeMate() {
			t.Fatalf("MatedIn(%d) = %#x is not a negative mate", d, uint16(neg))
		}
		if got := neg.MateDistance(); got != d {
			t.Errorf("MatedIn(%d).MateDistance() = %d, want %d", d, got, d)
		}

		if got := pos.Negate(); got != neg {
			t.Errorf("MateIn(%d).Negate() = %#x, want MatedIn(%d) = %#x", d, uint16(got), d, uint16(neg))
		}
	}
}

func TestIncrMateMovesAwayFromM0(t *testing.T) {
	m := MateIn(3)
	if got := m.IncrMate().MateDistance(); got != 4 {
		t.Errorf("MateIn(3).IncrMate().MateDistance() = %d, want 4", got)
	}
	md := MatedIn(3)
	if got := md.IncrMate().MateDistance(); got != 4 {
		t.Errorf("MatedIn(3).IncrMate().MateDistance() = %d, want 4", got)
	}
}

func TestStaticEvalStartPositionIsZero(t *testing.T) {
	g := game.New(board.NewPosition())
	if e := StaticEval(g, DefaultParams()); e != 0 {
		t.Errorf("StaticEval(start position) = %d, want 0", e)
	}
}

func TestStaticEvalColorSymmetry(t *testing.T) {
	white, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	black, err := board.ParseFEN("4k3/4p3/8/8/8/8/8/4K3 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	params := DefaultParams()
	we := StaticEval(game.New(white), params)
	be := StaticEval(game.New(black), params)
	if we != be {
		t.Errorf("color-mirrored positions should evaluate to the same score from their respective side to move: white-to-move=%d, mirrored black-to-move=%d", we, be)
	}
	if we <= 0 {
		t.Errorf("expected the side up a pawn to have a positive score, got %d", we)
	}
}

func TestParamsBlobRoundTrip(t *testing.T) {
	p := DefaultParams()
	p.RookOpenFileBonus = 42

	var buf bytes.Buffer
	if err := SaveParams(&buf, p); err != nil {
		t.Fatalf("SaveParams: %v", err)
	}

	got, err := LoadParams(&buf)
	if err != nil {
		t.Fatalf("LoadParams: %v", err)
	}
	if got.RookOpenFileBonus != 42 {
		t.Errorf("RookOpenFileBonus = %d, want 42", got.RookOpenFileBonus)
	}
	if got.PSTMid != p.PSTMid {
		t.Error("PSTMid round-trip mismatch")
	}
	if got.PSTEnd != p.PSTEnd {
		t.Error("PSTEnd round-trip mismatch")
	}
}
