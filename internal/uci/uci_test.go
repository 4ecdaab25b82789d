package uci

import (
	"testing"
	"time"

	"dysprosium/internal/board"
	"dysprosium/internal/engine"
)

func TestParseGoOptionsMoveTime(t *testing.T) {
	o := parseGoOptions([]string{"movetime", "500"})
	if o.moveTime != 500*time.Millisecond {
		t.Errorf("moveTime = %v, want 500ms", o.moveTime)
	}
}

func TestParseGoOptionsClockFields(t *testing.T) {
	o := parseGoOptions([]string{"wtime", "60000", "btime", "59000", "winc", "1000", "binc", "500", "movestogo", "20"})
	if o.wtime != 60*time.Second || o.btime != 59*time.Second {
		t.Errorf("wtime/btime = %v/%v, want 60s/59s", o.wtime, o.btime)
	}
	if o.winc != time.Second || o.binc != 500*time.Millisecond {
		t.Errorf("winc/binc = %v/%v, want 1s/500ms", o.winc, o.binc)
	}
	if o.movesToGo != 20 {
		t.Errorf("movesToGo = %d, want 20", o.movesToGo)
	}
}

func TestParseGoOptionsInfinite(t *testing.T) {
	o := parseGoOptions([]string{"infinite"})
	if !o.infinite {
		t.Error("expected infinite = true")
	}
}

func TestScoreToUCINonMate(t *testing.T) {
	if got := scoreToUCI(engine.Eval(37)); got != "cp 37" {
		t.Errorf("scoreToUCI(37) = %q, want \"cp 37\"", got)
	}
}

func TestScoreToUCIPositiveMate(t *testing.T) {
	got := scoreToUCI(engine.MateIn(1))
	if got != "mate 1" {
		t.Errorf("scoreToUCI(MateIn(1)) = %q, want \"mate 1\"", got)
	}
}

func TestScoreToUCINegativeMate(t *testing.T) {
	got := scoreToUCI(engine.MatedIn(2))
	if got != "mate -1" {
		t.Errorf("scoreToUCI(MatedIn(2)) = %q, want \"mate -1\"", got)
	}
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	u := New()
	defer u.Close()

	u.handlePosition([]string{"startpos", "moves", "e2e4", "e7e5"})

	if u.g.Pos.SideToMove != board.White {
		t.Errorf("side to move = %v, want White after two plies", u.g.Pos.SideToMove)
	}
	if len(u.g.History) != 3 {
		t.Errorf("history len = %d, want 3 (start + 2 plies)", len(u.g.History))
	}
}

func TestHandlePositionFEN(t *testing.T) {
	u := New()
	defer u.Close()

	u.handlePosition([]string{"fen", "8/8/8/8/8/3k4/3q4/3K4", "b", "-", "-", "0", "1"})

	if u.g.Pos.SideToMove != board.Black {
		t.Errorf("side to move = %v, want Black", u.g.Pos.SideToMove)
	}
}
