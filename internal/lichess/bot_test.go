package lichess

import (
	"testing"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
	"dysprosium/internal/logging"
)

func TestApplyMovesReplaysMoveList(t *testing.T) {
	g := game.New(board.NewPosition())
	applyMoves(g, "", "e2e4 e7e5 g1f3")

	if g.Pos.SideToMove != board.Black {
		t.Errorf("side to move = %v, want Black after 3 plies", g.Pos.SideToMove)
	}
	if len(g.History) != 4 {
		t.Errorf("history len = %d, want 4 (start + 3 plies)", len(g.History))
	}
}

func TestApplyLastMovePlaysOnlyNewestMove(t *testing.T) {
	g := game.New(board.NewPosition())
	applyMoves(g, "", "e2e4")
	applyLastMove(g, "e2e4 e7e5")

	if g.Pos.SideToMove != board.White {
		t.Errorf("side to move = %v, want White after 2 plies", g.Pos.SideToMove)
	}
	if len(g.History) != 3 {
		t.Errorf("history len = %d, want 3 (start + 2 plies)", len(g.History))
	}
}

func TestHandleChallengeDecisionInputs(t *testing.T) {
	b := &Bot{client: NewClient("test-token"), log: logging.For("test")}
	c := &Challenge{
		ID:         "c1",
		Challenger: Player{Name: "someone"},
		Variant:    Variant{Key: "chess960"},
		Speed:      SpeedBlitz,
	}

	if isSuperuser := exceptionUsers[c.Challenger.Name]; isSuperuser {
		t.Fatal("someone should not be a superuser")
	}
	if c.Variant.Key == "standard" {
		t.Fatal("expected non-standard variant")
	}
	_ = b
}

func TestDisallowedSpeedsExcludesBlitz(t *testing.T) {
	if disallowedSpeeds[SpeedBlitz] {
		t.Error("blitz should be an allowed speed")
	}
	if !disallowedSpeeds[SpeedClassical] || !disallowedSpeeds[SpeedCorrespondence] {
		t.Error("classical and correspondence should both be disallowed")
	}
}
