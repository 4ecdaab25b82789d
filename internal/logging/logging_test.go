package logging

import "testing"

func TestForReturnsUsableLogger(t *testing.T) {
	l := For("uci")
	l.Info().Msg("constructed without panicking")
}

func TestSetDebugTogglesLevel(t *testing.T) {
	SetDebug(true)
	if !verbose {
		t.Error("expected verbose=true after SetDebug(true)")
	}
	SetDebug(false)
	if verbose {
		t.Error("expected verbose=false after SetDebug(false)")
	}
}
