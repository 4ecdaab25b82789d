package tuner

import (
	"strings"
	"testing"

	"dysprosium/internal/engine"
)

func TestParseEPDSemicolonForm(t *testing.T) {
	in := `rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1; 1.0`
	samples, err := parseEPD(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseEPD: %v", err)
	}
	if len(samples) != 1 || samples[0].Result != 1.0 {
		t.Fatalf("samples = %+v, want one sample with result 1.0", samples)
	}
}

func TestParseEPDResultTokenForm(t *testing.T) {
	in := "8/8/8/8/8/3k4/3q4/3K4 b - - 0 1 0-1\n" +
		"# a comment line is skipped\n" +
		"\n" +
		"8/8/8/8/8/3K4/3Q4/3k4 w - - 0 1 1/2-1/2\n"
	samples, err := parseEPD(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseEPD: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2", len(samples))
	}
	if samples[0].Result != 0.0 || samples[1].Result != 0.5 {
		t.Errorf("results = %v/%v, want 0.0/0.5", samples[0].Result, samples[1].Result)
	}
}

func TestMeanSquaredErrorNonNegativeWithNoSamples(t *testing.T) {
	tr := &Tuner{k: defaultK}
	if got := tr.meanSquaredError(engine.DefaultParams()); got < 0 {
		t.Errorf("meanSquaredError = %v, want >= 0", got)
	}
}

func TestGetSetRoundTripsEveryKnob(t *testing.T) {
	p := engine.DefaultParams()
	for i := 0; i < numKnobs; i++ {
		orig := get(p, i)
		set(p, i, orig+7)
		if got := get(p, i); got != orig+7 {
			t.Fatalf("knob %d: got %d, want %d", i, got, orig+7)
		}
		set(p, i, orig)
	}
}

func TestTuneNeverIncreasesError(t *testing.T) {
	samples := []Sample{
		{FEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", Result: 0.5},
		{FEN: "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2", Result: 0.55},
	}
	start := engine.DefaultParams()
	before := New(samples).meanSquaredError(start)

	tuned := Tune(start, samples, 1)
	after := New(samples).meanSquaredError(tuned)

	if after > before {
		t.Errorf("mse increased from %v to %v after tuning", before, after)
	}
}
