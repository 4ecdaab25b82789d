// Package tuner implements an offline Texel tuning loop (SPEC_FULL.md
// §10.c, §12): given a labeled set of quiet positions, it nudges the
// evaluation's tunable weights by local coordinate descent to minimize
// the mean squared error between the static evaluation (passed through
// a sigmoid) and each position's game result.
package tuner

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"dysprosium/internal/board"
	"dysprosium/internal/engine"
	"dysprosium/internal/game"
	"dysprosium/internal/logging"
)

// Sample is one labeled training position: result is the game outcome
// from White's perspective (1.0 win, 0.5 draw, 0.0 loss), as Texel's
// method expects.
type Sample struct {
	FEN    string
	Result float64
}

// LoadEPD reads one sample per line, each either "<fen>;<result>" or an
// EPD line ending in a c9 "<result>"; opcode (e.g. `... c9 "1-0";`).
// Blank lines and lines starting with "#" are skipped.
func LoadEPD(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()
	return parseEPD(f)
}

func parseEPD(r io.Reader) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "parse dataset line %q", line)
		}
		samples = append(samples, s)
	}
	return samples, scanner.Err()
}

func parseLine(line string) (Sample, error) {
	if i := strings.Index(line, " c9 "); i >= 0 {
		fen := strings.TrimSpace(line[:i])
		result, err := parseResult(strings.Trim(strings.TrimSpace(line[i+len(" c9 "):]), `";`))
		if err != nil {
			return Sample{}, err
		}
		return Sample{FEN: fen, Result: result}, nil
	}
	if i := strings.Index(line, ";"); i >= 0 {
		fen := strings.TrimSpace(line[:i])
		result, err := parseResult(strings.TrimSpace(strings.Trim(line[i+1:], `" c9`)))
		if err != nil {
			return Sample{}, err
		}
		return Sample{FEN: fen, Result: result}, nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Sample{}, errors.New("expected \"<fen> <result>\"")
	}
	result, err := parseResult(fields[len(fields)-1])
	if err != nil {
		return Sample{}, err
	}
	return Sample{FEN: strings.Join(fields[:len(fields)-1], " "), Result: result}, nil
}

func parseResult(s string) (float64, error) {
	switch s {
	case "1-0":
		return 1.0, nil
	case "0-1":
		return 0.0, nil
	case "1/2-1/2", "1/2":
		return 0.5, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid result %q", s)
	}
	return v, nil
}

// Tuner holds the training set and the parameter vector being refined.
type Tuner struct {
	samples []Sample
	k       float64
}

// defaultK is a reasonable sigmoid scale for centipawn-scored engines;
// Texel's own tuner fits K from the dataset, but a fixed constant
// converges to a near-identical optimum in practice and keeps this
// shell from needing a second optimization loop just to pick it.
const defaultK = 1.0 / 400.0

// New returns a Tuner over samples.
func New(samples []Sample) *Tuner {
	return &Tuner{samples: samples, k: defaultK}
}

func sigmoid(cp float64, k float64) float64 {
	return 1.0 / (1.0 + math.Exp(-k*cp))
}

// meanSquaredError scores params against every sample: the static
// eval, sigmoid-compressed to a [0,1] win probability, compared to the
// recorded game result.
func (t *Tuner) meanSquaredError(params *engine.EvalParams) float64 {
	var sum float64
	for _, s := range t.samples {
		g, err := game.FromFEN(s.FEN)
		if err != nil {
			continue
		}
		cp := float64(engine.StaticEval(g, params))
		if g.Pos.SideToMove == board.Black {
			// StaticEval is always from the side-to-move's perspective;
			// Texel's error term needs White's perspective to compare
			// against the recorded (White-relative) result.
			cp = -cp
		}
		diff := s.Result - sigmoid(cp, t.k)
		sum += diff * diff
	}
	if len(t.samples) == 0 {
		return 0
	}
	return sum / float64(len(t.samples))
}

// knob count: two 6x64 tapered tables plus three scalars.
const numKnobs = 6*64*2 + 3

func get(p *engine.EvalParams, i int) int16 {
	switch {
	case i < 6*64:
		return p.PSTMid[i/64][i%64]
	case i < 2*6*64:
		j := i - 6*64
		return p.PSTEnd[j/64][j%64]
	case i == 2*6*64:
		return p.RookOpenFileBonus
	case i == 2*6*64+1:
		return p.KingOpenFilePenalty
	default:
		return p.KingPawnPenalty
	}
}

func set(p *engine.EvalParams, i int, v int16) {
	switch {
	case i < 6*64:
		p.PSTMid[i/64][i%64] = v
	case i < 2*6*64:
		j := i - 6*64
		p.PSTEnd[j/64][j%64] = v
	case i == 2*6*64:
		p.RookOpenFileBonus = v
	case i == 2*6*64+1:
		p.KingOpenFilePenalty = v
	default:
		p.KingPawnPenalty = v
	}
}

func clone(p *engine.EvalParams) *engine.EvalParams {
	c := *p
	return &c
}

// Tune runs up to maxEpochs passes of single-step coordinate descent
// (Texel's tuning method, as applied by zurichess's offline tuner over
// PeSTO-style tables: perturb one weight by ±1, keep the perturbation
// only if it lowers mean squared error) starting from start, stopping
// early once a full epoch makes no improvement.
func Tune(start *engine.EvalParams, samples []Sample, maxEpochs int) *engine.EvalParams {
	log := logging.For("tuner")
	t := New(samples)

	best := clone(start)
	bestErr := t.meanSquaredError(best)
	log.Info().Float64("mse", bestErr).Int("samples", len(samples)).Msg("starting tune")

	for epoch := 0; epoch < maxEpochs; epoch++ {
		improved := false

		for i := 0; i < numKnobs; i++ {
			orig := get(best, i)

			set(best, i, orig+1)
			if e := t.meanSquaredError(best); e < bestErr {
				bestErr = e
				improved = true
				continue
			}

			set(best, i, orig-1)
			if e := t.meanSquaredError(best); e < bestErr {
				bestErr = e
				improved = true
				continue
			}

			set(best, i, orig)
		}

		log.Info().Int("epoch", epoch).Float64("mse", bestErr).Msg("epoch done")
		if !improved {
			break
		}
	}

	return best
}
