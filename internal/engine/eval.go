// Package engine implements the search core: static evaluation, static
// exchange evaluation, move ordering, the negamax/quiescence searcher, the
// shared transposition table, time management and SMP coordination.
package engine

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

// Eval is a centipawn score from the side-to-move's perspective, with a
// reserved encoding for forced mates so that mate distance survives
// negation and propagation through negamax without integer overflow.
//
//   - 0x7FFF is mate-in-0 (M0): the side to move has just delivered mate.
//   - 0x7FFF..0x4000 (top bit 0, next bit 1): positive mate, distance is the
//     low 14 bits bit-inverted.
//   - 0x8000..0xBFFF (top bit 1, next bit 0): negative mate (side to move is
//     the one being mated), distance is the low 14 bits as-is.
//   - Anything else is a plain centipawn score.
type Eval int16

const (
	// Mate0 is M0: mate delivered this move.
	Mate0 Eval = 0x7FFF

	mateDistMask = 0x3FFF

	evalMax = 16000
	evalMin = -16000
)

// IsPositiveMate reports whether e encodes "side to move delivers mate".
func (e Eval) IsPositiveMate() bool {
	u := uint16(e)
	return u >= 0x4000 && u <= 0x7FFF
}

// IsNegativeMate reports whether e encodes "side to move is being mated".
func (e Eval) IsNegativeMate() bool {
	u := uint16(e)
	return u >= 0x8000 && u <= 0xBFFF
}

// IsMate reports whether e is any mate-distance encoding.
func (e Eval) IsMate() bool {
	return e.IsPositiveMate() || e.IsNegativeMate()
}

// MateDistance returns the number of plies to the mate encoded by e, or 0
// if e is not a mate score.
func (e Eval) MateDistance() int {
	u := uint16(e)
	switch {
	case e.IsPositiveMate():
		return int(mateDistMask ^ (u & mateDistMask))
	case e.IsNegativeMate():
		return int(u & mateDistMask)
	default:
		return 0
	}
}

// MateIn encodes "side to move delivers mate in ply plies".
func MateIn(ply int) Eval {
	return Eval(0x4000 | (mateDistMask ^ uint16(ply)))
}

// MatedIn encodes "side to move is mated in ply plies".
func MatedIn(ply int) Eval {
	return Eval(0x8000 | uint16(ply))
}

// Negate flips e to the opponent's perspective. Mate scores negate via
// bitwise complement (property: negating twice is the identity, and a
// positive-mate distance d maps to a negative-mate distance d, and back);
// plain scores negate arithmetically. A bare arithmetic negation of a mate
// encoding would not land in the opposing bucket, so the two cases cannot
// share one code path.
func (e Eval) Negate() Eval {
	if e.IsMate() {
		return ^e
	}
	return -e
}

// IncrMate moves a mate score one ply further from M0 as it propagates up
// the search tree; non-mate scores are unchanged.
func (e Eval) IncrMate() Eval {
	switch {
	case e.IsPositiveMate():
		return e - 1
	case e.IsNegativeMate():
		return e + 1
	default:
		return e
	}
}

// phaseWeight is the per-piece-type contribution to the game-phase counter,
// indexed by board.PieceType: [P, N, B, R, Q, K].
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

const maxPhase = 24

// EvalParams holds the tunable evaluation weights: tapered piece-square
// tables (material value already folded in, per piece type and square, from
// White's perspective) and the three scalar king/rook terms. The zero value
// is not usable; use DefaultParams or LoadParams.
type EvalParams struct {
	PSTMid [6][64]int16
	PSTEnd [6][64]int16

	RookOpenFileBonus   int16
	KingOpenFilePenalty int16
	KingPawnPenalty     int16
}

// DefaultParams returns the built-in parameter set: the published PeSTO
// piece-square tables (Ronald Friederich), plus king/rook terms tuned
// alongside them.
func DefaultParams() *EvalParams {
	p := &EvalParams{
		RookOpenFileBonus:   15,
		KingOpenFilePenalty: 20,
		KingPawnPenalty:     10,
	}
	for pt := 0; pt < 6; pt++ {
		for sq := 0; sq < 64; sq++ {
			p.PSTMid[pt][sq] = int16(pestoMid[pt][sq] + pestoMidValue[pt])
			p.PSTEnd[pt][sq] = int16(pestoEnd[pt][sq] + pestoEndValue[pt])
		}
	}
	return p
}

// paramsBlobLen is the serialized size of an EvalParams: two 6x64 int16
// tables plus three int16 scalars, all little-endian.
const paramsBlobLen = 6*64*2 + 6*64*2 + 3*2

// LoadParams decodes a parameter blob written by SaveParams.
func LoadParams(r io.Reader) (*EvalParams, error) {
	buf := make([]byte, paramsBlobLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "eval params: short read")
	}

	p := &EvalParams{}
	off := 0
	readTable := func(dst *[6][64]int16) {
		for pt := 0; pt < 6; pt++ {
			for sq := 0; sq < 64; sq++ {
				dst[pt][sq] = int16(binary.LittleEndian.Uint16(buf[off:]))
				off += 2
			}
		}
	}
	readTable(&p.PSTMid)
	readTable(&p.PSTEnd)
	p.RookOpenFileBonus = int16(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	p.KingPawnPenalty = int16(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	p.KingOpenFilePenalty = int16(binary.LittleEndian.Uint16(buf[off:]))

	return p, nil
}

// SaveParams encodes p in the format LoadParams expects.
func SaveParams(w io.Writer, p *EvalParams) error {
	buf := make([]byte, paramsBlobLen)
	off := 0
	writeTable := func(src *[6][64]int16) {
		for pt := 0; pt < 6; pt++ {
			for sq := 0; sq < 64; sq++ {
				binary.LittleEndian.PutUint16(buf[off:], uint16(src[pt][sq]))
				off += 2
			}
		}
	}
	writeTable(&p.PSTMid)
	writeTable(&p.PSTEnd)
	binary.LittleEndian.PutUint16(buf[off:], uint16(p.RookOpenFileBonus))
	off += 2
	binary.LittleEndian.PutUint16(buf[off:], uint16(p.KingPawnPenalty))
	off += 2
	binary.LittleEndian.PutUint16(buf[off:], uint16(p.KingOpenFilePenalty))

	_, err := w.Write(buf)
	return errors.Wrap(err, "eval params: write")
}

// StaticEval returns the tapered evaluation of g's current position from
// the side-to-move's perspective. It never returns a mate encoding.
func StaticEval(g *game.Game, params *EvalParams) Eval {
	pos := g.Pos
	var mg, eg, phase int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				pstSq := sq
				if c == board.Black {
					pstSq = sq.Mirror()
				}
				mg += sign * int(params.PSTMid[pt][pstSq])
				eg += sign * int(params.PSTEnd[pt][pstSq])
				phase += phaseWeight[pt]
			}
		}
	}

	mgBonus, egBonus := kingAndRookTerms(pos, params)
	mg += mgBonus
	eg += egBonus

	if phase > maxPhase {
		phase = maxPhase
	}

	score := (mg*phase + eg*(maxPhase-phase)) / maxPhase
	if score > evalMax {
		score = evalMax
	} else if score < evalMin {
		score = evalMin
	}

	if pos.SideToMove == board.Black {
		score = -score
	}
	return Eval(score)
}

// kingAndRookTerms computes the mid-game-only king-safety penalties and the
// rook-open-file bonus (a rook on a file with no pawns of either color; mid
// and end, since an open file matters in both phases), signed from White's
// perspective.
func kingAndRookTerms(pos *board.Position, params *EvalParams) (mg, eg int) {
	allPawns := pos.Pieces[board.White][board.Pawn] | pos.Pieces[board.Black][board.Pawn]
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		rooks := pos.Pieces[c][board.Rook]
		pawns := pos.Pieces[c][board.Pawn]
		for rooks != 0 {
			sq := rooks.PopLSB()
			if (allPawns & board.FileMask[sq.File()]) == 0 {
				mg += sign * int(params.RookOpenFileBonus)
				eg += sign * int(params.RookOpenFileBonus)
			}
		}

		ksq := pos.KingSquare[c]
		if ksq == board.NoSquare {
			continue
		}
		kfile := ksq.File()
		for _, f := range adjacentFiles(kfile) {
			if (pawns & board.FileMask[f]) == 0 {
				mg -= sign * int(params.KingOpenFilePenalty)
			}
		}

		forward := ksq.Rank() + 1
		if c == board.Black {
			forward = ksq.Rank() - 1
		}
		if forward < 0 || forward > 7 {
			continue
		}
		shield := board.NewSquare(kfile, forward)
		near := board.KingAttacks(shield) | board.SquareBB(shield)
		nearPawns := (near & pawns).PopCount()
		if missing := 3 - nearPawns; missing > 0 {
			mg -= sign * int(params.KingPawnPenalty) * missing
		}
	}
	return mg, eg
}

func adjacentFiles(file int) []int {
	switch {
	case file == 0:
		return []int{0, 1}
	case file == 7:
		return []int{6, 7}
	default:
		return []int{file - 1, file, file + 1}
	}
}
