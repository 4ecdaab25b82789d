package engine

import (
	"math"

	"dysprosium/internal/board"
	"dysprosium/internal/game"
)

// gravityMax bounds both the magnitude of a single history/killer bonus and
// the table value itself; under the "gravity" update formula repeated
// bonuses of one sign pull the value toward ±gravityMax in shrinking steps
// rather than accumulating it unboundedly.
const gravityMax = 32760

// ButterflyTable is a 64x64 score table indexed by a move's (from, to)
// squares, the shape history and killer tables share.
type ButterflyTable [64][64]int32

// Get returns the table's score for m.
func (b *ButterflyTable) Get(m board.Move) int32 {
	return b[m.From()][m.To()]
}

// Update applies the gravity formula: score += bonus - score*|bonus|/MAX.
// bonus is clamped to [-gravityMax, gravityMax] first.
func (b *ButterflyTable) Update(m board.Move, bonus int32) {
	if bonus > gravityMax {
		bonus = gravityMax
	} else if bonus < -gravityMax {
		bonus = -gravityMax
	}
	abs := bonus
	if abs < 0 {
		abs = -abs
	}
	cur := &b[m.From()][m.To()]
	*cur += bonus - *cur*abs/gravityMax
}

// Clear zeroes every entry.
func (b *ButterflyTable) Clear() {
	*b = ButterflyTable{}
}

// CountermoveTable records, for each (from, to) of a move just played, the
// reply that refuted it.
type CountermoveTable [64][64]board.Move

// Get returns the recorded reply to prev, or board.NoMove if none.
func (c *CountermoveTable) Get(prev board.Move) board.Move {
	return c[prev.From()][prev.To()]
}

// Set records reply as the countermove to prev.
func (c *CountermoveTable) Set(prev, reply board.Move) {
	c[prev.From()][prev.To()] = reply
}

// Clear resets every entry to board.NoMove.
func (c *CountermoveTable) Clear() {
	*c = CountermoveTable{}
}

// maxPly bounds recursion depth for fixed-size per-ply state (killer
// tables, the principal-variation walk).
const maxPly = 128

// Orderer holds one search thread's private move-ordering state: a history
// table and a countermove table persisting across an entire iterative-
// deepening search, and one killer table per ply. History/killer/
// countermove updates are lossy by design under SMP — each SmpThread owns
// its own Orderer, no synchronization needed (spec §5, §9).
type Orderer struct {
	History     ButterflyTable
	Countermove CountermoveTable
	Killers     [maxPly]ButterflyTable
}

// NewOrderer returns a zeroed Orderer.
func NewOrderer() *Orderer {
	return &Orderer{}
}

// ResetSearch clears history and countermove tables at the start of a new
// best_move call (spec §4.f step 1). Killer tables persist across plies of
// the same search and are population-only, never explicitly cleared node
// by node — resetting them here too so stale killers from a previous
// iterative-deepening search (different position or superseded depth) do
// not leak into the new one.
func (o *Orderer) ResetSearch() {
	o.History.Clear()
	o.Countermove.Clear()
	for i := range o.Killers {
		o.Killers[i].Clear()
	}
}

// mvvLva is piece_value[victim] - piece_value[attacker], indexed
// [victim][attacker]. Entries with a king on either side exceed int32 once
// multiplied by captureScale; ScoreMove clamps them.
var mvvLva = func() [6][6]int32 {
	var t [6][6]int32
	for victim := 0; victim < 6; victim++ {
		for attacker := 0; attacker < 6; attacker++ {
			t[victim][attacker] = int32(pieceValue[victim] - pieceValue[attacker])
		}
	}
	return t
}()

const (
	ttMoveScore      = 1 << 30 // INT_MAX stand-in: always sorts first; see init() below.
	captureScale     = 327601
	killerScore      = 100
	countermoveBonus = 1000
)

// maxCaptureScore is the highest score ScoreMove can ever hand a real
// capture: a queen taken by a pawn, the cheapest attacker; captures of a
// king (possible only from a position where the side not to move is in
// check) are clamped to it in ScoreMove. ttMoveScore must stay above it so the TT move always sorts
// first regardless of capture scores; int64 avoids overflow while
// checking that at startup.
var maxCaptureScore = int64(pieceValue[board.Queen]-pieceValue[board.Pawn]) * captureScale

func init() {
	if maxCaptureScore >= ttMoveScore {
		panic("engine: ttMoveScore no longer dominates maxCaptureScore; pieceValue or captureScale changed")
	}
}

// ScoreMove implements spec §4.c's scoring rule: the TT move beats
// everything, then captures ranked by MVV-LVA, then quiet moves by
// history + killer + countermove.
func (o *Orderer) ScoreMove(g *game.Game, m board.Move, ttMove board.Move, ply int, prevMove board.Move) int32 {
	if m == ttMove {
		return ttMoveScore
	}

	if g.IsCapture(m) {
		victim := g.Pos.PieceAt(m.To())
		vt := board.Pawn
		if m.IsEnPassant() {
			vt = board.Pawn
		} else if victim != board.NoPiece {
			vt = victim.Type()
		}
		attacker := g.Pos.PieceAt(m.From()).Type()
		s := int64(mvvLva[vt][attacker]) * captureScale
		if s > maxCaptureScore {
			s = maxCaptureScore
		} else if s < math.MinInt32 {
			s = math.MinInt32
		}
		return int32(s)
	}

	score := o.History.Get(m)
	if ply < maxPly {
		score += int32(o.Killers[ply].Get(m)) * killerScore
	}
	if prevMove != board.NoMove && o.Countermove.Get(prevMove) == m {
		score += countermoveBonus
	}
	return score
}

// SortMoves scores every move in ml and sorts it descending by score,
// stably so ties keep move-generation order (SMP workers' divergence comes
// from thread-index jitter elsewhere, not from tie-break order, per §4.c).
func (o *Orderer) SortMoves(g *game.Game, ml *board.MoveList, ttMove board.Move, ply int, prevMove board.Move) {
	n := ml.Len()
	scores := make([]int32, n)
	for i := 0; i < n; i++ {
		scores[i] = o.ScoreMove(g, ml.Get(i), ttMove, ply, prevMove)
	}
	// Insertion sort: stable, and move lists are small (<=256) so O(n^2)
	// is cheaper in practice than the allocation a generic sort.Slice
	// closure would add on this hot path.
	for i := 1; i < n; i++ {
		sc, mv := scores[i], ml.Get(i)
		j := i - 1
		for j >= 0 && scores[j] < sc {
			scores[j+1] = scores[j]
			ml.Set(j+1, ml.Get(j))
			j--
		}
		scores[j+1] = sc
		ml.Set(j+1, mv)
	}
}

// OnCutoff applies the history bonus/penalty and killer/countermove update
// for a beta cutoff at depth caused by quiet move m, per spec §4.d step 8:
// award m a history bonus of 300*depth-250 and penalize every earlier
// quiet move tried at this node, then record m as this ply's killer and
// this node's countermove for prevMove.
func (o *Orderer) OnCutoff(m board.Move, depth int, ply int, priorQuiets []board.Move, prevMove board.Move) {
	bonus := int32(300*depth - 250)
	o.History.Update(m, bonus)
	for _, q := range priorQuiets {
		o.History.Update(q, -bonus)
	}
	if ply < maxPly {
		o.Killers[ply].Update(m, bonus)
	}
	if prevMove != board.NoMove {
		o.Countermove.Set(prevMove, m)
	}
}
