package engine

import (
	"sync/atomic"

	"dysprosium/internal/board"
	"dysprosium/internal/engine/tt"
	"dysprosium/internal/game"
)

// searchInfinity bounds the root search window. It sits below the positive
// mate bucket's lower edge (0x4000) and, negated, above the negative mate
// bucket's upper edge, so it is never misread as a mate score and never
// overflows int16 on negation (unlike the literal Eval(MIN) bit pattern).
const searchInfinity Eval = evalMax + 1

// result is the (best_move, eval, node_type) triple every search call
// returns; node_type follows spec terminology (PV/Cut/All/None) mapped onto
// tt.Entry's storage-facing names (Exact/Lower/Upper/None).
type result struct {
	move     board.Move
	eval     Eval
	nodeType tt.NodeType
}

// Worker runs one search thread. TT and Stop are shared across all threads
// of a search (Lazy SMP, spec §4.i, §5); Orderer and Nodes are private —
// each helper thread owns its own history/killer/countermove state and node
// count so no synchronization is needed on the hot path.
type Worker struct {
	TT      *tt.Table
	TM      *TimeManager
	Params  *EvalParams
	Orderer *Orderer
	Stop    *atomic.Bool

	Nodes uint64

	// ThreadIdx distinguishes Lazy SMP helpers (0 is the main thread) so
	// their root move order diverges, per spec §4.i.
	ThreadIdx int
}

// NewWorker returns a Worker ready to search, sharing tt and stop with
// sibling threads and owning a fresh Orderer.
func NewWorker(table *tt.Table, tm *TimeManager, params *EvalParams, stop *atomic.Bool, threadIdx int) *Worker {
	return &Worker{
		TT:        table,
		TM:        tm,
		Params:    params,
		Orderer:   NewOrderer(),
		Stop:      stop,
		ThreadIdx: threadIdx,
	}
}

func (w *Worker) timesUp() bool {
	return w.TM.HardTimesUp() || (w.Stop != nil && w.Stop.Load())
}

// Search runs a single root search at depth, returning the best move and
// its evaluation. depth 1 always returns a legal move even with no time
// budget (the caller disables can_time_out for that iteration, spec §4.f).
func (w *Worker) Search(g *game.Game, depth int) (board.Move, Eval) {
	r := w.Negamax(g, -searchInfinity, searchInfinity, depth, 0, board.NoMove, true, false)
	if r.move == board.NoMove {
		if moves := g.Pos.GenerateLegalMoves(); moves.Len() > 0 {
			return moves.Get(0), r.eval
		}
	}
	return r.move, r.eval
}

// rotateMoveList left-rotates ml by n positions, giving Lazy SMP helper
// threads a different first move to search without reshuffling relative
// order (spec §4.i: "jittered iteration").
func rotateMoveList(ml *board.MoveList, n int) {
	total := ml.Len()
	tmp := make([]board.Move, total)
	for i := 0; i < total; i++ {
		tmp[i] = ml.Get((i + n) % total)
	}
	for i := 0; i < total; i++ {
		ml.Set(i, tmp[i])
	}
}

// Negamax implements spec §4.d's node-entry order. alpha/beta use the
// caller's perspective; recursive calls negate the child's eval and swap
// (alpha, beta) to (-beta, -alpha).
func (w *Worker) Negamax(g *game.Game, alpha, beta Eval, depth, ply int, prevMove board.Move, isPV, isZW bool) result {
	w.Nodes++

	// 1. Repetition/50-move draw. Checked unconditionally, including at the
	// root (ply 0): if the position itself is already claimable as a draw,
	// the search reports eval 0 without needing to examine a move first.
	if g.CanDeclareDraw() {
		return result{board.NoMove, 0, tt.None}
	}

	// 2. TT probe, non-PV only.
	var ttMove board.Move
	entry, found := w.TT.Probe(g.Hash())
	if found {
		ttMove = entry.Move
		if !isPV && int(entry.Depth) >= depth {
			stored := Eval(entry.Eval)
			switch entry.NodeType {
			case tt.Exact:
				return result{ttMove, stored, tt.None}
			case tt.Lower:
				if stored >= beta {
					return result{ttMove, stored, tt.None}
				}
			case tt.Upper:
				if stored < alpha {
					return result{ttMove, stored, tt.None}
				}
			}
		}
	}

	// 3. Terminal. A side whose king has already been captured (reachable
	// only from a position where the side not to move was in check) is
	// scored as checkmated.
	inCheck := g.Pos.InCheck()
	if g.Pos.Pieces[g.Pos.SideToMove][board.King] == 0 {
		return result{board.NoMove, MatedIn(0), tt.None}
	}
	hasMoves := g.Pos.HasLegalMoves()
	if !hasMoves {
		if inCheck {
			return result{board.NoMove, MatedIn(0), tt.None}
		}
		return result{board.NoMove, 0, tt.None}
	}

	// 4. Time up.
	if w.timesUp() {
		return result{board.NoMove, 0, tt.None}
	}

	// 5. Leaf.
	if depth <= 0 {
		return w.Quiescence(g, alpha, beta, ply)
	}

	// 6. Null-move pruning: non-PV only (spec §9 open question resolves
	// the source's inconsistent is_pv gating this way).
	if ply > 0 && !isPV && !inCheck && depth > 3 && g.Pos.HasNonPawnMaterial() {
		r := w.nullMoveProbe(g, alpha, beta, depth, ply)
		if r != nil {
			return *r
		}
	}

	// 7. Generate, score, sort.
	moves := g.Pos.GenerateLegalMoves()
	w.Orderer.SortMoves(g, moves, ttMove, ply, prevMove)
	if ply == 0 && w.ThreadIdx > 0 && moves.Len() > 1 {
		rotateMoveList(moves, w.ThreadIdx%moves.Len())
	}

	return w.negamaxWithMoves(g, moves, alpha, beta, depth, ply, prevMove, isPV, isZW)
}

// nullMoveProbe performs step 6's reduced-depth null-move search. Returns
// nil if the move does not fail high (the caller falls through to the
// ordinary move loop).
func (w *Worker) nullMoveProbe(g *game.Game, alpha, beta Eval, depth, ply int) *result {
	r := 4
	if depth > 7 && nonPawnPieceCount(g) >= 2 {
		r = 5
	}
	reduced := depth - r
	if reduced < 0 {
		reduced = 0
	}

	nb := beta.Negate()

	undo := g.MakeNullMove()
	child := w.Negamax(g, nb, nb+1, reduced, ply+1, board.NoMove, false, true)
	g.UnmakeNullMove(undo)

	score := child.eval.Negate()
	if score >= beta {
		res := result{board.NoMove, score.IncrMate(), tt.Lower}
		return &res
	}
	return nil
}

func nonPawnPieceCount(g *game.Game) int {
	us := g.Pos.SideToMove
	return (g.Pos.Pieces[us][board.Knight] | g.Pos.Pieces[us][board.Bishop] |
		g.Pos.Pieces[us][board.Rook] | g.Pos.Pieces[us][board.Queen]).PopCount()
}

// negamaxWithMoves runs step 7's already-sorted move list through step 8's
// per-move loop and step 9/10's return and store. Negamax applies the
// ply-0 thread-index rotation before calling it.
func (w *Worker) negamaxWithMoves(g *game.Game, moves *board.MoveList, alpha, beta Eval, depth, ply int, prevMove board.Move, isPV, isZW bool) result {
	inCheck := g.Pos.InCheck()
	originalAlpha := alpha
	best := alpha
	bestMove := moves.Get(0)
	var triedQuiets []board.Move

	fullDepth := depth - 1

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		isCapture := g.IsCapture(m)

		undo := g.MakeMove(m)
		// "m gives check" is approximated as the post-move board being in
		// check (spec §9 open question), rather than a dedicated test.
		giving := g.Pos.InCheck()
		full := depth < 3 || inCheck || i < 5 || giving

		ext := 0
		if giving {
			ext = 1
		}
		var thisDepth int
		if full {
			thisDepth = depth - 1
		} else {
			thisDepth = depth / 2
		}
		thisDepth += ext
		thisFullDepth := fullDepth + ext

		if !inCheck && thisDepth <= 1 {
			margin := StaticEval(g, w.Params).Negate() + Eval(300*thisDepth+100)
			if margin < alpha {
				g.UnmakeMove(m, undo)
				continue
			}
		}

		child := w.Negamax(g, beta.Negate(), best.Negate(), thisDepth, ply+1, m, isPV && i == 0, !(isPV && i == 0))

		if w.timesUp() {
			g.UnmakeMove(m, undo)
			return result{bestMove, best, tt.None}
		}

		score := child.eval.Negate()

		if thisDepth < thisFullDepth && score > best {
			child = w.Negamax(g, beta.Negate(), best.Negate(), thisFullDepth, ply+1, m, isPV && i == 0, !(isPV && i == 0))
			if w.timesUp() {
				g.UnmakeMove(m, undo)
				return result{bestMove, best, tt.None}
			}
			score = child.eval.Negate()
		}

		g.UnmakeMove(m, undo)

		if !isCapture {
			triedQuiets = append(triedQuiets, m)
		}

		if score > best {
			best = score
			bestMove = m
		}

		if best >= beta {
			if !isCapture {
				priorQuiets := triedQuiets[:len(triedQuiets)-1]
				w.Orderer.OnCutoff(m, depth, ply, priorQuiets, prevMove)
			}
			w.store(g.Hash(), depth, best.IncrMate(), bestMove, tt.Lower)
			return result{bestMove, best.IncrMate(), tt.Lower}
		}
	}

	nodeType := tt.Exact
	if best == originalAlpha {
		nodeType = tt.Upper
	}
	w.store(g.Hash(), depth, best.IncrMate(), bestMove, nodeType)
	return result{bestMove, best.IncrMate(), nodeType}
}

func (w *Worker) store(hash uint64, depth int, eval Eval, move board.Move, nodeType tt.NodeType) {
	if nodeType == tt.None || w.timesUp() {
		return
	}
	w.TT.Store(hash, uint8(depth), int16(eval), move, nodeType)
}

// Quiescence implements spec §4.e. standing_pat >= beta returns beta itself
// (a hard fail-high) rather than standing_pat, a deliberate deviation from
// the rest of the fail-soft code kept because the source this was rewritten
// from regressed self-play tests when it was changed (spec §9).
func (w *Worker) Quiescence(g *game.Game, alpha, beta Eval, ply int) result {
	w.Nodes++

	if w.timesUp() {
		return result{board.NoMove, 0, tt.None}
	}

	standingPat := StaticEval(g, w.Params)
	if standingPat >= beta {
		return result{board.NoMove, beta, tt.None}
	}

	best := standingPat
	if alpha < standingPat {
		alpha = standingPat
	}

	moves := g.Pos.GenerateCaptures()
	w.Orderer.SortMoves(g, moves, board.NoMove, ply, board.NoMove)

	bestMove := board.NoMove
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := g.MakeMove(m)
		child := w.Quiescence(g, beta.Negate(), alpha.Negate(), ply+1)
		g.UnmakeMove(m, undo)

		if w.timesUp() {
			return result{bestMove, best, tt.None}
		}

		score := child.eval.Negate()
		if score > best {
			best = score
			bestMove = m
		}
		if best >= beta {
			return result{bestMove, best, tt.None}
		}
		if best > alpha {
			alpha = best
		}
	}

	return result{bestMove, best, tt.None}
}
