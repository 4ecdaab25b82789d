package engine

import (
	"time"

	"dysprosium/internal/board"
	"dysprosium/internal/engine/tt"
	"dysprosium/internal/game"
)

const bytesPerMB = 1024 * 1024

// BestMoveResult is the (best, eval, depth) triple best_move reports to its
// callback and returns to its caller (spec §4.f, §6).
type BestMoveResult struct {
	Move  board.Move
	Eval  Eval
	Depth int
}

// Engine is the façade spec §6 describes: owns the shared transposition
// table, time manager, eval parameters, a main search thread, and an
// optional Lazy SMP helper pool, wired to one current Game.
type Engine struct {
	game   *game.Game
	table  *tt.Table
	tm     *TimeManager
	params *EvalParams
	main   *Worker
	smp    *Coordinator

	numHelpers int
	lastTT     uint8
}

// NewEngine returns an Engine positioned at g with a hash table sized to
// fit within hashBytes.
func NewEngine(g *game.Game, hashBytes int) *Engine {
	table := tt.NewTable(mbFromBytes(hashBytes))
	tm := NewTimeManager()
	smp := NewCoordinator()
	params := DefaultParams()
	return &Engine{
		game:   g,
		table:  table,
		tm:     tm,
		params: params,
		main:   NewWorker(table, tm, params, smp.Stop(), 0),
		smp:    smp,
	}
}

func mbFromBytes(hashBytes int) int {
	mb := hashBytes / bytesPerMB
	if mb < 1 {
		mb = 1
	}
	return mb
}

// SetPosition replaces the engine's current game, e.g. after a UCI
// "position" command.
func (e *Engine) SetPosition(g *game.Game) {
	e.game = g
}

// ResizeHash reallocates the transposition table, discarding its contents.
// Any running helper pool is torn down and restarted at the same size so
// no goroutine observes the table mid-reallocation.
func (e *Engine) ResizeHash(hashBytes int) {
	running := e.numHelpers
	e.smp.KillSMP()
	e.table.Resize(mbFromBytes(hashBytes))
	if running > 0 {
		e.smp.StartSMP(running, e.table, e.tm, e.params, e.game)
	}
}

// ClearHash wipes every transposition table entry.
func (e *Engine) ClearHash() {
	e.table.Clear()
}

// StartSMP spawns n Lazy SMP helper threads searching alongside the main
// thread for every subsequent best_move call.
func (e *Engine) StartSMP(n int) {
	e.numHelpers = n
	e.smp.StartSMP(n, e.table, e.tm, e.params, e.game)
}

// KillSMP tears down any running helper pool.
func (e *Engine) KillSMP() {
	e.numHelpers = 0
	e.smp.KillSMP()
}

// Close releases the engine's helper pool. Every Engine must be closed so
// no helper goroutine outlives it.
func (e *Engine) Close() {
	e.smp.KillSMP()
}

// RequestStop signals the in-flight BestMove call (and every helper
// thread) to abort via the shared stop flag, without tearing down the
// helper pool — a UCI "stop" should not pay goroutine respawn cost.
func (e *Engine) RequestStop() {
	e.smp.Stop().Store(true)
}

// TimeControl configures soft/hard search bounds from clock state (spec
// §4.h).
func (e *Engine) TimeControl(movesToGo int, timeLeft, timeIncr time.Duration) {
	e.tm.TimeControl(movesToGo, timeLeft, timeIncr)
}

// AllowFor pins both soft and hard bounds to a fixed duration (spec §4.h,
// used for "movetime" searches).
func (e *Engine) AllowFor(d time.Duration) {
	e.tm.AllowFor(d)
}

// Nodes sums node counts across the main thread and every helper thread.
func (e *Engine) Nodes() uint64 {
	return e.main.Nodes + e.smp.HelperNodes()
}

// Elapsed reports time since the current search's clock reference started.
func (e *Engine) Elapsed() time.Duration {
	return e.tm.Elapsed()
}

// TTSize reports the transposition table's slot capacity.
func (e *Engine) TTSize() int {
	return e.table.Capacity()
}

// TTUsed reports table occupancy in parts per thousand.
func (e *Engine) TTUsed() int {
	return e.table.UsedPermille()
}

// BestMove drives iterative deepening per spec §4.f: depth 1 always
// returns a move (time-out checks disabled for it), then depth increases
// until the callback returns false or time runs out mid-iteration, in
// which case the previous completed iteration's result is kept.
func (e *Engine) BestMove(callback func(*Engine, BestMoveResult) bool) BestMoveResult {
	e.smp.Stop().Store(false)
	e.main.Nodes = 0
	e.main.Orderer.ResetSearch()
	e.tm.Start()
	if e.numHelpers > 0 {
		e.smp.SignalNewPosition(e.game)
	}

	e.tm.SetCanTimeOut(false)
	move, eval := e.main.Search(e.game, 1)
	best := BestMoveResult{Move: move, Eval: eval, Depth: 1}
	e.tm.SetCanTimeOut(true)

	if !callback(e, best) {
		return best
	}

	for depth := 2; depth <= 255; depth++ {
		if e.tm.SoftTimesUp() {
			break
		}
		move, eval := e.main.Search(e.game, depth)
		if e.tm.HardTimesUp() {
			break
		}
		best = BestMoveResult{Move: move, Eval: eval, Depth: depth}
		if !callback(e, best) {
			break
		}
	}

	return best
}

// FindPV reconstructs a principal variation by walking the transposition
// table from best, following each position's stored reply, capped at
// maxPlies (spec §6, §12, ported from the original lib.rs find_pv).
func (e *Engine) FindPV(best board.Move, maxPlies int) []board.Move {
	pv := make([]board.Move, 0, maxPlies)
	g := e.game.Copy()

	m := best
	for len(pv) < maxPlies {
		legal := g.Pos.GenerateLegalMoves()
		if !legal.Contains(m) {
			break
		}
		pv = append(pv, m)
		g.MakeMove(m)

		entry, ok := e.table.Probe(g.Hash())
		if !ok || entry.Move == board.NoMove {
			break
		}
		m = entry.Move
	}
	return pv
}

// SetParams replaces the eval parameter blob used by the main search
// thread and any future helper pool (spec §6's eval parameter blob,
// loaded at startup from `internal/params`).
func (e *Engine) SetParams(p *EvalParams) {
	e.params = p
	e.main.Params = p
}

// Game returns the engine's current position.
func (e *Engine) Game() *game.Game {
	return e.game
}
