package engine

import (
	"sync"
	"sync/atomic"

	"dysprosium/internal/engine/tt"
	"dysprosium/internal/game"
)

// Coordinator runs the Lazy SMP helper pool (spec §4.i, §5): n helper
// goroutines search the same root position as the main thread, sharing one
// transposition table, each owning private move-ordering state. Coordination
// is a condition variable signaling new iterations plus two barriers —
// abort (stop the current round) and exit (tear the pool down) — matching
// spec.md's literal description rather than the simpler spawn-per-search/
// WaitGroup pattern the teacher used for its own (shorter-lived) worker
// pool, since helpers here must persist and be re-triggered across
// multiple best_move calls.
type Coordinator struct {
	mu   sync.Mutex
	cond *sync.Cond

	rootGame *game.Game
	gen      uint64 // bumped by SignalNewPosition to wake parked helpers
	aborted  bool   // abort barrier: set while tearing down or restarting
	exiting  bool   // exit barrier: set to let parked helpers return
	busy     int    // helpers currently inside a search round

	stop    atomic.Bool // shared with every Worker (main + helpers)
	helpers []*Worker
	wg      sync.WaitGroup
}

// NewCoordinator returns an idle Coordinator with no helpers running.
func NewCoordinator() *Coordinator {
	c := &Coordinator{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Stop returns the shared abort flag every Worker's timesUp() consults,
// so the main thread's own search (built elsewhere, in the engine façade)
// can be interrupted the same way helpers are.
func (c *Coordinator) Stop() *atomic.Bool {
	return &c.stop
}

// StartSMP spawns n helper threads, each running Worker.Search in an
// independent iterative-deepening loop against whatever position
// SignalNewPosition last set. It first tears down any previously running
// pool. n <= 0 leaves the Coordinator idle (single-threaded search).
func (c *Coordinator) StartSMP(n int, table *tt.Table, tm *TimeManager, params *EvalParams, rootGame *game.Game) {
	c.KillSMP()
	if n <= 0 {
		return
	}

	c.mu.Lock()
	c.rootGame = rootGame
	c.helpers = make([]*Worker, n)
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		w := NewWorker(table, tm, params, &c.stop, i+1) // 0 is reserved for the main thread
		c.helpers[i] = w
		c.wg.Add(1)
		go c.runHelper(w)
	}
}

// Count reports the number of running helper threads.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.helpers)
}

// HelperNodes sums the node counts of every helper thread, for the
// engine façade's nodes() accessor.
func (c *Coordinator) HelperNodes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total uint64
	for _, w := range c.helpers {
		total += w.Nodes
	}
	return total
}

// SignalNewPosition updates the root position helpers search and wakes any
// parked helper to begin a fresh round against it — the condition variable
// "signaling new search iterations" (spec §4.i).
func (c *Coordinator) SignalNewPosition(g *game.Game) {
	c.mu.Lock()
	c.rootGame = g
	c.gen++
	c.cond.Broadcast()
	c.mu.Unlock()
}

// KillSMP initiates the abort barrier (stopping any in-flight round and
// broadcasting wakeups until every helper acknowledges by returning to
// idle), then initiates the exit barrier and waits for every helper
// goroutine to actually terminate. A no-op if no helpers are running.
// Dropping the Engine always calls this so no goroutine outlives it.
func (c *Coordinator) KillSMP() {
	c.mu.Lock()
	if len(c.helpers) == 0 {
		c.mu.Unlock()
		return
	}

	c.aborted = true
	c.stop.Store(true)
	c.cond.Broadcast()
	for c.busy > 0 {
		c.cond.Wait()
	}
	c.stop.Store(false)

	c.exiting = true
	c.cond.Broadcast()
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	c.helpers = nil
	c.exiting = false
	c.aborted = false
	c.mu.Unlock()
}

// runHelper is one helper thread's lifetime: park until a new position is
// signaled (and no abort/exit is in effect), run an independent
// iterative-deepening search against it, then park again.
func (c *Coordinator) runHelper(w *Worker) {
	defer c.wg.Done()

	c.mu.Lock()
	myGen := uint64(0)
	for {
		for !c.exiting && (c.aborted || c.gen == myGen) {
			c.cond.Wait()
		}
		if c.exiting {
			c.mu.Unlock()
			return
		}

		myGen = c.gen
		g := c.rootGame.Copy()
		c.busy++
		c.mu.Unlock()

		w.runUnsupervised(g)

		c.mu.Lock()
		c.busy--
		c.cond.Broadcast()
	}
}

// runUnsupervised runs depth-increasing searches against g until the
// worker's shared time budget or abort flag trips, discarding each
// iteration's result — a helper thread's only contribution is the
// transposition table entries it leaves behind for the main thread to
// reuse (classic Lazy SMP).
func (w *Worker) runUnsupervised(g *game.Game) {
	for depth := 1; depth <= 255; depth++ {
		w.Search(g, depth)
		if w.timesUp() {
			return
		}
	}
}
