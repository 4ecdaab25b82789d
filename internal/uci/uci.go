// Package uci implements the Universal Chess Interface protocol loop over
// stdin/stdout, wired against the Engine façade in internal/engine.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dysprosium/internal/board"
	"dysprosium/internal/engine"
	"dysprosium/internal/game"
	"dysprosium/internal/logging"
)

// UCI implements the protocol loop: one Engine, one current position,
// driven by lines read from stdin. A search runs in its own goroutine so
// "stop" can be read and acted on while "go" is still in flight.
type UCI struct {
	eng *engine.Engine
	g   *game.Game

	hashMB  int
	threads int

	searching  bool
	searchDone chan struct{}
}

// New creates a protocol handler around a fresh Engine at the start
// position with a 64MB hash table.
func New() *UCI {
	return NewWithOptions(64, 1)
}

// NewWithOptions creates a protocol handler with a hashMB-sized table
// and threads-1 Lazy SMP helpers already running, the way a config
// file's [hash]/[search] defaults are applied before the GUI sends its
// own "setoption" overrides.
func NewWithOptions(hashMB, threads int) *UCI {
	g := game.New(board.NewPosition())
	u := &UCI{
		eng:     engine.NewEngine(g, hashMB*1024*1024),
		g:       g,
		hashMB:  hashMB,
		threads: threads,
	}
	if threads > 1 {
		u.eng.StartSMP(threads - 1)
	}
	return u
}

// Close releases the underlying engine's helper pool.
func (u *UCI) Close() {
	u.eng.Close()
}

// SetParams overrides the engine's eval-parameter blob, e.g. with one
// loaded from internal/params at startup.
func (u *UCI) SetParams(p *engine.EvalParams) {
	u.eng.SetParams(p)
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if u.dispatch(line) {
			return
		}
	}
}

// dispatch handles one line, returning true if the loop should stop.
func (u *UCI) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		fmt.Println("readyok")
	case "ucinewgame":
		u.handleNewGame()
	case "position":
		u.handlePosition(args)
	case "go":
		u.handleGo(args)
	case "stop":
		u.handleStop()
	case "setoption":
		u.handleSetOption(args)
	case "d":
		fmt.Println(u.g.String())
	case "see":
		u.handleSee(args)
	case "quit":
		u.handleStop()
		u.Close()
		return true
	}
	return false
}

func (u *UCI) handleUCI() {
	fmt.Println("id name Dysprosium")
	fmt.Println("id author the Dysprosium project")
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 4096")
	fmt.Println("option name Threads type spin default 1 min 1 max 64")
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.handleStop()
	u.eng.ClearHash()
	u.g = game.New(board.NewPosition())
	u.eng.SetPosition(u.g)
}

// handlePosition implements "position [startpos|fen <fen>] [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var g *game.Game
	moveStart := len(args)

	switch args[0] {
	case "startpos":
		g = game.New(board.NewPosition())
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		fen := strings.Join(args[1:fenEnd], " ")
		parsed, err := game.FromFEN(fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid fen: %v\n", err)
			return
		}
		g = parsed
		moveStart = fenEnd
	default:
		return
	}

	for i, a := range args {
		if a == "moves" {
			moveStart = i + 1
			break
		}
	}

	for i := moveStart; i < len(args); i++ {
		m, err := board.ParseMove(args[i], g.Pos)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid move %s: %v\n", args[i], err)
			return
		}
		g.MakeMove(m)
	}

	u.g = g
	u.eng.SetPosition(g)
}

// goOptions holds parsed "go" arguments.
type goOptions struct {
	depth     int
	moveTime  time.Duration
	infinite  bool
	wtime     time.Duration
	btime     time.Duration
	winc      time.Duration
	binc      time.Duration
	movesToGo int
}

func parseGoOptions(args []string) goOptions {
	var o goOptions
	for i := 0; i < len(args); i++ {
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}
		switch args[i] {
		case "depth":
			o.depth, _ = strconv.Atoi(next())
		case "movetime":
			ms, _ := strconv.Atoi(next())
			o.moveTime = time.Duration(ms) * time.Millisecond
		case "infinite":
			o.infinite = true
		case "wtime":
			ms, _ := strconv.Atoi(next())
			o.wtime = time.Duration(ms) * time.Millisecond
		case "btime":
			ms, _ := strconv.Atoi(next())
			o.btime = time.Duration(ms) * time.Millisecond
		case "winc":
			ms, _ := strconv.Atoi(next())
			o.winc = time.Duration(ms) * time.Millisecond
		case "binc":
			ms, _ := strconv.Atoi(next())
			o.binc = time.Duration(ms) * time.Millisecond
		case "movestogo":
			o.movesToGo, _ = strconv.Atoi(next())
		}
	}
	return o
}

// handleGo configures time controls and runs best_move to completion in
// its own goroutine, streaming "info" lines and a final "bestmove" (spec
// §4.f, §6) without blocking the command loop from reading "stop".
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	o := parseGoOptions(args)

	switch {
	case o.infinite:
		u.eng.AllowFor(365 * 24 * time.Hour)
	case o.moveTime > 0:
		u.eng.AllowFor(o.moveTime)
	case o.wtime > 0 || o.btime > 0:
		ourTime, ourInc := o.btime, o.binc
		if u.g.Pos.SideToMove == board.White {
			ourTime, ourInc = o.wtime, o.winc
		}
		u.eng.TimeControl(o.movesToGo, ourTime, ourInc)
	default:
		u.eng.AllowFor(5 * time.Second)
	}

	maxDepth := o.depth
	if maxDepth <= 0 {
		maxDepth = 255
	}

	u.searching = true
	u.searchDone = make(chan struct{})
	start := time.Now()

	go func() {
		defer close(u.searchDone)

		result := u.eng.BestMove(func(e *engine.Engine, r engine.BestMoveResult) bool {
			u.sendInfo(e, r, time.Since(start))
			return r.Depth < maxDepth
		})

		u.searching = false
		fmt.Printf("bestmove %s\n", result.Move.String())
	}()
}

func (u *UCI) handleStop() {
	if !u.searching {
		return
	}
	u.eng.RequestStop()
	<-u.searchDone
}

func (u *UCI) sendInfo(e *engine.Engine, r engine.BestMoveResult, elapsed time.Duration) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", r.Depth))
	parts = append(parts, "score "+scoreToUCI(r.Eval))
	parts = append(parts, fmt.Sprintf("nodes %d", e.Nodes()))
	parts = append(parts, fmt.Sprintf("time %d", elapsed.Milliseconds()))
	if elapsed > 0 {
		nps := uint64(float64(e.Nodes()) / elapsed.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts, fmt.Sprintf("hashfull %d", e.TTUsed()))

	pv := e.FindPV(r.Move, 64)
	if len(pv) > 0 {
		strs := make([]string, len(pv))
		for i, m := range pv {
			strs[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(strs, " "))
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

// scoreToUCI renders an Eval as a UCI "score" field, converting mate-ply
// distances to mate-move counts.
func scoreToUCI(e engine.Eval) string {
	if e.IsMate() {
		moves := (e.MateDistance() + 1) / 2
		if e.IsNegativeMate() {
			moves = -moves
		}
		return fmt.Sprintf("mate %d", moves)
	}
	return fmt.Sprintf("cp %d", int(e))
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, a := range args {
		switch a {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += a
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += a
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err == nil && mb >= 1 {
			u.hashMB = mb
			u.eng.ResizeHash(mb * 1024 * 1024)
		}
	case "threads":
		n, err := strconv.Atoi(value)
		if err == nil && n >= 1 {
			u.threads = n
			u.eng.StartSMP(n - 1)
		}
	case "debug":
		logging.SetDebug(strings.ToLower(value) == "true")
	}
}

// handleSee implements the supplemented "see <move>" debug command,
// exposing the static-exchange evaluator directly from the protocol loop.
func (u *UCI) handleSee(args []string) {
	if len(args) == 0 {
		fmt.Println("info string usage: see <move>")
		return
	}
	m, err := board.ParseMove(args[0], u.g.Pos)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string invalid move %s: %v\n", args[0], err)
		return
	}
	fmt.Printf("info string see %s = %d\n", m.String(), engine.SEE(u.g, m))
}
