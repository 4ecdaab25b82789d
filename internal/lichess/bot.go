package lichess

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"dysprosium/internal/board"
	"dysprosium/internal/engine"
	"dysprosium/internal/game"
	"dysprosium/internal/logging"
)

// threadsPerGame is the total search thread count (main + helpers)
// devoted to each simultaneous game, matching the original's
// THREADS_PER_GAME = 2.
const threadsPerGame = 2

var disallowedSpeeds = map[string]bool{
	SpeedCorrespondence: true,
	SpeedClassical:      true,
}

// exceptionUsers bypasses every accept/decline filter below, matching
// the original's EXCEPTION_USERS escape hatch for the bot author.
var exceptionUsers = map[string]bool{
	"funnsam": true,
}

// acceptRated controls whether rated challenges are accepted, matching
// the original's ACCEPT_RATED = false.
const acceptRated = false

// Bot plays simultaneous games over the Lichess Bot API, dispatching
// each accepted challenge's game stream to its own goroutine (spec
// §12's supplemented Lichess event model).
type Bot struct {
	client      *Client
	hashBytes   int
	activeGames atomic.Int64
	log         zerolog.Logger
}

// NewBot returns a Bot authenticating with token, giving each game's
// engine a hash table of hashBytes.
func NewBot(token string, hashBytes int) *Bot {
	return &Bot{
		client:    NewClient(token),
		hashBytes: hashBytes,
		log:       logging.For("lichess-bot"),
	}
}

// Listen blocks, dispatching the account event stream until it ends or
// errors.
func (b *Bot) Listen() error {
	return b.client.Listen(b.handleEvent)
}

func (b *Bot) handleEvent(ev Event) {
	switch ev.Type {
	case EventChallenge:
		b.handleChallenge(ev.Challenge)
	case EventGameStart:
		b.handleGameStart(ev.Game)
	case EventGameFinish:
		b.activeGames.Add(-1)
	}
}

func (b *Bot) handleChallenge(c *Challenge) {
	if c == nil || c.Direction == DirectionOut {
		return
	}

	challenger := c.Challenger.Name
	if challenger == "" {
		challenger = c.Challenger.Username
	}
	isSuperuser := exceptionUsers[challenger]

	b.log.Info().
		Str("challenger", challenger).
		Str("id", c.ID).
		Str("variant", c.Variant.Key).
		Str("speed", c.Speed).
		Bool("rated", c.Rated).
		Msg("user challenged bot")

	switch {
	case !isSuperuser && c.Variant.Key != "standard":
		b.client.DeclineChallenge(c.ID, "standard")
	case !isSuperuser && disallowedSpeeds[c.Speed]:
		b.client.DeclineChallenge(c.ID, "timeControl")
	case !isSuperuser && !acceptRated && c.Rated:
		b.client.DeclineChallenge(c.ID, "casual")
	default:
		b.client.AcceptChallenge(c.ID)
	}
}

func (b *Bot) handleGameStart(g *Game) {
	if g == nil {
		return
	}

	pos, err := board.ParseFEN(g.FEN)
	if err != nil {
		b.log.Error().Err(err).Str("fen", g.FEN).Msg("invalid game-start fen")
		return
	}

	b.activeGames.Add(1)
	b.log.Info().
		Str("opponent", g.Opponent.Username).
		Str("id", g.ID).
		Str("fen", g.FEN).
		Msg("started a game")

	go b.playGame(g.ID, game.New(pos), g.Color)
}

// playGame owns one game end-to-end: an engine with its own hash table
// and helper pool, driven by the per-game event stream until it ends.
func (b *Bot) playGame(gameID string, g *game.Game, color string) {
	eng := engine.NewEngine(g, b.hashBytes)
	eng.StartSMP(threadsPerGame - 1)
	defer eng.Close()

	ourSide := board.White
	if color != "white" {
		ourSide = board.Black
	}

	err := b.client.ListenGame(gameID, func(ev GameEvent) {
		switch ev.Type {
		case GameEventFull:
			applyMoves(g, ev.InitialFEN, ev.GameState.Moves)
		case GameEventState:
			applyLastMove(g, ev.GameState.Moves)
		default:
			return
		}

		if g.Pos.SideToMove == ourSide {
			b.move(gameID, ourSide, ev.GameState, eng)
		}
	})
	if err != nil {
		b.log.Error().Err(err).Str("game", gameID).Msg("game stream ended with error")
		return
	}
	b.log.Info().Str("game", gameID).Msg("stream ended")
}

// applyMoves resets g to initialFEN and replays every move in moves
// (space-separated UCI), used on the stream's first "gameFull" event.
func applyMoves(g *game.Game, initialFEN, moves string) {
	if initialFEN != "" {
		if pos, err := board.ParseFEN(initialFEN); err == nil {
			*g = *game.New(pos)
		}
	}
	for _, m := range strings.Fields(moves) {
		mv, err := board.ParseMove(m, g.Pos)
		if err != nil {
			return
		}
		g.MakeMove(mv)
	}
}

// applyLastMove plays only the newest move in moves, used on every
// subsequent "gameState" event (which repeats the full move list).
func applyLastMove(g *game.Game, moves string) {
	fields := strings.Fields(moves)
	if len(fields) == 0 {
		return
	}
	last := fields[len(fields)-1]
	mv, err := board.ParseMove(last, g.Pos)
	if err != nil {
		return
	}
	g.MakeMove(mv)
}

// move configures the clock from state, searches to the engine's
// allotted time, logs progress the way the original's play() does via
// find_pv, and submits the result.
func (b *Bot) move(gameID string, ourSide board.Color, state GameState, eng *engine.Engine) {
	ourTime, ourInc := state.BTime, state.BInc
	if ourSide == board.White {
		ourTime, ourInc = state.WTime, state.WInc
	}
	eng.TimeControl(0, time.Duration(ourTime)*time.Millisecond, time.Duration(ourInc)*time.Millisecond)

	start := time.Now()
	result := eng.BestMove(func(e *engine.Engine, r engine.BestMoveResult) bool {
		elapsed := time.Since(start).Seconds()
		nodes := e.Nodes()
		mnps := float64(nodes) / elapsed / 1_000_000.0

		pv := e.FindPV(r.Move, 20)
		strs := make([]string, len(pv))
		for i, m := range pv {
			strs[i] = m.String()
		}

		b.log.Info().
			Uint64("nodes", nodes).
			Int("depth", r.Depth).
			Float64("mnps", mnps).
			Str("pv", strings.Join(strs, " ")).
			Msg("searched")
		return true
	})

	b.client.SendMove(gameID, result.Move.String())
}
