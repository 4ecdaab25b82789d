// Package logging wires process-wide structured logging. UCI requires
// stdout stay clean for the protocol, so every logger here writes to
// stderr (matching the teacher's habit of keeping engine I/O out of UCI's
// response stream).
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	base    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	verbose bool
)

// SetDebug raises or lowers the process-wide log level.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// For returns a logger tagged with component, e.g. For("uci"), For("lichess").
func For(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base.With().Str("component", component).Logger()
}
