// Command dysprosium is the engine's single binary entry point,
// dispatching to the UCI protocol loop, the Lichess bot adapter, the
// offline tuner, and a fixed-depth benchmark (SPEC_FULL.md §10.c).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dysprosium/internal/config"
	"dysprosium/internal/logging"
)

var configPath string
var debug bool

func main() {
	root := &cobra.Command{
		Use:   "dysprosium",
		Short: "A UCI chess engine with Lazy SMP search and an offline Texel tuner",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level logging")

	root.AddCommand(newUCICommand())
	root.AddCommand(newLichessCommand())
	root.AddCommand(newTunerCommand())
	root.AddCommand(newBenchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetDebug(debug)
	return cfg
}
