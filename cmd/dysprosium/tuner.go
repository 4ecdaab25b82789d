package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dysprosium/internal/engine"
	"dysprosium/internal/params"
	"dysprosium/internal/tuner"
)

func newTunerCommand() *cobra.Command {
	var datasetPath string
	var epochs int
	var outDir string

	cmd := &cobra.Command{
		Use:   "tuner",
		Short: "Run the offline Texel tuner over a labeled PGN/EPD dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			loadConfig()

			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			samples, err := tuner.LoadEPD(datasetPath)
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d training positions\n", len(samples))

			tuned := tuner.Tune(engine.DefaultParams(), samples, epochs)

			if outDir == "" {
				return nil
			}
			store, err := params.Open(outDir)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.SaveParams(tuned)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to a PGN/EPD-style labeled position file (required)")
	cmd.Flags().IntVar(&epochs, "epochs", 20, "maximum coordinate-descent epochs")
	cmd.Flags().StringVar(&outDir, "out", "", "params store directory to write the tuned blob into")

	return cmd
}
