package main

import (
	"github.com/spf13/cobra"

	"dysprosium/internal/params"
	"dysprosium/internal/uci"
)

func newUCICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uci",
		Short: "Run the UCI protocol loop over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			u := uci.NewWithOptions(cfg.Hash.SizeMB, cfg.Search.Threads)
			if cfg.Params.BlobPath != "" {
				if store, err := params.Open(cfg.Params.BlobPath); err == nil {
					if p, err := store.LoadParams(); err == nil {
						u.SetParams(p)
					}
					store.Close()
				}
			}

			defer u.Close()
			u.Run()
			return nil
		},
	}
}
