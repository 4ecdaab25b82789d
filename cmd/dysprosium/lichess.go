package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dysprosium/internal/lichess"
)

func newLichessCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "lichess",
		Short: "Run the Lichess bot adapter, playing simultaneous games over the Bot API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			if token == "" {
				token = cfg.Lichess.Token
			}
			if token == "" {
				return fmt.Errorf("no Lichess API token: pass --token or set [lichess] token in the config file")
			}

			hashBytes := cfg.Hash.SizeMB * 1024 * 1024
			if hashBytes <= 0 {
				hashBytes = 64 * 1024 * 1024
			}

			bot := lichess.NewBot(token, hashBytes)
			return bot.Listen()
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Lichess API bearer token (overrides config)")
	return cmd
}
