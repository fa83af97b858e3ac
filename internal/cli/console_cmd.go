package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/tui"
	"github.com/spf13/cobra"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive agent console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if issues := config.Validate(&cfg); len(issues) > 0 {
				return fmt.Errorf("invalid config: %s", issues[0])
			}

			// Log lines must never land on the alternate screen.
			// Debug sessions without a configured file log under ~/.agentdeck/logs.
			tlog := logging.Discard()
			if cfg.Logging.File == "" && (cfg.Logging.Level == "debug" || cfg.Logging.Level == "trace") {
				cfg.Logging.File = paths.DefaultLogFile()
			}
			if cfg.Logging.File != "" {
				l, closer, err := logging.Open(logging.Options{
					Level: cfg.Logging.Level,
					Style: cfg.Logging.ConsoleStyle,
					File:  cfg.Logging.File,
				})
				if err != nil {
					return err
				}
				defer closer.Close()
				tlog = l
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tlog.Info().Str("baseUrl", cfg.Console.BaseURL).Msg("console starting")
			return tui.Run(ctx, newConsole(cfg, tlog), tui.Options{
				Title:  cfg.Console.BaseURL,
				Logger: tlog,
			})
		},
	}
}
