package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/llm"
	"github.com/soyeahso/agentdeck/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show agentdeck status and configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "agentdeck %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:    %s\n", paths.Logs)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:  not found (using defaults)")
			}
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			auth := "none"
			if cfg.Console.Token != "" {
				auth = "bearer"
			}
			fmt.Fprintf(out, "Console: baseUrl=%s auth=%s poll=%s window=%dh\n",
				cfg.Console.BaseURL, auth, cfg.Console.PollEvery(), cfg.Console.MetricsHours)

			db := cfg.Server.DBPath
			if db == "" {
				db = paths.DefaultDB()
			}
			fmt.Fprintf(out, "Server:  port=%d bind=%s db=%s\n", cfg.Server.Port, cfg.Server.Bind, db)

			registry := llm.NewRegistryFromConfig(cfg.LLM, log)
			if providers := registry.List(); len(providers) > 0 {
				fmt.Fprintf(out, "LLM:     %s model=%s\n", strings.Join(providers, ", "), cfg.LLM.Model)
			} else {
				fmt.Fprintln(out, "LLM:     (none)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			list, err := newAPIClient(cfg, log).ListAgents(ctx)
			if err != nil {
				fmt.Fprintf(out, "Backend: unreachable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Backend: reachable, %d agents\n", list.Count)
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
