package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/executor"
	"github.com/soyeahso/agentdeck/internal/gateway"
	"github.com/soyeahso/agentdeck/internal/hooks"
	"github.com/soyeahso/agentdeck/internal/llm"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port   int
		bind   string
		dbPath string
		noSeed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference agent backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if dbPath != "" {
				cfg.Server.DBPath = dbPath
			}
			if cfg.Server.DBPath == "" {
				if err := paths.EnsureDirs(); err != nil {
					return err
				}
				cfg.Server.DBPath = paths.DefaultDB()
			}

			srvLog, closer, err := logging.Open(logging.Options{
				Level: cfg.Logging.Level,
				Style: cfg.Logging.ConsoleStyle,
				File:  cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer closer.Close()

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					srvLog.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			db, err := store.Open(cfg.Server.DBPath, srvLog)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agents := store.NewAgentStore(db)
			execs := store.NewExecutionStore(db)
			if cfg.Server.SeedEnabled() && !noSeed {
				n, err := agents.Seed(ctx, store.DefaultAgents())
				if err != nil {
					return fmt.Errorf("seeding agents: %w", err)
				}
				if n > 0 {
					srvLog.Info().Int("agents", n).Msg("seeded default agent roster")
				}
			}

			hookMgr := hooks.NewManager(srvLog)

			registry := llm.NewRegistryFromConfig(cfg.LLM, srvLog)
			if providers := registry.List(); len(providers) > 0 {
				srvLog.Info().Strs("providers", providers).Str("model", cfg.LLM.Model).Strs("fallbacks", cfg.LLM.FallbackModels).Msg("LLM providers available")
			} else {
				srvLog.Info().Msg("no LLM provider configured; chat and custom tasks echo their input")
			}

			exec := executor.New(agents, execs, hookMgr, executor.Options{
				LLM:             llm.NewClientFromConfig(registry, cfg.LLM.Model, cfg.LLM.FallbackModels, srvLog),
				CostPer1kTokens: cfg.LLM.CostPer1kTokens,
				Logger:          srvLog,
			})

			srv := gateway.New(cfg.Server, gateway.Deps{
				Agents:     agents,
				Executions: execs,
				Executor:   exec,
				Hooks:      hookMgr,
			}, srvLog)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default ~/.agentdeck/data/agentdeck.db)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "do not seed the default agents into an empty database")

	return cmd
}
