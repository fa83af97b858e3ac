package cli

import (
	"fmt"

	"github.com/soyeahso/agentdeck/internal/api"
	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/console"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	baseURL  string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentdeck",
		Short: "agentdeck: operator console for AI agent backends",
		Long:  "agentdeck lists agents, shows execution metrics, runs test tasks and edits agent configuration against an agent backend.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			if err := config.LoadDotEnv(paths.Env); err != nil {
				return err
			}
			level := logLevel
			if level == "" {
				level = "warn"
			}
			log = logging.New(cmd.ErrOrStderr(), level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.agentdeck/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "agent backend URL (overrides console.baseUrl)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConsoleCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newMetricsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// loadConfig loads the config file and applies the --base-url and
// --log-level flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if baseURL != "" {
		cfg.Console.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newAPIClient(cfg config.Config, l *logging.Logger) *api.Client {
	return api.New(cfg.Console.BaseURL,
		api.WithToken(cfg.Console.Token),
		api.WithTimeout(cfg.Console.RequestTimeout()),
		api.WithLogger(l),
	)
}

// newConsole wires a console to the configured backend.
func newConsole(cfg config.Config, l *logging.Logger) *console.Console {
	return console.New(newAPIClient(cfg, l), console.Options{
		MetricsHours: cfg.Console.MetricsHours,
		PollInterval: cfg.Console.PollEvery(),
		StaleGuard:   cfg.Console.StaleGuard,
		Logger:       l,
	})
}
