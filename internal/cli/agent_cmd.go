package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/soyeahso/agentdeck/internal/console"
	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/templates"
	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "List, inspect, test and configure agents",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentInfoCmd())
	cmd.AddCommand(newAgentTestCmd())
	cmd.AddCommand(newAgentExecCmd())
	cmd.AddCommand(newAgentConfigCmd())
	return cmd
}

// loadAgents fetches the registry through a fresh console.
func loadAgents(ctx context.Context) (*console.Console, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c := newConsole(cfg, log)
	if err := c.RefreshAgents(ctx); err != nil {
		return nil, fmt.Errorf("loading agents from %s: %w", cfg.Console.BaseURL, err)
	}
	return c, nil
}

func findAgent(c *console.Console, id string) (domain.Agent, error) {
	if a, ok := c.Agents.Find(id); ok {
		return a, nil
	}
	for _, a := range c.Agents.Agents() {
		if strings.EqualFold(a.ID, id) || strings.EqualFold(a.Name, id) {
			return a, nil
		}
	}
	return domain.Agent{}, fmt.Errorf("agent %q not found", id)
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAgents(cmd.Context())
			if err != nil {
				return err
			}
			agents := c.Agents.Agents()
			if len(agents) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No agents registered.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tROLE\tCAPABILITIES\tRULES")
			for _, a := range agents {
				role := a.Role
				if a.IsCore() {
					role = "core *"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", a.ID, a.DisplayName(), role, len(a.Capabilities), len(a.Rules))
			}
			return tw.Flush()
		},
	}
}

func newAgentInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show an agent's details and configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAgents(cmd.Context())
			if err != nil {
				return err
			}
			a, err := findAgent(c, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", a.DisplayName(), a.ID)
			if a.Description != "" {
				fmt.Fprintf(out, "  %s\n", a.Description)
			}
			fmt.Fprintf(out, "Role:         %s\n", orDefault(a.Role, domain.RoleStandard))
			fmt.Fprintf(out, "Status:       %s\n", orDefault(a.Status, domain.AgentStatusActive))
			fmt.Fprintf(out, "Capabilities: %s\n", orDefault(strings.Join(a.Capabilities, ", "), "(none)"))

			ed := console.NewEditor(nil, nil)
			ed.Load(a)
			shown := ed.Displayed()
			label := "System prompt:"
			if a.SystemPrompt == "" {
				label = "System prompt (default):"
			}
			fmt.Fprintf(out, "\n%s\n  %s\n", label, shown.SystemPrompt)
			fmt.Fprintln(out, "\nRules:")
			if len(shown.Rules) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for i, r := range shown.Rules {
				fmt.Fprintf(out, "  %d. %s\n", i+1, r)
			}

			hc := templates.HealthCheck(a.ID)
			fmt.Fprintf(out, "\nHealth check: %s %s\n", hc.Type, compactJSON(console.FormatTaskInput(hc.Input)))
			return nil
		},
	}
}

func newAgentTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Run the agent's health-check task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c := newConsole(cfg, log)
			r, toast := c.Invoker.RunHealthCheck(cmd.Context(), args[0])
			return printResult(cmd.OutOrStdout(), r, toast)
		},
	}
}

func newAgentExecCmd() *cobra.Command {
	var (
		taskType string
		input    string
	)

	cmd := &cobra.Command{
		Use:   "exec <id>",
		Short: "Run a task with a JSON input object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := readArg(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			c := newConsole(cfg, log)
			r, toast, err := c.Invoker.RunCustom(cmd.Context(), args[0], taskType, text)
			if err != nil {
				return fmt.Errorf("%s: %s", toast.Title, toast.Message)
			}
			return printResult(cmd.OutOrStdout(), r, toast)
		},
	}

	cmd.Flags().StringVar(&taskType, "type", domain.TaskTypeCustom, "task type")
	cmd.Flags().StringVar(&input, "input", "{}", "task input as a JSON object, or - to read stdin")
	return cmd
}

func newAgentConfigCmd() *cobra.Command {
	var (
		prompt    string
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "config <id>",
		Short: "Update an agent's system prompt and rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setPrompt := cmd.Flags().Changed("prompt")
			setRules := cmd.Flags().Changed("rules-file")
			if !setPrompt && !setRules {
				return fmt.Errorf("nothing to change: pass --prompt and/or --rules-file")
			}

			c, err := loadAgents(cmd.Context())
			if err != nil {
				return err
			}
			a, err := findAgent(c, args[0])
			if err != nil {
				return err
			}

			modal := c.NewDetailModal()
			modal.Open(a)
			ed := modal.Editor()
			ed.Begin()
			if setPrompt {
				ed.SetPrompt(prompt)
			}
			if setRules {
				text, err := readFileArg(rulesFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				ed.SetRulesText(text)
			}

			toast, err := ed.Save(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", toast.Title, toast.Message)
			}
			saved := ed.Agent()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d rules)\n", toast.Title, toast.Message, len(saved.Rules))
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "new system prompt")
	cmd.Flags().StringVar(&rulesFile, "rules-file", "", "file with one rule per line, or - to read stdin")
	return cmd
}

// printResult prints the toast line and the raw response. Failed outcomes
// become a command error so the exit status reflects them.
func printResult(out io.Writer, r domain.ExecutionResult, toast console.Toast) error {
	fmt.Fprintf(out, "%s (%s)\n", toast.Title, r.Duration.Round(time.Millisecond))
	if pretty := r.Pretty(); pretty != "" {
		fmt.Fprintln(out, pretty)
	}
	if toast.IsError() {
		return fmt.Errorf("%s: %s", toast.Title, toast.Message)
	}
	return nil
}

func readArg(v string, stdin io.Reader) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(stdin)
	return string(b), err
}

func readFileArg(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading rules: %w", err)
	}
	return string(b), nil
}

func compactJSON(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
