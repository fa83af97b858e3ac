package cli

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/spf13/cobra"
)

func newMetricsCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the execution dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("hours") {
				cfg.Console.MetricsHours = hours
			}
			c := newConsole(cfg, log)
			if err := c.RefreshMetrics(cmd.Context()); err != nil {
				return fmt.Errorf("loading metrics from %s: %w", cfg.Console.BaseURL, err)
			}
			printDashboard(cmd.OutOrStdout(), c.Metrics.Snapshot().Value, c.MetricsHours())
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "dashboard window in hours")
	return cmd
}

func printDashboard(out io.Writer, m domain.DashboardMetrics, hours int) {
	fmt.Fprintf(out, "Last %dh\n", hours)
	fmt.Fprintf(out, "  Executions:   %s\n", domain.FormatCount(m.TotalExecutions))
	fmt.Fprintf(out, "  Success rate: %s\n", domain.FormatRate(m.SuccessRate))
	fmt.Fprintf(out, "  Avg latency:  %s\n", domain.FormatLatency(m.AvgLatencyMs))
	fmt.Fprintf(out, "  Total cost:   %s\n", domain.FormatCost(m.TotalCostUSD))

	if len(m.ByAgent) > 0 {
		ids := make([]string, 0, len(m.ByAgent))
		for id := range m.ByAgent {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "AGENT\tRUNS\tSUCCESS\tLATENCY\tCOST")
		for _, id := range ids {
			s := m.ByAgent[id]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id,
				domain.FormatCount(s.TotalExecutions),
				domain.FormatRate(s.SuccessRate),
				domain.FormatLatency(s.AvgLatencyMs),
				domain.FormatCost(s.TotalCostUSD))
		}
		tw.Flush()
	}

	if len(m.RecentErrors) > 0 {
		fmt.Fprintf(out, "\nRecent errors (%d):\n", len(m.RecentErrors))
		for _, e := range m.RecentErrors {
			fmt.Fprintf(out, "  %s  %s/%s: %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Agent, e.TaskType, e.Error)
		}
	}
}
