package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/agentdeck/internal/console"
	"github.com/soyeahso/agentdeck/internal/domain"
)

// MetricsUpdatedMsg tells the program the metrics cache changed. The
// background poller sends it after every poll.
type MetricsUpdatedMsg struct{}

type agentsLoadedMsg struct{ err error }

type refreshedMsg struct{ err error }

type healthCheckMsg struct {
	agentID string
	result  domain.ExecutionResult
	toast   console.Toast
}

type customRunMsg struct {
	agentID string
	result  domain.ExecutionResult
	toast   console.Toast
}

type savedMsg struct {
	agentID string
	toast   console.Toast
	err     error
}

type expireToastsMsg time.Time

func ensureAgentsCmd(ctx context.Context, c *console.Console) tea.Cmd {
	return func() tea.Msg {
		return agentsLoadedMsg{err: c.EnsureAgents(ctx)}
	}
}

func refreshCmd(ctx context.Context, c *console.Console) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: c.Refresh(ctx)}
	}
}

func healthCheckCmd(ctx context.Context, inv *console.Invoker, agentID string) tea.Cmd {
	return func() tea.Msg {
		r, t := inv.RunHealthCheck(ctx, agentID)
		return healthCheckMsg{agentID: agentID, result: r, toast: t}
	}
}

func customRunCmd(ctx context.Context, inv *console.Invoker, agentID, taskType, input string) tea.Cmd {
	return func() tea.Msg {
		r, t, _ := inv.RunCustom(ctx, agentID, taskType, input)
		return customRunMsg{agentID: agentID, result: r, toast: t}
	}
}

func saveCmd(ctx context.Context, ed *console.Editor, agentID string) tea.Cmd {
	return func() tea.Msg {
		t, err := ed.Save(ctx)
		return savedMsg{agentID: agentID, toast: t, err: err}
	}
}

func expireToastsCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(t time.Time) tea.Msg { return expireToastsMsg(t) })
}
