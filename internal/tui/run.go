package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/agentdeck/internal/console"
)

// Run starts the console program and its metrics poller and blocks until
// the operator quits. The poller stops with the program.
func Run(ctx context.Context, c *console.Console, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, c, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	poller := c.MetricsPoller(func() { p.Send(MetricsUpdatedMsg{}) })
	go poller.Run(ctx)

	_, err := p.Run()
	return err
}
