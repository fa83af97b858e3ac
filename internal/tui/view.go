package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/agentdeck/internal/console"
	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/templates"
)

func (m Model) View() string {
	w := m.viewWidth()

	var body string
	switch m.view {
	case viewTest:
		body = m.renderTestModal(w)
	case viewDetail:
		body = m.renderDetail(w)
	default:
		body = m.renderMain(w)
	}

	sections := []string{body}
	if t := m.renderToasts(w); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, dimStyle.Width(w).Align(lipgloss.Center).Render(m.help.View(m.helpKeys())))
	out := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.view != viewMain && m.height > 0 {
		return lipgloss.Place(w, m.height, lipgloss.Center, lipgloss.Center, out)
	}
	return out
}

func (m Model) renderMain(w int) string {
	agents := m.console.Agents.Agents()

	header := fmt.Sprintf("agentdeck  │  %d agents", len(agents))
	if m.title != "" {
		header += "  │  " + m.title
	}
	if m.loading {
		header += "  " + m.spinner.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Width(w-2).Align(lipgloss.Center).Render(header),
		m.renderMetrics(w),
		m.renderAgents(w, agents),
		m.renderErrors(w),
	)
}

func (m Model) renderMetrics(w int) string {
	snap := m.console.Metrics.Snapshot()
	if !snap.Loaded {
		if snap.Err != nil {
			return errorStyle.Render("metrics unavailable: " + snap.Err.Error())
		}
		return dimStyle.Render(m.spinner.View() + " loading metrics")
	}

	mt := snap.Value
	stats := []struct{ label, value string }{
		{"Executions", domain.FormatCount(mt.TotalExecutions)},
		{"Success Rate", domain.FormatRate(mt.SuccessRate)},
		{"Avg Latency", domain.FormatLatency(mt.AvgLatencyMs)},
		{"Total Cost", domain.FormatCost(mt.TotalCostUSD)},
	}
	boxW := max((w-8)/len(stats), 14)
	boxes := make([]string, 0, len(stats))
	for _, s := range stats {
		boxes = append(boxes, statBoxStyle.Width(boxW).Render(
			statLabelStyle.Render(s.label)+"\n"+statValueStyle.Render(s.value)))
	}

	caption := dimStyle.Render(fmt.Sprintf("last %dh · updated %s", m.console.MetricsHours(), snap.FetchedAt.Format("15:04:05")))
	if snap.Err != nil {
		caption += "  " + warnStyle.Render("stale: "+snap.Err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, boxes...), caption)
}

func (m Model) renderAgents(w int, agents []domain.Agent) string {
	title := sectionStyle.Render("Agents")
	if len(agents) == 0 {
		snap := m.console.Agents.Snapshot()
		switch {
		case snap.Err != nil:
			return title + "\n" + errorStyle.Render("could not load agents: "+snap.Err.Error())
		case m.loading:
			return title + "\n" + dimStyle.Render(m.spinner.View()+" loading agents")
		default:
			return title + "\n" + dimStyle.Render("No agents registered.")
		}
	}

	byAgent := map[string]domain.MetricsSummary{}
	if snap := m.console.Metrics.Snapshot(); snap.Loaded {
		byAgent = snap.Value.ByAgent
	}

	cursor := min(m.cursor, len(agents)-1)
	cards := make([]string, 0, len(agents))
	for i, a := range agents {
		style := cardStyle
		if i == cursor {
			style = selectedCardStyle
		}
		cards = append(cards, style.Width(w-4).Render(renderCard(a, byAgent, w-8)))
	}
	return title + "\n" + lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderCard(a domain.Agent, byAgent map[string]domain.MetricsSummary, w int) string {
	line := nameStyle.Render(a.DisplayName())
	if a.IsCore() {
		line += " " + coreBadgeStyle.Render("[core]")
	}
	line += " " + dimStyle.Render(a.ID)
	if a.Status == domain.AgentStatusDisabled {
		line += " " + warnStyle.Render("disabled")
	}

	lines := []string{line}
	if a.Description != "" {
		lines = append(lines, dimStyle.Render(truncate(a.Description, w)))
	}

	info := fmt.Sprintf("%d capabilities", len(a.Capabilities))
	if s, ok := byAgent[a.ID]; ok {
		info += "  ·  " + summaryLine(s)
	}
	lines = append(lines, info)
	return strings.Join(lines, "\n")
}

func summaryLine(s domain.MetricsSummary) string {
	return fmt.Sprintf("%s runs · %s · %s · %s",
		domain.FormatCount(s.TotalExecutions),
		domain.FormatRate(s.SuccessRate),
		domain.FormatLatency(s.AvgLatencyMs),
		domain.FormatCost(s.TotalCostUSD))
}

// errorRows formats every recent error the backend returned.
func (m Model) errorRows(w int) []string {
	snap := m.console.Metrics.Snapshot()
	if !snap.Loaded {
		return nil
	}
	rows := make([]string, 0, len(snap.Value.RecentErrors))
	for _, e := range snap.Value.RecentErrors {
		prefix := fmt.Sprintf("%s  %-16s %-18s ", e.Timestamp.Local().Format("15:04:05"), e.Agent, e.TaskType)
		rows = append(rows, dimStyle.Render(prefix)+errorStyle.Render(truncate(e.Error, max(w-len(prefix)-2, 10))))
	}
	return rows
}

// renderErrors lists all recent errors. When they do not fit the terminal the
// list scrolls inside errorsView.
func (m Model) renderErrors(w int) string {
	rows := m.errorRows(w)
	if len(rows) == 0 {
		return ""
	}
	header := sectionStyle.Render(fmt.Sprintf("Recent Errors (%d)", len(rows)))
	if m.height == 0 || len(rows) <= m.errorsView.Height {
		return header + "\n" + strings.Join(rows, "\n")
	}
	vp := m.errorsView
	vp.SetContent(strings.Join(rows, "\n"))
	return header + dimStyle.Render(fmt.Sprintf("  %d%%  pgup/pgdn", int(vp.ScrollPercent()*100))) + "\n" + vp.View()
}

func (m Model) renderToasts(w int) string {
	visible := m.toasts.Visible()
	if len(visible) == 0 {
		return ""
	}
	out := make([]string, 0, len(visible))
	for _, t := range visible {
		body := lipgloss.NewStyle().Bold(true).Foreground(toastColor(t.Kind)).Render(t.Title)
		if t.Message != "" {
			body += "\n" + truncate(t.Message, max(w/2, 20))
		}
		out = append(out, toastStyle.BorderForeground(toastColor(t.Kind)).Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Right, out...)
}

func (m Model) modalWidth(w int) int {
	return max(min(w-4, 100), 40)
}

func (m Model) renderTestModal(w int) string {
	a := m.testAgent
	spec := templates.HealthCheck(a.ID)

	lines := []string{
		nameStyle.Render("Test " + a.DisplayName()),
		dimStyle.Render("task type: ") + spec.Type,
		dimStyle.Render("input:"),
		console.FormatTaskInput(spec.Input),
		"",
	}
	lines = append(lines, m.resultStatus(m.testRunning, m.testResult))
	if m.testResult != nil {
		lines = append(lines, m.testViewport.View())
	}
	return modalStyle.Width(m.modalWidth(w)).Render(strings.Join(lines, "\n"))
}

// resultStatus is the one-line outcome shown above a raw response.
func (m Model) resultStatus(running bool, r *domain.ExecutionResult) string {
	switch {
	case running:
		return warnStyle.Render(m.spinner.View() + " running...")
	case r == nil:
		return dimStyle.Render("not run yet")
	}
	switch r.Outcome() {
	case domain.OutcomeSuccess:
		return okStyle.Render(fmt.Sprintf("✓ success in %s", r.Duration.Round(time.Millisecond)))
	case domain.OutcomeAgentFailure:
		return errorStyle.Render("✗ agent failure: " + r.Message())
	default:
		return errorStyle.Render("✗ execution error: " + r.Message())
	}
}

func (m Model) renderDetail(w int) string {
	mw := m.modalWidth(w)
	a := m.shown

	head := nameStyle.Render(a.DisplayName())
	if a.IsCore() {
		head += " " + coreBadgeStyle.Render("[core]")
	}
	head += " " + dimStyle.Render(a.ID)

	tabs := make([]string, 0, len(console.Tabs))
	for _, t := range console.Tabs {
		style := tabStyle
		if t == m.detail.Tab() {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}

	var body string
	switch m.detail.Tab() {
	case console.TabOverview:
		body = m.renderOverview(mw - 6)
	case console.TabConfiguration:
		body = m.renderConfiguration(mw - 6)
	case console.TabInteractiveTest:
		body = m.renderInteractiveTest()
	case console.TabHistory:
		body = dimStyle.Render(console.HistoryPlaceholder)
	}

	return modalStyle.Width(mw).Render(lipgloss.JoinVertical(lipgloss.Left,
		head,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		body,
	))
}

func (m Model) renderOverview(w int) string {
	a := m.shown
	wrap := lipgloss.NewStyle().Width(w)

	lines := []string{}
	if a.Description != "" {
		lines = append(lines, wrap.Render(a.Description), "")
	}
	role := a.Role
	if role == "" {
		role = domain.RoleStandard
	}
	status := a.Status
	if status == "" {
		status = domain.AgentStatusActive
	}
	lines = append(lines,
		dimStyle.Render("role:   ")+role,
		dimStyle.Render("status: ")+status,
		dimStyle.Render("rules:  ")+fmt.Sprint(len(a.Rules)),
	)

	lines = append(lines, sectionStyle.Render("Capabilities"))
	if len(a.Capabilities) == 0 {
		lines = append(lines, dimStyle.Render("none declared"))
	}
	for _, c := range a.Capabilities {
		lines = append(lines, "• "+c)
	}

	if snap := m.console.Metrics.Snapshot(); snap.Loaded {
		lines = append(lines, sectionStyle.Render(fmt.Sprintf("Last %dh", m.console.MetricsHours())))
		if s, ok := snap.Value.ByAgent[a.ID]; ok {
			lines = append(lines, summaryLine(s))
		} else {
			lines = append(lines, dimStyle.Render("no executions"))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderConfiguration(w int) string {
	if m.saving {
		return warnStyle.Render(m.spinner.View() + " saving...")
	}
	ed := m.detail.Editor()
	if ed.State() == console.Editing {
		return strings.Join([]string{
			sectionStyle.Render("System Prompt"),
			m.promptArea.View(),
			sectionStyle.Render("Rules"),
			m.rulesArea.View(),
			dimStyle.Render("blank lines are dropped"),
		}, "\n")
	}

	cfg := ed.Displayed()
	lines := []string{sectionStyle.Render("System Prompt")}
	if m.shown.SystemPrompt == "" {
		lines = append(lines, dimStyle.Render("(default for this agent)"))
	}
	lines = append(lines, lipgloss.NewStyle().Width(w).Render(cfg.SystemPrompt), sectionStyle.Render("Rules"))
	if len(cfg.Rules) == 0 {
		lines = append(lines, dimStyle.Render("No rules configured."))
	}
	for i, r := range cfg.Rules {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderInteractiveTest() string {
	test := m.detail.Test()
	lines := []string{
		m.typeInput.View(),
		sectionStyle.Render("Input (JSON object)"),
		m.inputArea.View(),
		"",
		m.resultStatus(m.running, test.Last),
	}
	if test.Last != nil {
		lines = append(lines, m.resultView.View())
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
