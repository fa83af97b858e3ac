package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/agentdeck/internal/console"
	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	agents  []domain.Agent
	metrics domain.DashboardMetrics

	saveResp domain.ConfigResponse
	saved    []domain.AgentConfig

	execResp  domain.ExecuteResponse
	execRaw   []byte
	execErr   error
	execCalls []domain.Task
}

func (f *fakeBackend) ListAgents(context.Context) (domain.AgentList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.AgentList{OK: true, Agents: f.agents, Count: len(f.agents)}, nil
}

func (f *fakeBackend) DashboardMetrics(context.Context, int) (domain.DashboardMetrics, error) {
	return f.metrics, nil
}

func (f *fakeBackend) SaveConfig(_ context.Context, _ string, cfg domain.AgentConfig) (domain.ConfigResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, cfg)
	return f.saveResp, nil
}

func (f *fakeBackend) Execute(_ context.Context, _ string, task domain.Task) (domain.ExecuteResponse, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls = append(f.execCalls, task)
	return f.execResp, f.execRaw, f.execErr
}

func (f *fakeBackend) respond(raw string) {
	f.execRaw = []byte(raw)
	f.execResp = domain.ExecuteResponse{}
	_ = json.Unmarshal(f.execRaw, &f.execResp)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{
		agents: []domain.Agent{
			{ID: "content", Name: "Content Agent", Role: domain.RoleCore, Description: "Writes copy.", Capabilities: []string{"extract_keywords", "summarize"}, SystemPrompt: "You write copy.", Rules: []string{"be brief"}},
			{ID: "seo", Name: "SEO Agent", Capabilities: []string{"analyze_seo"}},
		},
		metrics: domain.DashboardMetrics{
			WindowHours: 24,
			MetricsSummary: domain.MetricsSummary{
				TotalExecutions: 42,
				SuccessRate:     97.6,
				AvgLatencyMs:    812.4,
				TotalCostUSD:    0.0314,
			},
			ByAgent: map[string]domain.MetricsSummary{
				"content": {TotalExecutions: 40, SuccessRate: 100, AvgLatencyMs: 700, TotalCostUSD: 0.03},
			},
			RecentErrors: []domain.RecentError{
				{Agent: "seo", TaskType: "analyze_seo", Error: "content is required", Timestamp: testNow},
			},
		},
		saveResp: domain.ConfigResponse{OK: true},
	}
	fb.respond(`{"ok":true,"result":{"success":true,"data":{"status":"ok"}}}`)

	ctx := context.Background()
	c := console.New(fb, console.Options{MetricsHours: 24})
	require.NoError(t, c.Refresh(ctx))

	m := New(ctx, c, Options{Title: "http://backend"})
	m.now = func() time.Time { return testNow }
	m.loading = false
	return m, fb
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyUp       = tea.KeyMsg{Type: tea.KeyUp}
	keySave     = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCancel   = tea.KeyMsg{Type: tea.KeyCtrlX}
	keyField    = tea.KeyMsg{Type: tea.KeyCtrlN}
	keyExecute  = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func lastToast(t *testing.T, m Model) console.Toast {
	t.Helper()
	visible := m.toasts.Visible()
	require.NotEmpty(t, visible)
	return visible[len(visible)-1]
}

func TestMainView_RendersMetricsAndAgents(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()

	for _, want := range []string{"42", "97.6%", "812ms", "$0.0314", "Content Agent", "[core]", "2 capabilities", "SEO Agent", "content is required", "http://backend"} {
		assert.Contains(t, out, want)
	}
}

func TestMainView_CursorStaysInBounds(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, keyDown)
	assert.Equal(t, 1, m.cursor)
	m, _ = press(t, m, keyDown)
	assert.Equal(t, 1, m.cursor)
	m, _ = press(t, m, keyUp)
	m, _ = press(t, m, keyUp)
	assert.Equal(t, 0, m.cursor)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTestModal_HealthCheckOutcomes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fb *fakeBackend)
		title string
		kind  console.ToastKind
	}{
		{"success", func(fb *fakeBackend) {}, console.TitleTestSuccessful, console.ToastSuccess},
		{"agent failure", func(fb *fakeBackend) {
			fb.respond(`{"ok":true,"result":{"success":false,"error":"bad input"}}`)
		}, console.TitleTestFailed, console.ToastError},
		{"transport failure", func(fb *fakeBackend) {
			fb.execErr = errors.New("connection refused")
		}, console.TitleExecutionError, console.ToastError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fb := newTestModel(t)
			tt.setup(fb)

			m, _ = press(t, m, runes("t"))
			require.Equal(t, viewTest, m.view)
			assert.Equal(t, "content", m.testAgent.ID)

			m, cmd := press(t, m, keyEnter)
			require.NotNil(t, cmd)
			assert.True(t, m.testRunning)

			m = send(t, m, cmd())
			assert.False(t, m.testRunning)
			require.NotNil(t, m.testResult)
			assert.Equal(t, 1, m.toasts.Len(), "exactly one toast per action")
			toast := lastToast(t, m)
			assert.Equal(t, tt.title, toast.Title)
			assert.Equal(t, tt.kind, toast.Kind)

			require.Len(t, fb.execCalls, 1)
			assert.Equal(t, templates.HealthCheck("content").Type, fb.execCalls[0].Type)
		})
	}
}

func TestTestModal_IgnoresRunWhileRunning(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("t"))
	m, cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	_, again := press(t, m, keyEnter)
	assert.Nil(t, again)
}

func TestTestModal_CloseDropsResult(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("t"))
	m, cmd := press(t, m, keyEnter)
	m, _ = press(t, m, keyEsc)
	assert.Equal(t, viewMain, m.view)

	// A late result still toasts but does not reopen anything.
	m = send(t, m, cmd())
	assert.Nil(t, m.testResult)
	assert.Equal(t, 1, m.toasts.Len())
}

func TestDetailModal_TabsAndClose(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, keyEnter)
	require.Equal(t, viewDetail, m.view)
	assert.True(t, m.detail.IsOpen())
	assert.Equal(t, console.TabOverview, m.detail.Tab())
	assert.Contains(t, m.View(), "Writes copy.")

	m, _ = press(t, m, keyTab)
	assert.Equal(t, console.TabConfiguration, m.detail.Tab())
	assert.Contains(t, m.View(), "be brief")

	m, _ = press(t, m, keyShiftTab)
	m, _ = press(t, m, keyShiftTab)
	assert.Equal(t, console.TabHistory, m.detail.Tab())
	assert.Contains(t, m.View(), console.HistoryPlaceholder)

	m, _ = press(t, m, keyEsc)
	assert.Equal(t, viewMain, m.view)
	assert.False(t, m.detail.IsOpen())
}

func openConfig(t *testing.T, m Model, cursor int) Model {
	t.Helper()
	m.cursor = cursor
	m, _ = press(t, m, keyEnter)
	m, _ = press(t, m, keyTab)
	require.Equal(t, console.TabConfiguration, m.detail.Tab())
	return m
}

func TestDetailModal_ConfigurationShowsDefaultPrompt(t *testing.T) {
	m, _ := newTestModel(t)
	m = openConfig(t, m, 1)

	assert.Contains(t, m.View(), "default for this agent")
	assert.Equal(t, templates.PromptProfile("seo").SystemPrompt, m.detail.Editor().Displayed().SystemPrompt)

	m, _ = press(t, m, runes("e"))
	assert.Equal(t, console.Editing, m.detail.Editor().State())
	assert.Equal(t, templates.PromptProfile("seo").SystemPrompt, m.promptArea.Value())
}

func TestDetailModal_EditAndSave(t *testing.T) {
	m, fb := newTestModel(t)
	m = openConfig(t, m, 1)

	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, keyField)
	m, _ = press(t, m, runes("no fluff"))
	assert.Equal(t, []string{"no fluff"}, m.detail.Editor().Buffer().Rules)

	m, cmd := press(t, m, keySave)
	require.NotNil(t, cmd)
	assert.True(t, m.saving)

	// Keys are ignored while the save is in flight.
	m, ignored := press(t, m, keyEsc)
	assert.Nil(t, ignored)
	assert.True(t, m.detail.IsOpen())

	m = send(t, m, cmd())
	assert.False(t, m.saving)
	assert.Equal(t, console.TitleConfigSaved, lastToast(t, m).Title)
	assert.Equal(t, console.Viewing, m.detail.Editor().State())
	assert.Equal(t, []string{"no fluff"}, m.shown.Rules)

	require.Len(t, fb.saved, 1)
	assert.Equal(t, []string{"no fluff"}, fb.saved[0].Rules)
	assert.Equal(t, templates.PromptProfile("seo").SystemPrompt, fb.saved[0].SystemPrompt)

	cached, ok := m.console.Agents.Find("seo")
	require.True(t, ok)
	assert.Equal(t, []string{"no fluff"}, cached.Rules)
	assert.True(t, m.console.Agents.NeedsFetch())
}

func TestDetailModal_SaveRejected(t *testing.T) {
	m, fb := newTestModel(t)
	fb.saveResp = domain.ConfigResponse{OK: false, Error: "boom"}
	m = openConfig(t, m, 0)

	m, _ = press(t, m, runes("e"))
	m, cmd := press(t, m, keySave)
	m = send(t, m, cmd())

	toast := lastToast(t, m)
	assert.Equal(t, console.TitleSaveFailed, toast.Title)
	assert.Equal(t, "boom", toast.Message)
	assert.Equal(t, console.Editing, m.detail.Editor().State())
	assert.Equal(t, []string{"be brief"}, m.shown.Rules)
}

func TestDetailModal_CancelEdit(t *testing.T) {
	m, fb := newTestModel(t)
	m = openConfig(t, m, 0)

	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, runes("zzz"))
	m, _ = press(t, m, keyCancel)

	assert.Equal(t, console.Viewing, m.detail.Editor().State())
	assert.Equal(t, "You write copy.", m.detail.Editor().Displayed().SystemPrompt)
	assert.Empty(t, fb.saved)
}

func TestDetailModal_CloseDiscardsEdit(t *testing.T) {
	m, _ := newTestModel(t)
	m = openConfig(t, m, 0)
	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, keyEsc)
	assert.False(t, m.detail.IsOpen())

	m, _ = press(t, m, keyEnter)
	assert.Equal(t, console.TabOverview, m.detail.Tab())
	assert.Equal(t, console.Viewing, m.detail.Editor().State())
}

func openInteractiveTest(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(t, m, keyEnter)
	m, _ = press(t, m, keyTab)
	m, _ = press(t, m, keyTab)
	require.Equal(t, console.TabInteractiveTest, m.detail.Tab())
	return m
}

func TestInteractiveTest_Prefilled(t *testing.T) {
	m, _ := newTestModel(t)
	m = openInteractiveTest(t, m)

	assert.Equal(t, "extract_keywords", m.typeInput.Value())
	assert.Equal(t, console.FormatTaskInput(templates.HealthCheck("content").Input), m.inputArea.Value())
}

func TestInteractiveTest_Run(t *testing.T) {
	m, fb := newTestModel(t)
	m = openInteractiveTest(t, m)

	m, cmd := press(t, m, keyExecute)
	require.NotNil(t, cmd)
	assert.True(t, m.running)

	m = send(t, m, cmd())
	assert.False(t, m.running)
	require.NotNil(t, m.detail.Test().Last)
	assert.Equal(t, console.TitleTestSuccessful, lastToast(t, m).Title)

	require.Len(t, fb.execCalls, 1)
	assert.Equal(t, "extract_keywords", fb.execCalls[0].Type)
	assert.Equal(t, templates.HealthCheck("content").Input, fb.execCalls[0].Input)
}

func TestInteractiveTest_InvalidJSON(t *testing.T) {
	m, fb := newTestModel(t)
	m = openInteractiveTest(t, m)

	m, _ = press(t, m, keyField)
	m, _ = press(t, m, runes("x"))
	m, _ = press(t, m, keyExecute)

	assert.False(t, m.running)
	assert.False(t, m.console.Invoker.Busy())
	assert.Empty(t, fb.execCalls)
	assert.Equal(t, 1, m.toasts.Len())
	assert.Equal(t, console.TitleInvalidJSON, lastToast(t, m).Title)
}

func TestToasts_Expire(t *testing.T) {
	m, _ := newTestModel(t)
	m.pushToast(console.SavedToast("x"))
	require.Equal(t, 1, m.toasts.Len())

	m = send(t, m, expireToastsMsg(testNow.Add(time.Second)))
	assert.Equal(t, 1, m.toasts.Len())

	m = send(t, m, expireToastsMsg(testNow.Add(m.toasts.TTL()+time.Second)))
	assert.Zero(t, m.toasts.Len())
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 96, m.resultView.Width)
	assert.NotEmpty(t, m.View())
}

func withRecentErrors(t *testing.T, m Model, fb *fakeBackend, n int) Model {
	t.Helper()
	errs := make([]domain.RecentError, n)
	for i := range errs {
		errs[i] = domain.RecentError{Agent: "seo", TaskType: "analyze_seo", Error: fmt.Sprintf("failure #%d", i+1), Timestamp: testNow}
	}
	fb.metrics.RecentErrors = errs
	require.NoError(t, m.console.RefreshMetrics(context.Background()))
	return send(t, m, MetricsUpdatedMsg{})
}

func TestRecentErrorsRenderEveryEntry(t *testing.T) {
	m, fb := newTestModel(t)
	m = withRecentErrors(t, m, fb, 8)

	out := m.renderErrors(200)
	assert.Contains(t, out, "Recent Errors (8)")
	for i := 1; i <= 8; i++ {
		assert.Contains(t, out, fmt.Sprintf("failure #%d", i))
	}
	assert.Contains(t, m.View(), "failure #8")
}

func TestRecentErrorsScrollWhenTerminalIsShort(t *testing.T) {
	m, fb := newTestModel(t)
	m = withRecentErrors(t, m, fb, 8)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})
	require.Equal(t, 5, m.errorsView.Height)

	out := m.renderErrors(120)
	assert.Contains(t, out, "Recent Errors (8)")
	assert.Contains(t, out, "failure #1")
	assert.NotContains(t, out, "failure #8")
	assert.Equal(t, 5, strings.Count(out, "failure #"))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	out = m.renderErrors(120)
	assert.Contains(t, out, "failure #8")
	assert.NotContains(t, out, "failure #1")
	assert.Equal(t, 5, strings.Count(out, "failure #"))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Contains(t, m.renderErrors(120), "failure #1")
}

func TestTestSurfacesHaveSeparateInvokers(t *testing.T) {
	m, _ := newTestModel(t)
	require.NotNil(t, m.quickInv)
	require.NotNil(t, m.detailInv)
	assert.NotSame(t, m.quickInv, m.detailInv)
	assert.NotSame(t, m.console.Invoker, m.quickInv)
}
