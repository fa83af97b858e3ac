package console

import (
	"errors"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/templates"
)

// ErrModalClosed is returned by modal operations while no agent is open.
var ErrModalClosed = errors.New("agent detail modal is closed")

// Tab is a section of the agent-detail modal.
type Tab int

const (
	TabOverview Tab = iota
	TabConfiguration
	TabInteractiveTest
	TabHistory
)

// Tabs lists the modal tabs in display order.
var Tabs = []Tab{TabOverview, TabConfiguration, TabInteractiveTest, TabHistory}

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabConfiguration:
		return "Configuration"
	case TabInteractiveTest:
		return "Interactive Test"
	case TabHistory:
		return "History"
	default:
		return "Unknown"
	}
}

// HistoryPlaceholder is what the History tab shows.
const HistoryPlaceholder = "Execution history is not available yet."

// TestForm is the Interactive Test tab's transient state.
type TestForm struct {
	TaskType  string
	InputText string
	Last      *domain.ExecutionResult
}

// DetailModal is the agent-detail modal state machine:
// Closed -> Open(Overview), free tab switches while open, Configuration
// delegating Viewing/Editing to the Editor, and Close discarding all
// transient state from anywhere.
type DetailModal struct {
	open   bool
	tab    Tab
	editor *Editor
	test   TestForm
}

// NewDetailModal creates a closed modal whose editor saves through saver.
func NewDetailModal(saver ConfigSaver, cache *AgentCache) *DetailModal {
	return &DetailModal{editor: NewEditor(saver, cache)}
}

// Open shows agent on the Overview tab with fresh edit and test state.
func (m *DetailModal) Open(agent domain.Agent) {
	m.open = true
	m.tab = TabOverview
	m.editor.Load(agent)
	m.test = NewTestForm(agent)
}

// Close returns to Closed and discards edit and test state.
func (m *DetailModal) Close() {
	m.open = false
	m.tab = TabOverview
	m.editor.Load(domain.Agent{})
	m.test = TestForm{}
}

// IsOpen reports whether the modal is showing an agent.
func (m *DetailModal) IsOpen() bool { return m.open }

// Tab returns the selected tab.
func (m *DetailModal) Tab() Tab { return m.tab }

// Agent returns the agent being shown, including saved edits.
func (m *DetailModal) Agent() domain.Agent { return m.editor.Agent() }

// Editor returns the Configuration tab editor.
func (m *DetailModal) Editor() *Editor { return m.editor }

// Test returns the Interactive Test form.
func (m *DetailModal) Test() *TestForm { return &m.test }

// SelectTab switches tabs. Switching is free in every open state; an edit in
// progress survives a tab switch.
func (m *DetailModal) SelectTab(t Tab) error {
	if !m.open {
		return ErrModalClosed
	}
	if t < TabOverview || t > TabHistory {
		return errors.New("unknown tab")
	}
	m.tab = t
	return nil
}

// NextTab moves one tab right, wrapping around.
func (m *DetailModal) NextTab() {
	if m.open {
		m.tab = Tabs[(int(m.tab)+1)%len(Tabs)]
	}
}

// PrevTab moves one tab left, wrapping around.
func (m *DetailModal) PrevTab() {
	if m.open {
		m.tab = Tabs[(int(m.tab)+len(Tabs)-1)%len(Tabs)]
	}
}

// NewTestForm pre-fills the Interactive Test tab: the first capability (or
// custom) as the task type and the health-check input as JSON.
func NewTestForm(agent domain.Agent) TestForm {
	return TestForm{
		TaskType:  DefaultTaskType(agent),
		InputText: FormatTaskInput(templates.HealthCheck(agent.ID).Input),
	}
}

// DefaultTaskType is the first declared capability, or custom.
func DefaultTaskType(agent domain.Agent) string {
	if len(agent.Capabilities) > 0 && agent.Capabilities[0] != "" {
		return agent.Capabilities[0]
	}
	return domain.TaskTypeCustom
}
