// Package tui is the terminal agent console: a bubbletea program rendering
// the console package's caches and driving its invoker, editor and
// agent-detail modal.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/agentdeck/internal/console"
	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
)

type view int

const (
	viewMain view = iota
	viewTest
	viewDetail
)

// Options configures the console program.
type Options struct {
	Title    string // shown in the header, usually the backend URL
	ToastTTL time.Duration
	Logger   *logging.Logger
}

// Model is the bubbletea model. It owns only UI-local state; everything
// fetched from the backend lives in the console caches.
type Model struct {
	ctx     context.Context
	console *console.Console
	title   string
	log     *logging.Logger
	now     func() time.Time

	width    int
	height   int
	cursor   int
	loading  bool
	showHelp bool
	view     view

	spinner spinner.Model
	help    help.Model
	toasts  *console.ToastQueue

	// test modal
	testAgent   domain.Agent
	testResult  *domain.ExecutionResult
	testRunning bool
	quickInv    *console.Invoker

	// agent-detail modal
	detail       *console.DetailModal
	shown        domain.Agent // detail.Agent() copy, readable while a save is in flight
	field        int
	saving       bool
	running      bool
	detailInv    *console.Invoker
	promptArea   textarea.Model
	rulesArea    textarea.Model
	typeInput    textinput.Model
	inputArea    textarea.Model
	resultView   viewport.Model
	testViewport viewport.Model
	errorsView   viewport.Model
}

// New creates the console model. ctx bounds every request the model issues.
func New(ctx context.Context, c *console.Console, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorTitle)

	return Model{
		ctx:          ctx,
		console:      c,
		title:        opts.Title,
		log:          log.Sub("tui"),
		now:          time.Now,
		loading:      true,
		spinner:      sp,
		help:         help.New(),
		toasts:       console.NewToastQueue(opts.ToastTTL),
		detail:       c.NewDetailModal(),
		quickInv:     c.NewInvoker(),
		detailInv:    c.NewInvoker(),
		promptArea:   newArea("System prompt", 6),
		rulesArea:    newArea("One rule per line", 5),
		typeInput:    newTypeInput(),
		inputArea:    newArea("{}", 6),
		resultView:   viewport.New(60, 8),
		testViewport: viewport.New(60, 10),
		errorsView:   viewport.New(100, 5),
	}
}

func newArea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.SetWidth(60)
	return ta
}

func newTypeInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "type: "
	ti.Placeholder = domain.TaskTypeCustom
	ti.CharLimit = 64
	return ti
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, ensureAgentsCmd(m.ctx, m.console))
}

// selected returns the agent under the cursor.
func (m Model) selected() (domain.Agent, bool) {
	agents := m.console.Agents.Agents()
	if len(agents) == 0 {
		return domain.Agent{}, false
	}
	return agents[min(m.cursor, len(agents)-1)], true
}

func (m *Model) pushToast(t console.Toast) tea.Cmd {
	m.toasts.Push(t, m.now())
	return expireToastsCmd(m.toasts.TTL())
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w
	inner := max(min(w-10, 96), 30)
	for _, ta := range []*textarea.Model{&m.promptArea, &m.rulesArea, &m.inputArea} {
		ta.SetWidth(inner)
	}
	m.typeInput.Width = inner - len(m.typeInput.Prompt)
	m.resultView.Width = inner
	m.testViewport.Width = inner
	m.resultView.Height = max(h/4, 6)
	m.testViewport.Height = max(h/3, 6)
	m.errorsView.Width = w
	m.errorsView.Height = max(h/4, 3)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case agentsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("loading agents")
		}
		return m, nil

	case refreshedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.pushToast(console.Toast{Kind: console.ToastError, Title: "Refresh Failed", Message: msg.err.Error()})
		}
		return m, nil

	case MetricsUpdatedMsg:
		// The cache is read at render time.
		return m, nil

	case expireToastsMsg:
		m.toasts.Expire(time.Time(msg))
		return m, nil

	case healthCheckMsg:
		m.testRunning = false
		if m.view == viewTest && m.testAgent.ID == msg.agentID {
			r := msg.result
			m.testResult = &r
			m.testViewport.SetContent(r.Pretty())
			m.testViewport.GotoTop()
		}
		return m, m.pushToast(msg.toast)

	case customRunMsg:
		m.running = false
		if m.detail.IsOpen() && m.shown.ID == msg.agentID {
			r := msg.result
			m.detail.Test().Last = &r
			m.resultView.SetContent(r.Pretty())
			m.resultView.GotoTop()
		}
		return m, m.pushToast(msg.toast)

	case savedMsg:
		m.saving = false
		cmds := []tea.Cmd{m.pushToast(msg.toast)}
		if m.detail.IsOpen() {
			m.shown = m.detail.Agent()
		}
		if msg.err == nil {
			cmds = append(cmds, m.refocus(), ensureAgentsCmd(m.ctx, m.console))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if key.Matches(msg, ctrlC) {
			return m, tea.Quit
		}
		switch m.view {
		case viewTest:
			return m.updateTest(msg)
		case viewDetail:
			return m.updateDetail(msg)
		default:
			return m.updateMain(msg)
		}
	}

	if m.view == viewDetail {
		return m.forwardToFields(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.console.Agents.Agents())
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, refreshCmd(m.ctx, m.console)
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, keys.Test):
		if a, ok := m.selected(); ok {
			m.view = viewTest
			m.testAgent = a
			m.testResult = nil
			m.testViewport.SetContent("")
		}
	case key.Matches(msg, keys.Open):
		if a, ok := m.selected(); ok {
			return m, m.openDetail(a)
		}
	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDn):
		m.errorsView.SetContent(strings.Join(m.errorRows(m.viewWidth()), "\n"))
		var cmd tea.Cmd
		m.errorsView, cmd = m.errorsView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) viewWidth() int {
	if m.width == 0 {
		return 100
	}
	return m.width
}

func (m Model) updateTest(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		m.view = viewMain
		m.testAgent = domain.Agent{}
		m.testResult = nil
	case key.Matches(msg, keys.Run):
		if m.testRunning || m.quickInv.Busy() {
			return m, nil
		}
		m.testRunning = true
		return m, healthCheckCmd(m.ctx, m.quickInv, m.testAgent.ID)
	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDn), key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		var cmd tea.Cmd
		m.testViewport, cmd = m.testViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) openDetail(a domain.Agent) tea.Cmd {
	m.view = viewDetail
	m.detail.Open(a)
	m.shown = m.detail.Agent()
	m.field = 0
	test := m.detail.Test()
	m.typeInput.SetValue(test.TaskType)
	m.inputArea.SetValue(test.InputText)
	m.promptArea.SetValue("")
	m.rulesArea.SetValue("")
	m.resultView.SetContent("")
	return m.refocus()
}

func (m *Model) closeDetail() {
	m.detail.Close()
	m.view = viewMain
	m.shown = domain.Agent{}
	m.field = 0
	m.refocus()
}

func (m Model) editing() bool {
	return m.detail.Tab() == console.TabConfiguration && m.detail.Editor().State() == console.Editing
}

// refocus focuses the input matching the current tab and field and blurs
// the others.
func (m *Model) refocus() tea.Cmd {
	m.promptArea.Blur()
	m.rulesArea.Blur()
	m.typeInput.Blur()
	m.inputArea.Blur()
	if !m.detail.IsOpen() {
		return nil
	}
	switch {
	case m.editing():
		if m.field == 0 {
			return m.promptArea.Focus()
		}
		return m.rulesArea.Focus()
	case m.detail.Tab() == console.TabInteractiveTest:
		if m.field == 0 {
			return m.typeInput.Focus()
		}
		return m.inputArea.Focus()
	}
	return nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The editor belongs to the save command until it reports back.
	if m.saving {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Close):
		m.closeDetail()
		return m, nil
	case key.Matches(msg, keys.NextTab):
		m.detail.NextTab()
		m.field = 0
		return m, m.refocus()
	case key.Matches(msg, keys.PrevTab):
		m.detail.PrevTab()
		m.field = 0
		return m, m.refocus()
	}

	switch m.detail.Tab() {
	case console.TabConfiguration:
		return m.updateConfigTab(msg)
	case console.TabInteractiveTest:
		return m.updateTestTab(msg)
	}
	return m, nil
}

func (m Model) updateConfigTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.detail.Editor()
	if ed.State() == console.Viewing {
		if key.Matches(msg, keys.Edit) {
			ed.Begin()
			buf := ed.Buffer()
			m.promptArea.SetValue(buf.SystemPrompt)
			m.rulesArea.SetValue(ed.RulesText())
			m.field = 0
			return m, m.refocus()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Save):
		m.saving = true
		return m, saveCmd(m.ctx, ed, m.shown.ID)
	case key.Matches(msg, keys.Cancel):
		ed.Cancel()
		m.field = 0
		m.refocus()
		return m, nil
	case key.Matches(msg, keys.Field):
		m.field = 1 - m.field
		return m, m.refocus()
	}
	return m.forwardToFields(msg)
}

func (m Model) updateTestTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Execute):
		if m.running || m.detailInv.Busy() {
			return m, nil
		}
		test := m.detail.Test()
		if _, err := console.ParseTaskInput(test.InputText); err != nil {
			return m, m.pushToast(console.InvalidJSONToast(err))
		}
		m.running = true
		return m, customRunCmd(m.ctx, m.detailInv, m.shown.ID, test.TaskType, test.InputText)
	case key.Matches(msg, keys.Field):
		m.field = 1 - m.field
		return m, m.refocus()
	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDn):
		var cmd tea.Cmd
		m.resultView, cmd = m.resultView.Update(msg)
		return m, cmd
	}
	return m.forwardToFields(msg)
}

// forwardToFields hands msg to the focused input and copies its value into
// the editor buffer or the test form.
func (m Model) forwardToFields(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	var cmd tea.Cmd
	switch {
	case m.editing():
		ed := m.detail.Editor()
		if m.field == 0 {
			m.promptArea, cmd = m.promptArea.Update(msg)
			ed.SetPrompt(m.promptArea.Value())
		} else {
			m.rulesArea, cmd = m.rulesArea.Update(msg)
			ed.SetRulesText(m.rulesArea.Value())
		}
	case m.detail.IsOpen() && m.detail.Tab() == console.TabInteractiveTest:
		test := m.detail.Test()
		if m.field == 0 {
			m.typeInput, cmd = m.typeInput.Update(msg)
			test.TaskType = m.typeInput.Value()
		} else {
			m.inputArea, cmd = m.inputArea.Update(msg)
			test.InputText = m.inputArea.Value()
		}
	}
	return m, cmd
}

func (m Model) helpKeys() bindingSet {
	switch m.view {
	case viewTest:
		return bindingSet{keys.Run, keys.PageUp, keys.PageDn, keys.Close}
	case viewDetail:
		if m.saving {
			return bindingSet{}
		}
		set := bindingSet{keys.NextTab, keys.PrevTab}
		switch m.detail.Tab() {
		case console.TabConfiguration:
			if m.detail.Editor().State() == console.Editing {
				set = append(set, keys.Field, keys.Save, keys.Cancel)
			} else {
				set = append(set, keys.Edit)
			}
		case console.TabInteractiveTest:
			set = append(set, keys.Field, keys.Execute, keys.PageUp, keys.PageDn)
		}
		return append(set, keys.Close)
	default:
		return bindingSet{keys.Up, keys.Down, keys.Open, keys.Test, keys.Refresh, keys.PageUp, keys.PageDn, keys.Help, keys.Quit}
	}
}
