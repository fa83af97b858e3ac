package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Test    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding

	Close   key.Binding
	Run     key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Edit    key.Binding
	Save    key.Binding
	Cancel  key.Binding
	Field   key.Binding
	Execute key.Binding
	PageUp  key.Binding
	PageDn  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "details")),
	Test:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Close:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Run:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "run health check")),
	NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Cancel:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cancel edit")),
	Field:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next field")),
	Execute: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run task")),
	PageUp:  key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDn:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
}

// bindingSet adapts a flat binding list to help.KeyMap.
type bindingSet []key.Binding

func (b bindingSet) ShortHelp() []key.Binding  { return b }
func (b bindingSet) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

var ctrlC = key.NewBinding(key.WithKeys("ctrl+c"))
