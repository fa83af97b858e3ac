package console

import (
	"context"
	"errors"
	"strings"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/templates"
)

// ErrNotEditing is returned by edit operations outside the Editing state.
var ErrNotEditing = errors.New("config editor is not in edit mode")

// EditorState is the Configuration tab sub-state.
type EditorState int

const (
	Viewing EditorState = iota
	Editing
)

func (s EditorState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// ConfigSaver persists an agent's configuration.
type ConfigSaver interface {
	SaveConfig(ctx context.Context, agentID string, cfg domain.AgentConfig) (domain.ConfigResponse, error)
}

// Editor is the read-modify-write cycle for one agent's configuration. The
// edit buffer is independent of the displayed values until Save succeeds.
type Editor struct {
	saver  ConfigSaver
	cache  *AgentCache
	agent  domain.Agent
	state  EditorState
	buffer domain.AgentConfig
}

// NewEditor creates an editor. cache may be nil.
func NewEditor(saver ConfigSaver, cache *AgentCache) *Editor {
	return &Editor{saver: saver, cache: cache}
}

// Load shows agent in the Viewing state, dropping any edit buffer.
func (e *Editor) Load(agent domain.Agent) {
	e.agent = agent.Clone()
	e.state = Viewing
	e.buffer = domain.AgentConfig{}
}

// Agent returns the agent as currently displayed.
func (e *Editor) Agent() domain.Agent { return e.agent.Clone() }

// State returns the current sub-state.
func (e *Editor) State() EditorState { return e.state }

// Displayed returns the saved configuration as shown in the Viewing state.
// An empty system prompt is shown as the agent's prompt-profile default.
func (e *Editor) Displayed() domain.AgentConfig {
	return displayConfig(e.agent)
}

// Buffer returns a copy of the edit buffer.
func (e *Editor) Buffer() domain.AgentConfig {
	return domain.AgentConfig{SystemPrompt: e.buffer.SystemPrompt, Rules: append([]string(nil), e.buffer.Rules...)}
}

// RulesText renders the buffer's rules one per line.
func (e *Editor) RulesText() string { return JoinRules(e.buffer.Rules) }

// Begin enters Editing with a snapshot of the displayed values.
func (e *Editor) Begin() {
	e.buffer = displayConfig(e.agent)
	e.state = Editing
}

// SetPrompt replaces the buffered system prompt.
func (e *Editor) SetPrompt(text string) error {
	if e.state != Editing {
		return ErrNotEditing
	}
	e.buffer.SystemPrompt = text
	return nil
}

// SetRulesText replaces the buffered rules from newline-delimited text.
// Blank lines are dropped on every edit.
func (e *Editor) SetRulesText(text string) error {
	if e.state != Editing {
		return ErrNotEditing
	}
	e.buffer.Rules = SplitRules(text)
	return nil
}

// Cancel discards the buffer. Displayed values are untouched.
func (e *Editor) Cancel() {
	e.buffer = domain.AgentConfig{}
	e.state = Viewing
}

// Save submits the buffer. Only an ok:true response merges the buffer into
// the displayed agent and the cached record, returns to Viewing and
// invalidates the agent cache. Any failure leaves the buffer editable and
// returns a "Save Failed" toast.
func (e *Editor) Save(ctx context.Context) (Toast, error) {
	if e.state != Editing {
		return SaveFailedToast(ErrNotEditing.Error()), ErrNotEditing
	}
	cfg := e.Buffer()
	if cfg.Rules == nil {
		cfg.Rules = []string{}
	}

	resp, err := e.saver.SaveConfig(ctx, e.agent.ID, cfg)
	if err != nil {
		return SaveFailedToast(err.Error()), err
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "backend rejected the configuration"
		}
		return SaveFailedToast(msg), errors.New(msg)
	}

	e.agent = ApplyConfig(e.agent, cfg)
	if e.cache != nil {
		e.cache.Update(e.agent.ID, func(a domain.Agent) domain.Agent { return ApplyConfig(a, cfg) })
		e.cache.Invalidate()
	}
	e.buffer = domain.AgentConfig{}
	e.state = Viewing
	return SavedToast(e.agent.DisplayName()), nil
}

// ApplyConfig returns agent with cfg merged in. The result carries exactly
// the prompt and rules of cfg.
func ApplyConfig(agent domain.Agent, cfg domain.AgentConfig) domain.Agent {
	out := agent.Clone()
	out.SystemPrompt = cfg.SystemPrompt
	out.Rules = append([]string{}, cfg.Rules...)
	return out
}

// SplitRules turns newline-delimited text into rules, dropping blank and
// whitespace-only lines. Non-blank lines are kept verbatim.
func SplitRules(text string) []string {
	rules := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rules = append(rules, line)
	}
	return rules
}

// JoinRules is the inverse of SplitRules for rule lists without blank entries.
func JoinRules(rules []string) string {
	return strings.Join(rules, "\n")
}

func displayConfig(agent domain.Agent) domain.AgentConfig {
	cfg := agent.Config()
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = templates.PromptProfile(agent.ID).SystemPrompt
	}
	if cfg.Rules == nil {
		cfg.Rules = []string{}
	}
	return cfg
}
