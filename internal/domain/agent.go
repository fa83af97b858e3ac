// Package domain holds the types shared by the console, the API client and
// the reference backend.
package domain

import "slices"

// Agent roles. Role only affects the badge shown next to an agent.
const (
	RoleCore     = "core"
	RoleStandard = "standard"
)

// Agent status values reported by the backend.
const (
	AgentStatusActive   = "active"
	AgentStatusDisabled = "disabled"
)

// Agent is the client-side projection of a backend-registered agent.
// Capabilities and Rules are display and selection aids only; the backend
// decides whether a task type is valid for an agent.
type Agent struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"capabilities"`
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	Rules        []string `json:"rules"`
	Status       string   `json:"status,omitempty"`
}

// IsCore reports whether the agent carries the core badge.
func (a Agent) IsCore() bool {
	return a.Role == RoleCore
}

// DisplayName falls back to the identifier when no name is set.
func (a Agent) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Clone returns a copy that shares no slices with a.
func (a Agent) Clone() Agent {
	a.Capabilities = slices.Clone(a.Capabilities)
	a.Rules = slices.Clone(a.Rules)
	return a
}

// Config returns the editable part of the agent.
func (a Agent) Config() AgentConfig {
	return AgentConfig{SystemPrompt: a.SystemPrompt, Rules: slices.Clone(a.Rules)}
}

// AgentConfig is the per-agent configuration written through the PATCH endpoint.
type AgentConfig struct {
	SystemPrompt string   `json:"systemPrompt"`
	Rules        []string `json:"rules"`
}

// AgentList is the body of GET /api/ai/agents.
type AgentList struct {
	OK     bool    `json:"ok"`
	Agents []Agent `json:"agents"`
	Count  int     `json:"count"`
	Error  string  `json:"error,omitempty"`
}

// ConfigResponse is the body of PATCH /api/ai/agents/{id}/config.
type ConfigResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
