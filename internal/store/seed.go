package store

import "github.com/soyeahso/agentdeck/internal/domain"

// DefaultAgents is the roster a fresh backend starts with. System prompts
// are left empty except for the orchestrator so the console shows the
// prompt-profile defaults.
func DefaultAgents() []domain.Agent {
	return []domain.Agent{
		{
			ID:           "orchestrator",
			Name:         "Orchestrator",
			Description:  "Routes work between agents and reports system status.",
			Role:         domain.RoleCore,
			Capabilities: []string{"status", "route_task"},
			SystemPrompt: "You are the orchestrator. Delegate tasks to the best suited agent and report status truthfully.",
			Rules:        []string{"Never execute a task you cannot attribute to an agent."},
		},
		{
			ID:           "content",
			Name:         "Content Agent",
			Description:  "Writes and analyzes educational copy about mineral supplementation.",
			Role:         domain.RoleCore,
			Capabilities: []string{"extract_keywords", "summarize", "suggest_headlines"},
			Rules:        []string{"No medical claims.", "Cite a source for every statistic."},
		},
		{
			ID:           "seo",
			Name:         "SEO Agent",
			Description:  "Audits pages for search performance.",
			Capabilities: []string{"analyze_seo", "suggest_meta"},
		},
		{
			ID:           "image",
			Name:         "Image Agent",
			Description:  "Writes alt text and captions for imagery.",
			Capabilities: []string{"generate_alt_text"},
		},
		{
			ID:           "social",
			Name:         "Social Agent",
			Description:  "Drafts social posts in the brand voice.",
			Capabilities: []string{"draft_post"},
		},
		{
			ID:           "email",
			Name:         "Email Agent",
			Description:  "Drafts lifecycle and campaign emails.",
			Capabilities: []string{"draft_email"},
		},
		{
			ID:           "analytics",
			Name:         "Analytics Agent",
			Description:  "Summarizes execution and traffic metrics.",
			Capabilities: []string{"summarize_metrics"},
		},
		{
			ID:           "page-integrator",
			Name:         "Page Integrator",
			Description:  "Validates generated landing pages before publishing.",
			Capabilities: []string{"validate_page"},
		},
	}
}
