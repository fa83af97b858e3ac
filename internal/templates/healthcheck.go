// Package templates maps agent identifiers to canned smoke-test tasks and
// descriptive prompt profiles. Both tables are static; lookups are
// case-insensitive and fall back to an explicit default record.
package templates

import (
	"slices"
	"strings"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// defaultHealthCheck is used for any identifier not in the table.
var defaultHealthCheck = domain.TaskSpec{Type: domain.TaskTypeStatus, Input: map[string]any{}}

var healthChecks = map[string]domain.TaskSpec{
	"content": {
		Type:  "extract_keywords",
		Input: map[string]any{"text": "Ionic minerals are essential for hydration, muscle function and steady energy."},
	},
	"seo": {
		Type:  "analyze_seo",
		Input: map[string]any{"url": "/learn/trace-minerals", "keywords": []any{"ionic minerals", "electrolytes"}},
	},
	"image": {
		Type:  "generate_alt_text",
		Input: map[string]any{"imageUrl": "/images/hero-bottle.jpg", "context": "product hero on the home page"},
	},
	"social": {
		Type:  "draft_post",
		Input: map[string]any{"topic": "morning hydration routine", "platform": "instagram"},
	},
	"email": {
		Type:  "draft_email",
		Input: map[string]any{"subject": "Welcome to better hydration", "audience": "new subscribers"},
	},
	"analytics": {
		Type:  "summarize_metrics",
		Input: map[string]any{"hours": float64(24)},
	},
	"page-integrator": {
		Type:  "validate_page",
		Input: map[string]any{"path": "/learn/electrolytes-vs-minerals"},
	},
	"orchestrator": {
		Type:  domain.TaskTypeStatus,
		Input: map[string]any{},
	},
}

// HealthCheck returns the canonical smoke-test task for an agent.
// Unknown identifiers get {type:"status", input:{}}.
func HealthCheck(agentID string) domain.TaskSpec {
	if spec, ok := healthChecks[normalize(agentID)]; ok {
		return spec.Clone()
	}
	return defaultHealthCheck.Clone()
}

// Known lists the identifiers with a dedicated health check, sorted.
func Known() []string {
	ids := make([]string, 0, len(healthChecks))
	for id := range healthChecks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func normalize(agentID string) string {
	return strings.ToLower(strings.TrimSpace(agentID))
}
