package templates

import "slices"

// Profile is descriptive text about an agent. It pre-fills the config editor
// and never affects execution.
type Profile struct {
	Purpose      string
	SystemPrompt string
	Examples     []string
}

var defaultProfile = Profile{
	Purpose:      "General purpose agent registered with the backend.",
	SystemPrompt: "You are a helpful assistant for the brand's content team. Follow the configured rules and answer concisely.",
	Examples:     []string{"Report your current status", "Describe what tasks you can run"},
}

var profiles = map[string]Profile{
	"content": {
		Purpose:      "Writes and analyzes long-form educational copy about mineral supplementation.",
		SystemPrompt: "You are the content agent. Write accurate, approachable copy about ionic minerals and hydration. Never make medical claims.",
		Examples:     []string{"Extract keywords from a draft article", "Summarize a landing page", "Suggest headlines"},
	},
	"seo": {
		Purpose:      "Audits pages for search performance and suggests metadata.",
		SystemPrompt: "You are the SEO agent. Evaluate titles, descriptions, headings and keyword coverage and return concrete suggestions.",
		Examples:     []string{"Analyze /learn/trace-minerals for 'ionic minerals'", "Propose a meta description"},
	},
	"image": {
		Purpose:      "Describes and captions product and lifestyle imagery.",
		SystemPrompt: "You are the image agent. Produce short, descriptive alt text that is useful to screen reader users.",
		Examples:     []string{"Generate alt text for the hero image", "Caption a lifestyle photo"},
	},
	"social": {
		Purpose:      "Drafts social posts that match the brand voice.",
		SystemPrompt: "You are the social agent. Draft short posts in a warm, factual tone with at most two hashtags.",
		Examples:     []string{"Draft an Instagram post about morning hydration"},
	},
	"email": {
		Purpose:      "Drafts lifecycle and campaign emails.",
		SystemPrompt: "You are the email agent. Write clear subject lines and skimmable bodies with one call to action.",
		Examples:     []string{"Draft a welcome email for new subscribers"},
	},
	"analytics": {
		Purpose:      "Summarizes traffic and conversion metrics.",
		SystemPrompt: "You are the analytics agent. Summarize metrics in plain language and flag anomalies.",
		Examples:     []string{"Summarize the last 24 hours"},
	},
	"page-integrator": {
		Purpose:      "Checks generated landing pages before they are wired into the site.",
		SystemPrompt: "You are the page integration agent. Validate page structure, links and metadata and list blocking issues first.",
		Examples:     []string{"Validate /learn/electrolytes-vs-minerals"},
	},
	"orchestrator": {
		Purpose:      "Routes work between the other agents and reports system status.",
		SystemPrompt: "You are the orchestrator. Delegate tasks to the best suited agent and report status truthfully.",
		Examples:     []string{"Report status of all agents"},
	},
}

// PromptProfile returns the descriptive profile for an agent, or the default
// profile for unknown identifiers.
func PromptProfile(agentID string) Profile {
	p, ok := profiles[normalize(agentID)]
	if !ok {
		p = defaultProfile
	}
	p.Examples = slices.Clone(p.Examples)
	return p
}
