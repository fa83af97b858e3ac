package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/llm"
	"github.com/soyeahso/agentdeck/internal/templates"
)

// systemPrompt is the agent's configured prompt, or its profile default,
// followed by its rules.
func systemPrompt(agent domain.Agent) string {
	prompt := agent.SystemPrompt
	if prompt == "" {
		prompt = templates.PromptProfile(agent.ID).SystemPrompt
	}
	if len(agent.Rules) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nRules:")
	for _, r := range agent.Rules {
		b.WriteString("\n- ")
		b.WriteString(r)
	}
	return b.String()
}

// userMessage renders a task for the model. Chat tasks send input.message
// verbatim when present.
func userMessage(task domain.Task) string {
	if task.Type == domain.TaskTypeChat {
		if msg, ok := task.Input["message"].(string); ok && msg != "" {
			return msg
		}
	}
	input, _ := json.MarshalIndent(task.Input, "", "  ")
	return fmt.Sprintf("Task type: %s\nInput:\n%s", task.Type, input)
}

// complete runs a task through the configured LLM.
func (e *Executor) complete(ctx context.Context, req Request) (Output, error) {
	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		System:   systemPrompt(req.Agent),
		Messages: []llm.Message{{Role: llm.RoleUser, Content: userMessage(req.Task)}},
	})
	if err != nil {
		return Output{}, err
	}
	return Output{
		Data: map[string]any{
			"content": resp.Content,
			"model":   resp.Model,
			"usage":   resp.Usage,
		},
		Tokens: resp.Usage.Total(),
	}, nil
}
