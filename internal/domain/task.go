package domain

import (
	"fmt"
	"time"
)

// Task type sentinels that are valid for any agent.
const (
	TaskTypeChat   = "chat"
	TaskTypeCustom = "custom"
	TaskTypeStatus = "status"
)

// Task is a single unit of work submitted to exactly one agent. It is built
// per operator action, sent once and discarded.
type Task struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Input map[string]any `json:"input"`
}

// TaskSpec is a task without an identity: a type and its input payload.
type TaskSpec struct {
	Type  string         `json:"type"`
	Input map[string]any `json:"input"`
}

// Clone deep-copies the spec so callers can edit the input freely.
func (s TaskSpec) Clone() TaskSpec {
	return TaskSpec{Type: s.Type, Input: cloneObject(s.Input)}
}

// NewTaskID derives a task ID from the clock. Uniqueness is best-effort.
func NewTaskID(now time.Time) string {
	return fmt.Sprintf("task-%d", now.UnixMilli())
}

// NewTask stamps a spec with a fresh ID.
func NewTask(spec TaskSpec, now time.Time) Task {
	input := cloneObject(spec.Input)
	if input == nil {
		input = map[string]any{}
	}
	return Task{ID: NewTaskID(now), Type: spec.Type, Input: input}
}

// ExecuteRequest is the body of POST /api/ai/agents/execute.
type ExecuteRequest struct {
	AgentName string `json:"agentName"`
	Task      Task   `json:"task"`
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneObject(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
