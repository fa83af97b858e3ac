package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/templates"
)

// ErrInvalidJSON is returned when task input text is not a JSON object.
var ErrInvalidJSON = errors.New("invalid JSON")

// Executor submits a task to an agent.
type Executor interface {
	Execute(ctx context.Context, agentID string, task domain.Task) (domain.ExecuteResponse, []byte, error)
}

// Invoker runs tasks against agents and normalizes every outcome into a
// domain.ExecutionResult. It performs one request per call: no retries, and
// every call gets a fresh task ID.
type Invoker struct {
	exec Executor
	busy atomic.Bool
	now  func() time.Time
	log  *logging.Logger
}

// NewInvoker creates an invoker backed by exec.
func NewInvoker(exec Executor, log *logging.Logger) *Invoker {
	if log == nil {
		log = logging.Discard()
	}
	return &Invoker{exec: exec, now: time.Now, log: log.Sub("invoker")}
}

// Busy reports whether a request is in flight. It is advisory: the UI reads
// it to disable actions, but nothing prevents a second submission.
func (i *Invoker) Busy() bool { return i.busy.Load() }

// Execute submits spec to agentID and waits for the outcome.
func (i *Invoker) Execute(ctx context.Context, agentID string, spec domain.TaskSpec) domain.ExecutionResult {
	i.busy.Store(true)
	defer i.busy.Store(false)

	task := domain.NewTask(spec, i.now())
	start := time.Now()
	resp, raw, err := i.exec.Execute(ctx, agentID, task)

	var result domain.ExecutionResult
	if err != nil {
		result = domain.TransportFailure(err)
	} else {
		result = domain.ResultFromResponse(resp, raw)
	}
	result.Duration = time.Since(start)

	i.log.Info().
		Str("agent", agentID).
		Str("task", task.ID).
		Str("type", task.Type).
		Str("outcome", result.Outcome().String()).
		Dur("duration", result.Duration).
		Msg("task executed")
	return result
}

// RunHealthCheck runs the agent's templated health-check task.
func (i *Invoker) RunHealthCheck(ctx context.Context, agentID string) (domain.ExecutionResult, Toast) {
	r := i.Execute(ctx, agentID, templates.HealthCheck(agentID))
	return r, ToastFor(r)
}

// RunCustom parses inputText and runs it as taskType. Malformed input
// short-circuits with an "Invalid JSON" toast and ErrInvalidJSON: no request
// is made and the busy flag is never set.
func (i *Invoker) RunCustom(ctx context.Context, agentID, taskType, inputText string) (domain.ExecutionResult, Toast, error) {
	input, err := ParseTaskInput(inputText)
	if err != nil {
		return domain.ExecutionResult{}, InvalidJSONToast(err), err
	}
	if strings.TrimSpace(taskType) == "" {
		taskType = domain.TaskTypeCustom
	}
	r := i.Execute(ctx, agentID, domain.TaskSpec{Type: strings.TrimSpace(taskType), Input: input})
	return r, ToastFor(r), nil
}

// ParseTaskInput decodes operator-supplied task input. Only JSON objects are
// accepted since the endpoint expects task.input to be an object.
func ParseTaskInput(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: task input must be a JSON object", ErrInvalidJSON)
	}
	return obj, nil
}

// FormatTaskInput renders an input object as indented JSON for editing.
func FormatTaskInput(input map[string]any) string {
	if input == nil {
		input = map[string]any{}
	}
	out, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
