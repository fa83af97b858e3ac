// Package executor runs tasks for the reference backend: it resolves the
// agent, dispatches to a handler by task type, records the run and emits an
// execution_completed hook.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/hooks"
	"github.com/soyeahso/agentdeck/internal/llm"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/store"
)

// Endpoint-level errors. The gateway answers these with {"ok": false}.
var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrInvalidTask   = errors.New("invalid task")
)

// Request is what a handler sees.
type Request struct {
	Agent domain.Agent
	Task  domain.Task
}

// Output is a handler's successful result. Tokens feed the cost estimate.
type Output struct {
	Data   any
	Tokens int
}

// Handler runs one task type. A returned error is an agent-level failure:
// the request itself succeeded but the agent could not do the work.
type Handler func(ctx context.Context, req Request) (Output, error)

// Options configures an Executor.
type Options struct {
	LLM             llm.Client // nil disables LLM-backed task types
	CostPer1kTokens float64
	Logger          *logging.Logger
}

// Executor dispatches tasks to handlers.
type Executor struct {
	agents *store.AgentStore
	execs  *store.ExecutionStore
	hooks  *hooks.Manager
	llm    llm.Client
	cost   float64
	log    *logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	handlers map[string]Handler
}

// New creates an executor with the built-in handlers registered.
func New(agents *store.AgentStore, execs *store.ExecutionStore, hm *hooks.Manager, opts Options) *Executor {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	e := &Executor{
		agents:   agents,
		execs:    execs,
		hooks:    hm,
		llm:      opts.LLM,
		cost:     opts.CostPer1kTokens,
		log:      log.Sub("executor"),
		now:      time.Now,
		handlers: make(map[string]Handler),
	}
	e.registerBuiltins()
	return e
}

// Register adds or replaces the handler for a task type.
func (e *Executor) Register(taskType string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[taskType] = h
}

// HasLLM reports whether LLM-backed task types are available.
func (e *Executor) HasLLM() bool { return e.llm != nil }

func (e *Executor) handlerFor(taskType string) (Handler, bool) {
	e.mu.RLock()
	h, ok := e.handlers[taskType]
	e.mu.RUnlock()
	if ok {
		return h, true
	}
	if e.llm != nil {
		return e.complete, true
	}
	return nil, false
}

// Execute runs req. Endpoint-level problems (unknown agent, malformed task,
// storage failure) are returned as errors; agent-level failures come back
// as a response with Result.Success=false.
func (e *Executor) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.ExecuteResponse, error) {
	if strings.TrimSpace(req.AgentName) == "" {
		return domain.ExecuteResponse{}, fmt.Errorf("%w: agentName is required", ErrInvalidTask)
	}
	task := req.Task
	if strings.TrimSpace(task.Type) == "" {
		return domain.ExecuteResponse{}, fmt.Errorf("%w: task.type is required", ErrInvalidTask)
	}
	if task.ID == "" {
		task.ID = domain.NewTaskID(e.now())
	}
	if task.Input == nil {
		task.Input = map[string]any{}
	}

	agent, err := e.agents.Resolve(ctx, req.AgentName)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ExecuteResponse{}, fmt.Errorf("%w: %s", ErrAgentNotFound, req.AgentName)
	}
	if err != nil {
		return domain.ExecuteResponse{}, err
	}

	start := e.now()
	out, runErr := e.run(ctx, agent, task)
	latency := e.now().Sub(start)

	outcome := &domain.AgentOutcome{Success: runErr == nil}
	if runErr != nil {
		outcome.Error = runErr.Error()
	} else if out.Data != nil {
		data, err := json.Marshal(out.Data)
		if err != nil {
			outcome.Success = false
			outcome.Error = fmt.Sprintf("encoding result: %v", err)
		} else {
			outcome.Data = data
		}
	}

	rec := &store.Execution{
		AgentID:   agent.ID,
		TaskID:    task.ID,
		TaskType:  task.Type,
		Success:   outcome.Success,
		Error:     outcome.Error,
		LatencyMs: float64(latency.Microseconds()) / 1000,
		CostUSD:   float64(out.Tokens) / 1000 * e.cost,
		CreatedAt: start,
	}
	if err := e.execs.Record(ctx, rec); err != nil {
		e.log.Error().Err(err).Str("task", task.ID).Msg("failed to record execution")
	}

	e.log.Info().
		Str("agent", agent.ID).
		Str("task", task.ID).
		Str("type", task.Type).
		Bool("success", outcome.Success).
		Dur("latency", latency).
		Msg("task executed")

	if e.hooks != nil {
		e.hooks.Emit(ctx, hooks.EventExecutionCompleted, map[string]any{
			"agent":     agent.ID,
			"taskId":    task.ID,
			"taskType":  task.Type,
			"success":   outcome.Success,
			"error":     outcome.Error,
			"latencyMs": rec.LatencyMs,
			"costUsd":   rec.CostUSD,
		})
	}

	return domain.ExecuteResponse{OK: true, Result: outcome}, nil
}

func (e *Executor) run(ctx context.Context, agent domain.Agent, task domain.Task) (out Output, err error) {
	if agent.Status == domain.AgentStatusDisabled {
		return Output{}, errors.New("agent is disabled")
	}
	h, ok := e.handlerFor(task.Type)
	if !ok {
		return Output{}, fmt.Errorf("unsupported task type %q and no LLM provider is configured", task.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("type", task.Type).Msg("handler panicked")
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, Request{Agent: agent, Task: task})
}
