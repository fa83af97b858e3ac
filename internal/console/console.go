// Package console holds the agent console's state and operations, free of
// any rendering: cached registry and metrics, the metrics poller, the task
// invoker, the config editor and the agent-detail modal state machine.
package console

import (
	"context"
	"errors"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
)

// Backend is everything the console needs from the agent API.
// *api.Client satisfies it.
type Backend interface {
	ListAgents(ctx context.Context) (domain.AgentList, error)
	DashboardMetrics(ctx context.Context, hours int) (domain.DashboardMetrics, error)
	ConfigSaver
	Executor
}

// Options configures a Console.
type Options struct {
	MetricsHours int
	PollInterval time.Duration
	StaleGuard   bool
	Logger       *logging.Logger
}

// Console ties the caches, poller and invoker to one backend.
type Console struct {
	backend Backend
	hours   int
	every   time.Duration
	log     *logging.Logger

	Agents  *AgentCache
	Metrics *MetricsCache
	Invoker *Invoker
}

// New creates a console for backend.
func New(backend Backend, opts Options) *Console {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	if opts.MetricsHours <= 0 {
		opts.MetricsHours = 24
	}
	return &Console{
		backend: backend,
		hours:   opts.MetricsHours,
		every:   opts.PollInterval,
		log:     log.Sub("console"),
		Agents:  NewAgentCache(opts.StaleGuard),
		Metrics: NewMetricsCache(opts.StaleGuard),
		Invoker: NewInvoker(backend, log),
	}
}

// NewInvoker returns an invoker with its own busy flag on the same backend.
// Each UI surface that runs tasks gets one, so a request in flight on one
// surface does not disable the other.
func (c *Console) NewInvoker() *Invoker {
	return NewInvoker(c.backend, c.log)
}

// MetricsHours is the dashboard window.
func (c *Console) MetricsHours() int { return c.hours }

// RefreshAgents fetches the registry. On failure the cache keeps its last
// value and records the error.
func (c *Console) RefreshAgents(ctx context.Context) error {
	seq := c.Agents.Begin()
	list, err := c.backend.ListAgents(ctx)
	c.Agents.Apply(seq, list.Agents, err)
	if err != nil {
		c.log.Warn().Err(err).Msg("agent registry fetch failed")
		return err
	}
	c.log.Debug().Int("count", len(list.Agents)).Msg("agent registry refreshed")
	return nil
}

// EnsureAgents fetches the registry only when it is empty or invalidated.
func (c *Console) EnsureAgents(ctx context.Context) error {
	if !c.Agents.NeedsFetch() {
		return nil
	}
	return c.RefreshAgents(ctx)
}

// RefreshMetrics fetches the dashboard rollup.
func (c *Console) RefreshMetrics(ctx context.Context) error {
	seq := c.Metrics.Begin()
	m, err := c.backend.DashboardMetrics(ctx, c.hours)
	c.Metrics.Apply(seq, m, err)
	if err != nil {
		c.log.Warn().Err(err).Msg("metrics fetch failed")
	}
	return err
}

// Refresh reloads both the registry and the metrics.
func (c *Console) Refresh(ctx context.Context) error {
	return errors.Join(c.RefreshAgents(ctx), c.RefreshMetrics(ctx))
}

// MetricsPoller returns a poller that refreshes metrics and then calls
// onUpdate, if set, after every attempt.
func (c *Console) MetricsPoller(onUpdate func()) *Poller {
	return NewPoller(c.every, func(ctx context.Context) error {
		err := c.RefreshMetrics(ctx)
		if onUpdate != nil {
			onUpdate()
		}
		return err
	}, c.log)
}

// NewDetailModal creates a modal whose saves go to this console's backend
// and cache.
func (c *Console) NewDetailModal() *DetailModal {
	return NewDetailModal(c.backend, c.Agents)
}
