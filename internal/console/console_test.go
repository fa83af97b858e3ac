package console

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	agents     []domain.Agent
	agentsErr  error
	metrics    domain.DashboardMetrics
	metricsErr error
	hours      []int

	saveResp domain.ConfigResponse
	saveErr  error
	saved    []domain.AgentConfig

	execResp  domain.ExecuteResponse
	execRaw   []byte
	execErr   error
	execCalls []domain.Task
	onExecute func()
}

func (f *fakeBackend) ListAgents(ctx context.Context) (domain.AgentList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.agentsErr != nil {
		return domain.AgentList{}, f.agentsErr
	}
	return domain.AgentList{OK: true, Agents: f.agents, Count: len(f.agents)}, nil
}

func (f *fakeBackend) DashboardMetrics(ctx context.Context, hours int) (domain.DashboardMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hours = append(f.hours, hours)
	return f.metrics, f.metricsErr
}

func (f *fakeBackend) SaveConfig(ctx context.Context, agentID string, cfg domain.AgentConfig) (domain.ConfigResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, cfg)
	return f.saveResp, f.saveErr
}

func (f *fakeBackend) Execute(ctx context.Context, agentID string, task domain.Task) (domain.ExecuteResponse, []byte, error) {
	if f.onExecute != nil {
		f.onExecute()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls = append(f.execCalls, task)
	return f.execResp, f.execRaw, f.execErr
}

func (f *fakeBackend) respond(raw string) {
	f.execRaw = []byte(raw)
	f.execResp = domain.ExecuteResponse{}
	_ = json.Unmarshal(f.execRaw, &f.execResp)
}

func sampleAgents() []domain.Agent {
	return []domain.Agent{
		{ID: "content", Name: "Content Agent", Role: domain.RoleCore, Capabilities: []string{"extract_keywords", "draft_article"}, SystemPrompt: "You write copy.", Rules: []string{"be brief"}},
		{ID: "seo", Name: "SEO Agent", Capabilities: []string{"analyze_seo"}},
	}
}

func TestRefreshAgentsReplacesCache(t *testing.T) {
	b := &fakeBackend{agents: sampleAgents()}
	c := New(b, Options{})

	require.NoError(t, c.RefreshAgents(context.Background()))
	snap := c.Agents.Snapshot()
	assert.True(t, snap.Loaded)
	assert.Len(t, snap.Value, 2)
	assert.False(t, c.Agents.NeedsFetch())

	b.agents = sampleAgents()[:1]
	require.NoError(t, c.RefreshAgents(context.Background()))
	assert.Len(t, c.Agents.Agents(), 1)
}

func TestRefreshAgentsFailureKeepsPrevious(t *testing.T) {
	b := &fakeBackend{agents: sampleAgents()}
	c := New(b, Options{})
	require.NoError(t, c.RefreshAgents(context.Background()))

	b.agentsErr = errors.New("connection refused")
	err := c.RefreshAgents(context.Background())
	require.Error(t, err)

	snap := c.Agents.Snapshot()
	assert.Len(t, snap.Value, 2)
	assert.EqualError(t, snap.Err, "connection refused")
	assert.True(t, snap.Loaded)
}

func TestRefreshMetricsUsesWindow(t *testing.T) {
	b := &fakeBackend{metrics: domain.DashboardMetrics{MetricsSummary: domain.MetricsSummary{TotalExecutions: 42}}}
	c := New(b, Options{MetricsHours: 6})

	require.NoError(t, c.RefreshMetrics(context.Background()))
	assert.Equal(t, []int{6}, b.hours)
	assert.Equal(t, int64(42), c.Metrics.Snapshot().Value.TotalExecutions)
}

func TestDefaultMetricsWindow(t *testing.T) {
	c := New(&fakeBackend{}, Options{})
	assert.Equal(t, 24, c.MetricsHours())
}

func TestRefreshJoinsErrors(t *testing.T) {
	b := &fakeBackend{agentsErr: errors.New("agents down"), metricsErr: errors.New("metrics down")}
	c := New(b, Options{})

	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agents down")
	assert.Contains(t, err.Error(), "metrics down")
}

func TestEnsureAgentsAfterInvalidate(t *testing.T) {
	b := &fakeBackend{agents: sampleAgents()}
	c := New(b, Options{})
	require.NoError(t, c.EnsureAgents(context.Background()))

	b.agents = nil
	require.NoError(t, c.EnsureAgents(context.Background()))
	assert.Len(t, c.Agents.Agents(), 2, "valid cache is not refetched")

	c.Agents.Invalidate()
	require.NoError(t, c.EnsureAgents(context.Background()))
	assert.Empty(t, c.Agents.Agents())
}

func TestMetricsPollerFetchesImmediately(t *testing.T) {
	b := &fakeBackend{}
	c := New(b, Options{PollInterval: time.Hour})

	var updates atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.MetricsPoller(func() { updates.Add(1) }).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return updates.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), updates.Load())
}

func TestPollerTicks(t *testing.T) {
	var n atomic.Int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) error {
		n.Add(1)
		return errors.New("ignored")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPollerZeroIntervalRunsOnce(t *testing.T) {
	var n int
	p := NewPoller(0, func(ctx context.Context) error { n++; return nil }, nil)
	p.Run(context.Background())
	assert.Equal(t, 1, n)
}
