package console

import (
	"sync"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// Snapshot is a point-in-time copy of a cache entry.
type Snapshot[T any] struct {
	Value     T
	Loaded    bool      // at least one fetch has succeeded
	Err       error     // error of the most recent completed fetch, if it failed
	FetchedAt time.Time // time of the last successful fetch
	Invalid   bool      // marked stale; the next reader should refetch
}

// Cache holds the last completed response of one endpoint. Fetches call
// Begin before the request and Apply after it. Without the stale guard the
// last fetch to complete wins; with it, a fetch that began before the most
// recently applied one is dropped.
type Cache[T any] struct {
	mu      sync.RWMutex
	guard   bool
	seq     uint64
	applied uint64
	snap    Snapshot[T]
	now     func() time.Time
}

// NewCache creates an empty cache.
func NewCache[T any](staleGuard bool) *Cache[T] {
	return &Cache[T]{guard: staleGuard, now: time.Now}
}

// Begin reserves a sequence number for a fetch about to start.
func (c *Cache[T]) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Apply records the outcome of the fetch started with seq. On error the
// previous value is kept and only Err changes. It reports whether the
// outcome was applied.
func (c *Cache[T]) Apply(seq uint64, value T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.guard && seq < c.applied {
		return false
	}
	c.applied = seq

	if err != nil {
		c.snap.Err = err
		return true
	}
	c.snap.Value = value
	c.snap.Loaded = true
	c.snap.Err = nil
	c.snap.Invalid = false
	c.snap.FetchedAt = c.now()
	return true
}

// Snapshot returns the current state.
func (c *Cache[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Invalidate marks the cached value stale without discarding it.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.snap.Invalid = true
	c.mu.Unlock()
}

// NeedsFetch reports whether the cache is empty or was invalidated.
func (c *Cache[T]) NeedsFetch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.snap.Loaded || c.snap.Invalid
}

// AgentCache caches the agent registry and supports in-place record updates.
type AgentCache struct {
	*Cache[[]domain.Agent]
}

// NewAgentCache creates an empty agent cache.
func NewAgentCache(staleGuard bool) *AgentCache {
	return &AgentCache{Cache: NewCache[[]domain.Agent](staleGuard)}
}

// Agents returns a copy of the cached agents.
func (c *AgentCache) Agents() []domain.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Agent, len(c.snap.Value))
	for i, a := range c.snap.Value {
		out[i] = a.Clone()
	}
	return out
}

// Find returns a copy of the agent with the given ID.
func (c *AgentCache) Find(id string) (domain.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.snap.Value {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return domain.Agent{}, false
}

// Update replaces the cached record for id with fn's result. The slice is
// copied so snapshots taken earlier are unaffected.
func (c *AgentCache) Update(id string, fn func(domain.Agent) domain.Agent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, a := range c.snap.Value {
		if a.ID != id {
			continue
		}
		next := make([]domain.Agent, len(c.snap.Value))
		copy(next, c.snap.Value)
		next[i] = fn(a.Clone())
		c.snap.Value = next
		return true
	}
	return false
}

// MetricsCache caches the dashboard rollup.
type MetricsCache = Cache[domain.DashboardMetrics]

// NewMetricsCache creates an empty metrics cache.
func NewMetricsCache(staleGuard bool) *MetricsCache {
	return NewCache[domain.DashboardMetrics](staleGuard)
}
