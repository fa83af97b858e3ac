package console

import (
	"errors"
	"testing"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCacheLastCompletedWins(t *testing.T) {
	c := NewCache[int](false)
	first := c.Begin()
	second := c.Begin()

	assert.True(t, c.Apply(second, 2, nil))
	assert.True(t, c.Apply(first, 1, nil))
	assert.Equal(t, 1, c.Snapshot().Value)
}

func TestCacheStaleGuardDropsOlder(t *testing.T) {
	c := NewCache[int](true)
	first := c.Begin()
	second := c.Begin()

	assert.True(t, c.Apply(second, 2, nil))
	assert.False(t, c.Apply(first, 1, nil))
	assert.Equal(t, 2, c.Snapshot().Value)
}

func TestCacheErrorKeepsValue(t *testing.T) {
	c := NewCache[string](false)
	c.Apply(c.Begin(), "v1", nil)
	c.Apply(c.Begin(), "", errors.New("boom"))

	snap := c.Snapshot()
	assert.Equal(t, "v1", snap.Value)
	assert.EqualError(t, snap.Err, "boom")

	c.Apply(c.Begin(), "v2", nil)
	assert.NoError(t, c.Snapshot().Err)
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache[int](false)
	assert.True(t, c.NeedsFetch())

	c.Apply(c.Begin(), 1, nil)
	assert.False(t, c.NeedsFetch())

	c.Invalidate()
	assert.True(t, c.NeedsFetch())
	assert.Equal(t, 1, c.Snapshot().Value, "invalidation keeps the value")

	c.Apply(c.Begin(), 2, nil)
	assert.False(t, c.NeedsFetch())
}

func TestAgentCacheUpdateDoesNotAlias(t *testing.T) {
	c := NewAgentCache(false)
	c.Apply(c.Begin(), sampleAgents(), nil)

	before := c.Snapshot().Value
	ok := c.Update("seo", func(a domain.Agent) domain.Agent {
		a.SystemPrompt = "changed"
		return a
	})
	assert.True(t, ok)
	assert.Empty(t, before[1].SystemPrompt)

	got, found := c.Find("seo")
	assert.True(t, found)
	assert.Equal(t, "changed", got.SystemPrompt)

	assert.False(t, c.Update("missing", func(a domain.Agent) domain.Agent { return a }))
}

func TestAgentCacheAgentsReturnsCopies(t *testing.T) {
	c := NewAgentCache(false)
	c.Apply(c.Begin(), sampleAgents(), nil)

	agents := c.Agents()
	agents[0].Rules[0] = "mutated"

	got, _ := c.Find("content")
	assert.Equal(t, "be brief", got.Rules[0])
}
