package gateway

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stuckConn blocks every write until it is closed, like a peer that stopped
// reading with a full socket buffer.
type stuckConn struct {
	release chan struct{}
	closed  atomic.Bool
}

func newStuckConn() *stuckConn { return &stuckConn{release: make(chan struct{})} }

func (c *stuckConn) WriteMessage(int, []byte) error {
	<-c.release
	return errors.New("use of closed connection")
}
func (c *stuckConn) SetWriteDeadline(time.Time) error { return nil }
func (c *stuckConn) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.release)
	}
	return nil
}

type recordingConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed atomic.Bool
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return nil
}
func (c *recordingConn) SetWriteDeadline(time.Time) error { return nil }
func (c *recordingConn) Close() error                     { c.closed.Store(true); return nil }

func (c *recordingConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestBroadcast_StalledSubscriberDoesNotBlock(t *testing.T) {
	reg := NewClientRegistry(logging.New(nil, "silent"))

	slowConn := newStuckConn()
	slow := newSubscriber(slowConn, "slow")
	fastConn := &recordingConn{}
	fast := newSubscriber(fastConn, "fast")
	reg.Add(slow)
	reg.Add(fast)

	frames := sendBuffer + 2
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= frames; i++ {
			reg.Broadcast("execution_completed", map[string]any{"n": i}, int64(i))
			if !assert.Eventually(t, func() bool { return fastConn.count() == i }, 2*time.Second, time.Millisecond) {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast blocked on a stalled subscriber")
	}

	assert.Equal(t, 1, reg.Count())
	assert.True(t, slowConn.closed.Load())
	assert.False(t, fastConn.closed.Load())
	assert.Equal(t, frames, fastConn.count())
}

func TestBroadcast_PreservesOrder(t *testing.T) {
	reg := NewClientRegistry(logging.New(nil, "silent"))
	conn := &recordingConn{}
	reg.Add(newSubscriber(conn, "a"))

	for i := 1; i <= 5; i++ {
		reg.Broadcast("config_updated", nil, int64(i))
	}
	require.Eventually(t, func() bool { return conn.count() == 5 }, 2*time.Second, time.Millisecond)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for i, f := range conn.frames {
		assert.Contains(t, string(f), fmt.Sprintf(`"seq":%d`, i+1))
	}
}

func TestRegistry_RemoveAndCloseAll(t *testing.T) {
	reg := NewClientRegistry(logging.New(nil, "silent"))
	a, b := &recordingConn{}, &recordingConn{}
	sa := newSubscriber(a, "a")
	reg.Add(sa)
	reg.Add(newSubscriber(b, "b"))
	require.Equal(t, 2, reg.Count())

	reg.Remove(sa.ConnID)
	reg.Remove(sa.ConnID)
	assert.Equal(t, 1, reg.Count())
	assert.True(t, a.closed.Load())
	assert.False(t, sa.enqueue([]byte("{}")))

	reg.CloseAll()
	assert.Equal(t, 0, reg.Count())
	assert.True(t, b.closed.Load())
}
