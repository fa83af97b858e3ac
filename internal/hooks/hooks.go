// Package hooks dispatches agentdeck backend lifecycle events to registered
// handlers. The gateway's live feed is one such handler.
package hooks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/soyeahso/agentdeck/internal/logging"
)

// Event names for the hook system.
const (
	EventExecutionCompleted = "execution_completed"
	EventConfigUpdated      = "config_updated"
	EventServerStart        = "server_start"
	EventServerStop         = "server_stop"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventExecutionCompleted,
	EventConfigUpdated,
	EventServerStart,
	EventServerStop,
}

// anyEvent is the internal key for handlers registered with OnAll.
const anyEvent = "*"

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	Time  time.Time      `json:"time"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler is a function that handles a hook event.
// Returning an error logs the failure but does not stop processing.
type Handler func(ctx context.Context, p Payload) error

// Manager manages hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
	now      func() time.Time
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
		now:      time.Now,
	}
}

// On registers a handler for the given event.
// The name identifies the handler for logging and debugging.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// OnAll registers a handler that receives every event, after the handlers
// registered for that specific event.
func (m *Manager) OnAll(name string, handler Handler) {
	m.On(anyEvent, name, handler)
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlers := m.handlers[event]
	filtered := make([]namedHandler, 0, len(handlers))
	for _, h := range handlers {
		if h.name != name {
			filtered = append(filtered, h)
		}
	}
	m.handlers[event] = filtered
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	handlers := make([]namedHandler, 0, len(m.handlers[event])+len(m.handlers[anyEvent]))
	handlers = append(handlers, m.handlers[event]...)
	handlers = append(handlers, m.handlers[anyEvent]...)
	return handlers
}

// Emit runs every handler for event in registration order on the calling
// goroutine, event-specific handlers first, then OnAll handlers.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	handlers := m.snapshot(event)
	if len(handlers) == 0 {
		return
	}
	p := Payload{Event: event, Time: m.now().UTC(), Data: data}
	for _, h := range handlers {
		m.call(ctx, h, p)
	}
}

// EmitAsync runs each handler on its own goroutine and returns immediately.
func (m *Manager) EmitAsync(ctx context.Context, event string, data map[string]any) {
	handlers := m.snapshot(event)
	if len(handlers) == 0 {
		return
	}
	p := Payload{Event: event, Time: m.now().UTC(), Data: data}
	for _, h := range handlers {
		go m.call(ctx, h, p)
	}
}

// call invokes one handler. Errors and panics are logged so one bad
// subscriber cannot break an execution or the rest of the chain.
func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("event", p.Event).Str("handler", h.name).Interface("panic", r).Msg("hook handler panicked")
		}
	}()
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().Err(err).Str("event", p.Event).Str("handler", h.name).Msg("hook handler failed")
	}
}

// Count returns the number of handlers registered for an event, not
// counting OnAll handlers.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the sorted events that have at least one handler registered.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if event != anyEvent && len(handlers) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	return events
}
