package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/agentdeck/internal/logging"
)

const (
	// writeWait bounds a single frame write to a subscriber.
	writeWait = 10 * time.Second
	// sendBuffer is how many frames may queue for one subscriber before it
	// is considered stalled and dropped.
	sendBuffer = 32
)

// frameConn is the part of *websocket.Conn a subscriber writes through.
type frameConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber is one websocket connection following the event feed. Frames
// are queued on send and written by the subscriber's own goroutine, so a
// slow reader never blocks the broadcaster.
type Subscriber struct {
	ConnID string
	Remote string
	Since  time.Time

	conn frameConn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSubscriber(conn frameConn, remote string) *Subscriber {
	return &Subscriber{
		ConnID: uuid.New().String(),
		Remote: remote,
		Since:  time.Now(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue queues one encoded frame. It reports false when the subscriber is
// closed or its queue is full.
func (s *Subscriber) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// writeLoop is the only writer on the connection.
func (s *Subscriber) writeLoop(log *logging.Logger) {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("connId", s.ConnID).Msg("feed write failed")
				s.close()
				return
			}
		}
	}
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// encodeFrame builds and serializes an event frame.
func encodeFrame(event string, payload any, seq int64) ([]byte, error) {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return nil, err
	}
	return json.Marshal(f)
}

// ClientRegistry tracks feed subscribers by connection ID.
type ClientRegistry struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
	log  *logging.Logger
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{subs: make(map[string]*Subscriber), log: log}
}

// Add registers s and starts its writer.
func (r *ClientRegistry) Add(s *Subscriber) {
	r.mu.Lock()
	r.subs[s.ConnID] = s
	n := len(r.subs)
	r.mu.Unlock()
	go s.writeLoop(r.log)
	r.log.Info().Str("connId", s.ConnID).Str("remote", s.Remote).Int("subscribers", n).Msg("feed subscriber connected")
}

// Remove drops and closes the subscriber with connID, if present.
func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	s, ok := r.subs[connID]
	delete(r.subs, connID)
	r.mu.Unlock()
	if ok {
		s.close()
		r.log.Info().Str("connId", connID).Dur("connected", time.Since(s.Since)).Msg("feed subscriber disconnected")
	}
}

// Count returns the number of subscribers.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Broadcast encodes the frame once and queues it for every subscriber
// without waiting on the network. Subscribers whose queue is full are
// dropped.
func (r *ClientRegistry) Broadcast(event string, payload any, seq int64) {
	data, err := encodeFrame(event, payload, seq)
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("encoding feed frame")
		return
	}

	var stalled []string
	r.mu.RLock()
	for id, s := range r.subs {
		if !s.enqueue(data) {
			stalled = append(stalled, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stalled {
		r.log.Warn().Str("connId", id).Msg("feed subscriber stalled, dropping")
		r.Remove(id)
	}
}

// CloseAll disconnects every subscriber.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*Subscriber)
	r.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}
