package gateway

import "encoding/json"

// FrameTypeEvent is the only frame type the live feed sends.
const FrameTypeEvent = "event"

// Feed event names in addition to the hook events.
const EventHello = "hello"

// Frame is the envelope for every message on the /ws feed.
type Frame struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Seq     int64           `json:"seq"`
}

// Hello is the first frame a feed subscriber receives.
type Hello struct {
	Version string   `json:"version"`
	ConnID  string   `json:"connId"`
	Events  []string `json:"events"`
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:    FrameTypeEvent,
		Event:   event,
		Payload: raw,
		Seq:     seq,
	}, nil
}
