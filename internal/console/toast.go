package console

import (
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// ToastKind selects the toast variant.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
	ToastInfo
)

func (k ToastKind) String() string {
	switch k {
	case ToastSuccess:
		return "success"
	case ToastError:
		return "error"
	default:
		return "info"
	}
}

// Toast titles.
const (
	TitleTestSuccessful = "Agent Test Successful"
	TitleTestFailed     = "Agent Test Failed"
	TitleExecutionError = "Execution Error"
	TitleInvalidJSON    = "Invalid JSON"
	TitleSaveFailed     = "Save Failed"
	TitleConfigSaved    = "Configuration Saved"
)

// DefaultToastTTL is how long a toast stays visible.
const DefaultToastTTL = 4 * time.Second

// Toast is a transient notification.
type Toast struct {
	Kind    ToastKind
	Title   string
	Message string
}

// IsError reports whether the toast is the error variant.
func (t Toast) IsError() bool { return t.Kind == ToastError }

// ToastFor maps an execution result to exactly one toast.
func ToastFor(r domain.ExecutionResult) Toast {
	switch r.Outcome() {
	case domain.OutcomeTransportFailure:
		return Toast{Kind: ToastError, Title: TitleExecutionError, Message: r.Message()}
	case domain.OutcomeAgentFailure:
		return Toast{Kind: ToastError, Title: TitleTestFailed, Message: r.Message()}
	default:
		return Toast{Kind: ToastSuccess, Title: TitleTestSuccessful, Message: "Agent responded successfully"}
	}
}

// InvalidJSONToast reports a task input that did not parse.
func InvalidJSONToast(err error) Toast {
	return Toast{Kind: ToastError, Title: TitleInvalidJSON, Message: err.Error()}
}

// SaveFailedToast reports a rejected or failed config save.
func SaveFailedToast(msg string) Toast {
	return Toast{Kind: ToastError, Title: TitleSaveFailed, Message: msg}
}

// SavedToast confirms a config save.
func SavedToast(agentName string) Toast {
	return Toast{Kind: ToastSuccess, Title: TitleConfigSaved, Message: agentName + " configuration updated"}
}

type queuedToast struct {
	Toast
	expires time.Time
}

// ToastQueue holds visible toasts in arrival order. It is owned by a single
// UI loop and is not safe for concurrent use.
type ToastQueue struct {
	ttl   time.Duration
	items []queuedToast
}

// NewToastQueue creates a queue whose toasts expire after ttl.
func NewToastQueue(ttl time.Duration) *ToastQueue {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &ToastQueue{ttl: ttl}
}

// Push adds a toast shown from now until now+ttl.
func (q *ToastQueue) Push(t Toast, now time.Time) {
	q.items = append(q.items, queuedToast{Toast: t, expires: now.Add(q.ttl)})
}

// Expire drops toasts whose time is up and reports whether any were dropped.
func (q *ToastQueue) Expire(now time.Time) bool {
	kept := q.items[:0]
	for _, it := range q.items {
		if now.Before(it.expires) {
			kept = append(kept, it)
		}
	}
	dropped := len(kept) != len(q.items)
	q.items = kept
	return dropped
}

// Visible returns the toasts still on screen.
func (q *ToastQueue) Visible() []Toast {
	out := make([]Toast, len(q.items))
	for i, it := range q.items {
		out[i] = it.Toast
	}
	return out
}

// Len returns the number of queued toasts.
func (q *ToastQueue) Len() int { return len(q.items) }

// TTL returns the display duration.
func (q *ToastQueue) TTL() time.Duration { return q.ttl }
