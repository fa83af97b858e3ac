package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckContentScenario(t *testing.T) {
	b := &fakeBackend{}
	b.respond(`{"ok":true,"result":{"success":true,"data":{"keywords":["ionic"]}}}`)
	inv := NewInvoker(b, nil)

	r, toast := inv.RunHealthCheck(context.Background(), "content")

	require.Len(t, b.execCalls, 1)
	task := b.execCalls[0]
	assert.Equal(t, "extract_keywords", task.Type)
	text, ok := task.Input["text"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "Ionic minerals are essential"))
	assert.True(t, strings.HasPrefix(task.ID, "task-"))

	assert.Equal(t, domain.OutcomeSuccess, r.Outcome())
	assert.Equal(t, TitleTestSuccessful, toast.Title)
	assert.Equal(t, ToastSuccess, toast.Kind)
}

func TestHealthCheckUnknownAgentSendsStatus(t *testing.T) {
	b := &fakeBackend{}
	b.respond(`{"ok":true,"result":{"success":true}}`)
	inv := NewInvoker(b, nil)

	inv.RunHealthCheck(context.Background(), "mystery")
	require.Len(t, b.execCalls, 1)
	assert.Equal(t, "status", b.execCalls[0].Type)
	assert.Empty(t, b.execCalls[0].Input)
}

func TestOneToastPerOutcome(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		err     error
		title   string
		kind    ToastKind
		outcome domain.Outcome
	}{
		{"success", `{"ok":true,"result":{"success":true,"data":1}}`, nil, TitleTestSuccessful, ToastSuccess, domain.OutcomeSuccess},
		{"agent failure", `{"ok":true,"result":{"success":false,"error":"no text"}}`, nil, TitleTestFailed, ToastError, domain.OutcomeAgentFailure},
		{"missing result", `{"ok":true}`, nil, TitleTestFailed, ToastError, domain.OutcomeAgentFailure},
		{"endpoint failure", `{"ok":false,"error":"unknown agent"}`, nil, TitleExecutionError, ToastError, domain.OutcomeTransportFailure},
		{"network error", ``, errors.New("dial tcp: refused"), TitleExecutionError, ToastError, domain.OutcomeTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			b.respond(tt.raw)
			b.execErr = tt.err
			inv := NewInvoker(b, nil)

			r, toast, err := inv.RunCustom(context.Background(), "seo", "analyze_seo", `{"url":"https://example.com"}`)
			require.NoError(t, err)
			assert.Len(t, b.execCalls, 1)
			assert.Equal(t, tt.outcome, r.Outcome())
			assert.Equal(t, tt.title, toast.Title)
			assert.Equal(t, tt.kind, toast.Kind)
			assert.NotEmpty(t, r.Raw)
		})
	}
}

func TestTransportFailureIsUniformShape(t *testing.T) {
	b := &fakeBackend{execErr: errors.New("connection reset")}
	inv := NewInvoker(b, nil)

	r := inv.Execute(context.Background(), "seo", domain.TaskSpec{Type: "status"})
	assert.JSONEq(t, `{"ok":false,"error":"connection reset"}`, string(r.Raw))
	assert.Equal(t, "connection reset", r.Message())
}

func TestInvalidJSONShortCircuits(t *testing.T) {
	b := &fakeBackend{}
	inv := NewInvoker(b, nil)

	for _, input := range []string{`{"text":`, `[1,2]`, `"str"`, ``} {
		_, toast, err := inv.RunCustom(context.Background(), "content", "custom", input)
		require.ErrorIs(t, err, ErrInvalidJSON, input)
		assert.Equal(t, TitleInvalidJSON, toast.Title)
		assert.True(t, toast.IsError())
		assert.False(t, inv.Busy())
	}
	assert.Empty(t, b.execCalls)
}

func TestRunCustomDefaultsTaskType(t *testing.T) {
	b := &fakeBackend{}
	b.respond(`{"ok":true,"result":{"success":true}}`)
	inv := NewInvoker(b, nil)

	_, _, err := inv.RunCustom(context.Background(), "content", "  ", `{}`)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskTypeCustom, b.execCalls[0].Type)
}

func TestBusyDuringRequest(t *testing.T) {
	b := &fakeBackend{}
	b.respond(`{"ok":true,"result":{"success":true}}`)
	inv := NewInvoker(b, nil)

	var during bool
	b.onExecute = func() { during = inv.Busy() }

	assert.False(t, inv.Busy())
	inv.Execute(context.Background(), "content", domain.TaskSpec{Type: "status"})
	assert.True(t, during)
	assert.False(t, inv.Busy())
}

func TestInvokersHaveSeparateBusyFlags(t *testing.T) {
	b := &fakeBackend{}
	b.respond(`{"ok":true,"result":{"success":true}}`)
	c := New(b, Options{})
	quick, detail := c.NewInvoker(), c.NewInvoker()

	var quickBusy, detailBusy, sharedBusy bool
	b.onExecute = func() {
		quickBusy, detailBusy, sharedBusy = quick.Busy(), detail.Busy(), c.Invoker.Busy()
	}

	quick.RunHealthCheck(context.Background(), "content")
	assert.True(t, quickBusy)
	assert.False(t, detailBusy)
	assert.False(t, sharedBusy)
	assert.False(t, quick.Busy())
}

func TestEveryInvocationGetsFreshTaskID(t *testing.T) {
	b := &fakeBackend{}
	b.respond(`{"ok":true,"result":{"success":true}}`)
	inv := NewInvoker(b, nil)

	clock := time.UnixMilli(1000)
	inv.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	inv.Execute(context.Background(), "content", domain.TaskSpec{Type: "status"})
	inv.Execute(context.Background(), "content", domain.TaskSpec{Type: "status"})
	require.Len(t, b.execCalls, 2)
	assert.NotEqual(t, b.execCalls[0].ID, b.execCalls[1].ID)
}

func TestParseTaskInput(t *testing.T) {
	in, err := ParseTaskInput(`{"url":"https://example.com","keywords":["a"]}`)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", in["url"])

	assert.Equal(t, "{}", FormatTaskInput(nil))
	assert.JSONEq(t, `{"hours":24}`, FormatTaskInput(map[string]any{"hours": float64(24)}))
}
