package domain

import (
	"encoding/json"
	"time"
)

// Transport is the endpoint-level outcome of an execution request.
type Transport int

const (
	TransportOK Transport = iota
	TransportFailed
)

// AgentStatus is the agent-level outcome reported inside a successful response.
type AgentStatus int

const (
	AgentUnknown AgentStatus = iota
	AgentSucceeded
	AgentFailed
)

// Outcome collapses both dimensions into the three cases the console renders.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeAgentFailure
	OutcomeTransportFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAgentFailure:
		return "agent_failure"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// ExecuteResponse is the wire body of POST /api/ai/agents/execute.
type ExecuteResponse struct {
	OK     bool          `json:"ok"`
	Result *AgentOutcome `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// AgentOutcome is the nested agent-level result.
type AgentOutcome struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ExecutionResult is the uniform shape the console renders regardless of
// which layer failed. Raw always holds a JSON document: the verbatim response
// body, or a synthetic {"ok":false,"error":...} for transport failures.
type ExecutionResult struct {
	Transport      Transport
	Agent          AgentStatus
	Data           json.RawMessage
	TransportError string
	AgentError     string
	Raw            json.RawMessage
	Duration       time.Duration
}

// ResultFromResponse builds a result from a decoded response and its raw body.
func ResultFromResponse(resp ExecuteResponse, raw []byte) ExecutionResult {
	r := ExecutionResult{Raw: json.RawMessage(raw)}
	if !resp.OK {
		r.Transport = TransportFailed
		r.TransportError = resp.Error
		if r.TransportError == "" {
			r.TransportError = "execution endpoint reported failure"
		}
		return r
	}

	r.Transport = TransportOK
	switch {
	case resp.Result == nil:
		r.Agent = AgentUnknown
		r.AgentError = "response carried no agent result"
	case resp.Result.Success:
		r.Agent = AgentSucceeded
		r.Data = resp.Result.Data
	default:
		r.Agent = AgentFailed
		r.AgentError = resp.Result.Error
		r.Data = resp.Result.Data
	}
	return r
}

// TransportFailure normalizes a network or decode error into the same shape
// as an endpoint-level failure.
func TransportFailure(err error) ExecutionResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	raw, _ := json.Marshal(ExecuteResponse{OK: false, Error: msg})
	return ExecutionResult{
		Transport:      TransportFailed,
		TransportError: msg,
		Raw:            raw,
	}
}

// Outcome reports which of the three rendered cases this result is.
func (r ExecutionResult) Outcome() Outcome {
	switch {
	case r.Transport == TransportFailed:
		return OutcomeTransportFailure
	case r.Agent == AgentSucceeded:
		return OutcomeSuccess
	default:
		return OutcomeAgentFailure
	}
}

// Message is the error text for failed outcomes and empty on success.
func (r ExecutionResult) Message() string {
	switch r.Outcome() {
	case OutcomeTransportFailure:
		return r.TransportError
	case OutcomeAgentFailure:
		if r.AgentError == "" {
			return "agent reported failure"
		}
		return r.AgentError
	default:
		return ""
	}
}

// Pretty returns the raw response indented for display.
func (r ExecutionResult) Pretty() string {
	if len(r.Raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return string(r.Raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(r.Raw)
	}
	return string(out)
}
