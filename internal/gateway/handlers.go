package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/executor"
	"github.com/soyeahso/agentdeck/internal/hooks"
	"github.com/soyeahso/agentdeck/internal/store"
)

const (
	maxRequestBytes = 1 << 20
	maxWindowHours  = 24 * 90
)

// HealthResponse is returned by health endpoints. The public endpoint only
// populates Status; the authenticated one populates all fields.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	Agents        int    `json:"agents,omitempty"`
	Subscribers   int    `json:"subscribers"`
	LLM           bool   `json:"llm"`
	UptimeSeconds int64  `json:"uptimeSeconds,omitempty"`
}

// ExecutionsResponse is the body of GET /api/ai/agents/{id}/executions.
type ExecutionsResponse struct {
	OK         bool              `json:"ok"`
	Executions []store.Execution `json:"executions"`
	Error      string            `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]any {
	return map[string]any{"ok": false, "error": msg}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	return dec.Decode(v)
}

// handleHealth returns only the status; details need authentication.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleHealthDetail(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Version:       s.version,
		Subscribers:   s.clients.Count(),
		LLM:           s.executor != nil && s.executor.HasLLM(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	n, err := s.agents.Count(r.Context())
	if err != nil {
		resp.Status = "degraded"
	}
	resp.Agents = n
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.agents.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing agents")
		writeJSON(w, http.StatusInternalServerError, domain.AgentList{Error: "failed to list agents"})
		return
	}
	writeJSON(w, http.StatusOK, domain.AgentList{OK: true, Agents: agents, Count: len(agents)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxWindowHours {
			writeJSON(w, http.StatusBadRequest, domain.DashboardResponse{Error: "hours must be an integer between 1 and 2160"})
			return
		}
		hours = n
	}
	m, err := s.execs.Dashboard(r.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		s.log.Error().Err(err).Msg("building dashboard")
		writeJSON(w, http.StatusInternalServerError, domain.DashboardResponse{Error: "failed to load metrics"})
		return
	}
	writeJSON(w, http.StatusOK, domain.DashboardResponse{OK: true, Metrics: m})
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var cfg domain.AgentConfig
	if err := decodeBody(w, r, &cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ConfigResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if cfg.Rules == nil {
		cfg.Rules = []string{}
	}

	err := s.agents.UpdateConfig(r.Context(), id, cfg)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, domain.ConfigResponse{Error: "agent not found: " + id})
		return
	case err != nil:
		s.log.Error().Err(err).Str("agent", id).Msg("saving config")
		writeJSON(w, http.StatusInternalServerError, domain.ConfigResponse{Error: "failed to save config"})
		return
	}

	s.log.Info().Str("agent", id).Int("rules", len(cfg.Rules)).Msg("agent config updated")
	if s.hooks != nil {
		s.hooks.Emit(r.Context(), hooks.EventConfigUpdated, map[string]any{
			"agent": id,
			"rules": len(cfg.Rules),
		})
	}
	writeJSON(w, http.StatusOK, domain.ConfigResponse{OK: true})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req domain.ExecuteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ExecuteResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	resp, err := s.executor.Execute(r.Context(), req)
	switch {
	case errors.Is(err, executor.ErrAgentNotFound):
		writeJSON(w, http.StatusNotFound, domain.ExecuteResponse{Error: err.Error()})
	case errors.Is(err, executor.ErrInvalidTask):
		writeJSON(w, http.StatusBadRequest, domain.ExecuteResponse{Error: err.Error()})
	case err != nil:
		s.log.Error().Err(err).Str("agent", req.AgentName).Msg("executing task")
		writeJSON(w, http.StatusInternalServerError, domain.ExecuteResponse{Error: "execution failed"})
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleExecutions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ExecutionsResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, 500)
	}
	execs, err := s.execs.Recent(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("listing executions")
		writeJSON(w, http.StatusInternalServerError, ExecutionsResponse{Error: "failed to list executions"})
		return
	}
	writeJSON(w, http.StatusOK, ExecutionsResponse{OK: true, Executions: execs})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"ok":    false,
		"error": "not found",
		"path":  r.URL.Path,
	})
}
