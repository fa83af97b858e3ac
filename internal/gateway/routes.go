package gateway

import "net/http"

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.requireAuth(s.handleWebSocket))

	mux.HandleFunc("GET /api/health", s.requireAuth(s.handleHealthDetail))
	mux.HandleFunc("GET /api/ai/agents", s.requireAuth(s.handleListAgents))
	mux.HandleFunc("GET /api/ai/agent-metrics/dashboard", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("PATCH /api/ai/agents/{id}/config", s.requireAuth(s.handleSaveConfig))
	mux.HandleFunc("POST /api/ai/agents/execute", s.requireAuth(s.handleExecute))
	mux.HandleFunc("GET /api/ai/agents/{id}/executions", s.requireAuth(s.handleExecutions))

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}
