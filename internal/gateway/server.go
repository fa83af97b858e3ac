// Package gateway is the reference agent backend: the agent REST endpoints,
// a health check, and a websocket feed of backend events.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/executor"
	"github.com/soyeahso/agentdeck/internal/hooks"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/store"
	"github.com/soyeahso/agentdeck/internal/version"
)

// Server is the agentdeck backend HTTP + WebSocket server.
type Server struct {
	cfg      config.ServerConfig
	log      *logging.Logger
	clients  *ClientRegistry
	agents   *store.AgentStore
	execs    *store.ExecutionStore
	executor *executor.Executor
	hooks    *hooks.Manager
	version  string
	eventSeq atomic.Int64

	startedAt   time.Time
	httpServer  *http.Server
	upgrader    websocket.Upgrader
	authLimiter *authRateLimiter
	ready       chan string
}

// Deps are the stores and services the server routes to.
type Deps struct {
	Agents     *store.AgentStore
	Executions *store.ExecutionStore
	Executor   *executor.Executor
	Hooks      *hooks.Manager
}

// New creates a new backend server and subscribes the live feed to hooks.
func New(cfg config.ServerConfig, deps Deps, log *logging.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		log:         log.Sub("gateway"),
		clients:     NewClientRegistry(log.Sub("feed")),
		agents:      deps.Agents,
		execs:       deps.Executions,
		executor:    deps.Executor,
		hooks:       deps.Hooks,
		version:     version.Version,
		startedAt:   time.Now(),
		authLimiter: newAuthRateLimiter(),
		ready:       make(chan string, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.AllowedOrigins),
		},
	}
	if s.hooks != nil {
		s.hooks.OnAll("ws-feed", s.forwardEvent)
	}
	return s
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin headers.
// If no origins are configured, only same-origin (no Origin header) or non-browser
// clients are allowed. If origins are configured, the Origin must match one of them.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return isOriginAllowed(origin, allowed)
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.AllowedOrigins)
}

// Ready delivers the listen address once the server accepts connections.
func (s *Server) Ready() <-chan string { return s.ready }

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.cfg.Bind != "loopback" && s.cfg.Token == "" {
		s.log.Warn().Msg("listening beyond loopback without server.token; the API is unauthenticated")
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Bool("auth", s.cfg.Token != "").
		Msg("agent backend ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{"addr": ln.Addr().String()})
	}
	s.ready <- ln.Addr().String()

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down agent backend")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventServerStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// forwardEvent relays a hook event to every feed subscriber.
func (s *Server) forwardEvent(_ context.Context, p hooks.Payload) error {
	s.clients.Broadcast(p.Event, p, s.eventSeq.Add(1))
	return nil
}

// handleWebSocket upgrades to a websocket and keeps the subscriber
// registered until it disconnects. Inbound messages are ignored.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(64 * 1024)

	sub := newSubscriber(conn, r.RemoteAddr)
	hello, err := encodeFrame(EventHello, Hello{Version: s.version, ConnID: sub.ConnID, Events: hooks.AllEvents}, 0)
	if err != nil {
		s.log.Error().Err(err).Msg("encoding hello frame")
		sub.close()
		return
	}
	sub.enqueue(hello)

	s.clients.Add(sub)
	defer s.clients.Remove(sub.ConnID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Str("connId", sub.ConnID).Msg("feed read ended")
			}
			return
		}
	}
}
