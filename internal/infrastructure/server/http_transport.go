package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
)

const (
	// SessionIDHeader carries the session identifier on the HTTP binding.
	SessionIDHeader = "Mcp-Session-Id"

	mcpPath    = "/mcp"
	healthPath = "/health"
)

// GatewayFactory builds the gateway instance backing a new session. Both
// transport bindings construct gateways through the same factory.
type GatewayFactory func() *Gateway

// HTTPTransport is the multiplexed HTTP binding: it routes protocol
// requests to per-session gateways, serves the liveness endpoint, and owns
// the session registry.
type HTTPTransport struct {
	server     *http.Server
	registry   *SessionRegistry
	newGateway GatewayFactory
	logger     *logging.Logger
}

// NewHTTPTransport creates the HTTP binding listening on addr.
func NewHTTPTransport(addr string, newGateway GatewayFactory, logger *logging.Logger) *HTTPTransport {
	t := &HTTPTransport{
		registry:   NewSessionRegistry(),
		newGateway: newGateway,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(mcpPath, t.handleMCP)
	mux.HandleFunc(healthPath, t.handleHealth)
	mux.HandleFunc("/", t.handleNotFound)

	t.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return t
}

// Start starts the HTTP server and blocks until it stops.
func (t *HTTPTransport) Start() error {
	return t.server.ListenAndServe()
}

// Shutdown closes all sessions and gracefully stops the HTTP server.
func (t *HTTPTransport) Shutdown(ctx context.Context) error {
	t.registry.CloseAll()
	return t.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (t *HTTPTransport) Addr() string {
	return t.server.Addr
}

// Handler returns the transport's HTTP handler. Used by tests.
func (t *HTTPTransport) Handler() http.Handler {
	return t.server.Handler
}

// Registry returns the transport's session registry. Used by tests.
func (t *HTTPTransport) Registry() *SessionRegistry {
	return t.registry
}

// handleMCP routes a protocol request: a session identifier addresses an
// existing session; a POST without one starts the session-creation
// handshake; anything else is malformed.
func (t *HTTPTransport) handleMCP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionIDHeader)

	if sessionID != "" {
		session, ok := t.registry.Get(sessionID)
		if !ok {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		session.HandleRequest(w, r)
		return
	}

	if r.Method == http.MethodPost {
		t.createSession(w, r)
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

// createSession builds a gateway and session for a first-contact request
// and lets the session handle it. The session only lands in the registry
// once its initialize handshake completes.
func (t *HTTPTransport) createSession(w http.ResponseWriter, r *http.Request) {
	gateway := t.newGateway()
	session := NewHTTPSession(gateway, t.logger)
	session.onActive = func(s *HTTPSession) {
		t.registry.Add(s)
		t.logger.Info("New Ticketmaster session created", logging.Fields{"sessionId": s.ID()})
	}
	session.onClose = func(s *HTTPSession) {
		t.registry.Remove(s.ID())
		t.logger.Info("Ticketmaster session closed", logging.Fields{"sessionId": s.ID()})
	}

	if err := gateway.Connect(session); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := gateway.Start(context.Background()); err != nil {
		t.logger.Error("error starting gateway", logging.Fields{"error": err.Error()})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session.HandleRequest(w, r)
}

// handleHealth serves the liveness endpoint.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (t *HTTPTransport) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Not Found", http.StatusNotFound)
}
