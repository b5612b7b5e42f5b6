package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/shared"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/transport"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
)

// sessionState tracks the lifecycle of an HTTP session. The only legal
// transitions are uninitialized → active → closed; closed is terminal.
type sessionState int

const (
	sessionUninitialized sessionState = iota
	sessionActive
	sessionClosed
)

// HTTPSession binds one gateway to one streamable HTTP connection. It
// implements transport.Transport on the gateway side and handles HTTP
// requests on the caller side: a POSTed request is fed to the gateway and
// the gateway's reply is captured and written back as the HTTP response.
type HTTPSession struct {
	id      string
	gateway *Gateway
	logger  *logging.Logger

	handler transport.MessageHandler
	respCh  chan shared.JSONRPCResponse

	state   sessionState
	stateMu sync.Mutex

	// requestMu serializes HTTP requests so each gateway reply pairs with
	// the request that produced it.
	requestMu sync.Mutex

	onActive func(*HTTPSession)
	onClose  func(*HTTPSession)

	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewHTTPSession creates a session for the given gateway. The identifier is
// assigned up front but only advertised to the caller once the initialize
// handshake completes.
func NewHTTPSession(gateway *Gateway, logger *logging.Logger) *HTTPSession {
	return &HTTPSession{
		id:      uuid.New().String(),
		gateway: gateway,
		logger:  logger,
		respCh:  make(chan shared.JSONRPCResponse, 1),
		closeCh: make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *HTTPSession) ID() string {
	return s.id
}

// Gateway returns the gateway bound to this session.
func (s *HTTPSession) Gateway() *Gateway {
	return s.gateway
}

// Start stores the gateway's message handler. The actual message pump is
// driven by incoming HTTP requests.
func (s *HTTPSession) Start(ctx context.Context, handler transport.MessageHandler) error {
	s.handler = handler
	return nil
}

// Send captures an outgoing response so the in-flight HTTP request can
// return it. Notifications have no delivery channel on this binding and are
// dropped.
func (s *HTTPSession) Send(ctx context.Context, message shared.JSONRPCMessage) error {
	response, ok := message.(shared.JSONRPCResponse)
	if !ok {
		return nil
	}

	// Closed wins over a free buffer slot.
	select {
	case <-s.closeCh:
		return ErrSessionClosed
	default:
	}

	select {
	case s.respCh <- response:
		return nil
	case <-s.closeCh:
		return ErrSessionClosed
	}
}

// Close transitions the session to closed and notifies the registry. Safe
// to call more than once.
func (s *HTTPSession) Close() error {
	s.closeOnce.Do(func() {
		s.stateMu.Lock()
		s.state = sessionClosed
		s.stateMu.Unlock()

		close(s.closeCh)
		if s.onClose != nil {
			s.onClose(s)
		}
	})
	return nil
}

// HandleRequest processes one HTTP request addressed to this session.
func (s *HTTPSession) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if s.currentState() == sessionClosed {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		// Explicit termination by the caller.
		_ = s.Close()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *HTTPSession) handlePost(w http.ResponseWriter, r *http.Request) {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}

	message, err := ParseMessage(body)
	if err != nil {
		writeParseError(w, err)
		return
	}

	if !message.IsRequest() {
		// Notifications and stray responses are accepted but produce no
		// reply body.
		if err := s.handler(r.Context(), message); err != nil {
			s.logger.Error("error handling message", logging.Fields{"error": err.Error()})
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	request := message.(shared.JSONRPCRequest)
	if err := s.handler(r.Context(), request); err != nil {
		s.logger.Error("error handling request", logging.Fields{"error": err.Error()})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	select {
	case response := <-s.respCh:
		if request.Method == shared.MethodInitialize && response.Error == nil {
			s.activate()
		}
		if s.currentState() == sessionActive {
			w.Header().Set("Mcp-Session-Id", s.id)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			s.logger.Error("error writing response", logging.Fields{"error": err.Error()})
		}
	case <-s.closeCh:
		http.Error(w, "Session not found", http.StatusNotFound)
	case <-r.Context().Done():
		// Caller went away before the reply was ready. Drop the undelivered
		// reply, otherwise it occupies the buffer and the next request's
		// Send blocks forever under requestMu.
		select {
		case <-s.respCh:
		default:
		}
	}
}

// activate marks the handshake complete and registers the session.
func (s *HTTPSession) activate() {
	s.stateMu.Lock()
	if s.state != sessionUninitialized {
		s.stateMu.Unlock()
		return
	}
	s.state = sessionActive
	s.stateMu.Unlock()

	if s.onActive != nil {
		s.onActive(s)
	}
}

func (s *HTTPSession) currentState() sessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// writeParseError writes a JSON-RPC parse error with a 400 status.
func writeParseError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(shared.JSONRPCResponse{
		JSONRPC: shared.JSONRPCVersion,
		Error: &shared.JSONRPCError{
			Code:    int(shared.ParseError),
			Message: err.Error(),
		},
	})
}

// SessionRegistry maps session identifiers to live sessions. It is the only
// state shared across connections; every mutation happens under the mutex.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*HTTPSession
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*HTTPSession),
	}
}

// Add registers a session under its identifier.
func (r *SessionRegistry) Add(session *HTTPSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Get retrieves a session by its identifier.
func (r *SessionRegistry) Get(id string) (*HTTPSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Remove removes a session from the registry.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every registered session. Used at shutdown.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*HTTPSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	r.mu.Unlock()

	// Close outside the lock: Close calls back into Remove.
	for _, session := range sessions {
		_ = session.Close()
	}
}
