package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/ticketmaster"
)

// newTestHTTPTransport wires the HTTP binding to a stubbed upstream and
// serves it from an httptest server.
func newTestHTTPTransport(t *testing.T, upstream http.HandlerFunc) (*HTTPTransport, *httptest.Server) {
	t.Helper()

	if upstream == nil {
		upstream = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"page":{"size":20,"totalElements":0,"totalPages":0,"number":0}}`))
		}
	}
	upstreamSrv := httptest.NewServer(upstream)
	t.Cleanup(upstreamSrv.Close)

	factory := func() *Gateway {
		client, err := ticketmaster.NewClient("test-key", ticketmaster.WithBaseURL(upstreamSrv.URL))
		require.NoError(t, err)
		return NewGateway(client, logging.NewNop())
	}

	transport := NewHTTPTransport("localhost:0", factory, logging.NewNop())
	srv := httptest.NewServer(transport.Handler())
	t.Cleanup(srv.Close)

	return transport, srv
}

func postMCP(t *testing.T, srv *httptest.Server, sessionID string, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/mcp", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionIDHeader, sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"clientInfo":{"name":"test-client","version":"1.0"},"capabilities":{}}}`

// startSession runs the initialize handshake and returns the session ID.
func startSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp := postMCP(t, srv, "", initializeBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sessionID := resp.Header.Get(SessionIDHeader)
	require.NotEmpty(t, sessionID)

	body := decodeBody(t, resp)
	require.Nil(t, body["error"])
	return sessionID
}

func TestHTTP_Health(t *testing.T) {
	_, srv := newTestHTTPTransport(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHTTP_UnknownPath(t *testing.T) {
	_, srv := newTestHTTPTransport(t, nil)

	resp, err := http.Get(srv.URL + "/other")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_GetWithoutSessionRejected(t *testing.T) {
	_, srv := newTestHTTPTransport(t, nil)

	resp, err := http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_UnknownSessionRejected(t *testing.T) {
	_, srv := newTestHTTPTransport(t, nil)

	resp := postMCP(t, srv, "no-such-session", initializeBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_MalformedBodyIsParseError(t *testing.T) {
	_, srv := newTestHTTPTransport(t, nil)

	resp := postMCP(t, srv, "", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(-32700), errObj["code"])
}

func TestHTTP_InitializeCreatesSession(t *testing.T) {
	transport, srv := newTestHTTPTransport(t, nil)

	sessionID := startSession(t, srv)

	assert.Equal(t, 1, transport.Registry().Count())
	_, ok := transport.Registry().Get(sessionID)
	assert.True(t, ok)
}

func TestHTTP_FirstRequestMustInitialize(t *testing.T) {
	transport, srv := newTestHTTPTransport(t, nil)

	resp := postMCP(t, srv, "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The handshake never completed, so no session was advertised or kept.
	assert.Empty(t, resp.Header.Get(SessionIDHeader))
	assert.Equal(t, 0, transport.Registry().Count())

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Server not initialized", errObj["message"])
}

func TestHTTP_SessionRoutesFollowUpRequests(t *testing.T) {
	_, srv := newTestHTTPTransport(t, nil)

	sessionID := startSession(t, srv)

	resp := postMCP(t, srv, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Nil(t, body["error"])
	result, ok := body["result"].(map[string]interface{})
	require.True(t, ok)
	tools, ok := result["tools"].([]interface{})
	require.True(t, ok)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]interface{})
	assert.Equal(t, "search_ticketmaster", tool["name"])
}

func TestHTTP_SessionsAreIndependent(t *testing.T) {
	transport, srv := newTestHTTPTransport(t, nil)

	first := startSession(t, srv)
	second := startSession(t, srv)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, transport.Registry().Count())
}

func TestHTTP_DeleteClosesSession(t *testing.T) {
	transport, srv := newTestHTTPTransport(t, nil)

	sessionID := startSession(t, srv)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/mcp", nil)
	require.NoError(t, err)
	req.Header.Set(SessionIDHeader, sessionID)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, transport.Registry().Count())

	// The identifier is dead for good.
	reuse := postMCP(t, srv, sessionID, `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	assert.Equal(t, http.StatusNotFound, reuse.StatusCode)
}

func TestHTTP_SearchThroughSession(t *testing.T) {
	_, srv := newTestHTTPTransport(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"_embedded": {"events": [{"id": "e1", "name": "Test Show", "dates": {"start": {"dateTime": "2024-06-02T20:00:00Z"}, "status": {"code": "onsale"}}}]},
			"page": {"size": 20, "totalElements": 1, "totalPages": 1, "number": 0}
		}`))
	})

	sessionID := startSession(t, srv)

	resp := postMCP(t, srv, sessionID,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"search_ticketmaster","arguments":{"type":"event","format":"text"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Nil(t, body["error"])
	result := body["result"].(map[string]interface{})
	content := result["content"].([]interface{})
	require.Len(t, content, 1)
	text := content[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "Test Show")
	assert.Contains(t, text, "Status: onsale")
}

func TestHTTP_ShutdownClosesAllSessions(t *testing.T) {
	transport, srv := newTestHTTPTransport(t, nil)

	startSession(t, srv)
	startSession(t, srv)
	require.Equal(t, 2, transport.Registry().Count())

	transport.Registry().CloseAll()
	assert.Equal(t, 0, transport.Registry().Count())
}
