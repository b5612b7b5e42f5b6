package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/ticketmaster"
)

// runStdioExchange feeds newline-delimited input through a gateway over the
// stdio transport and returns the output lines once the input is drained.
func runStdioExchange(t *testing.T, input string) []string {
	t.Helper()

	client, err := ticketmaster.NewClient("test-key")
	require.NoError(t, err)
	gateway := NewGateway(client, logging.NewNop())

	var out bytes.Buffer
	transport := NewStdioTransportWithIO(strings.NewReader(input), &out, logging.NewNop())
	require.NoError(t, gateway.Connect(transport))
	require.NoError(t, gateway.Start(context.Background()))

	select {
	case <-transport.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("transport did not drain input")
	}
	require.NoError(t, gateway.Close())

	raw := strings.TrimSpace(out.String())
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func TestStdio_InitializeAndListTools(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"clientInfo":{"name":"test-client","version":"1.0"},"capabilities":{}}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	lines := runStdioExchange(t, input)
	require.Len(t, lines, 2)

	var initResp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &initResp))
	require.Nil(t, initResp["error"])
	result := initResp["result"].(map[string]interface{})
	serverInfo := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "ticketmaster-discovery", serverInfo["name"])

	var listResp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &listResp))
	require.Nil(t, listResp["error"])
	tools := listResp["result"].(map[string]interface{})["tools"].([]interface{})
	require.Len(t, tools, 1)
	assert.Equal(t, "search_ticketmaster", tools[0].(map[string]interface{})["name"])
}

func TestStdio_ResponseEchoesRequestID(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":"req-42","method":"initialize","params":{"clientInfo":{"name":"test-client","version":"1.0"},"capabilities":{}}}` + "\n"

	lines := runStdioExchange(t, input)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"id":"req-42"`)
}

func TestStdio_SkipsMalformedLines(t *testing.T) {
	input := "this is not json\n" +
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"clientInfo":{"name":"test-client","version":"1.0"},"capabilities":{}}}` + "\n"

	lines := runStdioExchange(t, input)

	// The bad line is skipped, the good one still gets its reply.
	require.Len(t, lines, 1)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Nil(t, resp["error"])
}

func TestStdio_UninitializedRequestRejected(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n"

	lines := runStdioExchange(t, input)
	require.Len(t, lines, 1)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	errObj, ok := resp["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Server not initialized", errObj["message"])
}

func TestStdio_CloseUnblocksDone(t *testing.T) {
	client, err := ticketmaster.NewClient("test-key")
	require.NoError(t, err)
	gateway := NewGateway(client, logging.NewNop())

	var out bytes.Buffer
	transport := NewStdioTransportWithIO(strings.NewReader(""), &out, logging.NewNop())
	require.NoError(t, gateway.Connect(transport))
	require.NoError(t, gateway.Start(context.Background()))

	select {
	case <-transport.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel did not close on EOF")
	}

	assert.NoError(t, transport.Close())
}
