package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/shared"
)

func TestParseMessage_Request(t *testing.T) {
	message, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	require.NoError(t, err)

	request, ok := message.(shared.JSONRPCRequest)
	require.True(t, ok)
	assert.True(t, message.IsRequest())
	assert.Equal(t, "tools/list", request.Method)
	assert.Equal(t, "1", string(request.ID))
}

func TestParseMessage_StringID(t *testing.T) {
	message, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":"abc","method":"ping"}`))
	require.NoError(t, err)

	request, ok := message.(shared.JSONRPCRequest)
	require.True(t, ok)
	// The identifier is preserved byte-for-byte, quotes included.
	assert.Equal(t, `"abc"`, string(request.ID))
}

func TestParseMessage_Notification(t *testing.T) {
	message, err := ParseMessage([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)

	assert.True(t, message.IsNotification())
}

func TestParseMessage_NullIDIsNotification(t *testing.T) {
	message, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":null,"method":"notifications/initialized"}`))
	require.NoError(t, err)

	assert.True(t, message.IsNotification())
}

func TestParseMessage_Response(t *testing.T) {
	message, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	require.NoError(t, err)

	assert.True(t, message.IsResponse())
}

func TestParseMessage_InvalidJSON(t *testing.T) {
	_, err := ParseMessage([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseMessage_WrongVersion(t *testing.T) {
	_, err := ParseMessage([]byte(`{"jsonrpc":"1.0","id":1,"method":"ping"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}
