package server

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/shared"
)

// ParseMessage decodes a raw JSON-RPC message into its concrete type:
// request (method + id), notification (method, no id), or response.
// Both transports route their inbound bytes through here.
func ParseMessage(data []byte) (shared.JSONRPCMessage, error) {
	var basic struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Method  string          `json:"method,omitempty"`
	}
	if err := json.Unmarshal(data, &basic); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}

	if basic.JSONRPC != shared.JSONRPCVersion {
		return nil, errors.New("invalid JSON-RPC version")
	}

	if basic.Method != "" {
		if len(basic.ID) > 0 && string(basic.ID) != "null" {
			var request shared.JSONRPCRequest
			if err := json.Unmarshal(data, &request); err != nil {
				return nil, errors.Wrap(err, "invalid JSON-RPC request")
			}
			return request, nil
		}

		var notification shared.JSONRPCNotification
		if err := json.Unmarshal(data, &notification); err != nil {
			return nil, errors.Wrap(err, "invalid JSON-RPC notification")
		}
		return notification, nil
	}

	var response shared.JSONRPCResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, errors.Wrap(err, "invalid JSON-RPC response")
	}
	return response, nil
}
