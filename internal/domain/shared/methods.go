package shared

import "encoding/json"

// MCP method names
const (
	// Core methods
	MethodInitialize = "initialize"
	MethodShutdown   = "shutdown"
	MethodPing       = "ping"

	// Tool methods
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"
)

// InitializeParams represents parameters for the initialize method
type InitializeParams struct {
	ProtocolVersion string       `json:"protocolVersion,omitempty"`
	ClientInfo      ServerInfo   `json:"clientInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

// InitializeResult represents the result of the initialize method
type InitializeResult struct {
	ServerInfo   ServerInfo   `json:"serverInfo"`
	Capabilities Capabilities `json:"capabilities"`
}

// ListToolsResult represents the result of the tools/list method
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams represents parameters for the tools/call method. Arguments
// stay raw until the handler decodes them against the tool's schema.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// CallToolResult represents the result of the tools/call method
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}
