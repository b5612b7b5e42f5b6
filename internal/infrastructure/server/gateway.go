package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/shared"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/domain/transport"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/ticketmaster-mcp-server/internal/ticketmaster"
)

const (
	serverName    = "ticketmaster-discovery"
	serverVersion = "0.1.0"
)

// Gateway is the protocol gateway between one MCP connection and the
// Discovery API. Each connection (the stdio process, or one HTTP session)
// owns exactly one Gateway; gateways are never shared.
type Gateway struct {
	info         shared.ServerInfo
	capabilities shared.Capabilities
	transport    transport.Transport
	client       *ticketmaster.Client
	logger       *logging.Logger

	isInitialized bool
	mu            sync.RWMutex
}

// NewGateway creates a gateway backed by the given Discovery API client.
// This is the single construction path used by both transport bindings.
func NewGateway(client *ticketmaster.Client, logger *logging.Logger) *Gateway {
	return &Gateway{
		info: shared.ServerInfo{
			Name:    serverName,
			Version: serverVersion,
		},
		capabilities: shared.Capabilities{
			Tools: &shared.ToolsCapability{},
		},
		client: client,
		logger: logger,
	}
}

// Connect connects the gateway to a transport
func (g *Gateway) Connect(t transport.Transport) error {
	g.transport = t
	return nil
}

// Start starts the gateway's transport with this gateway as message handler
func (g *Gateway) Start(ctx context.Context) error {
	if g.transport == nil {
		return ErrNoTransport
	}

	return g.transport.Start(ctx, g.HandleMessage)
}

// Close closes the gateway's transport
func (g *Gateway) Close() error {
	if g.transport == nil {
		return nil
	}

	return g.transport.Close()
}

// HandleMessage processes incoming JSON-RPC messages
func (g *Gateway) HandleMessage(ctx context.Context, message shared.JSONRPCMessage) error {
	if message.IsResponse() || message.IsNotification() {
		// We only handle requests
		return nil
	}

	req, ok := message.(shared.JSONRPCRequest)
	if !ok {
		return errors.New("invalid message type")
	}

	if req.Method == shared.MethodInitialize {
		return g.handleInitialize(ctx, req)
	}

	g.mu.RLock()
	initialized := g.isInitialized
	g.mu.RUnlock()
	if !initialized {
		return g.sendErrorResponse(ctx, req, shared.InvalidRequest, "Server not initialized")
	}

	switch req.Method {
	case shared.MethodPing:
		return g.sendResponse(ctx, req, struct{}{})
	case shared.MethodShutdown:
		return g.handleShutdown(ctx, req)
	case shared.MethodListTools:
		return g.handleListTools(ctx, req)
	case shared.MethodCallTool:
		return g.handleCallTool(ctx, req)
	default:
		return g.sendErrorResponse(ctx, req, shared.MethodNotFound, "Method not found")
	}
}

// handleInitialize handles the initialize method
func (g *Gateway) handleInitialize(ctx context.Context, req shared.JSONRPCRequest) error {
	var params shared.InitializeParams
	if err := unmarshalParams(req.Params, &params); err != nil {
		return g.sendErrorResponse(ctx, req, shared.InvalidParams, "Invalid params")
	}

	g.mu.Lock()
	g.isInitialized = true
	g.mu.Unlock()

	result := shared.InitializeResult{
		ServerInfo:   g.info,
		Capabilities: g.capabilities,
	}

	return g.sendResponse(ctx, req, result)
}

// handleShutdown handles the shutdown method
func (g *Gateway) handleShutdown(ctx context.Context, req shared.JSONRPCRequest) error {
	g.mu.Lock()
	g.isInitialized = false
	g.mu.Unlock()

	return g.sendResponse(ctx, req, nil)
}

// handleListTools handles the tools/list method
func (g *Gateway) handleListTools(ctx context.Context, req shared.JSONRPCRequest) error {
	result := shared.ListToolsResult{
		Tools: []shared.Tool{searchToolDefinition()},
	}

	return g.sendResponse(ctx, req, result)
}

// handleCallTool handles the tools/call method. Dispatch-level contract
// violations (unknown tool, malformed arguments, unknown search type) are
// protocol errors; everything that goes wrong during the search itself is
// contained in a CallToolResult with the error flag set.
func (g *Gateway) handleCallTool(ctx context.Context, req shared.JSONRPCRequest) error {
	var params shared.CallToolParams
	if err := unmarshalParams(req.Params, &params); err != nil {
		return g.sendErrorResponse(ctx, req, shared.InvalidParams, "Invalid params")
	}

	if params.Name != searchToolName {
		return g.sendErrorResponse(ctx, req, shared.MethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	args, err := decodeSearchArgs(params.Arguments)
	if err != nil {
		return g.sendErrorResponse(ctx, req, shared.InvalidParams, err.Error())
	}

	searchType := ticketmaster.SearchType(args.Type)
	if !searchType.Valid() {
		return g.sendErrorResponse(ctx, req, shared.InvalidParams, fmt.Sprintf("Invalid search type: %s", args.Type))
	}

	return g.sendResponse(ctx, req, g.runSearch(ctx, searchType, args))
}

// sendResponse sends a JSON-RPC response
func (g *Gateway) sendResponse(ctx context.Context, req shared.JSONRPCRequest, result interface{}) error {
	response := shared.JSONRPCResponse{
		JSONRPC: shared.JSONRPCVersion,
		ID:      req.ID,
		Result:  result,
	}

	return g.transport.Send(ctx, response)
}

// sendErrorResponse sends a JSON-RPC error response
func (g *Gateway) sendErrorResponse(ctx context.Context, req shared.JSONRPCRequest, code shared.ErrorCode, message string) error {
	response := shared.JSONRPCResponse{
		JSONRPC: shared.JSONRPCVersion,
		ID:      req.ID,
		Error: &shared.JSONRPCError{
			Code:    int(code),
			Message: message,
		},
	}

	return g.transport.Send(ctx, response)
}

// unmarshalParams unmarshals request parameters
func unmarshalParams(params json.RawMessage, target interface{}) error {
	if len(params) == 0 {
		return errors.New("missing params")
	}

	return json.Unmarshal(params, target)
}
