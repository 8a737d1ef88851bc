package mcpserver

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// ProtocolVersion is the MCP protocol version advertised on initialize.
const ProtocolVersion = "2024-11-05"

// Request is a JSON-RPC 2.0 request or, without an id, a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *Request) isNotification() bool { return len(r.ID) == 0 }

// Response is a JSON-RPC 2.0 response. Exactly one of Result or Error
// is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

var nullID = json.RawMessage("null")

func result(id json.RawMessage, v any) *Response {
	return &Response{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Result: v}
}

func failure(id json.RawMessage, code int, msg string) *Response {
	if len(id) == 0 {
		id = nullID
	}
	return &Response{JSONRPC: mcp.JSONRPC_VERSION, ID: id, Error: &Error{Code: code, Message: msg}}
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
}

type serverCapabilities struct {
	Tools     listCapability     `json:"tools"`
	Resources resourceCapability `json:"resources"`
}

type listCapability struct {
	ListChanged bool `json:"listChanged"`
}

type resourceCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type resourcesReadParams struct {
	URI string `json:"uri"`
}
