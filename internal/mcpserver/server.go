// Package mcpserver answers MCP JSON-RPC 2.0 requests over
// newline-delimited stdio: initialize, ping, the tool methods and the
// sap:// resources.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/ipc"
	"github.com/marcelocantos/erpkit/internal/tool"
)

// Server dispatches JSON-RPC requests to the tool registry. Requests are
// handled one at a time in arrival order.
type Server struct {
	tools  *tool.Registry
	env    *tool.Env
	info   mcp.Implementation
	logger *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithServerInfo sets the name and version reported by initialize.
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		s.info = mcp.Implementation{Name: name, Version: version}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server over a tool registry and the environment its
// handlers run in.
func New(tools *tool.Registry, env *tool.Env, opts ...Option) *Server {
	s := &Server{
		tools:  tools,
		env:    env,
		info:   mcp.Implementation{Name: "erpkit", Version: "dev"},
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ServeStdio serves os.Stdin and os.Stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one message per line from r and writes one response line
// per request to w until r reaches EOF or ctx ends. Notifications get no
// response.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	out := ipc.NewWriter(w)
	s.logger.Info("mcp server started",
		zap.String("name", s.info.Name),
		zap.String("version", s.info.Version),
		zap.String("mode", string(s.env.Mode)))
	err := ipc.ReadLines(ctx, r, func(line []byte) error {
		resp := s.Handle(ctx, line)
		if resp == nil {
			return nil
		}
		return out.WriteJSON(resp)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

// Handle processes one raw message and returns its response, or nil for
// a notification.
func (s *Server) Handle(ctx context.Context, line []byte) *Response {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		s.logger.Warn("batch request rejected")
		return failure(nullID, mcp.INVALID_REQUEST, "batch requests are not supported")
	}
	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		s.logger.Warn("parse error", zap.Error(err))
		return failure(nullID, mcp.PARSE_ERROR, "Parse error: "+err.Error())
	}
	if req.JSONRPC != mcp.JSONRPC_VERSION {
		return failure(req.ID, mcp.INVALID_REQUEST, `Invalid Request: jsonrpc must be "2.0"`)
	}
	if req.Method == "" {
		if req.isNotification() {
			return nil
		}
		return failure(req.ID, mcp.INVALID_REQUEST, "Invalid Request: method is required")
	}
	if req.isNotification() {
		s.logger.Debug("notification", zap.String("method", req.Method))
		return nil
	}

	log := s.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("method", req.Method),
		zap.ByteString("id", req.ID))
	log.Debug("rpc request")

	v, err := s.dispatch(ctx, log, &req)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return failure(req.ID, rpcErr.Code, rpcErr.Message)
		}
		log.Debug("rpc failed", zap.Error(err))
		return failure(req.ID, codeFor(err), err.Error())
	}
	return result(req.ID, v)
}

// dispatch routes a request. Handler panics become internal errors.
func (s *Server) dispatch(ctx context.Context, log *zap.Logger, req *Request) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", zap.Any("panic", r))
			v, err = nil, &Error{Code: mcp.INTERNAL_ERROR, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	switch mcp.MCPMethod(req.Method) {
	case mcp.MethodInitialize:
		return s.initialize(), nil
	case mcp.MethodPing:
		return struct{}{}, nil
	case mcp.MethodToolsList:
		return mcp.ListToolsResult{Tools: s.tools.List()}, nil
	case mcp.MethodToolsCall:
		return s.callTool(ctx, req.Params)
	case mcp.MethodResourcesList:
		return mcp.ListResourcesResult{Resources: resourceList()}, nil
	case mcp.MethodResourcesTemplatesList:
		return mcp.ListResourceTemplatesResult{ResourceTemplates: resourceTemplates()}, nil
	case mcp.MethodResourcesRead:
		return s.readResource(ctx, req.Params)
	}
	return nil, &Error{Code: mcp.METHOD_NOT_FOUND, Message: "Method not found: " + req.Method}
}

func (s *Server) initialize() initializeResult {
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      s.info,
	}
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, error) {
	var p toolsCallParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, invalidParams("params.name is required")
	}
	args := map[string]any{}
	if len(p.Arguments) > 0 && !bytes.Equal(p.Arguments, nullID) {
		if err := json.Unmarshal(p.Arguments, &args); err != nil {
			return nil, invalidParams("params.arguments must be an object")
		}
	}
	v, err := s.tools.Call(ctx, s.env, p.Name, args)
	if err != nil {
		return nil, err
	}
	return textResult(v)
}

// textResult wraps a handler result as a single JSON text content.
func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(raw, nullID) {
		return invalidParams("params are required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams("invalid params: " + err.Error())
	}
	return nil
}

func invalidParams(msg string) *Error {
	return &Error{Code: mcp.INVALID_PARAMS, Message: "Invalid params: " + msg}
}

// codeFor maps a handler error to a JSON-RPC error code.
func codeFor(err error) int {
	if errors.Is(err, tool.ErrInvalidArguments) {
		return mcp.INVALID_PARAMS
	}
	return mcp.INTERNAL_ERROR
}
