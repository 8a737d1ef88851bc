// Package tool declares the MCP tool catalogue, validates call arguments
// against each tool's input schema, and routes calls to the adapter,
// canonical, safety and config subsystems.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/adapter"
	"github.com/marcelocantos/erpkit/internal/canonical"
	"github.com/marcelocantos/erpkit/internal/gate"
	"github.com/marcelocantos/erpkit/internal/mapping"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrNoGateway        = errors.New("no live gateway configured")
)

// Subsystem groups tools by name prefix.
type Subsystem string

const (
	SubsystemSAP       Subsystem = "sap"
	SubsystemInfor     Subsystem = "infor"
	SubsystemCanonical Subsystem = "canonical"
	SubsystemSafety    Subsystem = "safety"
	SubsystemConfig    Subsystem = "config"
)

// SubsystemOf returns the subsystem a tool name belongs to. Unprefixed
// names are SAP tools.
func SubsystemOf(name string) Subsystem {
	if i := strings.IndexByte(name, '_'); i > 0 {
		switch s := Subsystem(name[:i]); s {
		case SubsystemInfor, SubsystemCanonical, SubsystemSafety, SubsystemConfig:
			return s
		}
	}
	return SubsystemSAP
}

// Env carries the collaborators handlers call into.
type Env struct {
	Mode     adapter.Mode
	Adapters *adapter.Pool
	Mapper   *canonical.Mapper
	Tables   *mapping.Tables
	Gates    *gate.Engine
	Gateway  Gateway // nil in live mode without a wire gateway
	Logger   *zap.Logger
}

func (env *Env) gateway() (Gateway, error) {
	if env.Gateway == nil {
		return nil, ErrNoGateway
	}
	return env.Gateway, nil
}

// Handler executes a tool call. The result is JSON-encoded into the
// response text.
type Handler func(ctx context.Context, env *Env, args Args) (any, error)

// Tool is a declared tool and its handler.
type Tool struct {
	Spec   mcp.Tool
	Handle Handler
}

type entry struct {
	Tool
	schema *jsonschema.Schema
}

// Registry holds the tool catalogue in declaration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*entry
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*entry)}
}

// Register compiles the tool's input schema and adds it.
func (r *Registry) Register(t Tool) error {
	name := t.Spec.Name
	if name == "" {
		return fmt.Errorf("register tool: name is required")
	}
	if t.Handle == nil {
		return fmt.Errorf("register tool %s: handler is required", name)
	}
	sch, err := compileSchema(name, t.Spec.InputSchema)
	if err != nil {
		return fmt.Errorf("register tool %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		r.order = append(r.order, name)
	}
	r.tools[name] = &entry{Tool: t, schema: sch}
	return nil
}

func compileSchema(name string, schema mcp.ToolInputSchema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal input schema: %w", err)
	}
	url := "urn:erpkit:tool:" + name
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compile: %w", err)
	}
	return sch, nil
}

// List returns the tool declarations in registration order.
func (r *Registry) List() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Spec)
	}
	return out
}

// Lookup returns a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	if !ok {
		return Tool{}, false
	}
	return e.Tool, true
}

// Call validates args and runs the named tool. Nil args are treated as
// an empty object.
func (r *Registry) Call(ctx context.Context, env *Env, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(e.schema, args); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, err)
	}
	if env.Logger != nil {
		env.Logger.Debug("tools/call",
			zap.String("tool", name),
			zap.String("mode", string(env.Mode)),
			zap.String("subsystem", string(SubsystemOf(name))))
	}
	return e.Handle(ctx, env, Args(args))
}

// validateArgs round-trips args through JSON so the validator sees plain
// JSON values.
func validateArgs(sch *jsonschema.Schema, args map[string]any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return sch.Validate(doc)
}
