// Package cli implements the erpkit sub-commands. Each runner writes to
// the given streams and returns a process exit code.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/adapter"
	"github.com/marcelocantos/erpkit/internal/audit"
	"github.com/marcelocantos/erpkit/internal/approval"
	"github.com/marcelocantos/erpkit/internal/canonical"
	"github.com/marcelocantos/erpkit/internal/config"
	"github.com/marcelocantos/erpkit/internal/gate"
	"github.com/marcelocantos/erpkit/internal/mapping"
	"github.com/marcelocantos/erpkit/internal/tool"
)

// App holds the collaborators shared by the commands.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Pool   *adapter.Pool
	Gates  *gate.Engine
	Tools  *tool.Registry
	Env    *tool.Env
}

// NewApp builds the adapter pool, gate engine and tool registry from cfg.
// Live mode has no repository gateway; the config tools then fail with
// tool.ErrNoGateway.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := canonical.CheckSchemas(); err != nil {
		return nil, err
	}
	latency, err := cfg.MockLatency()
	if err != nil {
		return nil, err
	}
	mode := cfg.ModeValue()

	areg := adapter.NewRegistry()
	adapter.RegisterBuiltins(areg)
	pool := adapter.NewPool(areg, adapter.Options{Mode: mode, Latency: latency, Logger: logger})

	gates := gate.NewEngine(gate.Config{
		Strictness: cfg.StrictnessValue(),
		Live:       mode == adapter.ModeLive,
		Approvals:  approval.NewStore(),
		Audit:      audit.New(),
		Logger:     logger,
	})
	if err := cfg.ApplyGates(gates); err != nil {
		return nil, err
	}
	if err := cfg.ApplyApprovals(gates.Approvals()); err != nil {
		return nil, err
	}

	tools, err := tool.NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}
	tables := mapping.Default()
	env := &tool.Env{
		Mode:     mode,
		Adapters: pool,
		Mapper:   canonical.NewMapper(tables, logger),
		Tables:   tables,
		Gates:    gates,
		Logger:   logger,
	}
	if mode == adapter.ModeMock {
		env.Gateway = tool.NewMockGateway()
	}

	if cfg.Adapters.ConnectOnStart {
		for _, s := range pool.Systems() {
			if _, err := pool.Get(ctx, s); err != nil {
				return nil, fmt.Errorf("connect %s: %w", s, err)
			}
		}
	}
	return &App{Config: cfg, Logger: logger, Pool: pool, Gates: gates, Tools: tools, Env: env}, nil
}

// Close disconnects the adapters.
func (a *App) Close(ctx context.Context) error {
	return a.Pool.Close(ctx)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	return tw
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
