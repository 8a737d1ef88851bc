package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

// source is the canned data behind a mock adapter.
type source interface {
	table(name string) ([]map[string]any, bool)
	records(et canonical.EntityType) ([]map[string]any, bool)
	info() map[string]any
}

// erp implements Adapter for every built-in system. In mock mode it
// serves a source; in live mode it delegates to a Client.
type erp struct {
	system     string
	mode       Mode
	src        source
	client     Client
	entitySets map[canonical.EntityType]string
	latency    time.Duration
	logger     *zap.Logger

	mu     sync.Mutex
	status Status
}

func newERP(system string, src source, entitySets map[canonical.EntityType]string, opts Options) (*erp, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeMock
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &erp{
		system:     system,
		mode:       mode,
		src:        src,
		client:     opts.Client,
		entitySets: entitySets,
		latency:    opts.Latency,
		logger:     logger.With(zap.String("adapter", system), zap.String("mode", string(mode))),
		status:     Status{System: system, Mode: mode},
	}, nil
}

func (a *erp) System() string { return a.system }

func (a *erp) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status.Connected {
		return nil
	}
	if a.mode == ModeLive {
		if a.client == nil {
			return fmt.Errorf("%s: %w", a.system, ErrNoClient)
		}
		if err := a.client.Open(ctx); err != nil {
			return fmt.Errorf("%s: connect: %w", a.system, err)
		}
	} else if err := a.simulate(ctx); err != nil {
		return err
	}
	a.status.Connected = true
	a.status.SessionID = uuid.NewString()
	a.status.ConnectedAt = time.Now().UTC()
	a.logger.Info("adapter connected", zap.String("session_id", a.status.SessionID))
	return nil
}

func (a *erp) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.status.Connected {
		return nil
	}
	var err error
	if a.mode == ModeLive && a.client != nil {
		err = a.client.Close()
	}
	a.status.Connected = false
	a.status.SessionID = ""
	a.logger.Info("adapter disconnected")
	return err
}

// begin checks the connection and counts the call.
func (a *erp) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.status.Connected {
		return fmt.Errorf("%s: %w", a.system, ErrNotConnected)
	}
	a.status.Calls++
	return nil
}

// simulate waits out the fabricated mock latency.
func (a *erp) simulate(ctx context.Context) error {
	if a.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *erp) ReadTable(ctx context.Context, table string, opts ReadOptions) (*TableResult, error) {
	if err := a.begin(); err != nil {
		return nil, err
	}
	if a.mode == ModeLive {
		return a.client.ReadTable(ctx, table, opts)
	}
	if err := a.simulate(ctx); err != nil {
		return nil, err
	}
	rows, ok := a.src.table(table)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", a.system, ErrUnknownTable, table)
	}
	return selectRows(table, rows, opts)
}

func (a *erp) QueryEntities(ctx context.Context, et canonical.EntityType, filter map[string]any) ([]map[string]any, error) {
	if err := a.begin(); err != nil {
		return nil, err
	}
	if a.mode == ModeLive {
		set, ok := a.entitySets[et]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", a.system, ErrNoEntity, et)
		}
		return a.client.Query(ctx, set, filter)
	}
	if err := a.simulate(ctx); err != nil {
		return nil, err
	}
	recs, ok := a.src.records(et)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", a.system, ErrNoEntity, et)
	}
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		if matchesFilter(r, filter) {
			out = append(out, copyRow(r, nil))
		}
	}
	return out, nil
}

func (a *erp) SystemInfo(ctx context.Context) (map[string]any, error) {
	if err := a.begin(); err != nil {
		return nil, err
	}
	if a.mode == ModeLive {
		return a.client.SystemInfo(ctx)
	}
	if err := a.simulate(ctx); err != nil {
		return nil, err
	}
	info := a.src.info()
	info["sourceSystem"] = a.system
	info["mode"] = string(a.mode)
	return info, nil
}

func (a *erp) HealthCheck(ctx context.Context) (*Health, error) {
	start := time.Now()
	h := &Health{System: a.system, Mode: a.mode}
	var err error
	switch {
	case !a.Status().Connected:
		err = ErrNotConnected
	case a.mode == ModeLive:
		err = a.client.Ping(ctx)
	default:
		err = a.simulate(ctx)
	}
	h.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		h.Message = err.Error()
		return h, nil
	}
	h.Healthy = true
	h.Message = "ok"
	return h, nil
}

func (a *erp) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func selectRows(table string, rows []map[string]any, opts ReadOptions) (*TableResult, error) {
	conds, err := parseWhere(opts.Where)
	if err != nil {
		return nil, err
	}
	limit := opts.MaxRows
	if limit <= 0 {
		limit = DefaultMaxRows
	}

	fields := make([]string, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		fields = append(fields, strings.ToUpper(f))
	}
	if len(fields) == 0 && len(rows) > 0 {
		for k := range rows[0] {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}

	res := &TableResult{Table: strings.ToUpper(table), Fields: fields, Rows: []map[string]any{}}
	for _, r := range rows {
		if !matchAll(conds, r) {
			continue
		}
		if len(res.Rows) == limit {
			res.Truncated = true
			break
		}
		res.Rows = append(res.Rows, copyRow(r, opts.Fields))
	}
	res.RowCount = len(res.Rows)
	return res, nil
}

// copyRow returns a copy of r, projected onto fields when non-empty.
func copyRow(r map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		out := make(map[string]any, len(r))
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := lookupField(r, f); ok {
			out[strings.ToUpper(f)] = v
		}
	}
	return out
}

func matchesFilter(r map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := lookupField(r, k)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
