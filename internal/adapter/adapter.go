// Package adapter defines the contract ERP source adapters expose to tool
// handlers and health checks, plus the registry and factory that build them.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

var (
	ErrUnknownAdapter = errors.New("unknown adapter")
	ErrNotConnected   = errors.New("adapter not connected")
	ErrNoClient       = errors.New("live adapter has no wire client")
	ErrUnknownTable   = errors.New("unknown table")
	ErrNoEntity       = errors.New("entity type not available")
)

// Mode selects canned data or a live wire client.
type Mode string

const (
	ModeMock Mode = "mock"
	ModeLive Mode = "live"
)

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMock, ModeLive:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q (want mock or live)", s)
}

// ReadOptions narrows a table read.
type ReadOptions struct {
	Fields  []string `json:"fields,omitempty"`
	Where   string   `json:"where,omitempty"`
	MaxRows int      `json:"maxRows,omitempty"` // 0 = DefaultMaxRows
}

// DefaultMaxRows caps reads that do not set MaxRows.
const DefaultMaxRows = 100

// TableResult is the outcome of ReadTable.
type TableResult struct {
	Table     string           `json:"table"`
	Fields    []string         `json:"fields"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"rowCount"`
	Truncated bool             `json:"truncated"`
}

// Health is the outcome of HealthCheck.
type Health struct {
	System    string  `json:"system"`
	Mode      Mode    `json:"mode"`
	Healthy   bool    `json:"healthy"`
	LatencyMs float64 `json:"latencyMs"`
	Message   string  `json:"message,omitempty"`
}

// Status is a snapshot of an adapter's connection state.
type Status struct {
	System      string    `json:"system"`
	Mode        Mode      `json:"mode"`
	Connected   bool      `json:"connected"`
	SessionID   string    `json:"sessionId,omitempty"`
	ConnectedAt time.Time `json:"connectedAt,omitzero"`
	Calls       int       `json:"calls"`
}

// Adapter is the capability set every source system exposes.
type Adapter interface {
	// System returns the upper-cased source system identifier.
	System() string

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	// ReadTable returns rows of a source table.
	ReadTable(ctx context.Context, table string, opts ReadOptions) (*TableResult, error)

	// QueryEntities returns source-shaped records for an entity type.
	// Filter keys are source field names compared for equality.
	QueryEntities(ctx context.Context, et canonical.EntityType, filter map[string]any) ([]map[string]any, error)

	SystemInfo(ctx context.Context) (map[string]any, error)
	HealthCheck(ctx context.Context) (*Health, error)
	Status() Status
}

// Client is the wire-level contract a live adapter delegates to. RFC and
// OData implementations live outside this module.
type Client interface {
	Open(ctx context.Context) error
	Close() error
	ReadTable(ctx context.Context, table string, opts ReadOptions) (*TableResult, error)
	Query(ctx context.Context, entitySet string, filter map[string]any) ([]map[string]any, error)
	SystemInfo(ctx context.Context) (map[string]any, error)
	Ping(ctx context.Context) error
}
