// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package gate runs candidate ABAP and configuration artifacts through a
// priority-ordered pipeline of safety gates and records every run in the
// audit log.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/marcelocantos/erpkit/internal/approval"
	"github.com/marcelocantos/erpkit/internal/audit"
)

var (
	ErrInvalidArtifact = errors.New("invalid artifact")
	ErrUnknownGate     = errors.New("unknown gate")
)

// ArtifactType classifies an artifact.
type ArtifactType string

const (
	Program        ArtifactType = "program"
	Class          ArtifactType = "class"
	FunctionModule ArtifactType = "function_module"
	Configuration  ArtifactType = "configuration"
	Interface      ArtifactType = "interface"
	Include        ArtifactType = "include"
)

// ArtifactTypes lists the valid artifact types.
var ArtifactTypes = []ArtifactType{Program, Class, FunctionModule, Configuration, Interface, Include}

// CodeTypes are the artifact types that carry ABAP source.
var CodeTypes = []ArtifactType{Program, Class, FunctionModule, Interface, Include}

// Valid reports whether t is a known artifact type.
func (t ArtifactType) Valid() bool {
	for _, v := range ArtifactTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Artifact is a candidate unit submitted to the gates.
type Artifact struct {
	Name      string         `json:"name" yaml:"name"`
	Type      ArtifactType   `json:"type" yaml:"type"`
	Source    string         `json:"source,omitempty" yaml:"source,omitempty"`
	Transport string         `json:"transport,omitempty" yaml:"transport,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func (a *Artifact) meta(key string) (any, bool) {
	v, ok := a.Metadata[key]
	return v, ok
}

// Status is a gate outcome.
type Status string

const (
	Passed        Status = "passed"
	Failed        Status = "failed"
	Warning       Status = "warning"
	PendingReview Status = "pending_review"
)

// Result is the outcome of one gate.
type Result struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
	Required bool           `json:"required"`
}

// Strictness shifts warnings toward or away from blocking.
type Strictness string

const (
	Strict     Strictness = "strict"
	Moderate   Strictness = "moderate"
	Permissive Strictness = "permissive"
)

// ParseStrictness converts a string to a Strictness.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(s) {
	case Strict, Moderate, Permissive:
		return Strictness(s), nil
	}
	return "", fmt.Errorf("invalid strictness %q (want strict, moderate, or permissive)", s)
}

// escalate returns Failed under strict and Warning otherwise.
func (s Strictness) escalate() Status {
	if s == Strict {
		return Failed
	}
	return Warning
}

// Env is what a check sees besides the artifact.
type Env struct {
	Strictness Strictness
	Live       bool
	Approvals  *approval.Store
	Audit      *audit.Log
	Logger     *zap.Logger
	Prior      []Result // results of gates that already ran
}

// CheckFunc evaluates one artifact. Name and Required on the returned
// result are filled in by the engine. A returned error becomes a
// required failure.
type CheckFunc func(ctx context.Context, a *Artifact, env Env) (Result, error)

// Gate is a registered check.
type Gate struct {
	Name      string
	Check     CheckFunc
	Priority  int
	Required  bool
	AppliesTo []ArtifactType // empty = every type
	Enabled   bool
	seq       int
}

func (g *Gate) appliesTo(t ArtifactType) bool {
	if len(g.AppliesTo) == 0 {
		return true
	}
	for _, a := range g.AppliesTo {
		if a == t {
			return true
		}
	}
	return false
}

// DefaultPriority is used when none is given.
const DefaultPriority = 50

// Option configures a gate at registration.
type Option func(*Gate)

// WithPriority sets the run order; lower runs first.
func WithPriority(p int) Option { return func(g *Gate) { g.Priority = p } }

// Optional marks the gate non-required: its failures do not block.
func Optional() Option { return func(g *Gate) { g.Required = false } }

// Required sets whether the gate's failures block.
func Required(r bool) Option { return func(g *Gate) { g.Required = r } }

// For restricts the gate to the given artifact types.
func For(types ...ArtifactType) Option {
	return func(g *Gate) { g.AppliesTo = append([]ArtifactType(nil), types...) }
}

// Disabled registers the gate switched off.
func Disabled() Option { return func(g *Gate) { g.Enabled = false } }

// Info is a snapshot of a registered gate.
type Info struct {
	Name      string         `json:"name"`
	Priority  int            `json:"priority"`
	Required  bool           `json:"required"`
	Enabled   bool           `json:"enabled"`
	AppliesTo []ArtifactType `json:"appliesTo,omitempty"`
}

// Config configures an engine.
type Config struct {
	Strictness Strictness
	Live       bool // enables the live-mode-audit gate
	Approvals  *approval.Store
	Audit      *audit.Log
	Logger     *zap.Logger
}

// Engine is the gate registry and evaluator.
type Engine struct {
	mu         sync.RWMutex
	gates      map[string]*Gate
	seq        int
	strictness Strictness
	live       bool
	approvals  *approval.Store
	audit      *audit.Log
	logger     *zap.Logger
}

// NewEngine creates an engine with the built-in gates registered.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		gates:      make(map[string]*Gate),
		strictness: cfg.Strictness,
		live:       cfg.Live,
		approvals:  cfg.Approvals,
		audit:      cfg.Audit,
		logger:     cfg.Logger,
	}
	if e.strictness == "" {
		e.strictness = Moderate
	}
	if e.approvals == nil {
		e.approvals = approval.NewStore()
	}
	if e.audit == nil {
		e.audit = audit.New()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	registerBuiltins(e)
	return e
}

// Register adds a gate. Re-registering a name replaces the check and
// options but keeps its place among equal priorities.
func (e *Engine) Register(name string, check CheckFunc, opts ...Option) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("register gate: name is required")
	}
	if check == nil {
		return fmt.Errorf("register gate %q: check is required", name)
	}
	g := &Gate{Name: name, Check: check, Priority: DefaultPriority, Required: true, Enabled: true}
	for _, o := range opts {
		o(g)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if old, ok := e.gates[name]; ok {
		e.logger.Warn("gate re-registered", zap.String("gate", name))
		g.seq = old.seq
	} else {
		e.seq++
		g.seq = e.seq
	}
	e.gates[name] = g
	return nil
}

// SetEnabled switches a gate on or off.
func (e *Engine) SetEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.gates[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGate, name)
	}
	g.Enabled = enabled
	return nil
}

// Gates returns the registered gates in run order.
func (e *Engine) Gates() []Info {
	var out []Info
	for _, g := range e.ordered() {
		out = append(out, Info{
			Name:      g.Name,
			Priority:  g.Priority,
			Required:  g.Required,
			Enabled:   g.Enabled,
			AppliesTo: g.AppliesTo,
		})
	}
	return out
}

// ordered returns copies of the gates sorted by priority, then
// registration order.
func (e *Engine) ordered() []Gate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	gates := make([]Gate, 0, len(e.gates))
	for _, g := range e.gates {
		gates = append(gates, *g)
	}
	sort.Slice(gates, func(i, j int) bool {
		if gates[i].Priority != gates[j].Priority {
			return gates[i].Priority < gates[j].Priority
		}
		return gates[i].seq < gates[j].seq
	})
	return gates
}

// SetStrictness changes the strictness for subsequent validations.
func (e *Engine) SetStrictness(s Strictness) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strictness = s
}

// Strictness returns the current strictness.
func (e *Engine) Strictness() Strictness {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strictness
}

// AuditLog returns the engine's audit log.
func (e *Engine) AuditLog() *audit.Log { return e.audit }

// Approvals returns the engine's approval store.
func (e *Engine) Approvals() *approval.Store { return e.approvals }

// Overall status values.
const (
	OverallApproved             = "approved"
	OverallApprovedWithWarnings = "approved_with_warnings"
	OverallPendingReview        = "pending_review"
	OverallRejected             = "rejected"
)

// Summary counts results by status.
type Summary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
	Pending  int `json:"pendingReview"`
}

// Report is the outcome of ValidateArtifact.
type Report struct {
	ArtifactName  string     `json:"artifactName"`
	ArtifactType  string     `json:"artifactType"`
	Transport     string     `json:"transport,omitempty"`
	Approved      bool       `json:"approved"`
	OverallStatus string     `json:"overallStatus"`
	Strictness    Strictness `json:"strictness"`
	GateResults   []Result   `json:"gateResults"`
	Summary       Summary    `json:"summary"`
	AuditID       string     `json:"auditId,omitempty"`
	ApprovalID    string     `json:"approvalId,omitempty"`
}

// ValidateArtifact runs every enabled, applicable gate in priority order
// and appends the outcome to the audit log.
func (e *Engine) ValidateArtifact(ctx context.Context, a Artifact) (*Report, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArtifact)
	}
	if !a.Type.Valid() {
		return nil, fmt.Errorf("%w: type %q (want one of %s)", ErrInvalidArtifact, a.Type, joinTypes(ArtifactTypes))
	}

	env := Env{
		Strictness: e.Strictness(),
		Live:       e.live,
		Approvals:  e.approvals,
		Audit:      e.audit,
		Logger:     e.logger,
	}
	rep := &Report{
		ArtifactName: a.Name,
		ArtifactType: string(a.Type),
		Transport:    a.Transport,
		Strictness:   env.Strictness,
		GateResults:  []Result{},
	}
	for _, g := range e.ordered() {
		if !g.Enabled || !g.appliesTo(a.Type) {
			continue
		}
		env.Prior = rep.GateResults
		r := e.run(ctx, &g, &a, env)
		if id, ok := r.Details["approvalId"].(string); ok {
			rep.ApprovalID = id
		}
		rep.GateResults = append(rep.GateResults, r)
	}
	rep.Summary, rep.Approved, rep.OverallStatus = overall(rep.GateResults)
	rep.AuditID = e.record(rep)
	return rep, nil
}

// run invokes one gate, converting errors and panics into required failures.
func (e *Engine) run(ctx context.Context, g *Gate, a *Artifact, env Env) (r Result) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Warn("gate panicked", zap.String("gate", g.Name), zap.Any("panic", p))
			r = Result{Name: g.Name, Status: Failed, Message: fmt.Sprintf("gate error: %v", p), Required: true}
		}
	}()
	r, err := g.Check(ctx, a, env)
	if err != nil {
		e.logger.Warn("gate error", zap.String("gate", g.Name), zap.Error(err))
		return Result{Name: g.Name, Status: Failed, Message: fmt.Sprintf("gate error: %v", err), Required: true}
	}
	r.Name = g.Name
	r.Required = g.Required
	if r.Status == "" {
		r.Status = Passed
	}
	return r
}

// overall derives the verdict from gate results.
func overall(results []Result) (Summary, bool, string) {
	var (
		s             Summary
		requiredFail  bool
		requiredPend  bool
		anyPending    bool
		anyWarning    bool
		optionalFails bool
	)
	for _, r := range results {
		switch r.Status {
		case Passed:
			s.Passed++
		case Failed:
			s.Failed++
			if r.Required {
				requiredFail = true
			} else {
				optionalFails = true
			}
		case Warning:
			s.Warnings++
			anyWarning = true
		case PendingReview:
			s.Pending++
			anyPending = true
			if r.Required {
				requiredPend = true
			}
		}
	}
	approved := !requiredFail && !requiredPend
	switch {
	case anyPending && !approved:
		return s, false, OverallPendingReview
	case requiredFail:
		return s, false, OverallRejected
	case anyWarning || anyPending || optionalFails:
		return s, true, OverallApprovedWithWarnings
	}
	return s, true, OverallApproved
}

// record appends the validation to the audit log. Failures are logged
// and dropped.
func (e *Engine) record(rep *Report) string {
	entry, err := e.audit.Append(audit.Entry{
		Event:           audit.EventValidation,
		ArtifactName:    rep.ArtifactName,
		ArtifactType:    rep.ArtifactType,
		Transport:       rep.Transport,
		GateResults:     GateRecords(rep.GateResults),
		OverallApproved: rep.Approved,
		OverallStatus:   rep.OverallStatus,
		Strictness:      string(rep.Strictness),
	})
	if err != nil {
		e.logger.Error("audit append failed", zap.String("artifact", rep.ArtifactName), zap.Error(err))
		return ""
	}
	return entry.ID
}

// GateRecords summarizes results for approval requests.
func GateRecords(results []Result) []audit.GateRecord {
	recs := make([]audit.GateRecord, len(results))
	for i, r := range results {
		recs[i] = audit.GateRecord{Name: r.Name, Status: string(r.Status), Message: r.Message}
	}
	return recs
}

func joinTypes(types []ArtifactType) string {
	s := make([]string, len(types))
	for i, t := range types {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}
