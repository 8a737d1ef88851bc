// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/marcelocantos/erpkit/internal/audit"
)

func report() Artifact {
	return Artifact{
		Name:      "Z_REPORT",
		Type:      Program,
		Source:    "REPORT z_report.",
		Transport: "DEVK900001",
	}
}

func validate(t *testing.T, e *Engine, a Artifact) *Report {
	t.Helper()
	rep, err := e.ValidateArtifact(context.Background(), a)
	if err != nil {
		t.Fatalf("ValidateArtifact: %v", err)
	}
	return rep
}

func result(t *testing.T, rep *Report, name string) Result {
	t.Helper()
	for _, r := range rep.GateResults {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result for gate %q in %+v", name, rep.GateResults)
	return Result{}
}

func TestModerateApprovesWithTransport(t *testing.T) {
	rep := validate(t, NewEngine(Config{Strictness: Moderate}), report())
	if !rep.Approved {
		t.Fatalf("not approved: %+v", rep.GateResults)
	}
	if rep.OverallStatus != OverallApproved && rep.OverallStatus != OverallApprovedWithWarnings {
		t.Errorf("overallStatus = %q", rep.OverallStatus)
	}
	if rep.AuditID == "" {
		t.Error("no audit id")
	}
}

func TestMissingTransportRejects(t *testing.T) {
	a := report()
	a.Transport = ""
	rep := validate(t, NewEngine(Config{Strictness: Moderate}), a)
	if rep.Approved || rep.OverallStatus != OverallRejected {
		t.Fatalf("approved=%v overallStatus=%q, want rejected", rep.Approved, rep.OverallStatus)
	}
	if r := result(t, rep, TransportGate); r.Status != Failed {
		t.Errorf("transport gate = %q, want failed", r.Status)
	}
}

func TestCriticalATCRejects(t *testing.T) {
	a := report()
	a.Source = "REPORT z_report.\nSELECT * FROM mara INTO TABLE @DATA(lt_mara).\nCALL TRANSACTION 'MM01'.\n"
	rep := validate(t, NewEngine(Config{Strictness: Moderate}), a)
	if rep.OverallStatus != OverallRejected {
		t.Fatalf("overallStatus = %q, want rejected", rep.OverallStatus)
	}
	r := result(t, rep, ATCCheck)
	if r.Status != Failed {
		t.Fatalf("atc = %q, want failed", r.Status)
	}
	if n, _ := r.Details["critical"].(int); n < 1 {
		t.Errorf("critical findings = %v", r.Details["critical"])
	}
}

func TestStrictApprovalFlow(t *testing.T) {
	e := NewEngine(Config{Strictness: Strict})
	a := report()
	a.Metadata = map[string]any{"description": "Material stock report", "hasTests": true}

	rep := validate(t, e, a)
	if rep.Approved || rep.OverallStatus != OverallPendingReview {
		t.Fatalf("approved=%v overallStatus=%q, want pending_review", rep.Approved, rep.OverallStatus)
	}
	if rep.ApprovalID != "APR-000001" {
		t.Errorf("approvalId = %q", rep.ApprovalID)
	}

	// A second run reuses the pending request.
	rep = validate(t, e, a)
	if rep.ApprovalID != "APR-000001" || len(e.Approvals().Pending()) != 1 {
		t.Errorf("second run filed another request: %q, pending %d", rep.ApprovalID, len(e.Approvals().Pending()))
	}

	req, _ := e.Approvals().Get("APR-000001")
	if len(req.GateResults) == 0 || req.GateResults[0].Name != SyntaxCheck {
		t.Errorf("request gate results = %+v", req.GateResults)
	}

	if _, err := e.Approvals().Approve("APR-000001", "alice", ""); err != nil {
		t.Fatal(err)
	}
	rep = validate(t, e, a)
	if !rep.Approved || rep.OverallStatus != OverallApproved {
		t.Fatalf("after approval: approved=%v overallStatus=%q %+v", rep.Approved, rep.OverallStatus, rep.GateResults)
	}
}

func TestPermissiveConfiguration(t *testing.T) {
	e := NewEngine(Config{Strictness: Permissive})
	rep := validate(t, e, Artifact{Name: "ZCONF_PRICING", Type: Configuration})
	if !rep.Approved || rep.OverallStatus != OverallApprovedWithWarnings {
		t.Fatalf("approved=%v overallStatus=%q", rep.Approved, rep.OverallStatus)
	}
	if r := result(t, rep, TransportGate); r.Status != Warning {
		t.Errorf("transport gate = %q, want warning", r.Status)
	}
	if r := result(t, rep, HumanApproval); r.Status != Passed {
		t.Errorf("human approval = %q, want passed", r.Status)
	}
	for _, r := range rep.GateResults {
		if r.Name == SyntaxCheck || r.Name == ATCCheck || r.Name == UnitTestCoverage {
			t.Errorf("code gate %s ran for configuration", r.Name)
		}
	}
}

func TestInvalidArtifact(t *testing.T) {
	e := NewEngine(Config{})
	for _, a := range []Artifact{{Type: Program}, {Name: "Z_X", Type: "report"}} {
		if _, err := e.ValidateArtifact(context.Background(), a); !errors.Is(err, ErrInvalidArtifact) {
			t.Errorf("%+v: err = %v, want ErrInvalidArtifact", a, err)
		}
	}
	if e.AuditLog().Len() != 0 {
		t.Error("invalid artifact was audited")
	}
}

func TestOrderingAndAudit(t *testing.T) {
	e := NewEngine(Config{})
	pass := func(context.Context, *Artifact, Env) (Result, error) { return Result{Status: Passed}, nil }
	for _, name := range []string{"tie-b", "tie-a"} {
		if err := e.Register(name, pass, WithPriority(15)); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Register("first", pass, WithPriority(1)); err != nil {
		t.Fatal(err)
	}
	rep := validate(t, e, report())

	want := []string{"first", SyntaxCheck, "tie-b", "tie-a", ATCCheck, NamingConvention, TransportGate, UnitTestCoverage, HumanApproval}
	if len(rep.GateResults) != len(want) {
		t.Fatalf("got %d results, want %d", len(rep.GateResults), len(want))
	}
	entries := e.AuditLog().Entries()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	for i, name := range want {
		if rep.GateResults[i].Name != name {
			t.Errorf("result %d = %q, want %q", i, rep.GateResults[i].Name, name)
		}
		if entries[0].GateResults[i].Name != name {
			t.Errorf("audit record %d = %q, want %q", i, entries[0].GateResults[i].Name, name)
		}
	}
	if entries[0].ID != rep.AuditID || entries[0].OverallStatus != rep.OverallStatus {
		t.Errorf("audit entry %+v does not match report", entries[0])
	}
}

func TestGateErrorsBecomeRequiredFailures(t *testing.T) {
	tests := []struct {
		name  string
		check CheckFunc
	}{
		{"error", func(context.Context, *Artifact, Env) (Result, error) { return Result{}, errors.New("backend down") }},
		{"panic", func(context.Context, *Artifact, Env) (Result, error) { panic("nil map") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			e := NewEngine(Config{Logger: zap.New(core)})
			if err := e.Register("flaky", tt.check, Optional()); err != nil {
				t.Fatal(err)
			}
			rep := validate(t, e, report())
			r := result(t, rep, "flaky")
			if r.Status != Failed || !r.Required || !strings.HasPrefix(r.Message, "gate error:") {
				t.Errorf("result = %+v", r)
			}
			if rep.OverallStatus != OverallRejected {
				t.Errorf("overallStatus = %q, want rejected", rep.OverallStatus)
			}
			if logs.FilterField(zap.String("gate", "flaky")).Len() != 1 {
				t.Errorf("expected one warning for flaky gate, got %d", logs.Len())
			}
		})
	}
}

func TestReRegisterWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewEngine(Config{Logger: zap.New(core)})
	fail := func(context.Context, *Artifact, Env) (Result, error) { return Result{Status: Failed}, nil }
	if err := e.Register(NamingConvention, fail, WithPriority(30)); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessage("gate re-registered").Len() != 1 {
		t.Error("no re-registration warning")
	}
	if r := result(t, validate(t, e, report()), NamingConvention); r.Status != Failed {
		t.Errorf("replacement check not used: %+v", r)
	}
	if err := e.Register("", fail); err == nil {
		t.Error("empty name accepted")
	}
}

func TestSetEnabled(t *testing.T) {
	e := NewEngine(Config{})
	if err := e.SetEnabled(TransportGate, false); err != nil {
		t.Fatal(err)
	}
	a := report()
	a.Transport = ""
	if rep := validate(t, e, a); !rep.Approved {
		t.Errorf("disabled transport gate still blocked: %+v", rep.GateResults)
	}
	if err := e.SetEnabled("nope", true); !errors.Is(err, ErrUnknownGate) {
		t.Errorf("err = %v, want ErrUnknownGate", err)
	}
	for _, g := range e.Gates() {
		if g.Name == TransportGate && g.Enabled {
			t.Error("Gates() reports disabled gate as enabled")
		}
	}
}

func TestGatesSnapshot(t *testing.T) {
	gates := NewEngine(Config{}).Gates()
	want := []struct {
		name     string
		priority int
		required bool
		enabled  bool
	}{
		{LiveModeAudit, 5, false, false},
		{SyntaxCheck, 10, true, true},
		{ATCCheck, 20, true, true},
		{NamingConvention, 30, true, true},
		{TransportGate, 40, true, true},
		{UnitTestCoverage, 50, false, true},
		{HumanApproval, 90, true, true},
	}
	if len(gates) != len(want) {
		t.Fatalf("got %d gates, want %d", len(gates), len(want))
	}
	for i, w := range want {
		g := gates[i]
		if g.Name != w.name || g.Priority != w.priority || g.Required != w.required || g.Enabled != w.enabled {
			t.Errorf("gate %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestLiveModeAudit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := NewEngine(Config{Live: true, Logger: zap.New(core)})
	rep := validate(t, e, report())
	r := rep.GateResults[0]
	if r.Name != LiveModeAudit || r.Status != Passed || r.Required {
		t.Fatalf("first result = %+v", r)
	}
	if r.Details["sourceHash"] != "fa255ac9" {
		t.Errorf("sourceHash = %v", r.Details["sourceHash"])
	}
	entries := e.AuditLog().Entries()
	if len(entries) != 2 || entries[0].Event != audit.EventLiveAccess || entries[1].Event != audit.EventValidation {
		t.Fatalf("audit entries = %+v", entries)
	}
	if logs.FilterMessage("live-mode artifact access").Len() != 1 {
		t.Error("no live-mode log record")
	}
	if err := e.AuditLog().Verify(); err != nil {
		t.Errorf("audit chain: %v", err)
	}
}

func TestStrictnessChanges(t *testing.T) {
	e := NewEngine(Config{})
	e.SetStrictness(Strict)
	if e.Strictness() != Strict {
		t.Fatalf("Strictness() = %q", e.Strictness())
	}
	if _, err := ParseStrictness("lenient"); err == nil {
		t.Error("ParseStrictness accepted lenient")
	}
}

func TestNamingConvention(t *testing.T) {
	desc := map[string]any{"description": "Material master report"}
	tests := []struct {
		name       string
		artifact   Artifact
		strictness Strictness
		want       Status
	}{
		{"program", Artifact{Name: "Z_REPORT", Type: Program, Metadata: desc}, Moderate, Passed},
		{"program y", Artifact{Name: "YREPORT", Type: Program, Metadata: desc}, Moderate, Passed},
		{"program bad prefix", Artifact{Name: "A_REPORT", Type: Program, Metadata: desc}, Moderate, Failed},
		{"class", Artifact{Name: "ZCL_ITEM", Type: Class, Metadata: desc}, Moderate, Passed},
		{"class bad prefix", Artifact{Name: "Z_ITEM", Type: Class, Metadata: desc}, Moderate, Failed},
		{"function module", Artifact{Name: "Z_GET_STOCK", Type: FunctionModule, Metadata: desc}, Moderate, Passed},
		{"function module bad", Artifact{Name: "ZGET_STOCK", Type: FunctionModule, Metadata: desc}, Moderate, Failed},
		{"interface", Artifact{Name: "YIF_ENTITY", Type: Interface, Metadata: desc}, Moderate, Passed},
		{"namespace", Artifact{Name: "/ACME/REPORT", Type: Program, Metadata: desc}, Moderate, Passed},
		{"lowercase", Artifact{Name: "z_report", Type: Program, Metadata: desc}, Moderate, Warning},
		{"lowercase strict", Artifact{Name: "z_report", Type: Program, Metadata: desc}, Strict, Failed},
		{"too long", Artifact{Name: "Z" + strings.Repeat("X", 30), Type: Program, Metadata: desc}, Moderate, Failed},
		{"whitespace", Artifact{Name: "Z REPORT", Type: Program, Metadata: desc}, Moderate, Failed},
		{"short description", Artifact{Name: "Z_REPORT", Type: Program, Metadata: map[string]any{"description": "Report"}}, Moderate, Warning},
		{"no description", Artifact{Name: "Z_REPORT", Type: Program}, Strict, Warning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := checkNaming(context.Background(), &tt.artifact, Env{Strictness: tt.strictness})
			if err != nil {
				t.Fatal(err)
			}
			if r.Status != tt.want {
				t.Errorf("status = %q, want %q (%s)", r.Status, tt.want, r.Message)
			}
		})
	}
}

func TestUnitTestCoverage(t *testing.T) {
	tests := []struct {
		name       string
		artifact   Artifact
		strictness Strictness
		want       Status
	}{
		{"test class", Artifact{Source: "CLASS ltcl_test DEFINITION FOR TESTING RISK LEVEL HARMLESS.\nENDCLASS."}, Moderate, Passed},
		{"metadata", Artifact{Metadata: map[string]any{"hasTests": true}}, Strict, Passed},
		{"commented out", Artifact{Source: "\" CLASS ltcl DEFINITION FOR TESTING.\nREPORT z."}, Moderate, Warning},
		{"none moderate", Artifact{Source: "REPORT z."}, Moderate, Warning},
		{"none strict", Artifact{Source: "REPORT z."}, Strict, Failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := checkUnitTests(context.Background(), &tt.artifact, Env{Strictness: tt.strictness})
			if r.Status != tt.want {
				t.Errorf("status = %q, want %q", r.Status, tt.want)
			}
		})
	}
}

func TestEnforceTransport(t *testing.T) {
	tests := []struct {
		transport string
		valid     bool
	}{
		{"DEVK900123", true},
		{"QASK000001", true},
		{"", false},
		{"devk900123", false},
		{"DEVK90012", false},
		{"DEVX900123", false},
		{"DEVK9001234", false},
		{"DEK900123", false},
		{" DEVK900123", false},
		{"DEVK900123\n", false},
		{"\tDEVK900123 ", false},
		{" ", false},
	}
	for _, tt := range tests {
		got := EnforceTransport(Artifact{Transport: tt.transport})
		if got.Valid != tt.valid {
			t.Errorf("EnforceTransport(%q).Valid = %v, want %v", tt.transport, got.Valid, tt.valid)
		}
		if got.Transport != tt.transport {
			t.Errorf("EnforceTransport(%q).Transport = %q, want the value as given", tt.transport, got.Transport)
		}
	}
}

func TestTransportGateRejectsPaddedTransport(t *testing.T) {
	a := &Artifact{Name: "ZCONF", Type: Configuration, Transport: "DEVK900123 "}
	r, _ := checkTransport(context.Background(), a, Env{Strictness: Permissive})
	if r.Status != Failed {
		t.Errorf("status = %q, want %q", r.Status, Failed)
	}
	if r.Details["transport"] != "DEVK900123 " {
		t.Errorf("details transport = %q", r.Details["transport"])
	}
}

func TestValidateTransportChain(t *testing.T) {
	c := ValidateTransportChain("DEVK900123")
	if !c.Valid || c.CurrentStage != "DEV" || c.Path != "DEV -> QAS -> PRD" || c.SourceSystem != "DEV" {
		t.Errorf("chain = %+v", c)
	}
	if len(c.Stages) != 3 || c.Stages[0].Status != "current" || c.Stages[2].Status != "pending" {
		t.Errorf("stages = %+v", c.Stages)
	}
	for _, bad := range []string{"nope", " DEVK900123", "DEVK900123\n"} {
		if c := ValidateTransportChain(bad); c.Valid || len(c.Stages) != 0 {
			t.Errorf("ValidateTransportChain(%q) produced chain %+v", bad, c)
		}
	}
}
