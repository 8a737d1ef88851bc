// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const clientScript = `
def check(artifact, strictness):
    if matches("(?i)mandt\\s*=\\s*'\\d{3}'", artifact["source"]):
        return {
            "status": FAILED,
            "message": "hard-coded client",
            "details": {"strictness": strictness, "tags": ["client"]},
        }
    if artifact["metadata"].get("legacy"):
        return WARNING
    return True
`

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gate.star")
	if err := os.WriteFile(path, []byte(src), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScriptGate(t *testing.T) {
	e := NewEngine(Config{})
	err := e.RegisterScript(ScriptSpec{
		Name:      "no-hardcoded-client",
		Path:      writeScript(t, clientScript),
		Priority:  60,
		Required:  true,
		AppliesTo: []ArtifactType{Program},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		source   string
		metadata map[string]any
		want     Status
	}{
		{"clean", "REPORT z_report.", nil, Passed},
		{"hard-coded", "SELECT matnr FROM mara INTO TABLE @lt WHERE mandt = '100'.", nil, Failed},
		{"legacy", "REPORT z_report.", map[string]any{"legacy": true}, Warning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := report()
			a.Source = tt.source
			a.Metadata = tt.metadata
			r := result(t, validate(t, e, a), "no-hardcoded-client")
			if r.Status != tt.want {
				t.Errorf("status = %q, want %q (%s)", r.Status, tt.want, r.Message)
			}
			if tt.want == Failed {
				if r.Message != "hard-coded client" || r.Details["strictness"] != "moderate" {
					t.Errorf("result = %+v", r)
				}
			}
		})
	}

	// Not applicable to classes.
	rep := validate(t, e, Artifact{Name: "ZCL_X", Type: Class, Transport: "DEVK900001"})
	for _, r := range rep.GateResults {
		if r.Name == "no-hardcoded-client" {
			t.Error("script gate ran for a class")
		}
	}
}

func TestScriptLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "def check(a, s)\n    return True\n"},
		{"no check", "x = 1\n"},
		{"exec error", "x = 1 // 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CompileScript("gate.star", tt.src); err == nil {
				t.Error("expected load error")
			}
		})
	}
	err := NewEngine(Config{}).RegisterScript(ScriptSpec{Name: "missing", Path: filepath.Join(t.TempDir(), "nope.star")})
	if err == nil {
		t.Error("missing script file accepted")
	}
}

func TestScriptRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"division", "def check(a, s):\n    return 1 // 0\n"},
		{"bad status", "def check(a, s):\n    return 'maybe'\n"},
		{"bad type", "def check(a, s):\n    return 42\n"},
		{"runaway", "def check(a, s):\n    n = 0\n    for i in range(100000000):\n        n += i\n    return True\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(Config{})
			check, err := CompileScript("gate.star", tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if err := e.Register("script", check, Optional()); err != nil {
				t.Fatal(err)
			}
			r := result(t, validate(t, e, report()), "script")
			if r.Status != Failed || !r.Required || !strings.HasPrefix(r.Message, "gate error:") {
				t.Errorf("result = %+v", r)
			}
		})
	}
}

func TestScriptCancelled(t *testing.T) {
	check, err := CompileScript("gate.star", "def check(a, s):\n    n = 0\n    for i in range(100000000):\n        n += i\n    return True\n")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := report()
	if _, err := check(ctx, &a, Env{Strictness: Moderate}); err == nil {
		t.Error("cancelled context did not stop the script")
	}
}
