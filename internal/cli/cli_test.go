package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcelocantos/erpkit/internal/config"
	"github.com/marcelocantos/erpkit/internal/gate"
)

func newApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	app, err := NewApp(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { app.Close(context.Background()) })
	return app
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunMap(t *testing.T) {
	app := newApp(t, nil)
	tests := []struct {
		name   string
		source string
		entity string
		input  string
		code   int
		want   string
	}{
		{"sap item json", "sap", "Item", `{"MATNR":"MAT-12345","MAKTX":"Precision Ball Bearing","MEINS":"EA","BRGEW":"0.450"}`, 0, `"itemId": "MAT-12345"`},
		{"ln item yaml", "INFOR_LN", "Item", "T$ITEM: LN-ITEM-001\nT$CTYP: 1\nT$CUNI: PC\nT$DSCA: Cyl\n", 0, `"itemType": "FERT"`},
		{"invalid entity", "SAP", "Customer", `{"KUNNR":"0000100001"}`, 1, `"valid": false`},
		{"unknown source", "ORACLE", "Item", `{}`, 2, ""},
		{"not an object", "SAP", "Item", `[1,2]`, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := RunMap(app, strings.NewReader(tt.input), &out, &errOut, tt.source, tt.entity)
			if code != tt.code {
				t.Fatalf("exit = %d, want %d (stderr %q)", code, tt.code, errOut.String())
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q lacks %q", out.String(), tt.want)
			}
		})
	}
}

const program = `REPORT z_stock.
WRITE 'stock'.
`

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z_stock.abap", program)
	good := writeFile(t, dir, "good.yaml", `
name: Z_STOCK
type: program
transport: DEVK900001
source_file: z_stock.abap
metadata: {description: Stock overview report, hasTests: true}
`)
	bad := writeFile(t, dir, "bad.yaml", "name: Z_STOCK\ntype: program\nsource: \"REPORT z_stock.\"\n")
	broken := writeFile(t, dir, "broken.yaml", "name: [\n")

	app := newApp(t, nil)
	var out, errOut bytes.Buffer
	if code := RunCheck(context.Background(), app, good, &out, &errOut, CheckOptions{}); code != 0 {
		t.Fatalf("good: exit = %d\n%s%s", code, out.String(), errOut.String())
	}
	if !strings.Contains(out.String(), gate.TransportGate) {
		t.Errorf("table lacks gate rows:\n%s", out.String())
	}

	out.Reset()
	auditPath := filepath.Join(dir, "audit.jsonl")
	if code := RunCheck(context.Background(), app, bad, &out, &errOut, CheckOptions{JSON: true, AuditOut: auditPath}); code != 1 {
		t.Fatalf("bad: exit = %d", code)
	}
	var rep gate.Report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("JSON report: %v", err)
	}
	if rep.OverallStatus != "rejected" {
		t.Errorf("overall = %q", rep.OverallStatus)
	}

	if code := RunCheck(context.Background(), app, broken, &out, &errOut, CheckOptions{}); code != 2 {
		t.Errorf("broken: exit = %d, want 2", code)
	}

	out.Reset()
	if code := RunAudit(&out, []string{"verify", auditPath}); code != 0 {
		t.Fatalf("audit verify: %s", out.String())
	}
	if !strings.Contains(out.String(), "2 entries") {
		t.Errorf("verify output = %q", out.String())
	}
	out.Reset()
	if code := RunAudit(&out, []string{"show", auditPath, "1"}); code != 0 {
		t.Fatalf("audit show: %s", out.String())
	}
	if !strings.Contains(out.String(), "rejected") {
		t.Errorf("show output = %q", out.String())
	}
}

func TestRunAuditDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	artifact := writeFile(t, dir, "a.yaml", "name: Z_X\ntype: program\nsource: \"REPORT z_x.\"\ntransport: DEVK900001\n")
	auditPath := filepath.Join(dir, "audit.jsonl")
	app := newApp(t, nil)
	var out bytes.Buffer
	RunCheck(context.Background(), app, artifact, &out, &out, CheckOptions{AuditOut: auditPath})

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), `"artifactName":"Z_X"`, `"artifactName":"Z_Y"`, 1)
	writeFile(t, dir, "audit.jsonl", tampered)

	out.Reset()
	if code := RunAudit(&out, []string{"verify", auditPath}); code != 1 {
		t.Errorf("tampered log verified: %s", out.String())
	}
}

func TestRunGatesAndTools(t *testing.T) {
	app := newApp(t, func(c *config.Config) {
		c.Strictness = "strict"
		c.Gates.Disabled = []string{gate.UnitTestCoverage}
	})

	var out bytes.Buffer
	if code := RunGates(app, &out, true); code != 0 {
		t.Fatal(out.String())
	}
	var gates struct {
		Strictness string      `json:"strictness"`
		Gates      []gate.Info `json:"gates"`
	}
	if err := json.Unmarshal(out.Bytes(), &gates); err != nil {
		t.Fatal(err)
	}
	if gates.Strictness != "strict" || len(gates.Gates) != 7 {
		t.Errorf("gates = %+v", gates)
	}
	for _, g := range gates.Gates {
		if g.Name == gate.UnitTestCoverage && g.Enabled {
			t.Error("disabled gate listed as enabled")
		}
	}

	out.Reset()
	RunGates(app, &out, false)
	if !strings.Contains(out.String(), gate.HumanApproval) {
		t.Errorf("gates table:\n%s", out.String())
	}

	out.Reset()
	RunTools(app, &out, false)
	for _, name := range []string{"getTableStructure", "canonical_mapRecord", "config_deployArtifact"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("tools table lacks %s", name)
		}
	}
}

func TestRunServe(t *testing.T) {
	app := newApp(t, func(c *config.Config) { c.Server.Version = "9.9.9" })
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n")
	var out, errOut bytes.Buffer
	if code := RunServe(context.Background(), app, in, &out, &errOut); code != 0 {
		t.Fatalf("exit = %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), `"version":"9.9.9"`) {
		t.Errorf("initialize response = %s", out.String())
	}
}

func TestNewAppLiveHasNoGateway(t *testing.T) {
	app := newApp(t, func(c *config.Config) { c.Mode = "live" })
	if app.Env.Gateway != nil {
		t.Error("live app has a mock gateway")
	}
	found := false
	for _, g := range app.Gates.Gates() {
		if g.Name == gate.LiveModeAudit {
			found = g.Enabled
		}
	}
	if !found {
		t.Error("live-mode-audit not enabled in live mode")
	}
}
