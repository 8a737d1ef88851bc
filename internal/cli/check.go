package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/erpkit/internal/gate"
)

// CheckOptions controls RunCheck output.
type CheckOptions struct {
	JSON     bool
	AuditOut string // JSONL export of the audit log; empty skips it
}

// LoadArtifact reads an artifact from a YAML or JSON file. A
// source_file key names a file, relative to the artifact, whose content
// replaces source.
func LoadArtifact(path string) (gate.Artifact, error) {
	var a gate.Artifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read artifact: %w", err)
	}
	var doc struct {
		gate.Artifact `yaml:",inline"`
		SourceFile    string `yaml:"source_file"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return a, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	a = doc.Artifact
	if doc.SourceFile != "" {
		src, err := os.ReadFile(resolveRelative(path, doc.SourceFile))
		if err != nil {
			return a, fmt.Errorf("read source_file: %w", err)
		}
		a.Source = string(src)
	}
	return a, nil
}

// RunCheck runs an artifact file through the gates and prints the
// report. Exit code 0 means approved, 1 not approved, 2 an error.
func RunCheck(ctx context.Context, app *App, path string, stdout, stderr io.Writer, opts CheckOptions) int {
	a, err := LoadArtifact(path)
	if err != nil {
		fmt.Fprintf(stderr, "erpkit check: %v\n", err)
		return 2
	}
	rep, err := app.Gates.ValidateArtifact(ctx, a)
	if err != nil {
		fmt.Fprintf(stderr, "erpkit check: %v\n", err)
		return 2
	}

	if opts.JSON {
		if err := printJSON(stdout, rep); err != nil {
			fmt.Fprintf(stderr, "erpkit check: %v\n", err)
			return 2
		}
	} else {
		printReport(stdout, rep)
	}

	if opts.AuditOut != "" {
		if err := exportAudit(app, opts.AuditOut); err != nil {
			fmt.Fprintf(stderr, "erpkit check: %v\n", err)
			return 2
		}
	}

	if !rep.Approved {
		return 1
	}
	return 0
}

func printReport(w io.Writer, rep *gate.Report) {
	tw := newTable(w)
	tw.SetTitle(fmt.Sprintf("%s (%s) %s", rep.ArtifactName, rep.ArtifactType, rep.Transport))
	tw.AppendHeader(table.Row{"Gate", "Status", "Required", "Message"})
	for _, r := range rep.GateResults {
		tw.AppendRow(table.Row{r.Name, r.Status, r.Required, r.Message})
	}
	tw.AppendFooter(table.Row{"Overall", rep.OverallStatus, "", fmt.Sprintf("strictness %s", rep.Strictness)})
	tw.Render()
	if rep.ApprovalID != "" {
		fmt.Fprintf(w, "approval requested: %s\n", rep.ApprovalID)
	}
	if rep.AuditID != "" {
		fmt.Fprintf(w, "audit entry: %s\n", rep.AuditID)
	}
}

func exportAudit(app *App, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audit export: %w", err)
	}
	if err := app.Gates.AuditLog().Export(f); err != nil {
		f.Close()
		return fmt.Errorf("audit export: %w", err)
	}
	return f.Close()
}

func resolveRelative(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(base), p)
}
