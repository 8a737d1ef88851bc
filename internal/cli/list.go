package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/marcelocantos/erpkit/internal/gate"
	"github.com/marcelocantos/erpkit/internal/tool"
)

// RunGates lists the registered gates in run order.
func RunGates(app *App, w io.Writer, asJSON bool) int {
	gates := app.Gates.Gates()
	if asJSON {
		if err := printJSON(w, map[string]any{"strictness": app.Gates.Strictness(), "gates": gates}); err != nil {
			fmt.Fprintf(w, "erpkit gates: %v\n", err)
			return 1
		}
		return 0
	}
	tw := newTable(w)
	tw.SetTitle("strictness: " + string(app.Gates.Strictness()))
	tw.AppendHeader(table.Row{"Priority", "Gate", "Required", "Enabled", "Applies To"})
	for _, g := range gates {
		tw.AppendRow(table.Row{g.Priority, g.Name, g.Required, g.Enabled, appliesTo(g.AppliesTo)})
	}
	tw.Render()
	return 0
}

func appliesTo(types []gate.ArtifactType) string {
	if len(types) == 0 {
		return "all"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// RunTools lists the tool catalogue.
func RunTools(app *App, w io.Writer, asJSON bool) int {
	tools := app.Tools.List()
	if asJSON {
		if err := printJSON(w, tools); err != nil {
			fmt.Fprintf(w, "erpkit tools: %v\n", err)
			return 1
		}
		return 0
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Tool", "Subsystem", "Required Args", "Description"})
	for _, t := range tools {
		tw.AppendRow(table.Row{t.Name, tool.SubsystemOf(t.Name), strings.Join(t.InputSchema.Required, ", "), t.Description})
	}
	tw.Render()
	return 0
}
