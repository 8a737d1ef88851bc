package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/marcelocantos/erpkit/internal/audit"
)

// RunAudit handles the erpkit audit subcommand over an exported JSONL
// log: verify <file> or show <file> [n].
func RunAudit(w io.Writer, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(w, "usage: erpkit audit <verify|show> <file.jsonl> [n]")
		return 1
	}
	f, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintf(w, "erpkit audit: %v\n", err)
		return 1
	}
	defer f.Close()

	switch args[0] {
	case "verify":
		n, err := audit.VerifyJSONL(f)
		if err != nil {
			fmt.Fprintf(w, "audit verification FAILED: %v\n", err)
			return 1
		}
		fmt.Fprintf(w, "audit log integrity verified (%d entries)\n", n)
		return 0

	case "show":
		n := 20
		if len(args) > 2 {
			if n, err = strconv.Atoi(args[2]); err != nil || n < 1 {
				fmt.Fprintf(w, "erpkit audit: invalid count %q\n", args[2])
				return 1
			}
		}
		entries, err := readEntries(f)
		if err != nil {
			fmt.Fprintf(w, "erpkit audit: %v\n", err)
			return 1
		}
		if len(entries) == 0 {
			fmt.Fprintln(w, "no audit entries")
			return 0
		}
		if len(entries) > n {
			entries = entries[len(entries)-n:]
		}
		tw := newTable(w)
		tw.AppendHeader(table.Row{"Seq", "ID", "Event", "Artifact", "Status", "Strictness", "Time"})
		for _, e := range entries {
			tw.AppendRow(table.Row{e.Seq, e.ID, e.Event, e.ArtifactName, e.OverallStatus, e.Strictness, e.Timestamp.Format("2006-01-02 15:04:05")})
		}
		tw.Render()
		return 0

	default:
		fmt.Fprintf(w, "erpkit audit: unknown subcommand %q\n", args[0])
		return 1
	}
}

func readEntries(r io.Reader) ([]audit.Entry, error) {
	dec := json.NewDecoder(r)
	var entries []audit.Entry
	for {
		var e audit.Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, fmt.Errorf("decode entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
}
