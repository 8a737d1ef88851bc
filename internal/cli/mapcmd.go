package cli

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/marcelocantos/erpkit/internal/tool"
)

// RunMap reads one source record (JSON or YAML object) from in, maps it
// to a canonical entity and prints the entity with its validation.
// Exit code 0 means the entity is valid, 1 invalid, 2 an error.
func RunMap(app *App, in io.Reader, stdout, stderr io.Writer, source, entity string) int {
	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(stderr, "erpkit map: read record: %v\n", err)
		return 2
	}
	var record map[string]any
	if err := yaml.Unmarshal(data, &record); err != nil {
		fmt.Fprintf(stderr, "erpkit map: parse record: %v\n", err)
		return 2
	}
	if record == nil {
		fmt.Fprintln(stderr, "erpkit map: record is empty")
		return 2
	}
	e, err := app.Env.Mapper.Map(entity, source, record)
	if err != nil {
		fmt.Fprintf(stderr, "erpkit map: %v\n", err)
		return 2
	}
	res := tool.MappedRecord{Entity: e.ToJSON(), Validation: e.Validate()}
	if err := printJSON(stdout, res); err != nil {
		fmt.Fprintf(stderr, "erpkit map: %v\n", err)
		return 2
	}
	if !res.Validation.Valid {
		return 1
	}
	return 0
}
