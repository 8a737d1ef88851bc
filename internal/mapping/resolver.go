// Package mapping holds the per source-system field mapping tables that
// drive records from SAP and Infor layouts into canonical entities.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

// ErrUnsupportedSource is returned for source systems with no tables.
var ErrUnsupportedSource = errors.New("unsupported source system")

// Source system identifiers.
const (
	SAP         = "SAP"
	InforLN     = "INFOR_LN"
	InforM3     = "INFOR_M3"
	InforCSI    = "INFOR_CSI"
	InforLawson = "INFOR_LAWSON"
)

// Tables is a Resolver over a fixed set of mapping tables keyed by
// upper-cased source system.
type Tables struct {
	systems map[string]map[canonical.EntityType][]canonical.FieldMapping
}

// Default returns the built-in SAP and Infor tables.
func Default() *Tables {
	return &Tables{systems: map[string]map[canonical.EntityType][]canonical.FieldMapping{
		SAP:         sapTables,
		InforLN:     lnTables,
		InforM3:     m3Tables,
		InforCSI:    csiTables,
		InforLawson: lawsonTables,
	}}
}

// Resolve implements canonical.Resolver.
func (t *Tables) Resolve(system string, et canonical.EntityType) ([]canonical.FieldMapping, bool, error) {
	byEntity, ok := t.systems[strings.ToUpper(system)]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedSource, system, strings.Join(t.Supported(), ", "))
	}
	m, ok := byEntity[et]
	return m, ok, nil
}

// Supported returns the source systems with tables, sorted.
func (t *Tables) Supported() []string {
	names := make([]string, 0, len(t.systems))
	for name := range t.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entities returns the entity types mapped for system, sorted.
func (t *Tables) Entities(system string) ([]canonical.EntityType, error) {
	byEntity, ok := t.systems[strings.ToUpper(system)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedSource, system, strings.Join(t.Supported(), ", "))
	}
	types := make([]canonical.EntityType, 0, len(byEntity))
	for et := range byEntity {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}
