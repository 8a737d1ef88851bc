package canonical

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ErrNoMapping is returned by FromSource when the source system is known
// but has no mapping for the entity type.
var ErrNoMapping = errors.New("no mapping")

// Coercer converts a raw source value into its canonical value. It must
// be pure and must not fail on missing or malformed input.
type Coercer func(raw any, record map[string]any) any

// FieldMapping translates one source field into one canonical field.
type FieldMapping struct {
	Source  string
	Target  string
	Convert Coercer // nil = copy the raw value unchanged
}

// Resolver looks up the ordered field mappings for a source system and
// entity type. ok is false when the system is known but the entity type
// has no mapping; err is non-nil when the system itself is unsupported.
type Resolver interface {
	Resolve(system string, t EntityType) (mappings []FieldMapping, ok bool, err error)
}

// Mapper drives source records into canonical entities.
type Mapper struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewMapper creates a Mapper over the given resolver.
func NewMapper(resolver Resolver, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{resolver: resolver, logger: logger}
}

// FromSource applies the mappings for (system, e.Type) to record, in
// order, writing into e.Data. Nil or absent source values are skipped.
// It returns e for chaining.
func (m *Mapper) FromSource(e *Entity, system string, record map[string]any) (*Entity, error) {
	mappings, ok, err := m.resolver.Resolve(system, e.Type)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w for %s from %s", ErrNoMapping, e.Type, system)
	}

	written := 0
	for _, fm := range mappings {
		raw, present := record[fm.Source]
		if !present || raw == nil {
			continue
		}
		if fm.Convert != nil {
			e.Data[fm.Target] = fm.Convert(raw, record)
		} else {
			e.Data[fm.Target] = raw
		}
		written++
	}

	m.logger.Debug("mapped source record",
		zap.String("entity_type", string(e.Type)),
		zap.String("source_system", system),
		zap.Int("fields", written),
	)
	return e, nil
}

// Map creates an entity of the named type and fills it from record.
func (m *Mapper) Map(entityType, system string, record map[string]any) (*Entity, error) {
	e, err := New(entityType)
	if err != nil {
		return nil, err
	}
	return m.FromSource(e, system, record)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
