package canonical

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidInvocation is returned when an entity is requested
	// without a concrete type.
	ErrInvalidInvocation = errors.New("canonical entity requires a concrete entity type")

	// ErrUnknownEntityType is returned for names with no registered schema.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// TimestampFormat is the ISO-8601 UTC layout of the _timestamp field.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entity is a canonical record. Values in Data are string, number
// (any Go numeric kind), bool, time.Time or a slice.
type Entity struct {
	Type EntityType
	Data map[string]any
}

// New returns an empty entity of the named type.
func New(name string) (*Entity, error) {
	if name == "" {
		return nil, ErrInvalidInvocation
	}
	t := EntityType(name)
	if _, ok := schemas[t]; !ok {
		return nil, unknownType(name)
	}
	return &Entity{Type: t, Data: make(map[string]any)}, nil
}

// Set writes one field and returns e for chaining.
func (e *Entity) Set(field string, v any) *Entity {
	e.Data[field] = v
	return e
}

// Get returns the value of field and whether it is present.
func (e *Entity) Get(field string) (any, bool) {
	v, ok := e.Data[field]
	return v, ok
}

// Clone returns a shallow copy of e.
func (e *Entity) Clone() *Entity {
	data := make(map[string]any, len(e.Data))
	for k, v := range e.Data {
		data[k] = v
	}
	return &Entity{Type: e.Type, Data: data}
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks required fields and then the type and length of every
// present field that has a definition. Unknown fields are ignored.
func (e *Entity) Validate() ValidationResult {
	return Validate(e.Type, e.Data)
}

// Validate runs the two validation passes over data for entity type t.
func Validate(t EntityType, data map[string]any) ValidationResult {
	res := ValidationResult{Errors: []string{}}
	s, ok := schemas[t]
	if !ok {
		res.Errors = append(res.Errors, unknownType(string(t)).Error())
		return res
	}

	for _, name := range s.RequiredFields {
		if isBlank(data[name]) {
			res.Errors = append(res.Errors, fmt.Sprintf("Missing required field: %s", name))
		}
	}

	for _, name := range sortedKeys(data) {
		v := data[name]
		def, ok := s.FieldDefinitions[name]
		if !ok || v == nil {
			continue
		}
		if !matchesType(def.Type, v) {
			res.Errors = append(res.Errors, fmt.Sprintf("Field '%s' must be a %s, got %s", name, def.Type, typeName(v)))
			continue
		}
		if def.Type == TypeString && def.MaxLength > 0 {
			n := utf8.RuneCountInString(v.(string))
			if n > def.MaxLength {
				res.Errors = append(res.Errors, fmt.Sprintf("Field '%s' exceeds max length %d (got %d)", name, def.MaxLength, n))
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ToJSON returns _entityType and a fresh _timestamp followed by a shallow
// copy of the data.
func (e *Entity) ToJSON() map[string]any {
	out := make(map[string]any, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["_entityType"] = string(e.Type)
	out["_timestamp"] = time.Now().UTC().Format(TimestampFormat)
	return out
}

// MarshalJSON encodes the ToJSON form.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToJSON())
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func matchesType(t FieldType, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		return isNumber(v)
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeDate:
		switch d := v.(type) {
		case time.Time:
			return true
		case string:
			return isISODate(d)
		}
		return false
	case TypeArray:
		if v == nil {
			return false
		}
		k := reflect.TypeOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000Z",
}

func isISODate(s string) bool {
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	}
	if isNumber(v) {
		return "number"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}
