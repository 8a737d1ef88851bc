package tool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Args are decoded tool arguments.
type Args map[string]any

// String returns a string argument, or "".
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Upper returns a trimmed, upper-cased string argument.
func (a Args) Upper(key string) string {
	return strings.ToUpper(strings.TrimSpace(a.String(key)))
}

// Int returns a numeric argument, or def when absent.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// Bool returns a boolean argument, or false.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Strings returns a string-array argument.
func (a Args) Strings(key string) []string {
	raw, _ := a[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Object returns an object argument, or nil.
func (a Args) Object(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}

// Decode converts the arguments into v via JSON.
func (a Args) Decode(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
