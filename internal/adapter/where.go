package adapter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// condition is one "FIELD op 'value'" term of a where clause.
type condition struct {
	field string
	op    string
	value string
	like  *regexp.Regexp
}

var condExpr = regexp.MustCompile(`(?i)^\s*([A-Z0-9_$\-]+)\s*(=|<>|!=|>=|<=|>|<|\bEQ\b|\bNE\b|\bGT\b|\bLT\b|\bGE\b|\bLE\b|\bLIKE\b)\s*(?:'((?:[^']|'')*)'|([^\s']+))\s*$`)

var opAliases = map[string]string{
	"EQ": "=", "NE": "<>", "!=": "<>", "GT": ">", "LT": "<", "GE": ">=", "LE": "<=",
}

// parseWhere parses a conjunction of simple comparisons, the subset of
// OpenSQL where clauses accepted by RFC_READ_TABLE-style reads.
func parseWhere(where string) ([]condition, error) {
	where = strings.TrimSpace(where)
	if where == "" {
		return nil, nil
	}
	var conds []condition
	terms, err := splitAnd(where)
	if err != nil {
		return nil, err
	}
	for _, term := range terms {
		m := condExpr.FindStringSubmatch(term)
		if m == nil {
			return nil, fmt.Errorf("unsupported where term %q", strings.TrimSpace(term))
		}
		op := strings.ToUpper(m[2])
		if alias, ok := opAliases[op]; ok {
			op = alias
		}
		value := strings.ReplaceAll(m[3], "''", "'")
		if m[4] != "" {
			value = m[4]
		}
		c := condition{field: strings.ToUpper(m[1]), op: op, value: value}
		if op == "LIKE" {
			pattern := regexp.QuoteMeta(value)
			pattern = strings.ReplaceAll(pattern, "%", ".*")
			pattern = strings.ReplaceAll(pattern, "_", ".")
			c.like = regexp.MustCompile("^" + pattern + "$")
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// splitAnd splits where on AND keywords outside quoted literals. A
// doubled quote inside a literal is an escaped quote.
func splitAnd(where string) ([]string, error) {
	var terms []string
	start := 0
	quoted := false
	for i := 0; i < len(where); i++ {
		c := where[i]
		switch {
		case c == '\'':
			if quoted && i+1 < len(where) && where[i+1] == '\'' {
				i++
				continue
			}
			quoted = !quoted
		case !quoted && isSpace(c) && isAndAt(where, i+1):
			terms = append(terms, where[start:i])
			i += 4
			start = i
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated literal in where clause %q", where)
	}
	return append(terms, where[start:]), nil
}

// isAndAt reports whether an AND keyword followed by whitespace starts at i.
func isAndAt(s string, i int) bool {
	return i+4 <= len(s) && strings.EqualFold(s[i:i+3], "AND") && isSpace(s[i+3])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (c condition) match(row map[string]any) bool {
	raw, ok := lookupField(row, c.field)
	if !ok {
		return false
	}
	got := fmt.Sprint(raw)
	if c.op == "LIKE" {
		return c.like.MatchString(got)
	}
	if a, errA := strconv.ParseFloat(strings.TrimSpace(got), 64); errA == nil {
		if b, errB := strconv.ParseFloat(c.value, 64); errB == nil {
			return compare(a, b, c.op)
		}
	}
	return compare(strings.Compare(got, c.value), 0, c.op)
}

func compare[T int | float64](a, b T, op string) bool {
	switch op {
	case "=":
		return a == b
	case "<>":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	}
	return false
}

func lookupField(row map[string]any, field string) (any, bool) {
	if v, ok := row[field]; ok {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, field) {
			return v, true
		}
	}
	return nil, false
}

func matchAll(conds []condition, row map[string]any) bool {
	for _, c := range conds {
		if !c.match(row) {
			return false
		}
	}
	return true
}
