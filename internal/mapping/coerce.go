package mapping

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/marcelocantos/erpkit/internal/canonical"
)

// Number converts numeric-looking input to float64. SAP trailing-minus
// notation ("12.50-") is honoured. Anything else becomes 0.
func Number(raw any, _ map[string]any) any {
	return toFloat(raw)
}

func toFloat(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		neg := false
		if strings.HasSuffix(s, "-") {
			neg = true
			s = strings.TrimSuffix(s, "-")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		if neg {
			f = -f
		}
		return f
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Text renders any scalar as a trimmed string.
func Text(raw any, _ map[string]any) any {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}

// Upper is Text followed by upper-casing.
func Upper(raw any, record map[string]any) any {
	return strings.ToUpper(Text(raw, record).(string))
}

// Alpha strips the leading zeros SAP stores on purely numeric keys
// ("0000012345" → "12345"). Non-numeric keys are only trimmed.
func Alpha(raw any, record map[string]any) any {
	s := Text(raw, record).(string)
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// Flag converts SAP "X" indicators, booleans and numbers to bool.
func Flag(raw any, _ map[string]any) any {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "X", "Y", "YES", "TRUE", "1":
			return true
		}
		return false
	}
	return toFloat(raw) != 0
}

// YesNo converts the Infor LN yes/no enumeration (1 = yes, 2 = no).
func YesNo(raw any, _ map[string]any) any {
	return toFloat(raw) == 1
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102",
	"01/02/2006",
}

// Date normalises SAP (YYYYMMDD strings), M3 and Lawson (YYYYMMDD
// numbers), ISO strings and time.Time values to an ISO date string.
// Zero dates become nil; unparseable input is returned unchanged so
// validation can report it.
func Date(raw any, _ map[string]any) any {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return v.UTC().Format("2006-01-02")
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.Trim(s, "0") == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02")
			}
		}
		return v
	}
	n := int64(toFloat(raw))
	if n <= 0 {
		return nil
	}
	if t, err := time.Parse("20060102", strconv.FormatInt(n, 10)); err == nil {
		return t.Format("2006-01-02")
	}
	return raw
}

// Code returns a coercer that translates source codes through table.
// Unknown codes pass through as text.
func Code(table map[string]string) canonical.Coercer {
	return func(raw any, record map[string]any) any {
		key := Text(raw, record).(string)
		if v, ok := table[key]; ok {
			return v
		}
		return key
	}
}

// Signed returns a coercer that negates the amount when the record's
// indicator field equals credit.
func Signed(indicator, credit string) canonical.Coercer {
	return func(raw any, record map[string]any) any {
		amount := math.Abs(toFloat(raw))
		if ind, ok := record[indicator]; ok && Text(ind, record).(string) == credit {
			return -amount
		}
		return amount
	}
}

// Prefixed returns a coercer that joins the text of another record field
// and the raw value with sep, as in LN transaction-type + document number.
func Prefixed(field, sep string) canonical.Coercer {
	return func(raw any, record map[string]any) any {
		v := Text(raw, record).(string)
		p, ok := record[field]
		if !ok || p == nil {
			return v
		}
		return Text(p, record).(string) + sep + v
	}
}

// Scaled returns a coercer that divides a number by div, as in Lawson
// asset lives kept in months.
func Scaled(div float64) canonical.Coercer {
	return func(raw any, _ map[string]any) any {
		return toFloat(raw) / div
	}
}
