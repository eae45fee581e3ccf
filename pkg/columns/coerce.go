package columns

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce converts numeric-looking values to float64 and reports whether the
// result is numeric. It is total: values it does not recognise are returned
// unchanged.
//
// Strings are trimmed before parsing and must be plain decimal literals.
// Whitespace-only strings, NaN, Inf, hex literals and digit separators are not
// numeric. Booleans are never numeric.
func Coerce(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case float64:
		return v, finite(v)
	case float32:
		return float64(v), finite(float64(v))
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		if f, ok := parseDecimal(v.String()); ok {
			return f, true
		}
		return v, false
	case string:
		if f, ok := parseDecimal(v); ok {
			return f, true
		}
		return v, false
	default:
		return value, false
	}
}

// IsNumeric reports whether Coerce would yield a number for value.
func IsNumeric(value any) bool {
	_, ok := Coerce(value)
	return ok
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !isDecimalLiteral(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

// isDecimalLiteral accepts [sign] digits [. digits] [e [sign] digits], with at
// least one digit in the mantissa. strconv.ParseFloat alone also accepts hex,
// underscores and the NaN/Inf spellings.
func isDecimalLiteral(s string) bool {
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// CastRow returns a new row holding the coerced value of every listed column.
// Keys outside columns are dropped and missing columns become nil.
func CastRow(row map[string]any, columns []string) map[string]any {
	out := make(map[string]any, len(columns))
	for _, col := range columns {
		value, _ := Coerce(row[col])
		out[col] = value
	}
	return out
}

// CastRows applies CastRow to every row.
func CastRows(rows []map[string]any, columns []string) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = CastRow(row, columns)
	}
	return out
}
