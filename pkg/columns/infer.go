package columns

import (
	"strings"
	"time"
)

// Type is the semantic classification of a column.
type Type string

const (
	TypeNumeric Type = "numeric"
	TypeDate    Type = "date"
	TypeText    Type = "text"
)

// DateLayouts are the layouts a sample must match to count as a date.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InferType classifies column from the casted rows. Null and blank samples are
// skipped. The column is Numeric when every remaining sample is numeric, Date
// when every remaining sample parses as a date, and Text otherwise, including
// when there are no samples at all.
func InferType(column string, rows []map[string]any) Type {
	samples := make([]any, 0, len(rows))
	for _, row := range rows {
		value, _ := Coerce(row[column])
		if isBlank(value) {
			continue
		}
		samples = append(samples, value)
	}
	if len(samples) == 0 {
		return TypeText
	}
	if allMatch(samples, isNumber) {
		return TypeNumeric
	}
	if allMatch(samples, isDate) {
		return TypeDate
	}
	return TypeText
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func allMatch(samples []any, fn func(any) bool) bool {
	for _, s := range samples {
		if !fn(s) {
			return false
		}
	}
	return true
}

func isNumber(value any) bool {
	_, ok := value.(float64)
	return ok
}

func isDate(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, ok = ParseDate(s)
	return ok
}
