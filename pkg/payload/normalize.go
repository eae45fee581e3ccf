package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-reportview/pkg/reporterr"
)

// Row is a single result row keyed by column identifier.
type Row = map[string]any

// Payload is the canonical form of a persisted report resource.
type Payload struct {
	ID        string
	Title     string
	QueryName string
	Columns   []string
	Rows      []Row
	Filters   any
	Sorting   any
	GridState any
	Config    any
}

// Normalize resolves every persisted field of raw. The two required fields
// degrade to empty sequences when they cannot be decoded; the accompanying
// errors describe what was dropped and never abort normalization. Optional
// fields keep their raw value when decoding fails.
func Normalize(raw Resource) (Payload, []error) {
	var problems []error

	out := Payload{ID: raw.ID()}

	columns, err := normalizeColumns(raw.Field(FieldColumnsOrder))
	if err != nil {
		problems = append(problems, &reporterr.RequiredFieldError{Field: FieldColumnsOrder, Err: err})
	}
	out.Columns = columns

	rows, err := normalizeRows(raw.Field(FieldJSONResults))
	if err != nil {
		problems = append(problems, &reporterr.RequiredFieldError{Field: FieldJSONResults, Err: err})
	}
	out.Rows = rows

	optional := []struct {
		name   string
		target *any
	}{
		{name: FieldFilters, target: &out.Filters},
		{name: FieldSorting, target: &out.Sorting},
		{name: FieldGridState, target: &out.GridState},
		{name: FieldConfig, target: &out.Config},
	}
	for _, item := range optional {
		value, err := raw.Field(item.name).Decode()
		if err != nil {
			problems = append(problems, &reporterr.OptionalFieldError{Field: item.name, Err: err})
		}
		*item.target = value
	}

	out.Title = titleValue(raw.Field(FieldTitle).Value())
	out.QueryName = titleValue(raw.Field(FieldQueryName).Value())

	return out, problems
}

// DisplayTitle picks the first non-empty title among the preferred fields.
func (p Payload) DisplayTitle(preferQueryName bool) string {
	if preferQueryName {
		if p.QueryName != "" {
			return p.QueryName
		}
		return p.Title
	}
	if p.Title != "" {
		return p.Title
	}
	return p.QueryName
}

var (
	errNotSequence = errors.New("value is not a sequence")
	errNotObject   = errors.New("row is not an object")
)

func normalizeColumns(field Field) ([]string, error) {
	value, err := field.Decode()
	if err != nil {
		return []string{}, err
	}
	if value == nil {
		return []string{}, nil
	}

	items, ok := value.([]any)
	if !ok {
		if typed, ok := value.([]string); ok {
			return uniqueColumns(typed), nil
		}
		return []string{}, errNotSequence
	}

	names := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case json.Number:
			names = append(names, v.String())
		default:
			return []string{}, fmt.Errorf("column %d has type %T", i, item)
		}
	}
	return uniqueColumns(names), nil
}

func uniqueColumns(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func normalizeRows(field Field) ([]Row, error) {
	value, err := field.Decode()
	if err != nil {
		return []Row{}, err
	}
	if value == nil {
		return []Row{}, nil
	}

	switch typed := value.(type) {
	case []Row:
		return typed, nil
	case []any:
		rows := make([]Row, 0, len(typed))
		var dropped int
		for _, item := range typed {
			row, ok := item.(map[string]any)
			if !ok {
				dropped++
				continue
			}
			rows = append(rows, row)
		}
		if dropped > 0 {
			return rows, fmt.Errorf("%w: dropped %d of %d rows", errNotObject, dropped, len(typed))
		}
		return rows, nil
	default:
		return []Row{}, errNotSequence
	}
}

func titleValue(value any) string {
	return stringValue(value)
}
