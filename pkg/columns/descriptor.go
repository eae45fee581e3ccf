package columns

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FilterKind names the grid filter attached to a column.
type FilterKind string

const (
	NumberFilter FilterKind = "agNumberColumnFilter"
	DateFilter   FilterKind = "agDateColumnFilter"
	TextFilter   FilterKind = "agTextColumnFilter"
)

// ChartRole tells the chart binder whether a column feeds values or labels.
type ChartRole string

const (
	RoleSeries   ChartRole = "series"
	RoleCategory ChartRole = "category"
)

// Descriptor is the grid column definition derived for a result column.
type Descriptor struct {
	ID           string     `json:"field"`
	HeaderName   string     `json:"headerName"`
	Type         Type       `json:"type"`
	FilterKind   FilterKind `json:"filter"`
	ChartRole    ChartRole  `json:"chartDataType"`
	Groupable    bool       `json:"enableRowGroup"`
	Pivotable    bool       `json:"enablePivot"`
	Aggregatable bool       `json:"enableValue"`
}

// Describe builds one Descriptor per column, in column order. rows should
// already be casted with CastRows.
func Describe(columns []string, rows []map[string]any) []Descriptor {
	out := make([]Descriptor, 0, len(columns))
	for _, col := range columns {
		out = append(out, DescriptorFor(col, InferType(col, rows)))
	}
	return out
}

// DescriptorFor returns the descriptor for a column of the given type.
func DescriptorFor(column string, typ Type) Descriptor {
	d := Descriptor{
		ID:           column,
		HeaderName:   HeaderName(column),
		Type:         typ,
		FilterKind:   TextFilter,
		ChartRole:    RoleCategory,
		Groupable:    true,
		Pivotable:    true,
		Aggregatable: true,
	}
	switch typ {
	case TypeNumeric:
		d.FilterKind = NumberFilter
		d.ChartRole = RoleSeries
	case TypeDate:
		d.FilterKind = DateFilter
	}
	return d
}

// HeaderName turns a column identifier into a display label: underscores and
// hyphens become spaces and the first letter is upper-cased.
func HeaderName(column string) string {
	label := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, column)
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return label
	}
	return string(unicode.ToUpper(r)) + label[size:]
}

// Index maps descriptors by column ID.
func Index(descriptors []Descriptor) map[string]Descriptor {
	out := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		out[d.ID] = d
	}
	return out
}
