package chart

import (
	"errors"

	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/grid"
)

var (
	// ErrNoColumns reports a model whose column references are all missing
	// from the loaded table.
	ErrNoColumns = errors.New("chart: no referenced column is present")
	// ErrNoSeries reports a model with no numeric column to plot.
	ErrNoSeries = errors.New("chart: no series column bound")
)

// Series is a bound value column.
type Series struct {
	ID         string `json:"id"`
	HeaderName string `json:"headerName"`
	ChartType  string `json:"chartType,omitempty"`
}

// Binding maps a model's references onto the loaded columns.
type Binding struct {
	Category       string   `json:"category"`
	CategoryHeader string   `json:"categoryHeader"`
	Series         []Series `json:"series"`
}

// Bind resolves model against descriptors. The category is the first
// referenced category column, falling back to the first referenced column;
// series are the remaining referenced numeric columns.
func Bind(model *Model, descriptors []columns.Descriptor) (Binding, error) {
	index := columns.Index(descriptors)

	var present []columns.Descriptor
	for _, id := range model.CellRange.Columns {
		if d, ok := index[id]; ok {
			present = append(present, d)
		}
	}
	if len(present) == 0 {
		return Binding{}, ErrNoColumns
	}

	category := present[0]
	for _, d := range present {
		if d.ChartRole == columns.RoleCategory {
			category = d
			break
		}
	}

	overrides := make(map[string]string, len(model.SeriesChartTypes))
	for _, s := range model.SeriesChartTypes {
		overrides[s.ColID] = s.ChartType
	}

	binding := Binding{Category: category.ID, CategoryHeader: category.HeaderName}
	for _, d := range present {
		if d.ID == category.ID || d.ChartRole != columns.RoleSeries {
			continue
		}
		binding.Series = append(binding.Series, Series{
			ID:         d.ID,
			HeaderName: d.HeaderName,
			ChartType:  overrides[d.ID],
		})
	}
	if len(binding.Series) == 0 {
		return Binding{}, ErrNoSeries
	}
	return binding, nil
}

// Dataset is the bound data handed to a Capability.
type Dataset struct {
	Categories []string    `json:"categories"`
	Values     [][]float64 `json:"values"`
}

// BuildDataset aggregates rows per category value, in first-seen order, using
// the model's aggregation. The model's row range is applied first.
func BuildDataset(model *Model, binding Binding, rows []map[string]any) Dataset {
	rows = rowRange(model.CellRange, rows)

	type group struct {
		label  string
		values [][]any
	}
	index := make(map[string]*group)
	var ordered []*group
	for _, row := range rows {
		label := grid.FormatCell(row[binding.Category])
		g, ok := index[label]
		if !ok {
			g = &group{label: label, values: make([][]any, len(binding.Series))}
			index[label] = g
			ordered = append(ordered, g)
		}
		for i, s := range binding.Series {
			g.values[i] = append(g.values[i], row[s.ID])
		}
	}

	agg := model.AggFuncName()
	ds := Dataset{
		Categories: make([]string, len(ordered)),
		Values:     make([][]float64, len(binding.Series)),
	}
	for i := range binding.Series {
		ds.Values[i] = make([]float64, len(ordered))
	}
	for gi, g := range ordered {
		ds.Categories[gi] = g.label
		for si := range binding.Series {
			if f, ok := grid.Aggregate(agg, g.values[si]).(float64); ok {
				ds.Values[si][gi] = f
			}
		}
	}
	return ds
}

func rowRange(r CellRange, rows []map[string]any) []map[string]any {
	start, end := 0, len(rows)-1
	if r.RowStartIndex != nil && *r.RowStartIndex > start {
		start = *r.RowStartIndex
	}
	if r.RowEndIndex != nil && *r.RowEndIndex < end {
		end = *r.RowEndIndex
	}
	if start > end || start >= len(rows) {
		return nil
	}
	return rows[start : end+1]
}
