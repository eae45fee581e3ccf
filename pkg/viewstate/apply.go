package viewstate

import (
	"strings"
	"time"

	"github.com/goliatone/go-reportview/pkg/columns"
)

// TableHandle is the subset of table operations a ViewState is replayed
// through. Implementations ignore column IDs they do not know.
type TableHandle interface {
	SetPivotMode(enabled bool)
	SetFilterModel(model map[string]any)
	SetRowGroupColumns(ids []string)
	SetPivotColumns(ids []string)
	SetValueColumns(ids []string)
	ApplyColumnState(state []ColumnState, applyOrder bool)
	SizeColumnsToFit()
}

// Apply replays state onto handle in a fixed order: pivot mode, filter model,
// row group columns, pivot columns, value columns and finally either the
// column state (with order) or an auto-fit. A nil state only auto-fits.
//
// Date bounds in filters for Date columns are truncated to the date so they
// match date-only cell values. state itself is never modified.
func Apply(handle TableHandle, state *ViewState, descriptors []columns.Descriptor) {
	if handle == nil {
		return
	}
	if state == nil {
		handle.SizeColumnsToFit()
		return
	}

	handle.SetPivotMode(state.PivotMode)
	handle.SetFilterModel(TruncateDateFilters(state.FilterModel, descriptors))
	handle.SetRowGroupColumns(orEmpty(state.RowGroupCols))
	handle.SetPivotColumns(orEmpty(state.PivotCols))
	handle.SetValueColumns(orEmpty(state.ValueCols))

	if len(state.ColumnState) > 0 {
		handle.ApplyColumnState(state.ColumnState, true)
		return
	}
	handle.SizeColumnsToFit()
}

func orEmpty(ids ColumnList) []string {
	if ids == nil {
		return []string{}
	}
	return []string(ids)
}

// TruncateDateFilters returns a copy of model where dateFrom and dateTo bounds
// of date filters are cut to YYYY-MM-DD. A filter is a date filter when its
// column is Date-typed or its filterType is "date". Nested conditions are
// handled. A nil model yields an empty one.
func TruncateDateFilters(model map[string]any, descriptors []columns.Descriptor) map[string]any {
	out := make(map[string]any, len(model))
	if len(model) == 0 {
		return out
	}
	index := columns.Index(descriptors)
	for colID, spec := range model {
		isDate := index[colID].Type == columns.TypeDate
		out[colID] = truncateSpec(spec, isDate)
	}
	return out
}

func truncateSpec(spec any, dateColumn bool) any {
	switch typed := spec.(type) {
	case map[string]any:
		isDate := dateColumn
		if ft, ok := typed["filterType"].(string); ok && ft == "date" {
			isDate = true
		}
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			switch key {
			case "dateFrom", "dateTo":
				if s, ok := value.(string); ok && isDate {
					out[key] = TruncateDate(s)
					continue
				}
				out[key] = value
			case "conditions", "filterModels", "condition1", "condition2":
				out[key] = truncateSpec(value, isDate)
			default:
				out[key] = value
			}
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = truncateSpec(item, dateColumn)
		}
		return out
	default:
		return spec
	}
}

// TruncateDate strips the time of day from a date bound. Values that do not
// start with a date are returned unchanged.
func TruncateDate(value string) string {
	trimmed := strings.TrimSpace(value)
	if t, ok := columns.ParseDate(trimmed); ok {
		return t.Format(time.DateOnly)
	}
	if len(trimmed) >= len(time.DateOnly) {
		prefix := trimmed[:len(time.DateOnly)]
		if _, err := time.Parse(time.DateOnly, prefix); err == nil {
			return prefix
		}
	}
	return value
}
