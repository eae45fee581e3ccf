package chart

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-reportview/pkg/viewstate"
)

// CellRange is the part of the table a chart was built from.
type CellRange struct {
	Columns       viewstate.ColumnList `json:"columns,omitempty"`
	ColumnStart   any                  `json:"columnStart,omitempty"`
	ColumnEnd     any                  `json:"columnEnd,omitempty"`
	RowStartIndex *int                 `json:"rowStartIndex,omitempty"`
	RowEndIndex   *int                 `json:"rowEndIndex,omitempty"`
}

// SeriesChartType overrides the chart type of one series in combination
// charts.
type SeriesChartType struct {
	ColID         string `json:"colId"`
	ChartType     string `json:"chartType"`
	SecondaryAxis bool   `json:"secondaryAxis,omitempty"`
}

// Model is a persisted chart descriptor. Fields the viewer does not interpret
// are preserved in Raw.
type Model struct {
	ModelType           string            `json:"modelType,omitempty"`
	ChartID             string            `json:"chartId,omitempty"`
	ChartType           string            `json:"chartType"`
	CellRange           CellRange         `json:"cellRange"`
	ChartThemeName      string            `json:"chartThemeName,omitempty"`
	ChartOptions        map[string]any    `json:"chartOptions,omitempty"`
	AggFunc             any               `json:"aggFunc,omitempty"`
	UnlinkChart         bool              `json:"unlinkChart,omitempty"`
	SuppressChartRanges bool              `json:"suppressChartRanges,omitempty"`
	SeriesChartTypes    []SeriesChartType `json:"seriesChartTypes,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ParseModel builds a Model from a decoded config value. nil yields a nil
// model. Values that are not objects are rejected.
func ParseModel(value any) (*Model, error) {
	if value == nil {
		return nil, nil
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, fmt.Errorf("chart: model has type %T", value)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("chart: encode model: %w", err)
	}
	var model Model
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("chart: decode model: %w", err)
	}
	model.Raw = raw
	return &model, nil
}

// AggFuncName returns the aggregation name, or "sum" when none is set or the
// persisted value is a custom function.
func (m *Model) AggFuncName() string {
	if m == nil {
		return "sum"
	}
	if name, ok := m.AggFunc.(string); ok && name != "" {
		return name
	}
	return "sum"
}

// Title returns the title persisted in the chart options, if any.
func (m *Model) Title() string {
	if m == nil {
		return ""
	}
	for _, section := range m.ChartOptions {
		opts, ok := section.(map[string]any)
		if !ok {
			continue
		}
		title, ok := opts["title"].(map[string]any)
		if !ok {
			continue
		}
		if enabled, ok := title["enabled"].(bool); ok && !enabled {
			continue
		}
		if text, ok := title["text"].(string); ok && text != "" {
			return text
		}
	}
	return ""
}
