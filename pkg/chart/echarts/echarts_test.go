package echarts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-reportview/pkg/chart"
)

func request(chartType string, series ...chart.Series) chart.Request {
	if len(series) == 0 {
		series = []chart.Series{{ID: "sales", HeaderName: "Sales"}}
	}
	values := make([][]float64, len(series))
	for i := range series {
		values[i] = []float64{13, 4}
	}
	return chart.Request{
		Model:   &chart.Model{ChartType: chartType},
		Binding: chart.Binding{Category: "region", CategoryHeader: "Region", Series: series},
		Data:    chart.Dataset{Categories: []string{"north", "south"}, Values: values},
		Title:   "Sales by region",
	}
}

func TestRestore_RendersSupportedTypes(t *testing.T) {
	c := New(WithAssetsHost("/assets/echarts"))
	for _, chartType := range []string{"groupedColumn", "stackedBar", "line", "stackedArea", "pie", "doughnut", "scatter"} {
		t.Run(chartType, func(t *testing.T) {
			h, err := c.Restore(context.Background(), request(chartType))
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if h == nil {
				t.Fatal("expected a chart handle")
			}
			if h.ChartType() != chartType {
				t.Fatalf("chart type = %q", h.ChartType())
			}
			var buf bytes.Buffer
			if err := h.Render(&buf); err != nil {
				t.Fatalf("Render: %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, "Sales") || !strings.Contains(out, "north") {
				t.Fatalf("rendered chart is missing data: %s", out)
			}
			if !strings.Contains(out, "/assets/echarts/") {
				t.Fatalf("rendered chart should load scripts from the assets host: %s", out)
			}
		})
	}
}

func TestRestore_Combo(t *testing.T) {
	c := New()
	h, err := c.Restore(context.Background(), request("columnLineCombo",
		chart.Series{ID: "sales", HeaderName: "Sales", ChartType: "groupedColumn"},
		chart.Series{ID: "margin", HeaderName: "Margin", ChartType: "line"},
	))
	if err != nil || h == nil {
		t.Fatalf("Restore = (%v, %v)", h, err)
	}
	var buf bytes.Buffer
	if err := h.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "Margin") {
		t.Fatal("overlay series missing from combo chart")
	}
}

func TestRestore_UnsupportedAndEmpty(t *testing.T) {
	c := New()
	if _, err := c.Restore(context.Background(), request("waterfall")); err == nil {
		t.Fatal("expected error for unsupported chart type")
	}
	if c.Supports("waterfall") || !c.Supports("pie") {
		t.Fatal("Supports disagrees with the chart type table")
	}

	req := request("line")
	req.Data = chart.Dataset{}
	h, err := c.Restore(context.Background(), req)
	if err != nil || h != nil {
		t.Fatalf("empty data should yield no handle, got (%v, %v)", h, err)
	}
}

func TestRestore_ThroughReconstructor(t *testing.T) {
	registry := chart.NewRegistry()
	registry.MustRegister(New())
	r := chart.NewReconstructor(chart.WithRegistry(registry), chart.WithScheduler(chart.InlineScheduler{}))

	model, err := chart.ParseModel(map[string]any{
		"chartType": "column",
		"cellRange": map[string]any{"columns": []any{"region", "sales"}},
	})
	if err != nil {
		t.Fatalf("ParseModel: %v", err)
	}

	container := &chart.BufferContainer{}
	s := r.Restore(context.Background(), container, model)
	req := request("column")
	s.MarkReady(descriptorsFor(req), []map[string]any{
		{"region": "north", "sales": 13.0},
		{"region": "south", "sales": 4.0},
	})
	s.OnFirstDataRendered()
	<-s.Done()

	if outcome, err := s.Outcome(); outcome != chart.OutcomeRestored {
		t.Fatalf("outcome = (%s, %v)", outcome, err)
	}
	if container.Empty() {
		t.Fatal("expected chart markup in the container")
	}
}

func TestRestore_AreaSeriesAreFilled(t *testing.T) {
	h, err := New().Restore(context.Background(), request("stackedArea"))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	var buf bytes.Buffer
	if err := h.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "areaStyle") || !strings.Contains(out, "0.4") {
		t.Fatalf("area series should carry a fill opacity: %s", out)
	}
}
