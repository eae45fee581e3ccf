// Package echarts is the default chart capability. It rebuilds persisted
// charts with go-echarts and renders them as standalone HTML documents.
package echarts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/goliatone/go-reportview/pkg/chart"
)

// Name is the registry name of the capability.
const Name = chart.DefaultCapability

type kind int

const (
	kindColumn kind = iota
	kindBar
	kindLine
	kindArea
	kindPie
	kindScatter
	kindCombo
)

type shape struct {
	kind     kind
	stacked  bool
	doughnut bool
}

var shapes = map[string]shape{
	"column":           {kind: kindColumn},
	"groupedColumn":    {kind: kindColumn},
	"stackedColumn":    {kind: kindColumn, stacked: true},
	"normalizedColumn": {kind: kindColumn, stacked: true},
	"histogram":        {kind: kindColumn},
	"bar":              {kind: kindBar},
	"groupedBar":       {kind: kindBar},
	"stackedBar":       {kind: kindBar, stacked: true},
	"normalizedBar":    {kind: kindBar, stacked: true},
	"line":             {kind: kindLine},
	"area":             {kind: kindArea},
	"stackedArea":      {kind: kindArea, stacked: true},
	"normalizedArea":   {kind: kindArea, stacked: true},
	"pie":              {kind: kindPie},
	"doughnut":         {kind: kindPie, doughnut: true},
	"donut":            {kind: kindPie, doughnut: true},
	"scatter":          {kind: kindScatter},
	"bubble":           {kind: kindScatter},
	"columnLineCombo":  {kind: kindCombo},
	"areaColumnCombo":  {kind: kindCombo},
	"customCombo":      {kind: kindCombo},
}

// Option configures the capability.
type Option func(*Capability)

// WithSize sets the chart canvas size as CSS lengths.
func WithSize(width, height string) Option {
	return func(c *Capability) {
		if width != "" {
			c.width = width
		}
		if height != "" {
			c.height = height
		}
	}
}

// WithAssetsHost serves the echarts script from host instead of the CDN.
func WithAssetsHost(host string) Option {
	return func(c *Capability) {
		if host != "" {
			if !strings.HasSuffix(host, "/") {
				host += "/"
			}
			c.assetsHost = host
		}
	}
}

// Capability implements chart.Capability with go-echarts.
type Capability struct {
	width      string
	height     string
	assetsHost string
}

var _ chart.Capability = (*Capability)(nil)

// New creates the capability.
func New(opts ...Option) *Capability {
	c := &Capability{width: "100%", height: "420px"}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Name implements chart.Capability.
func (c *Capability) Name() string { return Name }

// Supports implements chart.Capability.
func (c *Capability) Supports(chartType string) bool {
	_, ok := shapes[chartType]
	return ok
}

type renderer interface {
	Render(w io.Writer) error
}

type handle struct {
	chartType string
	chart     renderer
}

func (h handle) ChartType() string        { return h.chartType }
func (h handle) Render(w io.Writer) error { return h.chart.Render(w) }

// Restore implements chart.Capability.
func (c *Capability) Restore(ctx context.Context, req chart.Request) (chart.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Model == nil {
		return nil, nil
	}
	s, ok := shapes[req.Model.ChartType]
	if !ok {
		return nil, fmt.Errorf("echarts: unsupported chart type %q", req.Model.ChartType)
	}
	if len(req.Data.Categories) == 0 {
		return nil, nil
	}

	global := c.globalOptions(req, s)

	var out renderer
	switch s.kind {
	case kindColumn, kindBar:
		out = c.bar(req, s, global)
	case kindLine, kindArea:
		out = c.line(req, s, global)
	case kindPie:
		out = c.pie(req, s, global)
	case kindScatter:
		out = c.scatter(req, global)
	case kindCombo:
		out = c.combo(req, global)
	}
	return handle{chartType: req.Model.ChartType, chart: out}, nil
}

func (c *Capability) globalOptions(req chart.Request, s shape) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		PageTitle: req.Title,
		Width:     c.width,
		Height:    c.height,
		Theme:     themeFor(req),
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	trigger := "axis"
	if s.kind == kindPie || s.kind == kindScatter {
		trigger = "item"
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(req.Binding.Series) > 1 || s.kind == kindPie), Bottom: "0"}),
	}
	if req.Title != "" {
		global = append(global, charts.WithTitleOpts(opts.Title{Title: req.Title, Left: "center"}))
	}
	if s.kind != kindPie {
		global = append(global, charts.WithGridOpts(opts.Grid{Left: "8%", Right: "6%", Bottom: "15%", Top: "60"}))
	}
	return global
}

func themeFor(req chart.Request) string {
	name := req.Theme
	if name == "" && req.Model != nil {
		name = req.Model.ChartThemeName
	}
	if strings.Contains(strings.ToLower(name), "dark") {
		return "chalk"
	}
	return "white"
}

func (c *Capability) bar(req chart.Request, s shape, global []charts.GlobalOpts) *charts.Bar {
	bar := charts.NewBar()
	valueAxis := opts.YAxis{Type: "value"}
	categoryAxis := opts.XAxis{Type: "category", Name: req.Binding.CategoryHeader, AxisLabel: &opts.AxisLabel{Rotate: rotation(req.Data.Categories)}}
	bar.SetGlobalOptions(append(global,
		charts.WithXAxisOpts(categoryAxis),
		charts.WithYAxisOpts(valueAxis),
	)...)
	bar.SetXAxis(req.Data.Categories)

	for i, series := range req.Binding.Series {
		data := make([]opts.BarData, len(req.Data.Categories))
		for j, v := range req.Data.Values[i] {
			data[j] = opts.BarData{Value: v}
		}
		var seriesOpts []charts.SeriesOpts
		if s.stacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(series.HeaderName, data, seriesOpts...)
	}
	if s.kind == kindBar {
		bar.XYReversal()
	}
	return bar
}

func (c *Capability) line(req chart.Request, s shape, global []charts.GlobalOpts) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(global,
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: req.Binding.CategoryHeader, AxisLabel: &opts.AxisLabel{Rotate: rotation(req.Data.Categories)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)...)
	line.SetXAxis(req.Data.Categories)

	for i, series := range req.Binding.Series {
		line.AddSeries(series.HeaderName, lineData(req.Data.Values[i]), lineOpts(s)...)
	}
	return line
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for j, v := range values {
		data[j] = opts.LineData{Value: v}
	}
	return data
}

func lineOpts(s shape) []charts.SeriesOpts {
	lc := opts.LineChart{ShowSymbol: opts.Bool(true)}
	if s.stacked {
		lc.Stack = "total"
	}
	out := []charts.SeriesOpts{charts.WithLineChartOpts(lc)}
	if s.kind == kindArea {
		out = append(out, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.4}))
	}
	return out
}

func (c *Capability) pie(req chart.Request, s shape, global []charts.GlobalOpts) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(global...)

	series := req.Binding.Series[0]
	data := make([]opts.PieData, len(req.Data.Categories))
	for j, label := range req.Data.Categories {
		data[j] = opts.PieData{Name: label, Value: req.Data.Values[0][j]}
	}
	radius := "70%"
	if s.doughnut {
		pie.AddSeries(series.HeaderName, data, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", radius}}))
		return pie
	}
	pie.AddSeries(series.HeaderName, data, charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	return pie
}

func (c *Capability) scatter(req chart.Request, global []charts.GlobalOpts) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(global,
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: req.Binding.CategoryHeader}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)...)
	scatter.SetXAxis(req.Data.Categories)
	for i, series := range req.Binding.Series {
		data := make([]opts.ScatterData, len(req.Data.Categories))
		for j, v := range req.Data.Values[i] {
			data[j] = opts.ScatterData{Value: v}
		}
		scatter.AddSeries(series.HeaderName, data)
	}
	return scatter
}

// combo draws column series as bars and overlays line and area series.
func (c *Capability) combo(req chart.Request, global []charts.GlobalOpts) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(global,
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: req.Binding.CategoryHeader}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)...)
	bar.SetXAxis(req.Data.Categories)

	overlay := charts.NewLine()
	overlay.SetXAxis(req.Data.Categories)
	overlaid := false

	for i, series := range req.Binding.Series {
		switch series.ChartType {
		case "line":
			overlay.AddSeries(series.HeaderName, lineData(req.Data.Values[i]), lineOpts(shape{kind: kindLine})...)
			overlaid = true
		case "area", "stackedArea":
			overlay.AddSeries(series.HeaderName, lineData(req.Data.Values[i]), lineOpts(shape{kind: kindArea})...)
			overlaid = true
		default:
			data := make([]opts.BarData, len(req.Data.Categories))
			for j, v := range req.Data.Values[i] {
				data[j] = opts.BarData{Value: v}
			}
			bar.AddSeries(series.HeaderName, data)
		}
	}
	if overlaid {
		bar.Overlap(overlay)
	}
	return bar
}

func rotation(labels []string) float64 {
	longest := 0
	for _, l := range labels {
		if len(l) > longest {
			longest = len(l)
		}
	}
	if len(labels) > 8 || longest > 12 {
		return 45
	}
	return 0
}
