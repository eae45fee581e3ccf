// Package reportview renders persisted report tables and charts as
// embeddable, read-only widgets.
//
// The root package is a thin facade over pkg/orchestrator. Call Setup once at
// startup to install the default chart capability, then build an
// orchestrator with a source client:
//
//	reportview.Setup()
//	client, _ := source.NewHTTPClient("https://reports.example.com", source.WithToken(token))
//	html, err := reportview.GenerateHTML(ctx, source.Identifier{Token: "abc", View: "table"},
//	    orchestrator.WithClient(client))
package reportview

import (
	"context"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportview/pkg/chart"
	"github.com/goliatone/go-reportview/pkg/chart/echarts"
	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/orchestrator"
	"github.com/goliatone/go-reportview/pkg/render"
	"github.com/goliatone/go-reportview/pkg/renderers/widget"
	"github.com/goliatone/go-reportview/pkg/source"
)

// Request aliases orchestrator.Request for callers of the root package.
type Request = orchestrator.Request

// Output aliases orchestrator.Output.
type Output = orchestrator.Output

// View is the render-ready widget snapshot.
type View = model.View

// Identifier is the widget identity read from the embedding URL.
type Identifier = source.Identifier

// RenderOptions describes per-request rendering data such as the theme and
// the base path used for pagination links.
type RenderOptions = render.RenderOptions

var setupOnce sync.Once

// Setup registers the echarts capability on chart.DefaultRegistry and the
// widget template filters. It is safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		if !chart.DefaultRegistry().Has(echarts.Name) {
			chart.DefaultRegistry().MustRegister(echarts.New())
		}
		widget.RegisterFilters()
	})
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	Setup()
	return orchestrator.New(options...)
}

// GenerateHTML loads the widget named by id, waits for its table and chart to
// settle and renders it as an HTML page.
func GenerateHTML(ctx context.Context, id Identifier, options ...orchestrator.Option) ([]byte, error) {
	out, err := NewOrchestrator(options...).Generate(ctx, Request{
		Identifier: id,
		Renderer:   "html",
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// GenerateView loads the widget named by id and returns its settled view
// without rendering it.
func GenerateView(ctx context.Context, id Identifier, options ...orchestrator.Option) (View, error) {
	out, err := NewOrchestrator(options...).Generate(ctx, Request{
		Identifier: id,
		Renderer:   "json",
	})
	if err != nil {
		return View{}, err
	}
	return out.View, nil
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme and variant choices are resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemes selects among a fixed set of manifests.
func WithThemes(manifests ...*theme.Manifest) orchestrator.Option {
	return orchestrator.WithThemeSelector(orchestrator.NewStaticSelector(manifests...))
}
