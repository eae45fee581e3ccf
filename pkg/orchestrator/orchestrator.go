package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportview/pkg/chart"
	"github.com/goliatone/go-reportview/pkg/grid"
	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/render"
	"github.com/goliatone/go-reportview/pkg/renderers/widget"
	"github.com/goliatone/go-reportview/pkg/source"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithClient sets the source client every widget fetches through.
func WithClient(client source.Client) Option {
	return func(o *Orchestrator) {
		o.client = client
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithChartRegistry sets the chart capability registry.
func WithChartRegistry(registry *chart.Registry) Option {
	return func(o *Orchestrator) {
		o.chartRegistry = registry
	}
}

// WithChartCapability selects the chart capability by name.
func WithChartCapability(name string) Option {
	return func(o *Orchestrator) {
		o.chartCapability = name
	}
}

// WithChartScheduler sets the scheduler chart restores run on.
func WithChartScheduler(s chart.Scheduler) Option {
	return func(o *Orchestrator) {
		o.chartScheduler = s
	}
}

// WithSettleDelay sets the delay between the table's first render and the
// chart restore.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.settleDelay = d
	}
}

// WithPageSize sets the number of table rows per page.
func WithPageSize(size int) Option {
	return func(o *Orchestrator) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithThemeSelector configures the theme selector used to resolve the theme
// requested by a caller.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithDefaultTheme sets the theme and variant used when a request names none.
func WithDefaultTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator turns widget identifiers into rendered output. It applies
// sensible defaults (HTML renderer, echarts capability) while remaining open
// to dependency injection.
type Orchestrator struct {
	client          source.Client
	registry        *render.Registry
	defaultRenderer string
	chartRegistry   *chart.Registry
	chartCapability string
	chartScheduler  chart.Scheduler
	settleDelay     time.Duration
	pageSize        int
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		pageSize:        grid.DefaultPageSize,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render of a widget.
type Request struct {
	// Identifier selects the widget data.
	Identifier source.Identifier

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant select the theme. Empty values fall back to
	// the configured defaults.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries per-request rendering data. A Theme set here wins
	// over the selector.
	RenderOptions render.RenderOptions
}

// Output is a rendered widget.
type Output struct {
	Body        []byte
	ContentType string
	View        model.View
}

// NewWidget builds a widget wired with the orchestrator's client, chart
// reconstructor and page size.
func (o *Orchestrator) NewWidget(opts ...WidgetOption) *Widget {
	reconstructorOpts := []chart.ReconstructorOption{
		chart.WithLogger(o.logger),
		chart.WithSettleDelay(o.settleDelay),
		chart.WithRegistry(o.chartRegistry),
		chart.WithCapability(o.chartCapability),
		chart.WithScheduler(o.chartScheduler),
	}
	base := []WidgetOption{
		WithWidgetLogger(o.logger),
		WithWidgetPageSize(o.pageSize),
		WithReconstructor(chart.NewReconstructor(reconstructorOpts...)),
	}
	return NewWidget(o.client, append(base, opts...)...)
}

// Generate loads the widget named by the request, waits for it to settle and
// renders it. Load failures are not errors: they render as the Error state.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Output, error) {
	if ctx == nil {
		return Output{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Output{}, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Output{}, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		opts.Theme, err = o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return Output{}, err
		}
	}

	chartTheme := ""
	if opts.Theme != nil {
		chartTheme = opts.Theme.Variant
	}

	w := o.NewWidget(WithChartTheme(chartTheme))
	defer w.Dispose()

	w.Load(ctx, req.Identifier)
	if err := w.Wait(ctx); err != nil {
		return Output{}, fmt.Errorf("orchestrator: wait for widget: %w", err)
	}
	view := w.View()

	body, err := renderer.Render(ctx, view, opts)
	if err != nil {
		return Output{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return Output{Body: body, ContentType: renderer.ContentType(), View: view}, nil
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.themeName
	}
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return rendererConfig(selection, defaultThemeFallbacks()), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDefaults() {
	if o.client == nil {
		o.initialiseErr = errors.New("orchestrator: source client is required")
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		html, err := widget.NewHTML()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(html)
		}
		o.registry.MustRegister(widget.NewJSON(false))
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.chartCapability == "" {
		o.chartCapability = chart.DefaultCapability
	}
}
