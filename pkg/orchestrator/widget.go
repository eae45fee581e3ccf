package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-reportview/pkg/chart"
	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/grid"
	"github.com/goliatone/go-reportview/pkg/metrics"
	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/reporterr"
	"github.com/goliatone/go-reportview/pkg/source"
	"github.com/goliatone/go-reportview/pkg/viewstate"
)

// WidgetOption configures a Widget.
type WidgetOption func(*Widget)

// WithWidgetLogger sets the widget logger.
func WithWidgetLogger(logger *slog.Logger) WidgetOption {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithReconstructor sets the chart reconstructor.
func WithReconstructor(r *chart.Reconstructor) WidgetOption {
	return func(w *Widget) {
		if r != nil {
			w.reconstructor = r
		}
	}
}

// WithWidgetPageSize sets the number of table rows per page.
func WithWidgetPageSize(size int) WidgetOption {
	return func(w *Widget) {
		if size > 0 {
			w.pageSize = size
		}
	}
}

// WithChartTheme sets the theme name passed to the chart capability.
func WithChartTheme(name string) WidgetOption {
	return func(w *Widget) {
		w.chartTheme = name
	}
}

// Widget is one embedded report view. It is owned by a single caller.
type Widget struct {
	id            string
	client        source.Client
	reconstructor *chart.Reconstructor
	pageSize      int
	chartTheme    string
	logger        *slog.Logger

	mu         sync.Mutex
	generation uint64
	current    *cycle
	view       model.View
	closed     bool
}

// cycle is one fetch-normalize-render sequence.
type cycle struct {
	id         string
	generation uint64
	identifier source.Identifier
	ctx        context.Context
	cancel     context.CancelFunc
	disposed   atomic.Bool
	done       chan struct{}

	mu          sync.Mutex
	restoration *chart.Restoration
}

func (c *cycle) dispose() {
	if c.disposed.Swap(true) {
		return
	}
	c.cancel()
	c.mu.Lock()
	restoration := c.restoration
	c.mu.Unlock()
	if restoration != nil {
		restoration.Cancel()
	}
}

func (c *cycle) isDisposed() bool {
	return c.disposed.Load()
}

// NewWidget builds a widget that fetches through client.
func NewWidget(client source.Client, opts ...WidgetOption) *Widget {
	w := &Widget{
		id:       uuid.NewString(),
		client:   client,
		pageSize: grid.DefaultPageSize,
		logger:   slog.Default(),
		view:     model.View{State: model.StateLoading},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.reconstructor == nil {
		w.reconstructor = chart.NewReconstructor(chart.WithLogger(w.logger))
	}
	return w
}

// ID returns the widget identifier used in logs.
func (w *Widget) ID() string {
	return w.id
}

// Load starts a new load cycle for id and returns immediately. The previous
// cycle, if any, is disposed first, and the view resets to Loading.
func (w *Widget) Load(ctx context.Context, id source.Identifier) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if w.current != nil {
		w.current.dispose()
	}
	w.generation++
	cctx, cancel := context.WithCancel(ctx)
	c := &cycle{
		id:         uuid.NewString(),
		generation: w.generation,
		identifier: id,
		ctx:        cctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	w.current = c
	w.view = model.View{State: model.StateLoading, Identifier: id, CycleID: c.id}
	w.mu.Unlock()

	go w.run(c)
}

// View returns a snapshot of the current view.
func (w *Widget) View() model.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Wait blocks until the current cycle has finished, including its chart
// restoration, or ctx ends.
func (w *Widget) Wait(ctx context.Context) error {
	w.mu.Lock()
	c := w.current
	w.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispose discards the current cycle. Later loads are ignored.
func (w *Widget) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.current != nil {
		w.current.dispose()
	}
}

// commit applies fn to the view if c is still the live cycle. It reports
// whether the update was applied.
func (w *Widget) commit(c *cycle, fn func(*model.View)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c.isDisposed() || w.current != c {
		metrics.StaleResultsDiscarded.Inc()
		return false
	}
	fn(&w.view)
	return true
}

func (w *Widget) run(c *cycle) {
	defer close(c.done)

	metrics.WidgetsActive.Inc()
	defer metrics.WidgetsActive.Dec()

	start := time.Now()
	logger := w.logger.With("widget", w.id, "cycle", c.id, "generation", c.generation)

	flow, err := source.Select(c.identifier)
	if err != nil {
		w.fail(c, logger, flow, err)
		return
	}
	logger = logger.With("flow", string(flow))
	logger.Debug("loading widget")

	res, err := w.fetch(c.ctx, logger, flow, c.identifier)
	if err != nil {
		w.fail(c, logger, flow, err)
		return
	}
	if c.isDisposed() {
		metrics.StaleResultsDiscarded.Inc()
		logger.Debug("discarding result of disposed cycle")
		return
	}

	rows := columns.CastRows(res.payload.Rows, res.payload.Columns)
	descriptors := columns.Describe(res.payload.Columns, rows)

	if len(rows) == 0 {
		applied := w.commit(c, func(v *model.View) {
			v.State = model.StateEmpty
			v.Flow = flow
			v.Title = res.title
			v.Message = MessageNoData
			v.Warnings = res.warnings
			v.Descriptors = descriptors
		})
		if applied {
			w.finish(logger, flow, model.StateEmpty, start, reporterr.ErrEmptyResult)
		}
		return
	}

	table := grid.New(descriptors, rows, grid.WithLogger(logger), grid.WithPageSize(w.pageSize))
	viewstate.Apply(table, res.viewState, descriptors)

	container := &chart.BufferContainer{}
	restoration := w.reconstructor.Restore(c.ctx, container, res.chart,
		chart.WithTitle(res.title),
		chart.WithTheme(w.chartTheme),
		chart.WithDisposed(c.isDisposed),
	)
	c.mu.Lock()
	c.restoration = restoration
	c.mu.Unlock()
	if c.isDisposed() {
		restoration.Cancel()
	}

	table.OnFirstDataRendered(restoration.OnFirstDataRendered)
	restoration.MarkReady(descriptors, rows)

	result := table.Render()
	message := ""
	if len(result.Rows) == 0 {
		restoration.Cancel()
		message = MessageNoData
	}
	page := grid.Paginate(result.Rows, c.identifier.Page, table.PageSize())

	applied := w.commit(c, func(v *model.View) {
		v.State = model.StateReady
		v.Flow = flow
		v.Title = res.title
		v.Message = message
		v.Warnings = res.warnings
		v.Descriptors = descriptors
		v.ViewState = res.viewState
		v.Table = &model.Table{
			Columns: result.Columns,
			Page:    page,
			Grouped: result.Grouped,
			Pivoted: result.Pivoted,
			AutoFit: result.AutoFit,
		}
	})
	if !applied {
		restoration.Cancel()
		return
	}
	w.finish(logger, flow, model.StateReady, start, nil)

	select {
	case <-restoration.Done():
	case <-c.ctx.Done():
		restoration.Cancel()
		return
	}

	outcome, err := restoration.Outcome()
	if res.chart == nil {
		return
	}
	w.commit(c, func(v *model.View) {
		v.Chart = &model.Chart{Type: res.chart.ChartType, Outcome: outcome}
		if outcome == chart.OutcomeRestored {
			v.Chart.HTML = container.Bytes()
		}
	})
	if err != nil {
		logger.Debug("chart not restored", "outcome", outcome, "error", err)
	}
}

func (w *Widget) fail(c *cycle, logger *slog.Logger, flow source.Flow, err error) {
	if c.isDisposed() {
		metrics.StaleResultsDiscarded.Inc()
		logger.Debug("discarding failure of disposed cycle", "error", err)
		return
	}
	message := errorMessage(flow, c.identifier, err)
	applied := w.commit(c, func(v *model.View) {
		v.State = model.StateError
		v.Flow = flow
		v.Message = message
	})
	if !applied {
		return
	}

	var fetchErr *reporterr.FetchError
	switch {
	case errors.As(err, &fetchErr), errors.Is(err, reporterr.ErrMissingIdentifier):
		logger.Warn("widget load failed", "error", err)
	default:
		logger.Error("widget load failed", "error", err)
	}
	metrics.LoadsTotal.WithLabelValues(flowLabel(flow), string(model.StateError)).Inc()
}

func (w *Widget) finish(logger *slog.Logger, flow source.Flow, state model.State, start time.Time, err error) {
	metrics.LoadsTotal.WithLabelValues(flowLabel(flow), string(state)).Inc()
	attrs := []any{"state", string(state), "elapsed", time.Since(start)}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.Info("widget loaded", attrs...)
}

func flowLabel(flow source.Flow) string {
	if flow == "" {
		return "none"
	}
	return string(flow)
}
