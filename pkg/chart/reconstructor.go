package chart

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/metrics"
	"github.com/goliatone/go-reportview/pkg/reporterr"
)

// DefaultCapability names the capability used when none is configured.
const DefaultCapability = "echarts"

// Restore outcomes recorded in metrics and returned by Restoration.Outcome.
const (
	OutcomeRestored     = "restored"
	OutcomeIncompatible = "incompatible"
	OutcomeFailed       = "failed"
	OutcomeCancelled    = "cancelled"
	OutcomeSkipped      = "skipped"
)

// ReconstructorOption configures a Reconstructor.
type ReconstructorOption func(*Reconstructor)

// WithRegistry sets the capability registry. Defaults to DefaultRegistry().
func WithRegistry(registry *Registry) ReconstructorOption {
	return func(r *Reconstructor) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithCapability selects the capability by name.
func WithCapability(name string) ReconstructorOption {
	return func(r *Reconstructor) {
		if name != "" {
			r.capability = name
		}
	}
}

// WithScheduler sets the scheduler for restore tasks.
func WithScheduler(s Scheduler) ReconstructorOption {
	return func(r *Reconstructor) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithSettleDelay sets the delay between the first-render signal and the
// restore attempt.
func WithSettleDelay(d time.Duration) ReconstructorOption {
	return func(r *Reconstructor) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReconstructorOption {
	return func(r *Reconstructor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reconstructor creates one Restoration per load.
type Reconstructor struct {
	registry   *Registry
	capability string
	scheduler  Scheduler
	delay      time.Duration
	logger     *slog.Logger
}

// NewReconstructor builds a Reconstructor.
func NewReconstructor(opts ...ReconstructorOption) *Reconstructor {
	r := &Reconstructor{
		registry:   DefaultRegistry(),
		capability: DefaultCapability,
		scheduler:  TimerScheduler{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Restore prepares the restoration of model into container. A nil model
// returns a finished Restoration that never touches the container. Otherwise
// the container is cleared immediately and the restore runs after MarkReady
// and the first OnFirstDataRendered call.
func (r *Reconstructor) Restore(ctx context.Context, container Container, model *Model, opts ...RestoreOption) *Restoration {
	s := &Restoration{
		r:         r,
		ctx:       ctx,
		container: container,
		model:     model,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if model == nil || container == nil {
		s.finish(OutcomeSkipped)
		return s
	}
	container.Clear()
	return s
}

// RestoreOption configures one Restoration.
type RestoreOption func(*Restoration)

// WithTitle sets the chart title passed to the capability.
func WithTitle(title string) RestoreOption {
	return func(s *Restoration) {
		s.title = title
	}
}

// WithTheme sets the theme name passed to the capability.
func WithTheme(theme string) RestoreOption {
	return func(s *Restoration) {
		s.theme = theme
	}
}

// WithDisposed registers a check consulted before the container is touched.
func WithDisposed(fn func() bool) RestoreOption {
	return func(s *Restoration) {
		s.disposed = fn
	}
}

// Restoration tracks the restore of one chart for one load.
type Restoration struct {
	r         *Reconstructor
	ctx       context.Context
	container Container
	model     *Model
	title     string
	theme     string
	disposed  func() bool

	mu          sync.Mutex
	descriptors []columns.Descriptor
	rows        []map[string]any

	ready     atomic.Bool
	scheduled atomic.Bool
	cancelled atomic.Bool

	once    sync.Once
	done    chan struct{}
	outcome string
	err     error
}

// MarkReady records the loaded columns and rows. It is the first phase.
func (s *Restoration) MarkReady(descriptors []columns.Descriptor, rows []map[string]any) {
	s.mu.Lock()
	s.descriptors = descriptors
	s.rows = rows
	s.mu.Unlock()
	s.ready.Store(true)
}

// OnFirstDataRendered schedules the restore the first time it is called
// after MarkReady. Later calls are ignored. Calls before MarkReady are
// ignored without consuming the gate.
func (s *Restoration) OnFirstDataRendered() {
	if s.isDone() || !s.ready.Load() {
		return
	}
	if !s.scheduled.CompareAndSwap(false, true) {
		return
	}
	s.r.scheduler.Schedule(s.r.delay, s.run)
}

// Cancel prevents a pending restore from touching the container.
func (s *Restoration) Cancel() {
	s.cancelled.Store(true)
	if !s.scheduled.Load() {
		s.finish(OutcomeCancelled)
	}
}

// Done is closed when the restoration has finished, whatever the outcome.
func (s *Restoration) Done() <-chan struct{} {
	return s.done
}

// Outcome returns the outcome and error once Done is closed.
func (s *Restoration) Outcome() (string, error) {
	select {
	case <-s.done:
		return s.outcome, s.err
	default:
		return "", nil
	}
}

func (s *Restoration) isDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Restoration) stopped() bool {
	if s.cancelled.Load() {
		return true
	}
	if s.disposed != nil && s.disposed() {
		return true
	}
	return s.ctx != nil && s.ctx.Err() != nil
}

func (s *Restoration) finish(outcome string) {
	s.finishErr(outcome, nil)
}

func (s *Restoration) finishErr(outcome string, err error) {
	s.once.Do(func() {
		s.outcome = outcome
		s.err = err
		if outcome != OutcomeSkipped {
			metrics.ChartRestores.WithLabelValues(outcome).Inc()
		}
		close(s.done)
	})
}

func (s *Restoration) run() {
	logger := s.r.logger.With("chart_type", s.model.ChartType, "chart_id", s.model.ChartID)

	if s.stopped() {
		s.finish(OutcomeCancelled)
		return
	}

	s.container.Clear()

	s.mu.Lock()
	descriptors, rows := s.descriptors, s.rows
	s.mu.Unlock()

	binding, err := Bind(s.model, descriptors)
	if err != nil {
		logger.Warn("chart model is incompatible with the loaded columns", "error", err)
		s.finishErr(OutcomeIncompatible, &reporterr.ChartRestoreError{ChartType: s.model.ChartType, Err: err})
		return
	}

	capability, err := s.r.registry.Get(s.r.capability)
	if err != nil {
		s.fail(logger, err)
		return
	}

	title := s.title
	if t := s.model.Title(); t != "" {
		title = t
	}
	handle, err := capability.Restore(s.ctx, Request{
		Model:   s.model,
		Binding: binding,
		Data:    BuildDataset(s.model, binding, rows),
		Title:   title,
		Theme:   s.theme,
	})
	if err == nil && handle == nil {
		err = errNoHandle
	}
	if err != nil {
		s.fail(logger, err)
		return
	}

	var buf bytes.Buffer
	if err := handle.Render(&buf); err != nil {
		s.fail(logger, err)
		return
	}

	if s.stopped() {
		s.finish(OutcomeCancelled)
		return
	}
	s.container.Mount(buf.Bytes())
	s.finish(OutcomeRestored)
}

var errNoHandle = errors.New("chart: capability returned no chart handle")

func (s *Restoration) fail(logger *slog.Logger, err error) {
	logger.Warn("unable to restore chart", "error", err)
	s.container.Clear()
	s.finishErr(OutcomeFailed, &reporterr.ChartRestoreError{ChartType: s.model.ChartType, Err: err})
}
