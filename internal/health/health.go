// Package health serves the liveness and readiness endpoints of the
// reportview service.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status represents the health state of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Probe reports the current status of a component. A nil error is up.
type Probe func(ctx context.Context) error

type component struct {
	status   Status
	probe    Probe
	optional bool
}

// Checker tracks the health of registered components. Components either
// have their status pushed with SetStatus or carry a Probe evaluated on
// every request.
type Checker struct {
	mu         sync.RWMutex
	components map[string]*component
	timeout    time.Duration
}

// NewChecker creates a Checker with no registered components. Probes run
// with the given timeout; zero means two seconds.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		components: make(map[string]*component),
		timeout:    timeout,
	}
}

// Register adds a component with an initial status of down.
func (c *Checker) Register(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = &component{status: StatusDown}
}

// RegisterProbe adds a component checked by probe. A failing optional
// component degrades the service instead of taking it down.
func (c *Checker) RegisterProbe(name string, probe Probe, optional bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = &component{status: StatusDown, probe: probe, optional: optional}
}

// SetStatus updates the health status of a named component.
func (c *Checker) SetStatus(name string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	comp, ok := c.components[name]
	if !ok {
		comp = &component{}
		c.components[name] = comp
	}
	comp.status = status
}

type componentReport struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

type response struct {
	Status     Status                     `json:"status"`
	Components map[string]componentReport `json:"components"`
}

// Check evaluates every component and aggregates the result: down wins over
// degraded, degraded over up.
func (c *Checker) Check(ctx context.Context) (Status, map[string]componentReport) {
	c.mu.RLock()
	names := make([]string, 0, len(c.components))
	snapshot := make(map[string]component, len(c.components))
	for name, comp := range c.components {
		names = append(names, name)
		snapshot[name] = *comp
	}
	c.mu.RUnlock()
	sort.Strings(names)

	overall := StatusUp
	reports := make(map[string]componentReport, len(names))
	for _, name := range names {
		comp := snapshot[name]
		report := componentReport{Status: comp.status}
		if comp.probe != nil {
			report = c.runProbe(ctx, comp)
		}
		reports[name] = report

		switch report.Status {
		case StatusDown:
			overall = StatusDown
		case StatusDegraded:
			if overall == StatusUp {
				overall = StatusDegraded
			}
		}
	}
	return overall, reports
}

func (c *Checker) runProbe(ctx context.Context, comp component) componentReport {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := comp.probe(ctx); err != nil {
		status := StatusDown
		if comp.optional {
			status = StatusDegraded
		}
		return componentReport{Status: status, Error: err.Error()}
	}
	return componentReport{Status: StatusUp}
}

// ServeHTTP responds with the aggregated health status.
// Returns 200 when no component is down, 503 otherwise.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	overall, reports := c.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if overall == StatusDown {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(response{
		Status:     overall,
		Components: reports,
	})
}

// ReadinessChecker tracks whether the service is ready to serve widgets.
type ReadinessChecker struct {
	mu    sync.RWMutex
	ready bool
}

// NewReadinessChecker creates a ReadinessChecker in not-ready state.
func NewReadinessChecker() *ReadinessChecker {
	return &ReadinessChecker{}
}

// SetReady updates the readiness state.
func (r *ReadinessChecker) SetReady(ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = ready
}

// Ready reports the readiness state.
func (r *ReadinessChecker) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// ServeHTTP returns 200 when ready, 503 when not ready.
func (r *ReadinessChecker) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	ready := r.Ready()
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready})
}
