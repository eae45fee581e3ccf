package chart

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Request carries everything a Capability needs to rebuild one chart.
type Request struct {
	Model   *Model
	Binding Binding
	Data    Dataset
	Title   string
	Theme   string
}

// Handle is a restored chart ready to be mounted.
type Handle interface {
	ChartType() string
	Render(w io.Writer) error
}

// Capability rebuilds a chart from a bound model. A nil handle with a nil
// error means the model could not produce a chart.
type Capability interface {
	Name() string
	Supports(chartType string) bool
	Restore(ctx context.Context, req Request) (Handle, error)
}

// Registry stores capabilities by name.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Capability)}
}

// Register adds a capability by its Name(). Duplicate names return an error.
func (r *Registry) Register(capability Capability) error {
	if capability == nil {
		return fmt.Errorf("chart: capability is required")
	}
	name := capability.Name()
	if name == "" {
		return fmt.Errorf("chart: capability name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[name]; exists {
		return fmt.Errorf("chart: capability %q already registered", name)
	}
	r.capabilities[name] = capability
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(capability Capability) {
	if err := r.Register(capability); err != nil {
		panic(err)
	}
}

// Get retrieves a capability by name.
func (r *Registry) Get(name string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	capability, ok := r.capabilities[name]
	if !ok {
		return nil, fmt.Errorf("chart: capability %q not found", name)
	}
	return capability, nil
}

// Has reports whether a capability is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.capabilities[name]
	return ok
}

// List returns the sorted capability names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry populated during setup.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
