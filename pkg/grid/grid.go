// Package grid is an in-memory table that the persisted view state is
// replayed onto. It filters, sorts, groups, pivots and paginates rows and
// exposes the processed result for rendering and chart binding.
package grid

import (
	"log/slog"
	"sync"

	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/viewstate"
)

// DefaultPageSize matches the page size of the embedded table view.
const DefaultPageSize = 20

// Option configures a Grid.
type Option func(*Grid)

// WithLogger sets the logger used for ignored column references.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithPageSize overrides DefaultPageSize. Non-positive values are ignored.
func WithPageSize(size int) Option {
	return func(g *Grid) {
		if size > 0 {
			g.pageSize = size
		}
	}
}

type column struct {
	desc    columns.Descriptor
	width   *float64
	flex    *float64
	hidden  bool
	pinned  string
	sort    string
	sortIdx *int
	aggFunc string
}

// Grid holds one loaded result set. It implements viewstate.TableHandle.
type Grid struct {
	mu sync.RWMutex

	logger   *slog.Logger
	pageSize int

	cols  []*column
	byID  map[string]*column
	order []string
	rows  []map[string]any

	pivotMode   bool
	filterModel map[string]any
	groupCols   []string
	pivotCols   []string
	valueCols   []string
	autoFit     bool

	listeners []func()
}

var _ viewstate.TableHandle = (*Grid)(nil)

// New creates a grid over casted rows using descriptors as the column model.
func New(descriptors []columns.Descriptor, rows []map[string]any, opts ...Option) *Grid {
	g := &Grid{
		logger:   slog.Default(),
		pageSize: DefaultPageSize,
		byID:     make(map[string]*column, len(descriptors)),
		rows:     rows,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	for _, d := range descriptors {
		if _, exists := g.byID[d.ID]; exists {
			continue
		}
		c := &column{desc: d}
		g.cols = append(g.cols, c)
		g.byID[d.ID] = c
		g.order = append(g.order, d.ID)
	}
	return g
}

// Descriptors returns the column model in display order.
func (g *Grid) Descriptors() []columns.Descriptor {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]columns.Descriptor, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id].desc)
	}
	return out
}

// RowCount reports the number of loaded rows before filtering.
func (g *Grid) RowCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rows)
}

// PageSize reports the configured page size.
func (g *Grid) PageSize() int {
	return g.pageSize
}

// SetPivotMode implements viewstate.TableHandle.
func (g *Grid) SetPivotMode(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pivotMode = enabled
}

// SetFilterModel implements viewstate.TableHandle. An empty model clears all
// filters.
func (g *Grid) SetFilterModel(model map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filterModel = make(map[string]any, len(model))
	for id, spec := range model {
		if _, ok := g.byID[id]; !ok {
			g.logger.Debug("grid: filter for unknown column ignored", "column", id)
			continue
		}
		g.filterModel[id] = spec
	}
}

// SetRowGroupColumns implements viewstate.TableHandle.
func (g *Grid) SetRowGroupColumns(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.groupCols = g.knownColumns("row group", ids)
}

// SetPivotColumns implements viewstate.TableHandle.
func (g *Grid) SetPivotColumns(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pivotCols = g.knownColumns("pivot", ids)
}

// SetValueColumns implements viewstate.TableHandle.
func (g *Grid) SetValueColumns(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.valueCols = g.knownColumns("value", ids)
}

// ApplyColumnState implements viewstate.TableHandle. Entries for unknown
// columns are ignored. With applyOrder the listed columns move to the front in
// the given order.
func (g *Grid) ApplyColumnState(state []viewstate.ColumnState, applyOrder bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	listed := make([]string, 0, len(state))
	for i, entry := range state {
		c, ok := g.byID[entry.ColID]
		if !ok {
			g.logger.Debug("grid: column state for unknown column ignored", "column", entry.ColID)
			continue
		}
		listed = append(listed, entry.ColID)

		if entry.Width != nil {
			c.width = entry.Width
		}
		if entry.Flex != nil {
			c.flex = entry.Flex
		}
		if entry.Hide != nil {
			c.hidden = *entry.Hide
		}
		if pinned, ok := entry.Pinned.(string); ok {
			c.pinned = pinned
		} else if pinned, ok := entry.Pinned.(bool); ok && pinned {
			c.pinned = "left"
		}
		if entry.Sort != nil {
			c.sort = *entry.Sort
			if entry.SortIndex != nil {
				c.sortIdx = entry.SortIndex
			} else {
				idx := len(state) + i
				c.sortIdx = &idx
			}
		}
		if agg, ok := entry.AggFunc.(string); ok && agg != "" {
			c.aggFunc = agg
			g.valueCols = appendUnique(g.valueCols, entry.ColID)
		}
		if entry.RowGroup != nil {
			if *entry.RowGroup {
				g.groupCols = appendUnique(g.groupCols, entry.ColID)
			} else {
				g.groupCols = without(g.groupCols, entry.ColID)
			}
		}
		if entry.Pivot != nil {
			if *entry.Pivot {
				g.pivotCols = appendUnique(g.pivotCols, entry.ColID)
			} else {
				g.pivotCols = without(g.pivotCols, entry.ColID)
			}
		}
	}

	if applyOrder && len(listed) > 0 {
		seen := make(map[string]struct{}, len(listed))
		order := make([]string, 0, len(g.order))
		for _, id := range listed {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			order = append(order, id)
		}
		for _, id := range g.order {
			if _, ok := seen[id]; !ok {
				order = append(order, id)
			}
		}
		g.order = order
	}
}

// SizeColumnsToFit implements viewstate.TableHandle. Explicit widths are
// dropped so columns share the available width.
func (g *Grid) SizeColumnsToFit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.autoFit = true
	for _, c := range g.cols {
		c.width = nil
	}
}

// OnFirstDataRendered registers fn to run after a render that produced rows.
// The signal can fire more than once per load.
func (g *Grid) OnFirstDataRendered(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Render computes the current result and emits the first-data-rendered
// signal when it contains rows.
func (g *Grid) Render() Result {
	result := g.Result()

	g.mu.RLock()
	listeners := append([]func(){}, g.listeners...)
	g.mu.RUnlock()

	if len(result.Rows) > 0 {
		for _, fn := range listeners {
			fn()
		}
	}
	return result
}

func (g *Grid) knownColumns(kind string, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := g.byID[id]; !ok {
			g.logger.Debug("grid: unknown column ignored", "kind", kind, "column", id)
			continue
		}
		out = appendUnique(out, id)
	}
	return out
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func without(list []string, id string) []string {
	out := list[:0:0]
	for _, existing := range list {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
