package grid

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-reportview/pkg/columns"
)

// Column is a displayed column of a Result.
type Column struct {
	ID         string       `json:"id"`
	HeaderName string       `json:"headerName"`
	Type       columns.Type `json:"type"`
	Width      float64      `json:"width,omitempty"`
	Flex       float64      `json:"flex,omitempty"`
	Pinned     string       `json:"pinned,omitempty"`
	Sort       string       `json:"sort,omitempty"`
	AggFunc    string       `json:"aggFunc,omitempty"`
	Group      bool         `json:"group,omitempty"`
}

// Result is the processed table: visible columns and the rows after
// filtering, grouping, pivoting and sorting.
type Result struct {
	Columns   []Column         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	Grouped   bool             `json:"grouped"`
	Pivoted   bool             `json:"pivoted"`
	AutoFit   bool             `json:"autoFit"`
	TotalRows int              `json:"totalRows"`
}

// Page is one page of a Result.
type Page struct {
	Number     int              `json:"page"`
	Size       int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
	TotalRows  int              `json:"totalRows"`
	Rows       []map[string]any `json:"rows"`
}

// Result computes the current view of the grid without emitting signals.
func (g *Grid) Result() Result {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := g.filteredRows()
	res := Result{AutoFit: g.autoFit}

	switch {
	case g.pivotMode && (len(g.groupCols) > 0 || len(g.pivotCols) > 0 || len(g.valueCols) > 0):
		res.Columns, res.Rows = g.pivot(rows)
		res.Grouped = len(g.groupCols) > 0
		res.Pivoted = len(g.pivotCols) > 0
	case len(g.groupCols) > 0:
		res.Columns, res.Rows = g.group(rows)
		res.Grouped = true
	default:
		res.Columns = g.leafColumns()
		res.Rows = rows
	}

	g.sortRows(res.Rows)
	res.TotalRows = len(res.Rows)
	return res
}

// Page returns page number n (1-based) of the current result. Out of range
// numbers are clamped.
func (g *Grid) Page(n int) (Result, Page) {
	res := g.Result()
	return res, Paginate(res.Rows, n, g.pageSize)
}

// Paginate slices rows into fixed-size pages.
func Paginate(rows []map[string]any, n, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}
	start := (n - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}
	return Page{
		Number:     n,
		Size:       size,
		TotalPages: pages,
		TotalRows:  total,
		Rows:       rows[start:end],
	}
}

func (g *Grid) filteredRows() []map[string]any {
	out := make([]map[string]any, 0, len(g.rows))
	for _, row := range g.rows {
		if g.rowMatches(row) {
			out = append(out, row)
		}
	}
	return out
}

func (g *Grid) rowMatches(row map[string]any) bool {
	for id, spec := range g.filterModel {
		c := g.byID[id]
		if c == nil {
			continue
		}
		if !matchesFilter(spec, row[id], c.desc.Type) {
			return false
		}
	}
	return true
}

func (g *Grid) leafColumns() []Column {
	out := make([]Column, 0, len(g.order))
	for _, id := range g.order {
		c := g.byID[id]
		if c.hidden {
			continue
		}
		out = append(out, g.displayColumn(c))
	}
	return out
}

func (g *Grid) displayColumn(c *column) Column {
	col := Column{
		ID:         c.desc.ID,
		HeaderName: c.desc.HeaderName,
		Type:       c.desc.Type,
		Pinned:     c.pinned,
		Sort:       c.sort,
	}
	if c.width != nil {
		col.Width = *c.width
	}
	if c.flex != nil {
		col.Flex = *c.flex
	}
	return col
}

func (g *Grid) aggFuncFor(id string) string {
	if c := g.byID[id]; c != nil && c.aggFunc != "" {
		return c.aggFunc
	}
	return "sum"
}

type bucket struct {
	key   []any
	rows  []map[string]any
	byPvt map[string][]map[string]any
}

func groupKey(row map[string]any, ids []string) (string, []any) {
	parts := make([]string, len(ids))
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = row[id]
		parts[i] = cellText(row[id])
	}
	return strings.Join(parts, "\x1f"), values
}

func (g *Grid) buckets(rows []map[string]any) []*bucket {
	index := make(map[string]*bucket)
	var ordered []*bucket
	for _, row := range rows {
		key, values := groupKey(row, g.groupCols)
		b, ok := index[key]
		if !ok {
			b = &bucket{key: values, byPvt: make(map[string][]map[string]any)}
			index[key] = b
			ordered = append(ordered, b)
		}
		b.rows = append(b.rows, row)
	}
	return ordered
}

func (g *Grid) groupColumns() []Column {
	out := make([]Column, 0, len(g.groupCols))
	for _, id := range g.groupCols {
		col := g.displayColumn(g.byID[id])
		col.Group = true
		out = append(out, col)
	}
	return out
}

func (g *Grid) group(rows []map[string]any) ([]Column, []map[string]any) {
	cols := g.groupColumns()
	for _, id := range g.valueCols {
		col := g.displayColumn(g.byID[id])
		col.AggFunc = g.aggFuncFor(id)
		cols = append(cols, col)
	}

	out := make([]map[string]any, 0)
	for _, b := range g.buckets(rows) {
		row := make(map[string]any, len(cols))
		for i, id := range g.groupCols {
			row[id] = b.key[i]
		}
		for _, id := range g.valueCols {
			row[id] = Aggregate(g.aggFuncFor(id), columnValues(b.rows, id))
		}
		out = append(out, row)
	}
	return cols, out
}

func (g *Grid) pivot(rows []map[string]any) ([]Column, []map[string]any) {
	buckets := g.buckets(rows)

	pivotKeys := make([]string, 0)
	seen := make(map[string]struct{})
	for _, b := range buckets {
		for _, row := range b.rows {
			key := pivotLabel(row, g.pivotCols)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				pivotKeys = append(pivotKeys, key)
			}
			b.byPvt[key] = append(b.byPvt[key], row)
		}
	}
	sort.Strings(pivotKeys)

	cols := g.groupColumns()
	for _, key := range pivotKeys {
		for _, id := range g.valueCols {
			c := g.byID[id]
			header := c.desc.HeaderName
			if key != "" {
				header = key + " " + header
			}
			cols = append(cols, Column{
				ID:         PivotColumnID(key, id),
				HeaderName: header,
				Type:       columns.TypeNumeric,
				AggFunc:    g.aggFuncFor(id),
			})
		}
	}

	out := make([]map[string]any, 0, len(buckets))
	for _, b := range buckets {
		row := make(map[string]any, len(cols))
		for i, id := range g.groupCols {
			row[id] = b.key[i]
		}
		for _, key := range pivotKeys {
			for _, id := range g.valueCols {
				members, ok := b.byPvt[key]
				if !ok {
					row[PivotColumnID(key, id)] = nil
					continue
				}
				row[PivotColumnID(key, id)] = Aggregate(g.aggFuncFor(id), columnValues(members, id))
			}
		}
		out = append(out, row)
	}
	return cols, out
}

// PivotColumnID names the generated column for a pivot key and value column.
func PivotColumnID(pivotKey, valueCol string) string {
	if pivotKey == "" {
		return valueCol
	}
	return "pivot_" + pivotKey + "_" + valueCol
}

func pivotLabel(row map[string]any, ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = cellText(row[id])
	}
	return strings.Join(parts, " ")
}

func columnValues(rows []map[string]any, id string) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row[id]
	}
	return out
}

// Aggregate folds values with the named aggregation. Non-numeric values are
// skipped by the numeric aggregations. Unknown names fall back to sum.
func Aggregate(fn string, values []any) any {
	switch fn {
	case "count":
		return float64(len(values))
	case "first":
		if len(values) == 0 {
			return nil
		}
		return values[0]
	case "last":
		if len(values) == 0 {
			return nil
		}
		return values[len(values)-1]
	}

	var (
		sum   float64
		n     int
		lo    = math.Inf(1)
		hi    = math.Inf(-1)
		found bool
	)
	for _, v := range values {
		f, ok := number(v)
		if !ok {
			continue
		}
		found = true
		sum += f
		n++
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}

	switch fn {
	case "avg":
		if n == 0 {
			return nil
		}
		return sum / float64(n)
	case "min":
		if !found {
			return nil
		}
		return lo
	case "max":
		if !found {
			return nil
		}
		return hi
	default:
		return sum
	}
}

func (g *Grid) sortRows(rows []map[string]any) {
	type key struct {
		id   string
		desc bool
		idx  int
	}
	var keys []key
	for _, c := range g.cols {
		if c.sort != "asc" && c.sort != "desc" {
			continue
		}
		idx := math.MaxInt
		if c.sortIdx != nil {
			idx = *c.sortIdx
		}
		keys = append(keys, key{id: c.desc.ID, desc: c.sort == "desc", idx: idx})
	}
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].idx < keys[j].idx })

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			cmp := compareCells(rows[i][k.id], rows[j][k.id])
			if cmp == 0 {
				continue
			}
			if k.desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareCells orders nil first, then numbers, then dates, then text.
func compareCells(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	fa, aok := a.(float64)
	fb, bok := b.(float64)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	da, aok := dateOf(a)
	db, bok := dateOf(b)
	if aok && bok {
		return da.Compare(db)
	}
	return strings.Compare(cellText(a), cellText(b))
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatCell renders a cell value for display.
func FormatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
