package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/viewstate"
)

func salesGrid(t *testing.T, opts ...Option) *Grid {
	t.Helper()
	cols := []string{"region", "product", "sales", "day"}
	rows := columns.CastRows([]map[string]any{
		{"region": "north", "product": "a", "sales": "10", "day": "2024-01-05"},
		{"region": "south", "product": "a", "sales": "5", "day": "2024-01-06"},
		{"region": "north", "product": "b", "sales": "7", "day": "2024-01-07"},
		{"region": "east", "product": "b", "sales": nil, "day": ""},
	}, cols)
	return New(columns.Describe(cols, rows), rows, opts...)
}

func ids(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.ID
	}
	return out
}

func TestGrid_LeafViewKeepsColumnOrder(t *testing.T) {
	g := salesGrid(t)
	res := g.Result()
	if diff := cmp.Diff([]string{"region", "product", "sales", "day"}, ids(res.Columns)); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if res.TotalRows != 4 || res.Grouped || res.Pivoted {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGrid_Filters(t *testing.T) {
	cases := []struct {
		name  string
		model map[string]any
		want  int
	}{
		{name: "empty clears", model: map[string]any{}, want: 4},
		{name: "text contains", model: map[string]any{"region": map[string]any{"filterType": "text", "type": "contains", "filter": "NOR"}}, want: 2},
		{name: "number greater", model: map[string]any{"sales": map[string]any{"filterType": "number", "type": "greaterThan", "filter": 6.0}}, want: 2},
		{name: "number blank", model: map[string]any{"sales": map[string]any{"type": "blank"}}, want: 1},
		{name: "date equals truncated", model: map[string]any{"day": map[string]any{"filterType": "date", "type": "equals", "dateFrom": "2024-01-05"}}, want: 1},
		{name: "date in range", model: map[string]any{"day": map[string]any{"filterType": "date", "type": "inRange", "dateFrom": "2024-01-05", "dateTo": "2024-01-06"}}, want: 2},
		{name: "or conditions", model: map[string]any{"region": map[string]any{
			"filterType": "text",
			"operator":   "OR",
			"conditions": []any{
				map[string]any{"type": "equals", "filter": "south"},
				map[string]any{"type": "equals", "filter": "east"},
			},
		}}, want: 2},
		{name: "and legacy conditions", model: map[string]any{"sales": map[string]any{
			"filterType": "number",
			"operator":   "AND",
			"condition1": map[string]any{"type": "greaterThanOrEqual", "filter": 5.0},
			"condition2": map[string]any{"type": "lessThan", "filter": 10.0},
		}}, want: 2},
		{name: "set", model: map[string]any{"product": map[string]any{"filterType": "set", "values": []any{"b"}}}, want: 2},
		{name: "unknown column ignored", model: map[string]any{"ghost": map[string]any{"filter": "x"}}, want: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := salesGrid(t)
			g.SetFilterModel(tc.model)
			if got := g.Result().TotalRows; got != tc.want {
				t.Fatalf("rows = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGrid_GroupingAggregatesValues(t *testing.T) {
	g := salesGrid(t)
	viewstate.Apply(g, &viewstate.ViewState{
		RowGroupCols: viewstate.ColumnList{"region"},
		ValueCols:    viewstate.ColumnList{"sales"},
	}, g.Descriptors())

	res := g.Result()
	if !res.Grouped {
		t.Fatal("expected grouped result")
	}
	want := []map[string]any{
		{"region": "north", "sales": 17.0},
		{"region": "south", "sales": 5.0},
		{"region": "east", "sales": 0.0},
	}
	if diff := cmp.Diff(want, res.Rows); diff != "" {
		t.Fatalf("grouped rows mismatch (-want +got):\n%s", diff)
	}
}

func TestGrid_PivotMode(t *testing.T) {
	g := salesGrid(t)
	g.SetPivotMode(true)
	g.SetRowGroupColumns([]string{"region"})
	g.SetPivotColumns([]string{"product"})
	g.SetValueColumns([]string{"sales"})

	res := g.Result()
	if diff := cmp.Diff([]string{"region", "pivot_a_sales", "pivot_b_sales"}, ids(res.Columns)); diff != "" {
		t.Fatalf("pivot columns mismatch (-want +got):\n%s", diff)
	}
	north := res.Rows[0]
	if north["pivot_a_sales"] != 10.0 || north["pivot_b_sales"] != 7.0 {
		t.Fatalf("unexpected north row: %#v", north)
	}
	if res.Rows[1]["pivot_b_sales"] != nil {
		t.Fatalf("missing pivot cell should be nil: %#v", res.Rows[1])
	}
}

func TestGrid_ColumnStateOrderSortAndHide(t *testing.T) {
	g := salesGrid(t)
	desc, hide := "desc", true
	zero := 0
	g.ApplyColumnState([]viewstate.ColumnState{
		{ColID: "sales", Sort: &desc, SortIndex: &zero},
		{ColID: "day", Hide: &hide},
		{ColID: "missing"},
	}, true)

	res := g.Result()
	if diff := cmp.Diff([]string{"sales", "region", "product"}, ids(res.Columns)); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
	var sales []any
	for _, row := range res.Rows {
		sales = append(sales, row["sales"])
	}
	if diff := cmp.Diff([]any{10.0, 7.0, 5.0, nil}, sales); diff != "" {
		t.Fatalf("sort mismatch (-want +got):\n%s", diff)
	}
}

func TestGrid_RenderSignalsEveryRenderWithRows(t *testing.T) {
	g := salesGrid(t)
	fired := 0
	g.OnFirstDataRendered(func() { fired++ })

	g.Render()
	g.Render()
	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}

	empty := New(nil, nil)
	calls := 0
	empty.OnFirstDataRendered(func() { calls++ })
	empty.Render()
	if calls != 0 {
		t.Fatal("render without rows must not signal")
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]map[string]any, 45)
	for i := range rows {
		rows[i] = map[string]any{"n": float64(i)}
	}

	page := Paginate(rows, 3, 20)
	if page.Number != 3 || page.TotalPages != 3 || len(page.Rows) != 5 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page := Paginate(rows, 99, 20); page.Number != 3 {
		t.Fatalf("page should clamp to last, got %d", page.Number)
	}
	if page := Paginate(nil, 1, 20); page.TotalPages != 1 || len(page.Rows) != 0 {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestAggregate(t *testing.T) {
	values := []any{1.0, "x", 3.0, nil}
	cases := map[string]any{
		"sum":   4.0,
		"avg":   2.0,
		"min":   1.0,
		"max":   3.0,
		"count": 4.0,
		"first": 1.0,
		"last":  nil,
		"other": 4.0,
	}
	for fn, want := range cases {
		if got := Aggregate(fn, values); got != want {
			t.Fatalf("Aggregate(%s) = %v, want %v", fn, got, want)
		}
	}
}

func TestSizeColumnsToFitDropsWidths(t *testing.T) {
	g := salesGrid(t)
	width := 120.0
	g.ApplyColumnState([]viewstate.ColumnState{{ColID: "region", Width: &width}}, false)
	if g.Result().Columns[0].Width != 120 {
		t.Fatal("expected width to be applied")
	}
	g.SizeColumnsToFit()
	res := g.Result()
	if !res.AutoFit || res.Columns[0].Width != 0 {
		t.Fatalf("expected auto-fit result, got %+v", res.Columns[0])
	}
}
