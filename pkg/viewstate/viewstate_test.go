package viewstate

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportview/pkg/columns"
)

type recordingHandle struct {
	calls       []string
	filterModel map[string]any
	columnState []ColumnState
}

func (h *recordingHandle) SetPivotMode(enabled bool) {
	h.calls = append(h.calls, fmt.Sprintf("pivotMode=%v", enabled))
}

func (h *recordingHandle) SetFilterModel(model map[string]any) {
	h.filterModel = model
	h.calls = append(h.calls, fmt.Sprintf("filterModel=%d", len(model)))
}

func (h *recordingHandle) SetRowGroupColumns(ids []string) {
	h.calls = append(h.calls, fmt.Sprintf("rowGroup=%v", ids))
}

func (h *recordingHandle) SetPivotColumns(ids []string) {
	h.calls = append(h.calls, fmt.Sprintf("pivot=%v", ids))
}

func (h *recordingHandle) SetValueColumns(ids []string) {
	h.calls = append(h.calls, fmt.Sprintf("value=%v", ids))
}

func (h *recordingHandle) ApplyColumnState(state []ColumnState, applyOrder bool) {
	h.columnState = state
	h.calls = append(h.calls, fmt.Sprintf("columnState=%d order=%v", len(state), applyOrder))
}

func (h *recordingHandle) SizeColumnsToFit() {
	h.calls = append(h.calls, "sizeToFit")
}

func TestApply_GroupAndValueThenAutoFit(t *testing.T) {
	state := &ViewState{
		RowGroupCols: ColumnList{"region"},
		PivotCols:    ColumnList{},
		ValueCols:    ColumnList{"sales"},
		ColumnState:  []ColumnState{},
	}
	handle := &recordingHandle{}

	Apply(handle, state, nil)

	want := []string{
		"pivotMode=false",
		"filterModel=0",
		"rowGroup=[region]",
		"pivot=[]",
		"value=[sales]",
		"sizeToFit",
	}
	if diff := cmp.Diff(want, handle.calls); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_ColumnStateReplacesAutoFit(t *testing.T) {
	sort := "desc"
	state := &ViewState{
		PivotMode:   true,
		ColumnState: []ColumnState{{ColID: "sales", Sort: &sort}, {ColID: "region"}},
	}
	handle := &recordingHandle{}

	Apply(handle, state, nil)

	last := handle.calls[len(handle.calls)-1]
	if last != "columnState=2 order=true" {
		t.Fatalf("last call = %q", last)
	}
	if handle.calls[0] != "pivotMode=true" {
		t.Fatalf("first call = %q", handle.calls[0])
	}
	for _, call := range handle.calls {
		if call == "sizeToFit" {
			t.Fatal("auto-fit must not run when column state is applied")
		}
	}
}

func TestApply_NilStateOnlyAutoFits(t *testing.T) {
	handle := &recordingHandle{}
	Apply(handle, nil, nil)
	if diff := cmp.Diff([]string{"sizeToFit"}, handle.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_TruncatesDateBounds(t *testing.T) {
	descriptors := []columns.Descriptor{
		columns.DescriptorFor("created", columns.TypeDate),
		columns.DescriptorFor("label", columns.TypeText),
	}
	original := map[string]any{
		"created": map[string]any{"dateFrom": "2024-01-05 10:30:00"},
		"label":   map[string]any{"filter": "2024-01-05 10:30:00", "dateFrom": "2024-01-05 10:30:00"},
	}
	handle := &recordingHandle{}

	Apply(handle, &ViewState{FilterModel: original}, descriptors)

	want := map[string]any{
		"created": map[string]any{"dateFrom": "2024-01-05"},
		"label":   map[string]any{"filter": "2024-01-05 10:30:00", "dateFrom": "2024-01-05 10:30:00"},
	}
	if diff := cmp.Diff(want, handle.filterModel); diff != "" {
		t.Fatalf("filter model mismatch (-want +got):\n%s", diff)
	}
	if original["created"].(map[string]any)["dateFrom"] != "2024-01-05 10:30:00" {
		t.Fatal("persisted state must not be modified")
	}
}

func TestTruncateDateFilters_NestedConditions(t *testing.T) {
	model := map[string]any{
		"when": map[string]any{
			"filterType": "date",
			"operator":   "OR",
			"conditions": []any{
				map[string]any{"type": "inRange", "dateFrom": "2024-01-05T08:00:00Z", "dateTo": "2024-02-01 23:59:59"},
				map[string]any{"type": "equals", "dateFrom": nil},
			},
			"condition1": map[string]any{"dateFrom": "2023-12-31 00:00:00"},
		},
	}

	got := TruncateDateFilters(model, nil)
	want := map[string]any{
		"when": map[string]any{
			"filterType": "date",
			"operator":   "OR",
			"conditions": []any{
				map[string]any{"type": "inRange", "dateFrom": "2024-01-05", "dateTo": "2024-02-01"},
				map[string]any{"type": "equals", "dateFrom": nil},
			},
			"condition1": map[string]any{"dateFrom": "2023-12-31"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("truncation mismatch (-want +got):\n%s", diff)
	}
}

func TestTruncateDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-05 10:30:00":       "2024-01-05",
		"2024-01-05":                "2024-01-05",
		"2024-01-05T10:30:00.123Z":  "2024-01-05",
		"2024-01-05 10:30:00.12345": "2024-01-05",
		"yesterday":                 "yesterday",
		"":                          "",
	}
	for in, want := range cases {
		if got := TruncateDate(in); got != want {
			t.Fatalf("TruncateDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestViewState_UnmarshalLegacyFilters(t *testing.T) {
	var state ViewState
	err := json.Unmarshal([]byte(`{
		"filters": {"region": {"filterType": "text", "filter": "north"}},
		"pivotMode": true,
		"rowGroupCols": ["region", {"colId": "country"}],
		"columnState": [{"colId": "sales", "sort": "asc", "pinned": null}]
	}`), &state)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.FilterModel["region"] == nil {
		t.Fatalf("legacy filters should populate the filter model: %#v", state.FilterModel)
	}
	if diff := cmp.Diff(ColumnList{"region", "country"}, state.RowGroupCols); diff != "" {
		t.Fatalf("row group mismatch (-want +got):\n%s", diff)
	}
	if !state.PivotMode || len(state.ColumnState) != 1 || *state.ColumnState[0].Sort != "asc" {
		t.Fatalf("unexpected state: %#v", state)
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if _, ok := roundTrip["filterModel"]; !ok {
		t.Fatalf("state should be written with filterModel: %s", data)
	}
}

func TestFromGridState(t *testing.T) {
	state, err := FromGridState(nil)
	if err != nil || state != nil {
		t.Fatalf("nil grid state = (%v, %v)", state, err)
	}

	if _, err := FromGridState("{broken"); err == nil {
		t.Fatal("expected error for undecoded grid state")
	}

	state, err = FromGridState(map[string]any{
		"pivotMode": false,
		"valueCols": []any{"sales"},
		"filters":   map[string]any{},
	})
	if err != nil {
		t.Fatalf("FromGridState: %v", err)
	}
	if diff := cmp.Diff(ColumnList{"sales"}, state.ValueCols); diff != "" {
		t.Fatalf("value cols mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFiltersAndSorting(t *testing.T) {
	state, err := FromFiltersAndSorting(nil, nil)
	if err != nil || state != nil {
		t.Fatalf("empty input = (%v, %v)", state, err)
	}

	state, err = FromFiltersAndSorting(
		map[string]any{"region": map[string]any{"filter": "north"}},
		[]any{map[string]any{"colId": "sales", "sort": "desc", "sortIndex": json.Number("0")}},
	)
	if err != nil {
		t.Fatalf("FromFiltersAndSorting: %v", err)
	}
	if len(state.ColumnState) != 1 || state.ColumnState[0].ColID != "sales" || *state.ColumnState[0].SortIndex != 0 {
		t.Fatalf("unexpected column state: %#v", state.ColumnState)
	}
	if state.FilterModel["region"] == nil {
		t.Fatalf("unexpected filter model: %#v", state.FilterModel)
	}

	state, err = FromFiltersAndSorting("{oops", []any{map[string]any{"colId": "a"}})
	if err == nil {
		t.Fatal("expected an error for malformed filters")
	}
	if state == nil || len(state.ColumnState) != 1 {
		t.Fatalf("sorting should survive malformed filters: %#v", state)
	}
}
