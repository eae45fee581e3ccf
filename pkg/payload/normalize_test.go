package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportview/pkg/reporterr"
)

func mustResource(t *testing.T, body string) Resource {
	t.Helper()
	res, err := ParseResource([]byte(body))
	if err != nil {
		t.Fatalf("parse resource: %v", err)
	}
	return res
}

func TestNormalize_DoubleEncodedFields(t *testing.T) {
	res := mustResource(t, `{
		"id": 7,
		"query_name": "Sales by region",
		"columns_order": "[\"region\",\"sales\"]",
		"json_results": "[{\"region\":\"north\",\"sales\":\"10\"}]",
		"grid_state": "{\"pivotMode\":false,\"rowGroupCols\":[\"region\"]}",
		"config": {"chartType":"bar"}
	}`)

	got, problems := Normalize(res)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if got.ID != "7" {
		t.Fatalf("id = %q, want 7", got.ID)
	}
	if diff := cmp.Diff([]string{"region", "sales"}, got.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	wantRows := []Row{{"region": "north", "sales": "10"}}
	if diff := cmp.Diff(wantRows, got.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	wantGrid := map[string]any{"pivotMode": false, "rowGroupCols": []any{"region"}}
	if diff := cmp.Diff(wantGrid, got.GridState); diff != "" {
		t.Fatalf("grid state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"chartType": "bar"}, got.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if got.DisplayTitle(true) != "Sales by region" {
		t.Fatalf("title = %q", got.DisplayTitle(true))
	}
}

func TestNormalize_EmptyEncodedSequences(t *testing.T) {
	res := mustResource(t, `{"columns_order":"[]","json_results":"[]"}`)

	got, problems := Normalize(res)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if got.Columns == nil || len(got.Columns) != 0 {
		t.Fatalf("expected empty non-nil columns, got %#v", got.Columns)
	}
	if got.Rows == nil || len(got.Rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", got.Rows)
	}
}

func TestNormalize_MalformedRequiredFieldsDegrade(t *testing.T) {
	res := mustResource(t, `{"columns_order":"[\"a\",","json_results":"{not json}","filters":"{oops"}`)

	got, problems := Normalize(res)
	if len(got.Columns) != 0 || len(got.Rows) != 0 {
		t.Fatalf("expected empty columns and rows, got %#v / %#v", got.Columns, got.Rows)
	}
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", len(problems), problems)
	}

	var required *reporterr.RequiredFieldError
	if !errors.As(problems[0], &required) || required.Field != FieldColumnsOrder {
		t.Fatalf("first problem should be columns_order required field error, got %v", problems[0])
	}
	var optional *reporterr.OptionalFieldError
	if !errors.As(problems[2], &optional) || optional.Field != FieldFilters {
		t.Fatalf("third problem should be filters optional field error, got %v", problems[2])
	}
	if got.Filters != "{oops" {
		t.Fatalf("malformed optional field should keep its raw value, got %#v", got.Filters)
	}
}

func TestNormalize_AbsentFields(t *testing.T) {
	got, problems := Normalize(Resource{})
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if got.Filters != nil || got.Sorting != nil || got.GridState != nil || got.Config != nil {
		t.Fatalf("absent optional fields should be nil: %#v", got)
	}
	if got.Title != "" || got.QueryName != "" {
		t.Fatalf("absent titles should be empty: %#v", got)
	}
}

func TestNormalize_DeduplicatesColumns(t *testing.T) {
	res := mustResource(t, `{"columns_order":["a","b","a"],"json_results":[{"a":1,"b":2,"zzz":3}, 5]}`)

	got, problems := Normalize(res)
	if diff := cmp.Diff([]string{"a", "b"}, got.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("expected non-object row to be dropped, got %d rows", len(got.Rows))
	}
	if len(problems) != 1 {
		t.Fatalf("expected one problem for the dropped row, got %v", problems)
	}
}

func TestNormalize_PlainTextTitleAndEncodedTitle(t *testing.T) {
	res := Resource{
		FieldTitle:     json.RawMessage(`"Monthly report"`),
		FieldQueryName: json.RawMessage(`"\"Quoted name\""`),
	}
	got, _ := Normalize(res)
	if got.Title != "Monthly report" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.QueryName != "Quoted name" {
		t.Fatalf("query name = %q", got.QueryName)
	}
	if got.DisplayTitle(false) != "Monthly report" {
		t.Fatalf("display title = %q", got.DisplayTitle(false))
	}
}

func TestResource_IDFromStringOrNumber(t *testing.T) {
	if id := (Resource{FieldID: json.RawMessage(`12`)}).ID(); id != "12" {
		t.Fatalf("numeric id = %q", id)
	}
	if id := (Resource{FieldID: json.RawMessage(`"ab-1"`)}).ID(); id != "ab-1" {
		t.Fatalf("string id = %q", id)
	}
}
