package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportview/pkg/payload"
	"github.com/goliatone/go-reportview/pkg/reporterr"
)

func TestSelect(t *testing.T) {
	cases := []struct {
		name string
		id   Identifier
		want Flow
		err  error
	}{
		{name: "stat and graph", id: Identifier{StatID: "1", GraphID: "2"}, want: FlowStatGraph},
		{name: "stat graph wins over token", id: Identifier{StatID: "1", GraphID: "2", Token: "t"}, want: FlowStatGraph},
		{name: "token table", id: Identifier{Token: "t", View: "table"}, want: FlowPublicTable},
		{name: "token chart", id: Identifier{Token: "t"}, want: FlowPublicChart},
		{name: "token other view", id: Identifier{Token: "t", View: "chart"}, want: FlowPublicChart},
		{name: "stat only", id: Identifier{StatID: "1"}, err: reporterr.ErrMissingIdentifier},
		{name: "token with stat", id: Identifier{StatID: "1", Token: "t"}, err: reporterr.ErrMissingIdentifier},
		{name: "nothing", id: Identifier{}, err: reporterr.ErrMissingIdentifier},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Select(tc.id)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Fatalf("flow = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFromQuery(t *testing.T) {
	values, _ := url.ParseQuery("statId=%2012%20&graphId=7&page=3&view=table&token=")
	id := FromQuery(values)
	want := Identifier{StatID: "12", GraphID: "7", View: "table", Page: 3}
	if diff := cmp.Diff(want, id); diff != "" {
		t.Fatalf("identifier mismatch (-want +got):\n%s", diff)
	}
	if id.Key() != id.WithPage(9).Key() {
		t.Fatal("page must not change the load key")
	}

	bad, _ := url.ParseQuery("token=x&page=-2")
	if FromQuery(bad).Page != 0 {
		t.Fatal("negative page should be ignored")
	}
	if got := id.Query().Get(ParamPage); got != "3" {
		t.Fatalf("encoded page = %q", got)
	}
}

func TestHTTPClient_AuthenticatedStatFlow(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		switch r.URL.Path {
		case "/api/v1/stats/12":
			_, _ = w.Write([]byte(`{"id":12,"columns_order":"[\"a\"]","json_results":"[{\"a\":\"1\"}]"}`))
		case "/api/v1/stats/graphs":
			if r.URL.Query().Get("stat_id") != "12" {
				t.Errorf("stat_id = %q", r.URL.Query().Get("stat_id"))
			}
			_, _ = w.Write([]byte(`[{"id":3,"config":"{}"},{"id":"7","config":{"chartType":"line"}}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL+"/api", WithToken("secret"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}

	stat, err := client.Stat(context.Background(), "12")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stat.ID() != "12" {
		t.Fatalf("stat id = %q", stat.ID())
	}

	graphs, err := client.StatGraphs(context.Background(), "12")
	if err != nil {
		t.Fatalf("StatGraphs: %v", err)
	}
	graph, ok := FindGraph(graphs, "7")
	if !ok {
		t.Fatal("graph 7 not found")
	}
	if cfg := graph.Field(payload.FieldConfig).Value(); cfg.(map[string]any)["chartType"] != "line" {
		t.Fatalf("unexpected graph config: %#v", cfg)
	}
	if diff := cmp.Diff([]string{"/api/v1/stats/12", "/api/v1/stats/graphs?stat_id=12"}, seen); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPClient_PublicFlowsSendNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("public request carried authorization header")
		}
		switch r.URL.EscapedPath() {
		case "/v1/reporting/snapshots/tok%2F1":
			_, _ = w.Write([]byte(`{"query_name":"Table"}`))
		case "/v1/newsletter/snapshots/tok":
			_, _ = w.Write([]byte(`{"title":"Chart"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, WithToken("secret"))
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if _, err := client.ReportingSnapshot(context.Background(), "tok/1"); err != nil {
		t.Fatalf("ReportingSnapshot: %v", err)
	}
	if _, err := client.NewsletterSnapshot(context.Background(), "tok"); err != nil {
		t.Fatalf("NewsletterSnapshot: %v", err)
	}
}

func TestHTTPClient_NonSuccessIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "snapshot expired", http.StatusGone)
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL)
	_, err := client.NewsletterSnapshot(context.Background(), "old")

	var fetchErr *reporterr.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusGone || fetchErr.Body != "snapshot expired" {
		t.Fatalf("unexpected fetch error: %+v", fetchErr)
	}
	if fetchErr.Error() != "fetch newsletter_snapshot: request failed: 410 snapshot expired" {
		t.Fatalf("message = %q", fetchErr.Error())
	}
}

func TestHTTPClient_MalformedBodyIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL)
	_, err := client.Stat(context.Background(), "1")
	var fetchErr *reporterr.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Err == nil {
		t.Fatalf("expected decode FetchError, got %v", err)
	}
}

func TestNewHTTPClient_Validates(t *testing.T) {
	for _, base := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := NewHTTPClient(base); err == nil {
			t.Fatalf("expected error for base url %q", base)
		}
	}
}

func TestFileClient(t *testing.T) {
	files := fstest.MapFS{
		"stats/5.json": {Data: []byte(`{"id":5,"query_name":"Sales","columns_order":["a"],"json_results":[{"a":1}]}`)},
		"stats/graphs/5.yaml": {Data: []byte(`
- id: 9
  config:
    chartType: pie
    cellRange:
      columns: [a]
`)},
		"reporting/snapshots/abc.yml":   {Data: []byte("query_name: Weekly\ncolumns_order: '[\"a\"]'\njson_results: '[]'\n")},
		"newsletter/snapshots/bad.json": {Data: []byte(`[1,2]`)},
	}
	client, err := NewFileClient(files)
	if err != nil {
		t.Fatalf("NewFileClient: %v", err)
	}
	ctx := context.Background()

	stat, err := client.Stat(ctx, "5")
	if err != nil || stat.ID() != "5" {
		t.Fatalf("Stat = (%v, %v)", stat, err)
	}

	graphs, err := client.StatGraphs(ctx, "5")
	if err != nil {
		t.Fatalf("StatGraphs: %v", err)
	}
	if _, ok := FindGraph(graphs, "9"); !ok {
		t.Fatal("graph 9 not found in YAML fixture")
	}

	snap, err := client.ReportingSnapshot(ctx, "abc")
	if err != nil {
		t.Fatalf("ReportingSnapshot: %v", err)
	}
	if snap.Field(payload.FieldColumnsOrder).Kind() != payload.KindEncoded {
		t.Fatal("YAML strings should stay encoded fields")
	}

	_, err = client.NewsletterSnapshot(ctx, "missing")
	var fetchErr *reporterr.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}

	if _, err := client.NewsletterSnapshot(ctx, "bad"); err == nil {
		t.Fatal("expected error for non-object fixture")
	}
}
