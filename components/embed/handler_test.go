package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/orchestrator"
	"github.com/goliatone/go-reportview/pkg/source"
)

type fakeGenerator struct {
	requests []orchestrator.Request
	output   orchestrator.Output
	err      error
}

func (g *fakeGenerator) Generate(_ context.Context, req orchestrator.Request) (orchestrator.Output, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return orchestrator.Output{}, g.err
	}
	return g.output, nil
}

func readyOutput() orchestrator.Output {
	return orchestrator.Output{
		Body:        []byte("<div>ok</div>"),
		ContentType: "text/html; charset=utf-8",
		View:        model.View{State: model.StateReady},
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	gen := &fakeGenerator{output: readyOutput()}
	req := httptest.NewRequest(http.MethodPost, "/embed", nil)
	rr := httptest.NewRecorder()

	Handler(WithGenerator(gen)).ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
	if got := rr.Header().Get("Allow"); got != "GET, HEAD" {
		t.Fatalf("expected Allow header, got %q", got)
	}
	if len(gen.requests) != 0 {
		t.Fatal("generator should not run for rejected methods")
	}
}

func TestHandler_PassesIdentifierAndTheme(t *testing.T) {
	gen := &fakeGenerator{output: readyOutput()}
	req := httptest.NewRequest(http.MethodGet, "/reports/embed?statId=5&graphId=9&page=3&theme=%20acme%20&variant=dark", nil)
	rr := httptest.NewRecorder()

	Handler(WithGenerator(gen), WithAssetsPrefix("/assets")).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("unexpected cache control %q", got)
	}
	if rr.Body.String() != "<div>ok</div>" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	if len(gen.requests) != 1 {
		t.Fatalf("expected one generate call, got %d", len(gen.requests))
	}
	got := gen.requests[0]
	want := source.Identifier{StatID: "5", GraphID: "9", Page: 3}
	if got.Identifier != want {
		t.Fatalf("identifier = %+v, want %+v", got.Identifier, want)
	}
	if got.Renderer != RendererHTML {
		t.Fatalf("renderer = %q", got.Renderer)
	}
	if got.ThemeName != "acme" || got.ThemeVariant != "dark" {
		t.Fatalf("theme = %q/%q", got.ThemeName, got.ThemeVariant)
	}
	if got.RenderOptions.BasePath != "/reports/embed" || got.RenderOptions.AssetsPrefix != "/assets" {
		t.Fatalf("unexpected render options %+v", got.RenderOptions)
	}
}

func TestHandler_HeadOmitsBody(t *testing.T) {
	gen := &fakeGenerator{output: readyOutput()}
	req := httptest.NewRequest(http.MethodHead, "/embed?token=abc", nil)
	rr := httptest.NewRecorder()

	Handler(WithGenerator(gen)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
}

func TestHandler_ErrorStateUsesErrorStatus(t *testing.T) {
	out := readyOutput()
	out.View.State = model.StateError
	out.Body = []byte("<p>No data available</p>")

	t.Run("default", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Handler(WithGenerator(&fakeGenerator{output: out})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "No data available") {
			t.Fatalf("expected error markup, got %q", rr.Body.String())
		}
	})

	t.Run("configured", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Handler(WithGenerator(&fakeGenerator{output: out}), WithErrorStatus(http.StatusBadGateway)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed", nil))
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("expected status 502, got %d", rr.Code)
		}
	})
}

func TestHandler_GeneratorFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "status", err: StatusError{Code: http.StatusNotFound, Err: errors.New("unknown renderer")}, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Handler(WithGenerator(&fakeGenerator{err: tt.err})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed", nil))
			if rr.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestHandler_MissingGenerator(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestHandler_Guard(t *testing.T) {
	gen := &fakeGenerator{output: readyOutput()}
	guard := func(r *http.Request) error {
		if r.Header.Get("X-Embed-Key") == "" {
			return StatusError{Code: http.StatusUnauthorized}
		}
		return nil
	}
	h := Handler(WithGenerator(gen), WithGuard(guard))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/embed", nil)
	req.Header.Set("X-Embed-Key", "k")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestJSONHandler_KeepsHTMLBasePath(t *testing.T) {
	gen := &fakeGenerator{output: readyOutput()}
	rr := httptest.NewRecorder()
	JSONHandler(WithGenerator(gen)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed.json?token=abc&view=table", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	got := gen.requests[0]
	if got.Renderer != RendererJSON {
		t.Fatalf("renderer = %q", got.Renderer)
	}
	if got.RenderOptions.BasePath != "/embed" {
		t.Fatalf("base path = %q", got.RenderOptions.BasePath)
	}
}

func TestHandler_WithOrchestrator(t *testing.T) {
	files := fstest.MapFS{
		"reporting/snapshots/weekly.json": {Data: []byte(`{
			"query_name": "Weekly sales",
			"columns_order": "[\"region\",\"sales\"]",
			"json_results": "[{\"region\":\"north\",\"sales\":\"12\"},{\"region\":\"south\",\"sales\":\"7\"}]"
		}`)},
	}
	client, err := source.NewFileClient(files)
	if err != nil {
		t.Fatalf("NewFileClient: %v", err)
	}
	gen := orchestrator.New(orchestrator.WithClient(client))

	t.Run("html", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Handler(WithGenerator(gen)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed?token=weekly&view=table", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		body := rr.Body.String()
		for _, want := range []string{"Weekly sales", "north", "south"} {
			if !strings.Contains(body, want) {
				t.Fatalf("expected %q in body:\n%s", want, body)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		rr := httptest.NewRecorder()
		JSONHandler(WithGenerator(gen)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed.json?token=weekly&view=table", nil))
		if got := rr.Header().Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		var view struct {
			State string `json:"state"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if view.State != string(model.StateReady) || view.Title != "Weekly sales" {
			t.Fatalf("unexpected view %+v", view)
		}
	})

	t.Run("missing identifier", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Handler(WithGenerator(gen), WithErrorStatus(http.StatusNotFound)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rr.Code)
		}
	})

	t.Run("unknown snapshot", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Handler(WithGenerator(gen)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/embed?token=nope&view=table", nil))
		if !strings.Contains(rr.Body.String(), orchestrator.MessageTableFailed) {
			t.Fatalf("expected table failure message, got:\n%s", rr.Body.String())
		}
	})
}
