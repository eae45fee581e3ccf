package reportview

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/orchestrator"
	"github.com/goliatone/go-reportview/pkg/source"
)

func fixtureClient(t *testing.T) source.Client {
	t.Helper()
	client, err := source.NewFileClient(fstest.MapFS{
		"newsletter/snapshots/q3.json": {Data: []byte(`{
			"title": "Q3 revenue",
			"columns_order": "[\"month\",\"revenue\"]",
			"json_results": "[{\"month\":\"Jul\",\"revenue\":\"10\"},{\"month\":\"Aug\",\"revenue\":\"12\"}]",
			"config": "{\"chartType\":\"line\",\"cellRange\":{\"columns\":[\"month\",\"revenue\"]}}"
		}`)},
	})
	if err != nil {
		t.Fatalf("NewFileClient: %v", err)
	}
	return client
}

func TestGenerateHTML_PublicChart(t *testing.T) {
	html, err := GenerateHTML(context.Background(), Identifier{Token: "q3"},
		orchestrator.WithClient(fixtureClient(t)))
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	body := string(html)
	if !strings.Contains(body, "Q3 revenue") {
		t.Fatalf("expected title in output:\n%s", body)
	}
	if !strings.Contains(body, "<iframe") {
		t.Fatalf("expected restored chart frame in output:\n%s", body)
	}
}

func TestGenerateView_MissingIdentifier(t *testing.T) {
	view, err := GenerateView(context.Background(), Identifier{},
		orchestrator.WithClient(fixtureClient(t)))
	if err != nil {
		t.Fatalf("GenerateView: %v", err)
	}
	if view.State != model.StateError || view.Message == "" {
		t.Fatalf("expected error view with message, got %+v", view)
	}
}
