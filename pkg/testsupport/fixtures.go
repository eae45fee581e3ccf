package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportview/pkg/payload"
)

// LoadResource reads a persisted resource fixture. Testing helpers fail the
// test on error to keep contract tests concise.
func LoadResource(t *testing.T, path string) payload.Resource {
	t.Helper()

	resource, err := LoadResourceFromPath(path)
	if err != nil {
		t.Fatalf("load resource: %v", err)
	}
	return resource
}

// LoadResourceFromPath returns a Resource without requiring testing.T, so
// callers can wire fixtures in setup functions.
func LoadResourceFromPath(path string) (payload.Resource, error) {
	if path == "" {
		return nil, errors.New("testsupport: resource path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read resource: %w", err)
	}
	resource, err := payload.ParseResource(data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse resource: %w", err)
	}
	return resource, nil
}

// MustResource builds a Resource from literal values.
func MustResource(t *testing.T, values map[string]any) payload.Resource {
	t.Helper()

	resource, err := payload.ResourceFromMap(values)
	if err != nil {
		t.Fatalf("build resource: %v", err)
	}
	return resource
}

// EncodeJSON returns the JSON text of value, as the persistence layer stores
// double-encoded fields.
func EncodeJSON(t *testing.T, value any) string {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("encode json: %v", err)
	}
	return string(data)
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, data)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer and returns both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}
