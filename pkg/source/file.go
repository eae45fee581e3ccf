package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-reportview/pkg/payload"
	"github.com/goliatone/go-reportview/pkg/reporterr"
)

var fixtureExtensions = []string{".json", ".yaml", ".yml"}

// FileClient serves resources from fixture files, laid out as:
//
//	stats/{statId}.json
//	stats/graphs/{statId}.json
//	reporting/snapshots/{token}.json
//	newsletter/snapshots/{token}.json
//
// Each file may be JSON or YAML (.yaml, .yml). A missing fixture is reported
// as a 404 FetchError, the same way the API reports it.
type FileClient struct {
	files fs.FS
}

var _ Client = (*FileClient)(nil)

// NewFileClient serves fixtures from files.
func NewFileClient(files fs.FS) (*FileClient, error) {
	if files == nil {
		return nil, errors.New("source: fixture fs is nil")
	}
	return &FileClient{files: files}, nil
}

// NewDirClient serves fixtures from a directory on disk.
func NewDirClient(dir string) (*FileClient, error) {
	if dir == "" {
		return nil, errors.New("source: fixture directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source: fixture directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source: %s is not a directory", dir)
	}
	return NewFileClient(os.DirFS(dir))
}

// Stat implements Client.
func (c *FileClient) Stat(ctx context.Context, statID string) (payload.Resource, error) {
	return c.resource(ctx, ResourceStat, path.Join("stats", statID))
}

// StatGraphs implements Client.
func (c *FileClient) StatGraphs(ctx context.Context, statID string) ([]payload.Resource, error) {
	value, err := c.load(ctx, ResourceStatGraphs, path.Join("stats", "graphs", statID))
	if err != nil {
		return nil, err
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &reporterr.FetchError{Resource: ResourceStatGraphs, Err: fmt.Errorf("fixture is %T, want a list", value)}
	}
	out := make([]payload.Resource, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &reporterr.FetchError{Resource: ResourceStatGraphs, Err: fmt.Errorf("graph %d is %T, want an object", i, item)}
		}
		res, err := payload.ResourceFromMap(obj)
		if err != nil {
			return nil, &reporterr.FetchError{Resource: ResourceStatGraphs, Err: err}
		}
		out = append(out, res)
	}
	return out, nil
}

// ReportingSnapshot implements Client.
func (c *FileClient) ReportingSnapshot(ctx context.Context, token string) (payload.Resource, error) {
	return c.resource(ctx, ResourceReportingSnapshot, path.Join("reporting", "snapshots", token))
}

// NewsletterSnapshot implements Client.
func (c *FileClient) NewsletterSnapshot(ctx context.Context, token string) (payload.Resource, error) {
	return c.resource(ctx, ResourceNewsletterSnapshot, path.Join("newsletter", "snapshots", token))
}

func (c *FileClient) resource(ctx context.Context, resource, name string) (payload.Resource, error) {
	value, err := c.load(ctx, resource, name)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &reporterr.FetchError{Resource: resource, Err: fmt.Errorf("fixture is %T, want an object", value)}
	}
	res, err := payload.ResourceFromMap(obj)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: resource, Err: err}
	}
	return res, nil
}

func (c *FileClient) load(ctx context.Context, resource, name string) (any, error) {
	select {
	case <-ctx.Done():
		return nil, &reporterr.FetchError{Resource: resource, URL: name, Err: ctx.Err()}
	default:
	}
	if !fs.ValidPath(name) {
		return nil, &reporterr.FetchError{Resource: resource, URL: name, StatusCode: http.StatusNotFound, Body: "invalid fixture path"}
	}

	for _, ext := range fixtureExtensions {
		data, err := fs.ReadFile(c.files, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &reporterr.FetchError{Resource: resource, URL: name + ext, Err: err}
		}
		value, err := parseFixture(data)
		if err != nil {
			return nil, &reporterr.FetchError{Resource: resource, URL: name + ext, Err: err}
		}
		return value, nil
	}
	return nil, &reporterr.FetchError{Resource: resource, URL: name, StatusCode: http.StatusNotFound, Body: "fixture not found"}
}

// parseFixture accepts JSON first and falls back to YAML. JSON numbers are
// kept as json.Number like the API client does.
func parseFixture(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("fixture is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err == nil {
		return value, nil
	}

	value = nil
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("invalid JSON or YAML: %w", err)
	}
	return value, nil
}
