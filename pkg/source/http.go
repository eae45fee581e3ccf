package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-reportview/pkg/metrics"
	"github.com/goliatone/go-reportview/pkg/payload"
	"github.com/goliatone/go-reportview/pkg/reporterr"
)

const maxErrorBody = 512

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient sets the underlying client. It is copied, so the caller's
// client is never mutated.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			clone := *client
			c.http = &clone
		}
	}
}

// WithToken sets the bearer token sent on authenticated requests.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) {
		c.token = token
	}
}

// WithTimeout bounds every request. Zero keeps the transport default.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// WithTracer sets the tracer used for fetch spans.
func WithTracer(tracer trace.Tracer) HTTPOption {
	return func(c *HTTPClient) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// HTTPClient fetches resources from the reporting API.
type HTTPClient struct {
	base    *url.URL
	token   string
	http    *http.Client
	timeout time.Duration
	tracer  trace.Tracer
	logger  *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("source: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported base url scheme %q", base.Scheme)
	}

	c := &HTTPClient{
		base:   base,
		http:   &http.Client{},
		tracer: otel.Tracer("github.com/goliatone/go-reportview/pkg/source"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Stat implements Client.
func (c *HTTPClient) Stat(ctx context.Context, statID string) (payload.Resource, error) {
	data, err := c.fetch(ctx, ResourceStat, "v1/stats/"+url.PathEscape(statID), nil, true)
	if err != nil {
		return nil, err
	}
	return c.decodeResource(ResourceStat, data)
}

// StatGraphs implements Client.
func (c *HTTPClient) StatGraphs(ctx context.Context, statID string) ([]payload.Resource, error) {
	query := url.Values{"stat_id": []string{statID}}
	data, err := c.fetch(ctx, ResourceStatGraphs, "v1/stats/graphs", query, true)
	if err != nil {
		return nil, err
	}
	list, err := payload.ParseResourceList(data)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: ResourceStatGraphs, Err: err}
	}
	return list, nil
}

// ReportingSnapshot implements Client.
func (c *HTTPClient) ReportingSnapshot(ctx context.Context, token string) (payload.Resource, error) {
	data, err := c.fetch(ctx, ResourceReportingSnapshot, "v1/reporting/snapshots/"+url.PathEscape(token), nil, false)
	if err != nil {
		return nil, err
	}
	return c.decodeResource(ResourceReportingSnapshot, data)
}

// NewsletterSnapshot implements Client.
func (c *HTTPClient) NewsletterSnapshot(ctx context.Context, token string) (payload.Resource, error) {
	data, err := c.fetch(ctx, ResourceNewsletterSnapshot, "v1/newsletter/snapshots/"+url.PathEscape(token), nil, false)
	if err != nil {
		return nil, err
	}
	return c.decodeResource(ResourceNewsletterSnapshot, data)
}

func (c *HTTPClient) decodeResource(resource string, data []byte) (payload.Resource, error) {
	res, err := payload.ParseResource(data)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: resource, Err: err}
	}
	return res, nil
}

// endpoint resolves an escaped relative path against the base url.
func (c *HTTPClient) endpoint(path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *HTTPClient) fetch(ctx context.Context, resource, path string, query url.Values, auth bool) (data []byte, err error) {
	target, err := c.endpoint(path, query)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: resource, URL: path, Err: err}
	}

	ctx, span := c.tracer.Start(ctx, "reportview.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("reportview.resource", resource),
			attribute.Bool("reportview.authenticated", auth),
		),
	)
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.FetchErrors.WithLabelValues(resource).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: resource, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: resource, URL: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("upstream request failed", "resource", resource, "status", resp.StatusCode)
		return nil, &reporterr.FetchError{
			Resource:   resource,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &reporterr.FetchError{Resource: resource, URL: target, Err: err}
	}
	return data, nil
}
