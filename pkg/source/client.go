package source

import (
	"context"

	"github.com/goliatone/go-reportview/pkg/payload"
)

// Resource names used in errors, metrics and traces.
const (
	ResourceStat               = "stat"
	ResourceStatGraphs         = "stat_graphs"
	ResourceReportingSnapshot  = "reporting_snapshot"
	ResourceNewsletterSnapshot = "newsletter_snapshot"
)

// Client fetches the raw resources of every flow. All methods are read-only.
type Client interface {
	// Stat fetches a stat resource. Authenticated.
	Stat(ctx context.Context, statID string) (payload.Resource, error)
	// StatGraphs fetches the chart configurations saved for a stat.
	// Authenticated.
	StatGraphs(ctx context.Context, statID string) ([]payload.Resource, error)
	// ReportingSnapshot fetches a public table snapshot.
	ReportingSnapshot(ctx context.Context, token string) (payload.Resource, error)
	// NewsletterSnapshot fetches a public chart snapshot.
	NewsletterSnapshot(ctx context.Context, token string) (payload.Resource, error)
}

// FindGraph returns the graph whose id, compared as a string, equals graphID.
func FindGraph(graphs []payload.Resource, graphID string) (payload.Resource, bool) {
	for _, graph := range graphs {
		if graph.ID() == graphID {
			return graph, true
		}
	}
	return nil, false
}
