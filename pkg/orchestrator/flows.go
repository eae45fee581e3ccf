package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reportview/pkg/chart"
	"github.com/goliatone/go-reportview/pkg/metrics"
	"github.com/goliatone/go-reportview/pkg/payload"
	"github.com/goliatone/go-reportview/pkg/reporterr"
	"github.com/goliatone/go-reportview/pkg/source"
	"github.com/goliatone/go-reportview/pkg/viewstate"
)

// loaded is the outcome of a flow: the normalized payload plus everything the
// pipeline replays on top of it.
type loaded struct {
	payload   payload.Payload
	title     string
	viewState *viewstate.ViewState
	chart     *chart.Model
	warnings  []string
}

func (w *Widget) fetch(ctx context.Context, logger *slog.Logger, flow source.Flow, id source.Identifier) (*loaded, error) {
	switch flow {
	case source.FlowStatGraph:
		return w.fetchStatGraph(ctx, logger, id)
	case source.FlowPublicTable:
		return w.fetchPublicTable(ctx, logger, id)
	case source.FlowPublicChart:
		return w.fetchPublicChart(ctx, logger, id)
	default:
		return nil, fmt.Errorf("orchestrator: unknown flow %q", flow)
	}
}

// fetchStatGraph loads the stat and its graph list concurrently and picks the
// chart whose id matches graphId. A missing graph leaves the table without a
// chart.
func (w *Widget) fetchStatGraph(ctx context.Context, logger *slog.Logger, id source.Identifier) (*loaded, error) {
	var (
		stat   payload.Resource
		graphs []payload.Resource
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := w.client.Stat(gctx, id.StatID)
		if err != nil {
			return err
		}
		stat = res
		return nil
	})
	g.Go(func() error {
		res, err := w.client.StatGraphs(gctx, id.StatID)
		if err != nil {
			return err
		}
		graphs = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := normalize(logger, stat)
	out := &loaded{
		payload: p,
		title:   p.DisplayTitle(true),
	}

	graph, ok := source.FindGraph(graphs, id.GraphID)
	if !ok {
		logger.Warn("graph not found for stat", "graph_id", id.GraphID, "graphs", len(graphs))
		out.warnings = append(out.warnings, GraphNotFoundMessage(id.StatID, id.GraphID))
	}

	state, err := viewstate.FromGridState(p.GridState)
	if err != nil {
		logOptional(logger, payload.FieldGridState, err)
	}
	if state == nil && ok {
		state, err = viewstate.FromFiltersAndSorting(
			decodeOptional(logger, graph, payload.FieldFilters),
			decodeOptional(logger, graph, payload.FieldSorting),
		)
		if err != nil {
			logOptional(logger, payload.FieldSorting, err)
		}
	}
	out.viewState = state

	if ok {
		out.chart = parseChart(logger, decodeOptional(logger, graph, payload.FieldConfig))
	}
	return out, nil
}

// fetchPublicTable loads a table snapshot. The title comes from the query
// name and the view state from grid_state. Table snapshots carry no chart.
func (w *Widget) fetchPublicTable(ctx context.Context, logger *slog.Logger, id source.Identifier) (*loaded, error) {
	res, err := w.client.ReportingSnapshot(ctx, id.Token)
	if err != nil {
		return nil, err
	}

	p := normalize(logger, res)
	state, err := viewstate.FromGridState(p.GridState)
	if err != nil {
		logOptional(logger, payload.FieldGridState, err)
	}
	return &loaded{
		payload:   p,
		title:     p.DisplayTitle(true),
		viewState: state,
	}, nil
}

// fetchPublicChart loads a chart snapshot. The view state comes from the
// filters and sorting saved with the chart.
func (w *Widget) fetchPublicChart(ctx context.Context, logger *slog.Logger, id source.Identifier) (*loaded, error) {
	res, err := w.client.NewsletterSnapshot(ctx, id.Token)
	if err != nil {
		return nil, err
	}

	p := normalize(logger, res)
	state, err := viewstate.FromFiltersAndSorting(p.Filters, p.Sorting)
	if err != nil {
		logOptional(logger, payload.FieldFilters, err)
	}
	return &loaded{
		payload:   p,
		title:     p.DisplayTitle(false),
		viewState: state,
		chart:     parseChart(logger, p.Config),
	}, nil
}

// normalize runs the payload normalizer and records what it had to drop.
func normalize(logger *slog.Logger, res payload.Resource) payload.Payload {
	p, problems := payload.Normalize(res)
	for _, problem := range problems {
		var required *reporterr.RequiredFieldError
		var optional *reporterr.OptionalFieldError
		switch {
		case errors.As(problem, &required):
			metrics.FieldDecodeFailures.WithLabelValues(required.Field).Inc()
			logger.Warn("required field could not be decoded", "field", required.Field, "error", required.Err)
		case errors.As(problem, &optional):
			metrics.FieldDecodeFailures.WithLabelValues(optional.Field).Inc()
			logger.Debug("optional field could not be decoded", "field", optional.Field, "error", optional.Err)
		}
	}
	return p
}

func decodeOptional(logger *slog.Logger, res payload.Resource, field string) any {
	value, err := res.Field(field).Decode()
	if err != nil {
		metrics.FieldDecodeFailures.WithLabelValues(field).Inc()
		logOptional(logger, field, err)
	}
	return value
}

func logOptional(logger *slog.Logger, field string, err error) {
	logger.Debug("ignoring malformed optional field", "field", field, "error", err)
}

func parseChart(logger *slog.Logger, config any) *chart.Model {
	model, err := chart.ParseModel(config)
	if err != nil {
		logger.Warn("ignoring malformed chart model", "error", &reporterr.ChartRestoreError{Err: err})
		return nil
	}
	return model
}
