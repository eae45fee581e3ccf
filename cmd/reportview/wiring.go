package main

import (
	"context"
	"fmt"
	"log/slog"

	theme "github.com/goliatone/go-theme"
	"go.opentelemetry.io/otel"

	"github.com/goliatone/go-reportview/internal/config"
	"github.com/goliatone/go-reportview/internal/health"
	"github.com/goliatone/go-reportview/pkg/chart"
	"github.com/goliatone/go-reportview/pkg/chart/echarts"
	"github.com/goliatone/go-reportview/pkg/orchestrator"
	"github.com/goliatone/go-reportview/pkg/source"
)

const tracerName = "github.com/goliatone/go-reportview/source"

// buildClient serves fixtures when a fixture directory is configured and the
// reporting API otherwise.
func buildClient(cfg config.Config, logger *slog.Logger) (source.Client, error) {
	if cfg.Fixtures.Dir != "" {
		client, err := source.NewDirClient(cfg.Fixtures.Dir)
		if err != nil {
			return nil, fmt.Errorf("fixture client: %w", err)
		}
		logger.Info("serving fixtures", "dir", cfg.Fixtures.Dir)
		return client, nil
	}
	client, err := source.NewHTTPClient(cfg.API.BaseURL,
		source.WithToken(cfg.API.Token),
		source.WithTimeout(cfg.API.RequestTimeout),
		source.WithTracer(otel.Tracer(tracerName)),
		source.WithHTTPLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return client, nil
}

func buildChartRegistry(cfg config.Config) (*chart.Registry, error) {
	registry := chart.NewRegistry()
	capability := echarts.New(
		echarts.WithSize(cfg.Chart.Width, cfg.Chart.Height),
		echarts.WithAssetsHost(cfg.Chart.AssetsHost),
	)
	if err := registry.Register(capability); err != nil {
		return nil, fmt.Errorf("chart registry: %w", err)
	}
	return registry, nil
}

// themeManifest turns the inline theme config into a go-theme manifest.
func themeManifest(cfg config.ThemeConfig) *theme.Manifest {
	manifest := &theme.Manifest{
		Name:     cfg.Name,
		Version:  "1",
		Tokens:   map[string]string{},
		Variants: map[string]theme.Variant{},
	}
	for k, v := range cfg.Tokens {
		manifest.Tokens[k] = v
	}
	for name, tokens := range cfg.Variants {
		variant := theme.Variant{Tokens: map[string]string{}}
		for k, v := range tokens {
			variant.Tokens[k] = v
		}
		manifest.Variants[name] = variant
	}
	return manifest
}

func buildOrchestrator(cfg config.Config, client source.Client, charts *chart.Registry, logger *slog.Logger) *orchestrator.Orchestrator {
	return orchestrator.New(
		orchestrator.WithClient(client),
		orchestrator.WithChartRegistry(charts),
		orchestrator.WithChartCapability(cfg.Chart.Capability),
		orchestrator.WithSettleDelay(cfg.Chart.SettleDelay),
		orchestrator.WithPageSize(cfg.Embed.PageSize),
		orchestrator.WithThemeSelector(orchestrator.NewStaticSelector(themeManifest(cfg.Theme))),
		orchestrator.WithDefaultTheme(cfg.Theme.Name, cfg.Theme.Variant),
		orchestrator.WithLogger(logger),
	)
}

// buildChecker registers the components /healthz reports on. Chart
// restoration failures degrade widgets without breaking them.
func buildChecker(cfg config.Config, gen *orchestrator.Orchestrator, charts *chart.Registry) *health.Checker {
	checker := health.NewChecker(cfg.API.RequestTimeout)
	checker.RegisterProbe("renderers", func(context.Context) error {
		if len(gen.Renderers()) == 0 {
			return fmt.Errorf("no renderers registered")
		}
		return nil
	}, false)
	checker.RegisterProbe("charts", func(context.Context) error {
		if charts != nil && !charts.Has(cfg.Chart.Capability) {
			return fmt.Errorf("chart capability %q not registered", cfg.Chart.Capability)
		}
		return nil
	}, true)
	return checker
}
