package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reportview/components/embed"
	"github.com/goliatone/go-reportview/internal/config"
	"github.com/goliatone/go-reportview/internal/health"
	"github.com/goliatone/go-reportview/pkg/renderers/widget"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report widgets over HTTP",
	Long: `Starts the embed server. Widgets are served at the embed route (default
/embed) as HTML and at the same route with a .json suffix as JSON. The server
also exposes /metrics, /healthz, /readyz and the widget assets.

Example:

  reportview serve --api-url https://reports.example.com --api-token $TOKEN
  curl 'localhost:8080/embed?token=abc&view=table'
`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "HTTP listen address")
	f.String("route-path", "/embed", "embed route path")
	f.Int("error-status", http.StatusOK, "HTTP status sent with widgets in the error state")
	f.Int("page-size", 20, "table rows per page")
	f.Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")

	mustBindPFlag("addr", f.Lookup("addr"))
	mustBindPFlag("embed.route_path", f.Lookup("route-path"))
	mustBindPFlag("embed.error_status", f.Lookup("error-status"))
	mustBindPFlag("embed.page_size", f.Lookup("page-size"))
	mustBindPFlag("shutdown_timeout", f.Lookup("shutdown-timeout"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	logger := slog.Default()

	handler, ready, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g.Go(func() error {
		ln, lnErr := net.Listen("tcp", cfg.Addr)
		if lnErr != nil {
			return fmt.Errorf("http listen: %w", lnErr)
		}
		ready.SetReady(true)
		logger.Info("HTTP server started", "addr", ln.Addr().String(), "route", cfg.Embed.RoutePath)
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down...")
		ready.SetReady(false)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildServer wires the embed routes, assets, metrics and health endpoints.
// The readiness checker starts not ready; the caller flips it once the
// listener is up.
func buildServer(cfg config.Config, logger *slog.Logger) (http.Handler, *health.ReadinessChecker, error) {
	client, err := buildClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	charts, err := buildChartRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}
	gen := buildOrchestrator(cfg, client, charts, logger)
	checker := buildChecker(cfg, gen, charts)
	ready := health.NewReadinessChecker()

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", checker.ServeHTTP)
	r.Get("/readyz", ready.ServeHTTP)

	if prefix := localAssetsPrefix(cfg.Assets.URLPrefix); prefix != "" {
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServerFS(widget.AssetsFS())))
	}

	component := embed.New(
		embed.WithRoutePath(cfg.Embed.RoutePath),
		embed.WithErrorStatus(cfg.Embed.ErrorStatus),
		embed.WithAssetsPrefix(cfg.Assets.URLPrefix),
		embed.WithLogger(logger),
		embed.WithGenerator(gen),
	)
	if _, err := component.RegisterRoutes(r, ""); err != nil {
		return nil, nil, err
	}
	return r, ready, nil
}

// localAssetsPrefix returns the route the bundled assets are mounted at, or
// "" when assets are served from another host.
func localAssetsPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.Contains(prefix, "://") || strings.HasPrefix(prefix, "//") {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimRight(prefix, "/")
}
