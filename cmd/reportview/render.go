package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-reportview/internal/config"
	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/orchestrator"
	"github.com/goliatone/go-reportview/pkg/render"
	"github.com/goliatone/go-reportview/pkg/source"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one widget to stdout or a file",
	Long: `Loads one widget and writes the rendered output. The widget is chosen the
same way the embed route chooses it: --stat and --graph select a stat graph,
--token alone selects a public chart snapshot, and --token with --view table
selects a public table snapshot. Use --interactive to be prompted instead.`,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.String("stat", "", "stat id")
	f.String("graph", "", "graph id")
	f.String("token", "", "public snapshot token")
	f.String("view", "", `set to "table" for the table snapshot`)
	f.Int("page", 1, "table page")
	f.String("renderer", "html", "renderer: html, json")
	f.String("theme", "", "theme name")
	f.String("variant", "", "theme variant")
	f.StringP("output", "o", "", "output file (stdout if empty)")
	f.BoolP("interactive", "i", false, "prompt for the widget identifier")
	f.Bool("strict", false, "exit non-zero when the widget renders in the error state")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	logger := slog.Default()
	f := cmd.Flags()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	id := identifierFromFlags(cmd)
	if interactive, _ := f.GetBool("interactive"); interactive {
		if id, err = promptIdentifier(ctx, surveyDriver{}, id); err != nil {
			return err
		}
	}

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	charts, err := buildChartRegistry(cfg)
	if err != nil {
		return err
	}
	gen := buildOrchestrator(cfg, client, charts, logger)

	rendererName, _ := f.GetString("renderer")
	themeName, _ := f.GetString("theme")
	variant, _ := f.GetString("variant")

	out, err := gen.Generate(ctx, orchestrator.Request{
		Identifier:   id,
		Renderer:     rendererName,
		ThemeName:    themeName,
		ThemeVariant: variant,
		RenderOptions: render.RenderOptions{
			BasePath:     cfg.Embed.RoutePath,
			AssetsPrefix: cfg.Assets.URLPrefix,
		},
	})
	if err != nil {
		return fmt.Errorf("render widget: %w", err)
	}

	if output, _ := f.GetString("output"); output != "" {
		if err := os.WriteFile(output, out.Body, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Widget (%s) written to %s\n", out.View.State, output)
	} else {
		if _, err := cmd.OutOrStdout().Write(out.Body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if strict, _ := f.GetBool("strict"); strict && out.View.State == model.StateError {
		return fmt.Errorf("widget error: %s", out.View.Message)
	}
	return nil
}

func identifierFromFlags(cmd *cobra.Command) source.Identifier {
	f := cmd.Flags()
	stat, _ := f.GetString("stat")
	graph, _ := f.GetString("graph")
	token, _ := f.GetString("token")
	view, _ := f.GetString("view")
	page, _ := f.GetInt("page")
	id := source.Identifier{StatID: stat, GraphID: graph, Token: token, View: view}
	if page > 1 {
		id.Page = page
	}
	return id
}
