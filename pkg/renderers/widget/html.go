package widget

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/grid"
	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/render"
	rendertemplate "github.com/goliatone/go-reportview/pkg/render/template"
	"github.com/goliatone/go-reportview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-reportview/pkg/source"
)

// Partial names a theme can override through its Templates map.
const (
	PartialPage    = "reportview.page"
	PartialLoading = "reportview.loading"
	PartialError   = "reportview.error"
	PartialEmpty   = "reportview.empty"
	PartialTable   = "reportview.table"
	PartialChart   = "reportview.chart"
)

var defaultPartials = map[string]string{
	PartialPage:    "templates/page.tmpl",
	PartialLoading: "templates/loading.tmpl",
	PartialError:   "templates/error.tmpl",
	PartialEmpty:   "templates/empty.tmpl",
	PartialTable:   "templates/table.tmpl",
	PartialChart:   "templates/chart.tmpl",
}

// DefaultPartials returns the built-in template path for every partial.
func DefaultPartials() map[string]string {
	out := make(map[string]string, len(defaultPartials))
	for name, tpl := range defaultPartials {
		out[name] = tpl
	}
	return out
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an additional template bundle, consulted before
// the embedded one. Theme partials usually live here.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads additional templates from a directory on disk.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		if dir == "" {
			return
		}
		cfg.templateFS = os.DirFS(dir)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// HTMLRenderer renders a widget view as a standalone HTML document suitable
// for an iframe.
type HTMLRenderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*HTMLRenderer)(nil)

// NewHTML constructs the HTML renderer applying any provided options.
func NewHTML(options ...Option) (*HTMLRenderer, error) {
	var cfg config
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	RegisterFilters()

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []gotemplate.Option{gotemplate.WithExtension(".tmpl")}
		if cfg.templateFS != nil {
			engineOpts = append(engineOpts, gotemplate.WithFS(cfg.templateFS))
		}
		engineOpts = append(engineOpts, gotemplate.WithFS(TemplatesFS()))

		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("widget renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &HTMLRenderer{templates: renderer}, nil
}

func (r *HTMLRenderer) Name() string {
	return "html"
}

func (r *HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *HTMLRenderer) Render(ctx context.Context, view model.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("widget renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := baseContext(view, opts)

	var body strings.Builder
	switch view.State {
	case model.StateReady:
		if view.HasChart() {
			out, err := r.partial(opts, PartialChart, chartContext(view, data))
			if err != nil {
				return nil, err
			}
			body.WriteString(out)
		}
		// Chart flows keep the grid as a data source only.
		switch {
		case view.Flow == source.FlowPublicTable && view.Table != nil:
			out, err := r.partial(opts, PartialTable, tableContext(view, opts, data))
			if err != nil {
				return nil, err
			}
			body.WriteString(out)
		case !view.HasChart() && !view.HasRows():
			out, err := r.partial(opts, PartialEmpty, data)
			if err != nil {
				return nil, err
			}
			body.WriteString(out)
		}
	case model.StateError:
		out, err := r.partial(opts, PartialError, data)
		if err != nil {
			return nil, err
		}
		body.WriteString(out)
	case model.StateEmpty:
		out, err := r.partial(opts, PartialEmpty, data)
		if err != nil {
			return nil, err
		}
		body.WriteString(out)
	default:
		out, err := r.partial(opts, PartialLoading, data)
		if err != nil {
			return nil, err
		}
		body.WriteString(out)
	}

	page := copyContext(data)
	page["body"] = body.String()
	out, err := r.partial(opts, PartialPage, page)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (r *HTMLRenderer) partial(opts render.RenderOptions, name string, data map[string]any) (string, error) {
	tpl := opts.Partial(name, defaultPartials[name])
	out, err := r.templates.RenderTemplate(tpl, data)
	if err != nil {
		return "", fmt.Errorf("widget renderer: render %s: %w", name, err)
	}
	return out, nil
}

func baseContext(view model.View, opts render.RenderOptions) map[string]any {
	warnings := make([]string, 0, len(view.Warnings))
	for _, w := range view.Warnings {
		if s := sanitizeText(w); s != "" {
			warnings = append(warnings, s)
		}
	}

	data := map[string]any{
		"state":      string(view.State),
		"title":      sanitizeText(view.Title),
		"message":    sanitizeText(view.Message),
		"warnings":   warnings,
		"cycle":      view.CycleID,
		"flow":       string(view.Flow),
		"stylesheet": assetURL(opts, AssetStylesheet, StylesheetName),
		"runtime":    assetURL(opts, AssetRuntime, RuntimeScriptName),
		"css_vars":   opts.CSSVars(),
		"theme":      "",
		"variant":    "",
	}
	if opts.Theme != nil {
		data["theme"] = opts.Theme.Theme
		data["variant"] = opts.Theme.Variant
	}
	return data
}

func chartContext(view model.View, base map[string]any) map[string]any {
	data := copyContext(base)
	data["chart_type"] = view.Chart.Type
	data["srcdoc"] = string(view.Chart.HTML)
	return data
}

func tableContext(view model.View, opts render.RenderOptions, base map[string]any) map[string]any {
	table := view.Table

	headers := make([]map[string]any, 0, len(table.Columns))
	for _, col := range table.Columns {
		width := ""
		if col.Width > 0 {
			width = grid.FormatCell(col.Width)
		}
		headers = append(headers, map[string]any{
			"id":      col.ID,
			"header":  sanitizeText(col.HeaderName),
			"numeric": col.Type == columns.TypeNumeric,
			"sort":    col.Sort,
			"pinned":  col.Pinned,
			"width":   width,
		})
	}

	rows := make([][]any, 0, len(table.Page.Rows))
	for _, row := range table.Page.Rows {
		cells := make([]any, 0, len(table.Columns))
		for _, col := range table.Columns {
			cells = append(cells, row[col.ID])
		}
		rows = append(rows, cells)
	}

	data := copyContext(base)
	data["headers"] = headers
	data["rows"] = rows
	data["colspan"] = len(headers)
	data["grouped"] = table.Grouped
	data["pivoted"] = table.Pivoted
	data["auto_fit"] = table.AutoFit
	data["page"] = table.Page.Number
	data["total_pages"] = table.Page.TotalPages
	data["total_rows"] = table.Page.TotalRows
	data["prev_url"] = ""
	data["next_url"] = ""
	if table.Page.Number > 1 {
		data["prev_url"] = opts.PageURL(view.Identifier, table.Page.Number-1)
	}
	if table.Page.Number < table.Page.TotalPages {
		data["next_url"] = opts.PageURL(view.Identifier, table.Page.Number+1)
	}
	return data
}

func assetURL(opts render.RenderOptions, key, file string) string {
	if opts.Theme != nil && opts.Theme.AssetURL != nil {
		if u := opts.Theme.AssetURL(key); u != "" {
			return u
		}
	}
	prefix := strings.TrimSpace(opts.AssetsPrefix)
	if prefix == "" {
		return ""
	}
	if strings.Contains(prefix, "://") {
		return strings.TrimSuffix(prefix, "/") + "/" + file
	}
	return path.Join(prefix, file)
}

func copyContext(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+4)
	for k, v := range in {
		out[k] = v
	}
	return out
}
