package embed

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-reportview/pkg/orchestrator"
)

// Generator renders a widget request. *orchestrator.Orchestrator satisfies it.
type Generator interface {
	Generate(ctx context.Context, req orchestrator.Request) (orchestrator.Output, error)
}

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	JSONSuffix   string
	ErrorStatus  int
	ThemeParam   string
	VariantParam string
	AssetsPrefix string
	Guard        GuardFunc
	Logger       *slog.Logger

	Generator Generator
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    "/embed",
		JSONSuffix:   ".json",
		ErrorStatus:  http.StatusOK,
		ThemeParam:   "theme",
		VariantParam: "variant",
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/embed"
	}
	if opts.JSONSuffix == "" {
		opts.JSONSuffix = ".json"
	}
	if opts.ErrorStatus < 100 || opts.ErrorStatus > 599 {
		opts.ErrorStatus = http.StatusOK
	}
	if opts.ThemeParam == "" {
		opts.ThemeParam = "theme"
	}
	if opts.VariantParam == "" {
		opts.VariantParam = "variant"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithJSONSuffix(suffix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.JSONSuffix = suffix
	}
}

// WithErrorStatus sets the status code sent with widgets in the Error state.
func WithErrorStatus(code int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ErrorStatus = code
	}
}

func WithThemeParams(themeParam, variantParam string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ThemeParam = themeParam
		o.VariantParam = variantParam
	}
}

// WithAssetsPrefix sets the URL prefix the widget runtime assets are served
// from.
func WithAssetsPrefix(prefix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AssetsPrefix = prefix
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithGenerator(gen Generator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Generator = gen
	}
}
