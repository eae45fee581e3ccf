package embed

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/orchestrator"
	"github.com/goliatone/go-reportview/pkg/render"
	"github.com/goliatone/go-reportview/pkg/source"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Renderer names used by the two routes.
const (
	RendererHTML = "html"
	RendererJSON = "json"
)

// Handler builds the HTML widget handler with default options plus any
// overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...), RendererHTML)
}

// JSONHandler builds the JSON widget handler.
func JSONHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...), RendererJSON)
}

// HandlerWithOptions builds a handler rendering with the named renderer from
// a pre-constructed Options value.
func HandlerWithOptions(opts Options, renderer string) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeError(w, err, http.StatusForbidden)
				return
			}
		}
		if opts.Generator == nil {
			writeError(w, StatusError{Code: http.StatusServiceUnavailable, Err: errors.New("embed: generator not configured")}, 0)
			return
		}

		query := r.URL.Query()
		req := orchestrator.Request{
			Identifier:   source.FromQuery(query),
			Renderer:     renderer,
			ThemeName:    strings.TrimSpace(query.Get(opts.ThemeParam)),
			ThemeVariant: strings.TrimSpace(query.Get(opts.VariantParam)),
			RenderOptions: render.RenderOptions{
				BasePath:     htmlPath(r.URL.Path, opts.JSONSuffix),
				AssetsPrefix: opts.AssetsPrefix,
			},
		}

		out, err := opts.Generator.Generate(r.Context(), req)
		if err != nil {
			opts.Logger.Error("embed: generate widget", "error", err, "path", r.URL.Path)
			writeError(w, err, http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if out.View.State == model.StateError {
			status = opts.ErrorStatus
		}

		w.Header().Set("Content-Type", out.ContentType)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(out.Body)
	})
}

// htmlPath returns the HTML route for a request path, so pagination links
// produced by the JSON route still point at the page users see.
func htmlPath(path, suffix string) string {
	return strings.TrimSuffix(path, suffix)
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	if w == nil {
		return
	}
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	if code <= 0 {
		code = http.StatusInternalServerError
	}
	http.Error(w, http.StatusText(code), code)
}
