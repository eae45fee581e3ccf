package render

import (
	"net/url"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportview/pkg/source"
)

// RenderOptions describe per-request data that renderers use to customise
// their output without touching the widget.
type RenderOptions struct {
	// Theme carries the resolved theme tokens, CSS variables and partial
	// overrides. Nil renders with the built-in defaults.
	Theme *theme.RendererConfig
	// BasePath is the route the widget is embedded under. Pagination links
	// are built against it.
	BasePath string
	// AssetsPrefix is the URL prefix runtime scripts are served from.
	AssetsPrefix string
}

// PageURL builds the link for page n of the widget identified by id.
func (o RenderOptions) PageURL(id source.Identifier, n int) string {
	u := url.URL{Path: o.BasePath, RawQuery: id.WithPage(n).Query().Encode()}
	return u.String()
}

// Partial returns the theme override for name, or fallback.
func (o RenderOptions) Partial(name, fallback string) string {
	if o.Theme != nil {
		if p, ok := o.Theme.Partials[name]; ok && p != "" {
			return p
		}
	}
	return fallback
}

// CSSVars returns the theme CSS variables, or nil.
func (o RenderOptions) CSSVars() map[string]string {
	if o.Theme == nil {
		return nil
	}
	return o.Theme.CSSVars
}
