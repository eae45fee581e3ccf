package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-reportview/pkg/renderers/widget"
)

// StaticSelector selects among a fixed set of theme manifests. It backs
// configurations that declare their theme inline rather than through a theme
// registry service.
type StaticSelector struct {
	manifests []*theme.Manifest
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector builds a selector over manifests. The first manifest is
// used when a selection names no theme.
func NewStaticSelector(manifests ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{}
	for _, m := range manifests {
		if m != nil {
			s.manifests = append(s.manifests, m)
		}
	}
	return s
}

// Select returns the manifest called name with the requested variant.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if len(s.manifests) == 0 {
		return nil, errors.New("orchestrator: no themes configured")
	}
	manifest := s.manifests[0]
	if name = strings.TrimSpace(name); name != "" {
		manifest = nil
		for _, m := range s.manifests {
			if m.Name == name {
				manifest = m
				break
			}
		}
		if manifest == nil {
			return nil, fmt.Errorf("orchestrator: theme %q not found", name)
		}
	}
	return &theme.Selection{
		Theme:    manifest.Name,
		Variant:  strings.TrimSpace(variant),
		Manifest: manifest,
	}, nil
}

func defaultThemeFallbacks() map[string]string {
	return widget.DefaultPartials()
}

// rendererConfig flattens a selection into the renderer-facing config:
// variant tokens, templates and asset files override the base manifest, and
// templates fall back to the built-in partials.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: mergeStrings(fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}

	files := map[string]string{}
	prefix := ""
	if m := selection.Manifest; m != nil {
		cfg.Tokens = mergeStrings(m.Tokens)
		cfg.Partials = mergeStrings(fallbacks, m.Templates)
		files = mergeStrings(m.Assets.Files)
		prefix = m.Assets.Prefix

		if v, ok := m.Variants[selection.Variant]; ok {
			cfg.Tokens = mergeStrings(cfg.Tokens, v.Tokens)
			cfg.Partials = mergeStrings(cfg.Partials, v.Templates)
			files = mergeStrings(files, v.Assets.Files)
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
			return file
		}
		return strings.TrimSuffix(prefix, "/") + "/" + file
	}
	return cfg
}

func mergeStrings(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
