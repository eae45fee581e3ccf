package widget

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-reportview/pkg/grid"
	"github.com/goliatone/go-reportview/pkg/render/template/gotemplate"
)

var filtersOnce sync.Once

// RegisterFilters installs the template filters the widget templates use.
// Safe to call more than once.
func RegisterFilters() {
	filtersOnce.Do(func() {
		_ = gotemplate.RegisterFilter("cell", func(input any, _ any) (any, error) {
			return grid.FormatCell(input), nil
		})
		_ = gotemplate.RegisterFilter("cssvars", func(input any, _ any) (any, error) {
			return cssVars(input), nil
		})
	})
}

// cssVars renders a custom-property declaration list in key order.
func cssVars(input any) string {
	vars := map[string]string{}
	switch v := input.(type) {
	case map[string]string:
		vars = v
	case map[string]any:
		for key, value := range v {
			vars[key] = fmt.Sprint(value)
		}
	}
	if len(vars) == 0 {
		return ""
	}

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		value := strings.NewReplacer(";", "", "{", "", "}", "", "<", "").Replace(vars[key])
		fmt.Fprintf(&b, "%s: %s; ", name, strings.TrimSpace(value))
	}
	return strings.TrimSpace(b.String())
}
