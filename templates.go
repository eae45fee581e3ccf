package reportview

import (
	"io/fs"

	"github.com/goliatone/go-reportview/pkg/renderers/widget"
)

// EmbeddedTemplates exposes the built-in widget templates so callers can
// reuse or override individual partials without importing the renderer
// package directly.
func EmbeddedTemplates() fs.FS {
	return widget.TemplatesFS()
}
