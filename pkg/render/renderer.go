package render

import (
	"context"

	"github.com/goliatone/go-reportview/pkg/model"
)

// Renderer converts a widget View into a byte representation (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view model.View, options RenderOptions) ([]byte, error)
}
