package widget

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-reportview/pkg/model"
	"github.com/goliatone/go-reportview/pkg/render"
)

// JSONRenderer renders the widget view as JSON for hosts that draw the table
// and chart themselves.
type JSONRenderer struct {
	indent bool
}

var _ render.Renderer = (*JSONRenderer)(nil)

// NewJSON constructs the JSON renderer. Indented output is meant for the CLI.
func NewJSON(indent bool) *JSONRenderer {
	return &JSONRenderer{indent: indent}
}

func (r *JSONRenderer) Name() string {
	return "json"
}

func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

type jsonView struct {
	model.View
	HasChart bool              `json:"hasChart"`
	Theme    map[string]string `json:"theme,omitempty"`
}

func (r *JSONRenderer) Render(ctx context.Context, view model.View, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := jsonView{View: view, HasChart: view.HasChart()}
	if opts.Theme != nil && len(opts.Theme.CSSVars) > 0 {
		out.Theme = opts.Theme.CSSVars
	}

	var (
		data []byte
		err  error
	)
	if r.indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return nil, fmt.Errorf("widget renderer: encode view: %w", err)
	}
	return data, nil
}
