package echarts

import (
	"github.com/goliatone/go-reportview/pkg/chart"
	"github.com/goliatone/go-reportview/pkg/columns"
)

func descriptorsFor(req chart.Request) []columns.Descriptor {
	out := []columns.Descriptor{columns.DescriptorFor(req.Binding.Category, columns.TypeText)}
	for _, s := range req.Binding.Series {
		out = append(out, columns.DescriptorFor(s.ID, columns.TypeNumeric))
	}
	return out
}
