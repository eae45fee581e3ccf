// Package source selects and fetches the persisted resources a widget renders.
package source

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-reportview/pkg/reporterr"
)

// Flow names a data-source flow.
type Flow string

const (
	// FlowStatGraph loads a stat and picks its chart from the stat's graph
	// list. Requires authentication.
	FlowStatGraph Flow = "stat_graph"
	// FlowPublicTable loads a public table snapshot.
	FlowPublicTable Flow = "public_table"
	// FlowPublicChart loads a public chart snapshot.
	FlowPublicChart Flow = "public_chart"
)

// ViewTable is the view parameter value that selects the table-only flow.
const ViewTable = "table"

// Query parameter names read from the embedding URL.
const (
	ParamStatID  = "statId"
	ParamGraphID = "graphId"
	ParamToken   = "token"
	ParamView    = "view"
	ParamPage    = "page"
)

// Identifier is the widget identity carried by the embedding URL.
type Identifier struct {
	StatID  string `json:"statId,omitempty"`
	GraphID string `json:"graphId,omitempty"`
	Token   string `json:"token,omitempty"`
	View    string `json:"view,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// FromQuery reads an Identifier from URL query values. Values are trimmed;
// an invalid page number is treated as the first page.
func FromQuery(values url.Values) Identifier {
	id := Identifier{
		StatID:  strings.TrimSpace(values.Get(ParamStatID)),
		GraphID: strings.TrimSpace(values.Get(ParamGraphID)),
		Token:   strings.TrimSpace(values.Get(ParamToken)),
		View:    strings.TrimSpace(values.Get(ParamView)),
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		id.Page = page
	}
	return id
}

// Query encodes the identifier back into URL query values.
func (id Identifier) Query() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set(ParamStatID, id.StatID)
	set(ParamGraphID, id.GraphID)
	set(ParamToken, id.Token)
	set(ParamView, id.View)
	if id.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(id.Page))
	}
	return values
}

// WithPage returns a copy of id pointing at page n.
func (id Identifier) WithPage(n int) Identifier {
	id.Page = n
	return id
}

// Key identifies the data a widget loads. Two identifiers with the same key
// share the same payload; the page number is not part of it.
func (id Identifier) Key() string {
	return strings.Join([]string{id.StatID, id.GraphID, id.Token, id.View}, "|")
}

// Select maps an identifier to its flow. Both statId and graphId select the
// stat/graph flow. A token alone selects a public flow: the table snapshot
// when view is "table", the chart snapshot otherwise. Any other shape is
// reporterr.ErrMissingIdentifier.
func Select(id Identifier) (Flow, error) {
	switch {
	case id.StatID != "" && id.GraphID != "":
		return FlowStatGraph, nil
	case id.Token != "" && id.StatID == "" && id.GraphID == "":
		if id.View == ViewTable {
			return FlowPublicTable, nil
		}
		return FlowPublicChart, nil
	default:
		return "", reporterr.ErrMissingIdentifier
	}
}
