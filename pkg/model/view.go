package model

import (
	"github.com/goliatone/go-reportview/pkg/columns"
	"github.com/goliatone/go-reportview/pkg/grid"
	"github.com/goliatone/go-reportview/pkg/source"
	"github.com/goliatone/go-reportview/pkg/viewstate"
)

// State is the lifecycle state of a widget.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
	StateEmpty   State = "empty"
)

// Terminal reports whether the state ends a load cycle.
func (s State) Terminal() bool {
	return s == StateReady || s == StateError || s == StateEmpty
}

// View is a renderer-facing snapshot of a widget.
type View struct {
	State       State                `json:"state"`
	Flow        source.Flow          `json:"flow,omitempty"`
	Identifier  source.Identifier    `json:"identifier"`
	CycleID     string               `json:"cycle,omitempty"`
	Title       string               `json:"title,omitempty"`
	Message     string               `json:"message,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Descriptors []columns.Descriptor `json:"descriptors,omitempty"`
	ViewState   *viewstate.ViewState `json:"viewState,omitempty"`
	Table       *Table               `json:"table,omitempty"`
	Chart       *Chart               `json:"chart,omitempty"`
}

// Table is the displayed page of the processed grid.
type Table struct {
	Columns []grid.Column `json:"columns"`
	Page    grid.Page     `json:"page"`
	Grouped bool          `json:"grouped,omitempty"`
	Pivoted bool          `json:"pivoted,omitempty"`
	AutoFit bool          `json:"autoFit,omitempty"`
}

// Chart describes the restored chart, if any.
type Chart struct {
	Type    string `json:"type"`
	Outcome string `json:"outcome"`
	HTML    []byte `json:"-"`
}

// HasChart reports whether a chart was mounted.
func (v View) HasChart() bool {
	return v.Chart != nil && len(v.Chart.HTML) > 0
}

// HasRows reports whether the table page has rows to display.
func (v View) HasRows() bool {
	return v.Table != nil && len(v.Table.Page.Rows) > 0
}
