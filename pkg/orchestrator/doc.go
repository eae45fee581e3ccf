// Package orchestrator composes the report widget pipeline: it selects the
// data source from the widget identifier, fetches and normalizes the
// persisted resource, builds the table, replays the saved view state and
// restores the saved chart, then hands a View to a renderer.
//
// A Widget owns one load at a time. Every Load starts a new cycle with its own
// uuid and generation number; starting a new cycle or disposing the widget
// marks the previous one disposed so its late results are discarded rather
// than applied.
package orchestrator
