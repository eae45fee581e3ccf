// Package chart rebuilds a persisted chart against a freshly loaded table.
//
// Restoration is two-phase. The loader first marks the table data ready, then
// forwards the table's first-data-rendered signal. The first signal after the
// data is ready schedules a single restore attempt on a Scheduler; repeated
// signals are ignored. The attempt binds the model's column references to the
// current columns, asks a Capability for a chart handle and mounts the handle's
// output into a Container.
package chart
