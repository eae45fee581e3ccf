// Package payload decodes the persisted report resources returned by the
// reporting API. Several fields are stored double-encoded (a JSON document
// serialised into a JSON string) while others arrive already structured or are
// missing entirely. Every such field is modelled as a Field, a tagged union of
// Absent, Encoded and Decoded values, and resolved through a single function
// instead of ad hoc per-field checks.
package payload
