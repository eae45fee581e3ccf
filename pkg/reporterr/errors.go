// Package reporterr defines the error taxonomy shared by the report viewer.
// Only fetch failures reach the user; every other kind is absorbed by the
// component that raised it and surfaces, at most, as a log line.
package reporterr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingIdentifier is returned when the embedding URL carries neither a
// (statId, graphId) pair nor a lone token.
var ErrMissingIdentifier = errors.New("statId and graphId or token parameters are required")

// ErrEmptyResult marks a successful load that produced zero rows.
var ErrEmptyResult = errors.New("no data available")

// ErrDisposed is returned by operations attempted on a disposed load cycle.
var ErrDisposed = errors.New("load cycle disposed")

// FetchError indicates that a resource could not be retrieved: a transport
// error or a non-success response.
type FetchError struct {
	Resource   string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("fetch %s: request failed: %d %s", e.Resource, e.StatusCode, e.Body)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the failure to the status code used when the error is
// relayed to an HTTP caller.
func (e *FetchError) HTTPStatus() int {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return e.StatusCode
	default:
		return http.StatusBadGateway
	}
}

// RequiredFieldError reports that a required payload field (columns_order or
// json_results) could not be decoded. The normalizer substitutes an empty
// sequence, so the widget ends up Empty rather than Error.
type RequiredFieldError struct {
	Field string
	Err   error
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("required field %q: %v", e.Field, e.Err)
}

func (e *RequiredFieldError) Unwrap() error {
	return e.Err
}

// OptionalFieldError reports a malformed optional field. The raw value is kept
// or the field is treated as absent.
type OptionalFieldError struct {
	Field string
	Err   error
}

func (e *OptionalFieldError) Error() string {
	return fmt.Sprintf("optional field %q: %v", e.Field, e.Err)
}

func (e *OptionalFieldError) Unwrap() error {
	return e.Err
}

// ChartRestoreError reports that a chart model could not be turned into a
// usable chart. It is logged only.
type ChartRestoreError struct {
	ChartType string
	Err       error
}

func (e *ChartRestoreError) Error() string {
	if e.ChartType == "" {
		return fmt.Sprintf("chart restore failed: %v", e.Err)
	}
	return fmt.Sprintf("chart restore failed for %s: %v", e.ChartType, e.Err)
}

func (e *ChartRestoreError) Unwrap() error {
	return e.Err
}

// UserVisible reports whether err belongs to the kinds shown to the user.
func UserVisible(err error) bool {
	if err == nil {
		return false
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return true
	}
	return errors.Is(err, ErrMissingIdentifier)
}
