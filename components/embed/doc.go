// Package embed provides the net/http handlers that serve report widgets to
// iframes.
//
// The HTML handler answers GET and HEAD requests at the route path (default
// /embed) and reads the widget identifier from the statId, graphId, token,
// view and page query parameters. A sibling route with a .json suffix returns
// the same widget view as JSON. Widgets in the Error state still render their
// message markup so the iframe shows it; the status code used for them is
// configurable and defaults to 200.
package embed
