// Package template defines the template rendering seam widget renderers
// depend on. The gotemplate subpackage provides the pongo2-backed engine.
package template
