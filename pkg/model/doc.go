// Package model defines the widget view consumed by renderers. A View is an
// immutable snapshot taken from a widget after a load cycle settles (or while
// it is still loading) and carries everything a renderer needs: the state,
// the resolved title, the user-facing message, the displayed table page, the
// column descriptors, the applied view state and the mounted chart markup.
// Renderers never reach back into the widget, so a View can be serialised to
// JSON or handed to a template without further locking.
package model
