package widget

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName    = "reportview.css"
	RuntimeScriptName = "reportview-embed.js"
)

// Theme asset keys looked up through the theme's AssetURL resolver.
const (
	AssetStylesheet = "reportview.stylesheet"
	AssetRuntime    = "reportview.runtime"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded runtime assets (CSS/JS) so callers can serve
// them over HTTP or copy them into their own asset pipeline.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
