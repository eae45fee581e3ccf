package reportview

import (
	"io/fs"

	"github.com/goliatone/go-reportview/pkg/renderers/widget"
)

// RuntimeAssetsFS exposes the widget stylesheet and the iframe resize script
// so Go applications can serve them next to the embed route.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(reportview.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return widget.AssetsFS()
}
