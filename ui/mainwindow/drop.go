package mainwindow

import (
	"log"

	"fyne.io/fyne/v2"

	"imquick/internal/decode"
)

// handleDrop routes dropped files: the first supported file replaces this
// window's image when none is loaded, everything else opens in a new
// window.
func (mw *MainWindow) handleDrop(_ fyne.Position, uris []fyne.URI) {
	var paths []string
	for _, uri := range uris {
		paths = append(paths, uri.Path())
	}

	here, spawned := dropTargets(mw.state.Loaded(), paths)
	if here != "" {
		mw.LoadFile(here)
	}
	for _, p := range spawned {
		if mw.spawn != nil {
			mw.spawn(p)
		}
	}
	if here == "" && len(spawned) == 0 && len(paths) > 0 {
		log.Printf("Warning: no supported files in drop")
	}
}

// dropTargets decides which dropped path loads in the current window and
// which ones spawn new windows. Unsupported files are skipped.
func dropTargets(loaded bool, paths []string) (here string, spawned []string) {
	for _, p := range paths {
		if !decode.IsSupported(p) {
			continue
		}
		if !loaded && here == "" {
			here = p
			continue
		}
		spawned = append(spawned, p)
	}
	return here, spawned
}
