// Package main provides the entry point for the ImQuick image viewer.
package main

import (
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"imquick/internal/app"
	"imquick/internal/version"
	"imquick/ui/mainwindow"
	"imquick/ui/prefs"
)

const appTitle = "ImQuick"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("io.imquick.viewer")
	fyneApp.Settings().SetTheme(&app.ViewerTheme{})

	appPrefs := prefs.Load()

	// Every window owns its own session; windows share only preferences.
	var spawn func(path string)
	spawn = func(path string) {
		win := mainwindow.New(fyneApp, app.NewState(), appPrefs, spawn)
		win.Show()
		win.LoadFile(path)
	}

	win := mainwindow.New(fyneApp, app.NewState(), appPrefs, spawn)

	if len(os.Args) > 1 {
		win.LoadFile(os.Args[1])
		for _, extra := range os.Args[2:] {
			spawn(extra)
		}
	}

	win.ShowAndRun()
}
