// Package fileseries orders sibling image files for next/previous navigation.
package fileseries

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"

	"imquick/internal/decode"
)

// Series is the ordered list of supported files sharing the current file's
// directory. The list is built lazily on first navigation and survives
// navigation within one directory.
type Series struct {
	current string
	files   []string
	index   int
}

// New creates an empty series.
func New() *Series {
	return &Series{}
}

// SetCurrent records the file the viewer is showing. If the file is not in
// the existing list the list is cleared and rebuilt on the next navigation.
func (s *Series) SetCurrent(path string) {
	s.current = filepath.Clean(path)
	for i, f := range s.files {
		if f == s.current {
			s.index = i
			return
		}
	}
	s.files = nil
	s.index = 0
}

// Invalidate clears the list, forcing a rebuild on the next navigation.
// Called when a file is opened through an explicit picker.
func (s *Series) Invalidate() {
	s.files = nil
	s.index = 0
}

// Len returns the number of files in the series.
func (s *Series) Len() int {
	return len(s.files)
}

// Rebuild lists the current file's directory, keeps supported files in
// natural order, and locates the current file. A missing directory or a
// current file that has disappeared leaves the series empty.
func (s *Series) Rebuild() {
	s.files = nil
	s.index = 0
	if s.current == "" {
		return
	}

	dir := filepath.Dir(s.current)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if decode.IsSupported(p) {
			files = append(files, p)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return natural.Less(files[i], files[j])
	})

	for i, f := range files {
		if f == s.current {
			s.files = files
			s.index = i
			return
		}
	}
}

// Next returns the path after the current file, wrapping at the end.
// ok is false for a series of length <= 1.
func (s *Series) Next() (string, bool) {
	return s.step(1)
}

// Previous returns the path before the current file, wrapping at the start.
func (s *Series) Previous() (string, bool) {
	return s.step(-1)
}

func (s *Series) step(delta int) (string, bool) {
	if len(s.files) == 0 {
		s.Rebuild()
	}
	if len(s.files) <= 1 {
		return "", false
	}
	s.index = (s.index + delta + len(s.files)) % len(s.files)
	s.current = s.files[s.index]
	return s.current, true
}
