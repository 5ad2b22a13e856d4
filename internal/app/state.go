// Package app provides the per-viewer session state and its events.
package app

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"imquick/internal/decode"
	"imquick/internal/fileseries"
	"imquick/internal/levels"
	"imquick/internal/pixbuf"
	"imquick/internal/viewport"
)

// cacheSize bounds the number of decoded files kept for fast directory
// navigation.
const cacheSize = 8

// EventType identifies different session events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventPlaneChanged
	EventContrastChanged
	EventInterpChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds one viewer session: the loaded file, its planes, the display
// window, and the interpolation mode. Each open window owns exactly one
// State; sessions share nothing.
type State struct {
	mu sync.RWMutex

	// Path of the currently loaded file, empty before first load.
	Path string

	// Series orders sibling files for next/previous navigation.
	Series *fileseries.Series

	// Window is the contrast window applied to normalized samples.
	Window *levels.Window

	// Interp is the active resampling mode.
	Interp viewport.Interp

	reader     *decode.Reader
	buf        *pixbuf.Buffer
	normalized []uint8
	displayed  *image.NRGBA

	plane    int
	maxPlane int

	// selectedChannel is the channel the contrast controls edit, -1 for all.
	selectedChannel int

	cache     *lru.Cache[string, *decode.Reader]
	listeners map[EventType][]EventListener
}

// NewState creates a new viewer session.
func NewState() *State {
	cache, _ := lru.New[string, *decode.Reader](cacheSize)
	return &State{
		Series:          fileseries.New(),
		Window:          levels.NewWindow(0),
		selectedChannel: -1,
		cache:           cache,
		listeners:       make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Load decodes the file at path and replaces the session contents. The
// contrast window resets, the stack position starts at the middle plane,
// and the file series is pointed at the new file.
func (s *State) Load(path string) error {
	path = filepath.Clean(path)

	reader, ok := s.cache.Get(path)
	if !ok {
		var err error
		reader, err = decode.Open(path)
		if err != nil {
			s.clearSession()
			return err
		}
		s.cache.Add(path, reader)
	}

	maxPlane := reader.PlaneCount() - 1
	plane := maxPlane / 2

	buf, err := reader.Plane(plane)
	if err != nil {
		s.clearSession()
		return err
	}

	s.mu.Lock()
	s.Path = path
	s.reader = reader
	s.buf = buf
	s.plane = plane
	s.maxPlane = maxPlane
	s.Window = levels.NewWindow(buf.Channels)
	s.selectedChannel = -1
	s.renormalize()
	s.mu.Unlock()

	s.Series.SetCurrent(path)
	s.Emit(EventImageLoaded, path)
	return nil
}

// OpenFile loads a file chosen through an explicit picker, discarding any
// navigation series built for the previous directory.
func (s *State) OpenFile(path string) error {
	s.Series.Invalidate()
	return s.Load(path)
}

// NextFile advances to the next sibling file, wrapping at the end of the
// directory. A series of length <= 1 is a no-op.
func (s *State) NextFile() error {
	path, ok := s.Series.Next()
	if !ok {
		return nil
	}
	return s.Load(path)
}

// PreviousFile steps back to the previous sibling file.
func (s *State) PreviousFile() error {
	path, ok := s.Series.Previous()
	if !ok {
		return nil
	}
	return s.Load(path)
}

// Loaded reports whether the session has an image.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf != nil
}

// Buffer returns the raw samples of the current plane.
func (s *State) Buffer() *pixbuf.Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf
}

// Displayed returns the windowed 8-bit image handed to the renderer.
func (s *State) Displayed() *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayed
}

// Meta returns the format metadata of the loaded file.
func (s *State) Meta() decode.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reader == nil {
		return decode.Meta{}
	}
	return s.reader.Meta
}

// Plane returns the current stack plane index.
func (s *State) Plane() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plane
}

// MaxPlane returns the highest plane index, 0 for single-plane files.
func (s *State) MaxPlane() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxPlane
}

// MultiPlane reports whether the loaded file is a stack.
func (s *State) MultiPlane() bool {
	return s.MaxPlane() > 0
}

// SetPlane switches to another stack plane. Out-of-range indices are
// rejected with an error so entry widgets can revert instead of clamping.
// Pan and zoom are untouched.
func (s *State) SetPlane(i int) error {
	s.mu.Lock()
	if i < 0 || i > s.maxPlane {
		max := s.maxPlane
		s.mu.Unlock()
		return fmt.Errorf("plane %d out of range (0-%d)", i, max)
	}
	if i == s.plane {
		s.mu.Unlock()
		return nil
	}
	buf, err := s.reader.Plane(i)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.plane = i
	s.buf = buf
	s.renormalize()
	s.mu.Unlock()

	s.Emit(EventPlaneChanged, i)
	return nil
}

// ClampPlane clamps a plane index into the valid range, for slider input.
func (s *State) ClampPlane(i int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 {
		return 0
	}
	if i > s.maxPlane {
		return s.maxPlane
	}
	return i
}

// SelectedChannel returns the channel the contrast controls edit, -1 for all.
func (s *State) SelectedChannel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedChannel
}

// SelectChannel switches the contrast controls to a channel. Selecting a
// specific channel enables per-channel windowing; -1 returns to the global
// pair.
func (s *State) SelectChannel(ch int) {
	s.mu.Lock()
	if s.buf == nil || ch >= s.buf.Channels {
		ch = -1
	}
	s.selectedChannel = ch
	s.Window.PerChannel = ch >= 0
	s.reapply()
	s.mu.Unlock()

	s.Emit(EventContrastChanged, nil)
}

// SetWindowMin adjusts the lower contrast bound of the selected channel.
func (s *State) SetWindowMin(v int) {
	s.mu.Lock()
	s.Window.SetMin(s.selectedChannel, v)
	s.reapply()
	s.mu.Unlock()

	s.Emit(EventContrastChanged, nil)
}

// SetWindowMax adjusts the upper contrast bound of the selected channel.
func (s *State) SetWindowMax(v int) {
	s.mu.Lock()
	s.Window.SetMax(s.selectedChannel, v)
	s.reapply()
	s.mu.Unlock()

	s.Emit(EventContrastChanged, nil)
}

// AutoContrast fits the selected channel's window to the data range.
func (s *State) AutoContrast() {
	s.mu.Lock()
	channels := 0
	if s.buf != nil {
		channels = s.buf.Channels
	}
	s.Window.Auto(s.normalized, channels, s.selectedChannel)
	s.reapply()
	s.mu.Unlock()

	s.Emit(EventContrastChanged, nil)
}

// ResetContrast restores the full display range on every channel.
func (s *State) ResetContrast() {
	s.mu.Lock()
	s.Window.Reset()
	s.selectedChannel = -1
	s.reapply()
	s.mu.Unlock()

	s.Emit(EventContrastChanged, nil)
}

// SetInterp switches the resampling mode and requests a redraw.
func (s *State) SetInterp(mode viewport.Interp) {
	s.mu.Lock()
	s.Interp = mode
	s.mu.Unlock()

	s.Emit(EventInterpChanged, mode)
}

// PixelText formats the raw sample values under the cursor for the status
// readout. Returns "" when no image is loaded or the point is out of range.
func (s *State) PixelText(x, y int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.buf == nil {
		return ""
	}
	samples := s.buf.At(x, y)
	if samples == nil {
		return ""
	}

	parts := make([]string, len(samples))
	for i, v := range samples {
		if s.buf.DType.Integer() {
			parts[i] = fmt.Sprintf("%d", int64(v))
		} else {
			parts[i] = fmt.Sprintf("%g", v)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// clearSession drops every trace of the previous image so a failed load
// leaves the viewer empty instead of showing stale contents.
func (s *State) clearSession() {
	s.mu.Lock()
	s.Path = ""
	s.reader = nil
	s.buf = nil
	s.plane = 0
	s.maxPlane = 0
	s.Window = levels.NewWindow(0)
	s.selectedChannel = -1
	s.renormalize()
	s.mu.Unlock()
}

// renormalize rebuilds the normalized samples and the displayable image.
// Callers hold the write lock.
func (s *State) renormalize() {
	if s.buf == nil {
		s.normalized = nil
		s.displayed = nil
		return
	}
	s.normalized = levels.Normalize(s.buf)
	s.reapply()
}

// reapply re-runs the contrast window over the normalized samples.
// Callers hold the write lock.
func (s *State) reapply() {
	if s.buf == nil {
		return
	}
	windowed := levels.Apply(s.normalized, s.buf.Channels, s.Window)
	s.displayed = levels.ToNRGBA(windowed, s.buf.Width, s.buf.Height, s.buf.Channels)
}
