package app

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imquick/internal/levels"
	"imquick/internal/viewport"
)

func writeGrayPNG(t *testing.T, dir, name string, value uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeStackGIF(t *testing.T, dir string, frames int) string {
	t.Helper()
	pal := color.Palette{color.Gray{Y: 0}, color.Gray{Y: 100}, color.Gray{Y: 200}}
	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 3, 3), pal)
		for p := range frame.Pix {
			frame.Pix[p] = uint8(i % len(pal))
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
	}
	path := filepath.Join(dir, "stack.gif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSinglePlane(t *testing.T) {
	path := writeGrayPNG(t, t.TempDir(), "a.png", 50)

	s := NewState()
	if s.Loaded() {
		t.Fatal("fresh session should have no image")
	}
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}

	if !s.Loaded() {
		t.Error("session should be loaded")
	}
	if s.Path != path {
		t.Errorf("path %q, want %q", s.Path, path)
	}
	if s.MaxPlane() != 0 || s.Plane() != 0 {
		t.Errorf("plane %d/%d, want 0/0", s.Plane(), s.MaxPlane())
	}
	if s.MultiPlane() {
		t.Error("single-plane file reported as a stack")
	}

	img := s.Displayed()
	if img == nil || img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("displayed image %v", img)
	}
}

func TestLoadEmitsImageLoaded(t *testing.T) {
	path := writeGrayPNG(t, t.TempDir(), "a.png", 50)

	s := NewState()
	var gotPath string
	s.On(EventImageLoaded, func(data interface{}) {
		gotPath, _ = data.(string)
	})

	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if gotPath != path {
		t.Errorf("event payload %q, want %q", gotPath, path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewState()
	if err := s.Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if s.Loaded() {
		t.Error("failed load must leave the session empty")
	}
}

func TestLoadFailureClearsSession(t *testing.T) {
	dir := t.TempDir()
	good := writeGrayPNG(t, dir, "a.png", 50)
	bad := filepath.Join(dir, "b.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewState()
	if err := s.Load(good); err != nil {
		t.Fatal(err)
	}

	if err := s.Load(bad); err == nil {
		t.Fatal("expected an error for a corrupt file")
	}
	if s.Loaded() {
		t.Error("failed load must not keep the previous image")
	}
	if s.Displayed() != nil {
		t.Error("displayed image must be cleared after a failed load")
	}
	if s.Path != "" {
		t.Errorf("path %q, want empty after a failed load", s.Path)
	}
}

func TestStackStartsAtMiddlePlane(t *testing.T) {
	path := writeStackGIF(t, t.TempDir(), 3)

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if s.MaxPlane() != 2 {
		t.Fatalf("max plane %d, want 2", s.MaxPlane())
	}
	if s.Plane() != 1 {
		t.Errorf("initial plane %d, want 1", s.Plane())
	}
	if !s.MultiPlane() {
		t.Error("stack not reported as multi-plane")
	}
}

func TestSetPlane(t *testing.T) {
	path := writeStackGIF(t, t.TempDir(), 3)

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}

	events := 0
	s.On(EventPlaneChanged, func(interface{}) { events++ })

	if err := s.SetPlane(5); err == nil {
		t.Error("out-of-range plane should be rejected")
	}
	if s.Plane() != 1 {
		t.Errorf("rejected SetPlane changed the plane to %d", s.Plane())
	}
	if err := s.SetPlane(-1); err == nil {
		t.Error("negative plane should be rejected")
	}

	if err := s.SetPlane(2); err != nil {
		t.Fatal(err)
	}
	if s.Plane() != 2 {
		t.Errorf("plane %d, want 2", s.Plane())
	}
	if events != 1 {
		t.Errorf("plane events %d, want 1", events)
	}

	// Setting the current plane again is a quiet no-op.
	if err := s.SetPlane(2); err != nil {
		t.Fatal(err)
	}
	if events != 1 {
		t.Errorf("no-op SetPlane emitted an event")
	}
}

func TestClampPlane(t *testing.T) {
	path := writeStackGIF(t, t.TempDir(), 3)

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}

	if got := s.ClampPlane(-3); got != 0 {
		t.Errorf("ClampPlane(-3) = %d, want 0", got)
	}
	if got := s.ClampPlane(9); got != 2 {
		t.Errorf("ClampPlane(9) = %d, want 2", got)
	}
	if got := s.ClampPlane(1); got != 1 {
		t.Errorf("ClampPlane(1) = %d, want 1", got)
	}
}

func TestContrastAdjustments(t *testing.T) {
	path := writeGrayPNG(t, t.TempDir(), "a.png", 100)

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}

	events := 0
	s.On(EventContrastChanged, func(interface{}) { events++ })

	s.SetWindowMin(300)
	if s.Window.Global.Min != 254 {
		t.Errorf("min %d, want capped 254", s.Window.Global.Min)
	}
	s.SetWindowMax(0)
	if s.Window.Global.Max != 1 || s.Window.Global.Min != 0 {
		t.Errorf("window %+v, want {0 1}", s.Window.Global)
	}

	s.ResetContrast()
	if s.Window.Global != (levels.Pair{Min: 0, Max: 255}) {
		t.Errorf("window after reset %+v", s.Window.Global)
	}
	if events != 3 {
		t.Errorf("contrast events %d, want 3", events)
	}
}

func TestAutoContrast(t *testing.T) {
	path := writeGrayPNG(t, t.TempDir(), "a.png", 100)

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}

	s.AutoContrast()
	// A uniform image normalizes to a single value; the nudge keeps the
	// window one step wide.
	if s.Window.Global.Max != s.Window.Global.Min+1 {
		t.Errorf("auto window %+v, want a one-step span", s.Window.Global)
	}
	if s.Window.Global.Min != 100 {
		t.Errorf("auto min %d, want 100", s.Window.Global.Min)
	}
}

func TestWindowResetsOnLoad(t *testing.T) {
	dir := t.TempDir()
	a := writeGrayPNG(t, dir, "a.png", 10)
	b := writeGrayPNG(t, dir, "b.png", 20)

	s := NewState()
	if err := s.Load(a); err != nil {
		t.Fatal(err)
	}
	s.SetWindowMin(120)

	if err := s.Load(b); err != nil {
		t.Fatal(err)
	}
	if s.Window.Global != (levels.Pair{Min: 0, Max: 255}) {
		t.Errorf("window should reset on load, got %+v", s.Window.Global)
	}
}

func TestNextPreviousFileWraps(t *testing.T) {
	dir := t.TempDir()
	a := writeGrayPNG(t, dir, "a.png", 10)
	b := writeGrayPNG(t, dir, "b.png", 20)

	s := NewState()
	if err := s.Load(a); err != nil {
		t.Fatal(err)
	}

	if err := s.NextFile(); err != nil {
		t.Fatal(err)
	}
	if s.Path != b {
		t.Errorf("path %q, want %q", s.Path, b)
	}

	if err := s.NextFile(); err != nil {
		t.Fatal(err)
	}
	if s.Path != a {
		t.Errorf("next should wrap, path %q, want %q", s.Path, a)
	}

	if err := s.PreviousFile(); err != nil {
		t.Fatal(err)
	}
	if s.Path != b {
		t.Errorf("previous should wrap, path %q, want %q", s.Path, b)
	}
}

func TestNextFileAloneIsNoOp(t *testing.T) {
	path := writeGrayPNG(t, t.TempDir(), "only.png", 10)

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if err := s.NextFile(); err != nil {
		t.Fatal(err)
	}
	if s.Path != path {
		t.Errorf("single file navigation moved to %q", s.Path)
	}
}

func TestOpenFileDiscardsSeries(t *testing.T) {
	dir := t.TempDir()
	a := writeGrayPNG(t, dir, "a.png", 10)
	writeGrayPNG(t, dir, "b.png", 20)

	s := NewState()
	if err := s.Load(a); err != nil {
		t.Fatal(err)
	}
	if err := s.NextFile(); err != nil {
		t.Fatal(err)
	}
	if s.Series.Len() != 2 {
		t.Fatalf("series length %d, want 2", s.Series.Len())
	}

	if err := s.OpenFile(a); err != nil {
		t.Fatal(err)
	}
	if s.Series.Len() != 0 {
		t.Errorf("picker open should discard the series, length %d", s.Series.Len())
	}
}

func TestPixelText(t *testing.T) {
	dir := t.TempDir()
	gray := writeGrayPNG(t, dir, "gray.png", 7)

	s := NewState()
	if s.PixelText(0, 0) != "" {
		t.Error("no image should give empty text")
	}

	if err := s.Load(gray); err != nil {
		t.Fatal(err)
	}
	if got := s.PixelText(1, 1); got != "7" {
		t.Errorf("gray pixel text %q, want \"7\"", got)
	}
	if got := s.PixelText(10, 10); got != "" {
		t.Errorf("out-of-range pixel text %q, want empty", got)
	}

	// Color images format all samples.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	cpath := filepath.Join(dir, "color.png")
	f, err := os.Create(cpath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := s.Load(cpath); err != nil {
		t.Fatal(err)
	}
	if got := s.PixelText(0, 0); got != "[1, 2, 3]" {
		t.Errorf("color pixel text %q, want \"[1, 2, 3]\"", got)
	}
}

func TestSetInterp(t *testing.T) {
	s := NewState()

	var got viewport.Interp = -1
	s.On(EventInterpChanged, func(data interface{}) {
		got, _ = data.(viewport.Interp)
	})

	s.SetInterp(viewport.Lanczos)
	if s.Interp != viewport.Lanczos {
		t.Errorf("interp %v, want Lanczos", s.Interp)
	}
	if got != viewport.Lanczos {
		t.Errorf("event payload %v, want Lanczos", got)
	}
}

func TestSelectChannel(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	path := filepath.Join(dir, "color.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s := NewState()
	if err := s.Load(path); err != nil {
		t.Fatal(err)
	}
	if s.SelectedChannel() != -1 {
		t.Errorf("initial channel %d, want -1", s.SelectedChannel())
	}

	s.SelectChannel(1)
	if s.SelectedChannel() != 1 {
		t.Errorf("channel %d, want 1", s.SelectedChannel())
	}
	if !s.Window.PerChannel {
		t.Error("selecting a channel should enable per-channel windowing")
	}

	// Out-of-range channels fall back to the global pair.
	s.SelectChannel(7)
	if s.SelectedChannel() != -1 {
		t.Errorf("channel %d, want -1", s.SelectedChannel())
	}
	if s.Window.PerChannel {
		t.Error("global selection should disable per-channel windowing")
	}
}
