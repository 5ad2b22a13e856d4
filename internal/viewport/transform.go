// Package viewport maintains the pan/zoom state of an image within its
// display container and renders the visible tile on each redraw.
package viewport

import (
	"imquick/pkg/geometry"
)

const (
	// ZoomStep is the multiplier applied per zoom gesture.
	ZoomStep = 1.3

	// minScreenDim is the smallest on-screen minor dimension the image may
	// be zoomed out to, in screen pixels.
	minScreenDim = 30

	// fitMargin keeps a small border around the image when fitting.
	fitMargin = 4
)

// Transform tracks the zoom factor and the image's bounding box in canvas
// coordinates. A zoom of 1.0 maps one image pixel to one screen pixel.
type Transform struct {
	Zoom        float64
	BBox        geometry.Rect
	ImageWidth  int
	ImageHeight int
}

// NewTransform creates a transform at actual size with no image.
func NewTransform() *Transform {
	return &Transform{Zoom: 1.0}
}

// SetImage sets the native image dimensions without touching zoom or pan.
func (t *Transform) SetImage(width, height int) {
	t.ImageWidth = width
	t.ImageHeight = height
}

// ResetActualSize restores 1:1 zoom and centers the image in the container.
func (t *Transform) ResetActualSize(containerW, containerH float64) {
	t.Zoom = 1.0
	t.center(containerW, containerH)
}

// FitToWindow scales the image to fill the container, less a small margin,
// and centers it. A container that has not been laid out yet leaves the
// transform untouched.
func (t *Transform) FitToWindow(containerW, containerH float64) {
	if t.ImageWidth == 0 || t.ImageHeight == 0 {
		return
	}
	if containerW <= fitMargin || containerH <= fitMargin {
		return
	}
	sx := (containerW - fitMargin) / float64(t.ImageWidth)
	sy := (containerH - fitMargin) / float64(t.ImageHeight)
	if sy < sx {
		sx = sy
	}
	t.Zoom = sx
	t.center(containerW, containerH)
}

// FirstShow applies the initial display policy for a newly loaded image:
// fit when the image overflows the container, otherwise show at 1:1.
func (t *Transform) FirstShow(containerW, containerH float64) {
	if float64(t.ImageWidth) > containerW || float64(t.ImageHeight) > containerH {
		t.FitToWindow(containerW, containerH)
		return
	}
	t.ResetActualSize(containerW, containerH)
}

func (t *Transform) center(containerW, containerH float64) {
	w := float64(t.ImageWidth) * t.Zoom
	h := float64(t.ImageHeight) * t.Zoom
	t.BBox = geometry.Rect{
		X:      (containerW - w) / 2,
		Y:      (containerH - h) / 2,
		Width:  w,
		Height: h,
	}
}

// CanZoomOut reports whether one more zoom-out step keeps the image's
// smaller on-screen dimension at or above the minimum.
func (t *Transform) CanZoomOut() bool {
	minDim := t.ImageWidth
	if t.ImageHeight < minDim {
		minDim = t.ImageHeight
	}
	return int(float64(minDim)*t.Zoom/ZoomStep) >= minScreenDim
}

// CanZoomIn reports whether another zoom-in step is allowed. The guard
// compares the current (pre-zoom) factor against one fifth of the
// container's smaller dimension.
func (t *Transform) CanZoomIn(containerW, containerH float64) bool {
	minDim := containerW
	if containerH < minDim {
		minDim = containerH
	}
	return t.Zoom <= minDim/5
}

// ZoomAt rescales the bounding box about the given anchor point in canvas
// coordinates and multiplies the zoom factor. Guards are the caller's
// responsibility via CanZoomIn/CanZoomOut.
func (t *Transform) ZoomAt(anchorX, anchorY, scale float64) {
	t.BBox.X = anchorX - (anchorX-t.BBox.X)*scale
	t.BBox.Y = anchorY - (anchorY-t.BBox.Y)*scale
	t.BBox.Width *= scale
	t.BBox.Height *= scale
	t.Zoom *= scale
}

// ZoomIn applies one zoom-in step about the anchor, if allowed.
func (t *Transform) ZoomIn(anchorX, anchorY, containerW, containerH float64) bool {
	if !t.CanZoomIn(containerW, containerH) {
		return false
	}
	t.ZoomAt(anchorX, anchorY, ZoomStep)
	return true
}

// ZoomOut applies one zoom-out step about the anchor, if allowed.
func (t *Transform) ZoomOut(anchorX, anchorY float64) bool {
	if !t.CanZoomOut() {
		return false
	}
	t.ZoomAt(anchorX, anchorY, 1/ZoomStep)
	return true
}

// PanBy shifts the image bounding box. Panning away from the image is
// allowed; the scroll region reported by ScrollRegion grows to match.
func (t *Transform) PanBy(dx, dy float64) {
	t.BBox.X += dx
	t.BBox.Y += dy
}

// ScrollRegion returns the outer region containing both the image bounding
// box and the visible viewport, used by hosts that show scrollbars.
func (t *Transform) ScrollRegion(visible geometry.Rect) geometry.Rect {
	return t.BBox.Union(visible)
}

// ScreenToImage converts canvas coordinates to whole image-pixel
// coordinates. ok is false when the point falls outside the pixel data.
func (t *Transform) ScreenToImage(cx, cy float64) (ix, iy int, ok bool) {
	if t.Zoom <= 0 {
		return 0, 0, false
	}
	fx := (cx - t.BBox.X) / t.Zoom
	fy := (cy - t.BBox.Y) / t.Zoom
	if fx < 0 || fy < 0 {
		return 0, 0, false
	}
	ix, iy = int(fx), int(fy)
	if ix >= t.ImageWidth || iy >= t.ImageHeight {
		return 0, 0, false
	}
	return ix, iy, true
}

// ImageToScreen converts image-pixel coordinates to canvas coordinates.
func (t *Transform) ImageToScreen(ix, iy float64) (cx, cy float64) {
	return t.BBox.X + ix*t.Zoom, t.BBox.Y + iy*t.Zoom
}
