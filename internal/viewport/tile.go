package viewport

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"imquick/pkg/geometry"
)

// Tile is the bitmap covering the visible part of the image, anchored at
// Origin in canvas coordinates.
type Tile struct {
	Image  *image.NRGBA
	Origin geometry.Point2D
}

// tileGeometry holds the intermediate crop/resize bounds for one render.
type tileGeometry struct {
	// Fractional image-space bounds of the visible region.
	desX1, desY1, desX2, desY2 float64

	// Whole-pixel crop superset of the fractional bounds.
	cropX1, cropY1, cropX2, cropY2 int

	// Resize target for the whole-pixel crop.
	tgtW, tgtH int

	// Sub-pixel offset into the resized result.
	subX, subY int

	// Final tile size in screen pixels.
	outW, outH int

	// Canvas position of the tile's top-left corner.
	anchorX, anchorY float64
}

// computeTileGeometry derives the crop and resize bounds for the visible
// intersection of the image bounding box and the viewport rectangle.
func computeTileGeometry(t *Transform, visible geometry.Rect) (tileGeometry, bool) {
	var g tileGeometry

	inter := t.BBox.Intersection(visible)
	if inter.Empty() || t.Zoom <= 0 {
		return g, false
	}

	// Screen extents relative to the image bounding box origin.
	x1 := inter.X - t.BBox.X
	y1 := inter.Y - t.BBox.Y
	x2 := inter.MaxX() - t.BBox.X
	y2 := inter.MaxY() - t.BBox.Y

	g.outW = int(x2 - x1)
	g.outH = int(y2 - y1)
	if g.outW <= 0 || g.outH <= 0 {
		return g, false
	}

	// Back to image space, fractional.
	g.desX1 = x1 / t.Zoom
	g.desY1 = y1 / t.Zoom
	g.desX2 = x2 / t.Zoom
	g.desY2 = y2 / t.Zoom

	// Whole-pixel superset, clamped to the pixel data.
	g.cropX1 = clampInt(int(math.Floor(g.desX1)), 0, t.ImageWidth)
	g.cropY1 = clampInt(int(math.Floor(g.desY1)), 0, t.ImageHeight)
	g.cropX2 = clampInt(int(math.Ceil(g.desX2)), 0, t.ImageWidth)
	g.cropY2 = clampInt(int(math.Ceil(g.desY2)), 0, t.ImageHeight)

	rndW := g.cropX2 - g.cropX1
	rndH := g.cropY2 - g.cropY1
	if rndW <= 0 || rndH <= 0 {
		return g, false
	}

	// Resize by the ratio of screen extent to fractional image extent,
	// applied to the whole-pixel crop. Using the raw zoom factor here
	// would misplace the fractional edges.
	g.tgtW = int(float64(g.outW) / (g.desX2 - g.desX1) * float64(rndW))
	g.tgtH = int(float64(g.outH) / (g.desY2 - g.desY1) * float64(rndH))
	if g.tgtW < 1 {
		g.tgtW = 1
	}
	if g.tgtH < 1 {
		g.tgtH = 1
	}

	// Offset of the fractional low edge within the resized crop.
	g.subX = int(float64(g.outW) / float64(rndW) * (g.desX1 - math.Floor(g.desX1)))
	g.subY = int(float64(g.outH) / float64(rndH) * (g.desY1 - math.Floor(g.desY1)))
	if g.subX+g.outW > g.tgtW {
		g.subX = g.tgtW - g.outW
	}
	if g.subY+g.outH > g.tgtH {
		g.subY = g.tgtH - g.outH
	}
	if g.subX < 0 {
		g.subX = 0
	}
	if g.subY < 0 {
		g.subY = 0
	}

	g.anchorX = inter.X
	g.anchorY = inter.Y
	return g, true
}

// RenderTile crops the displayable image to the visible region, resamples
// it at the active interpolation mode, and returns the screen-aligned tile.
// ok is false when nothing is visible.
func RenderTile(src image.Image, t *Transform, visible geometry.Rect, mode Interp) (Tile, bool) {
	g, ok := computeTileGeometry(t, visible)
	if !ok {
		return Tile{}, false
	}

	srcRect := image.Rect(g.cropX1, g.cropY1, g.cropX2, g.cropY2).
		Add(src.Bounds().Min)

	scaled := image.NewNRGBA(image.Rect(0, 0, g.tgtW, g.tgtH))
	mode.Scaler().Scale(scaled, scaled.Bounds(), src, srcRect, draw.Src, nil)

	out := image.NewNRGBA(image.Rect(0, 0, g.outW, g.outH))
	draw.Copy(out, image.Point{}, scaled,
		image.Rect(g.subX, g.subY, g.subX+g.outW, g.subY+g.outH), draw.Src, nil)

	return Tile{
		Image:  out,
		Origin: geometry.Point2D{X: g.anchorX, Y: g.anchorY},
	}, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
