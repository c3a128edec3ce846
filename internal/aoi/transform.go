package aoi

import (
	"math"

	"adiat-aoi/pkg/geometry"
)

// Transformer maps coordinates from processing resolution back to original
// resolution. ScaleFactor is processing/original, so 0.5 means the image was
// halved before detection. All conversions truncate toward zero.
type Transformer struct {
	ScaleFactor float64
}

// NewTransformer returns a transformer for the given scale factor.
func NewTransformer(scale float64) Transformer {
	return Transformer{ScaleFactor: scale}
}

func (t Transformer) identity() bool {
	return t.ScaleFactor == 1.0 || t.ScaleFactor == 0
}

// TransformPoint maps a processing-resolution point to original resolution.
func (t Transformer) TransformPoint(x, y float64) geometry.PointInt {
	if t.identity() {
		return geometry.PointInt{X: int(x), Y: int(y)}
	}
	return geometry.PointInt{X: int(x / t.ScaleFactor), Y: int(y / t.ScaleFactor)}
}

// TransformContour maps every contour point to original resolution. The
// input is never modified.
func (t Transformer) TransformContour(c geometry.Contour) geometry.Contour {
	out := make(geometry.Contour, len(c))
	if t.identity() {
		copy(out, c)
		return out
	}
	for i, p := range c {
		out[i] = t.TransformPoint(float64(p.X), float64(p.Y))
	}
	return out
}

// TransformPixels maps a pixel list to original resolution.
func (t Transformer) TransformPixels(pixels []geometry.PointInt) []geometry.PointInt {
	return t.TransformContour(pixels)
}

// TransformRadius scales a radius to original resolution.
func (t Transformer) TransformRadius(r int) int {
	if t.identity() {
		return r
	}
	return int(float64(r) / t.ScaleFactor)
}

// TransformArea scales a pixel area to original resolution.
func (t Transformer) TransformArea(area int) int {
	if t.identity() {
		return area
	}
	return int(float64(area) / (t.ScaleFactor * t.ScaleFactor))
}

// ToProcessing maps an original-resolution point back to processing resolution.
func (t Transformer) ToProcessing(p geometry.PointInt) geometry.PointInt {
	if t.identity() {
		return p
	}
	return geometry.PointInt{
		X: int(float64(p.X) * t.ScaleFactor),
		Y: int(float64(p.Y) * t.ScaleFactor),
	}
}

func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}
