package aoi

import (
	"adiat-aoi/pkg/geometry"

	"gocv.io/x/gocv"
)

// Candidate is a contour that passed the area gate, in processing resolution.
type Candidate struct {
	Contour geometry.Contour
	Area    int
	Circle  geometry.Circle // Minimum enclosing circle, no margin
	Pixels  []geometry.PointInt
}

// ContourFilter applies the area gate to contours and accumulates the masks
// needed for combining. It owns two call-scoped masks and must be closed.
type ContourFilter struct {
	params        Params
	height, width int
	collectPixels bool

	// original is the union of every eligible contour's filled mask.
	original gocv.Mat
	// candidate holds one margin-inflated enclosing circle per eligible contour.
	candidate gocv.Mat
	passed    int
}

// NewContourFilter allocates fresh accumulation masks for one image.
func NewContourFilter(params Params, height, width int) *ContourFilter {
	return &ContourFilter{
		params:        params,
		height:        height,
		width:         width,
		collectPixels: !params.CombineAOIs,
		original:      newMask(height, width),
		candidate:     newMask(height, width),
	}
}

// Apply measures the contour and reports whether it qualifies. Qualifying
// contours are merged into the accumulation masks.
func (f *ContourFilter) Apply(c geometry.Contour) (Candidate, bool) {
	if len(c) == 0 {
		return Candidate{}, false
	}

	mask := newMask(f.height, f.width)
	defer mask.Close()
	fillContour(&mask, c)
	area := gocv.CountNonZero(mask)

	if !f.params.accepts(area) {
		return Candidate{}, false
	}

	circle := enclosingCircle(c)
	fillCircle(&f.candidate, circle.Center.Truncate(), int(circle.Radius)+f.params.AOIRadius)
	gocv.BitwiseOr(f.original, mask, &f.original)
	f.passed++

	cand := Candidate{Contour: c, Area: area, Circle: circle}
	if f.collectPixels {
		cand.Pixels = CollectPixelsOfInterest(mask)
	}
	return cand, true
}

// Passed returns how many contours have qualified so far.
func (f *ContourFilter) Passed() int {
	return f.passed
}

// CandidateMask returns the inflated-circle mask. It stays owned by the filter.
func (f *ContourFilter) CandidateMask() *gocv.Mat {
	return &f.candidate
}

// OriginalPixels returns the union of qualifying contour masks. It stays owned by the filter.
func (f *ContourFilter) OriginalPixels() gocv.Mat {
	return f.original
}

// Close releases the accumulation masks.
func (f *ContourFilter) Close() {
	f.original.Close()
	f.candidate.Close()
}
