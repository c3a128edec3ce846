package aoi

import (
	"image"
	"image/color"

	"adiat-aoi/pkg/geometry"

	"gocv.io/x/gocv"
)

var maskFill = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// newMask allocates a zeroed single-channel mask. gocv.NewMatWithSize leaves
// the buffer uninitialised, so the scalar constructor is used instead.
func newMask(height, width int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC1)
}

// fillContour rasterizes the contour, boundary included, onto mask.
func fillContour(mask *gocv.Mat, c geometry.Contour) {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{c.ImagePoints()})
	defer pv.Close()
	gocv.DrawContours(mask, pv, -1, maskFill, -1)
}

// fillCircle draws a filled circle onto mask.
func fillCircle(mask *gocv.Mat, center geometry.PointInt, radius int) {
	gocv.Circle(mask, center.ToImage(), radius, maskFill, -1)
}

// enclosingCircle returns the minimum enclosing circle of the contour.
func enclosingCircle(c geometry.Contour) geometry.Circle {
	pv := gocv.NewPointVectorFromPoints(c.ImagePoints())
	defer pv.Close()
	x, y, r := gocv.MinEnclosingCircle(pv)
	return geometry.Circle{
		Center: geometry.Point2D{X: float64(x), Y: float64(y)},
		Radius: float64(r),
	}
}

// TraceExternal returns the outer contours of mask with every boundary point kept.
func TraceExternal(mask gocv.Mat) []geometry.Contour {
	if mask.Empty() {
		return nil
	}
	pv := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer pv.Close()

	contours := make([]geometry.Contour, 0, pv.Size())
	for i := 0; i < pv.Size(); i++ {
		contours = append(contours, geometry.NewContour(pv.At(i).ToPoints()))
	}
	return contours
}

// CollectPixelsOfInterest returns the (x, y) coordinates of every non-zero
// pixel of a single-channel mask in row-major order.
func CollectPixelsOfInterest(mask gocv.Mat) []geometry.PointInt {
	if mask.Empty() {
		return nil
	}
	rows, cols := mask.Rows(), mask.Cols()
	pixels := make([]geometry.PointInt, 0, gocv.CountNonZero(mask))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.GetUCharAt(y, x) != 0 {
				pixels = append(pixels, geometry.PointInt{X: x, Y: y})
			}
		}
	}
	return pixels
}
