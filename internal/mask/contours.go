// Package mask holds the binary-mask plumbing around AOI extraction.
package mask

import (
	"fmt"
	"image"
	"image/color"

	"adiat-aoi/internal/aoi"
	"adiat-aoi/pkg/geometry"

	"gocv.io/x/gocv"
)

// Binarize returns a single-channel 0/255 copy of src. Color inputs are
// converted to grayscale first; any non-zero pixel counts as detected.
func Binarize(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty mask")
	}

	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported mask channel count: %d", src.Channels())
	}
	defer gray.Close()

	bin := gocv.NewMat()
	gocv.Threshold(gray, &bin, 0, 255, gocv.ThresholdBinary)
	return bin, nil
}

// FindContours traces the outer boundary of every connected region of a
// binary mask, keeping every boundary point.
func FindContours(mask gocv.Mat) []geometry.Contour {
	return aoi.TraceExternal(mask)
}

// FillContours rasterizes contours, interiors included, onto a new
// height x width mask.
func FillContours(height, width int, contours []geometry.Contour) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC1)
	if len(contours) == 0 {
		return m
	}
	pts := make([][]image.Point, 0, len(contours))
	for _, c := range contours {
		if len(c) > 0 {
			pts = append(pts, c.ImagePoints())
		}
	}
	if len(pts) == 0 {
		return m
	}
	pv := gocv.NewPointsVectorFromPoints(pts)
	defer pv.Close()
	gocv.DrawContours(&m, pv, -1, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	return m
}
