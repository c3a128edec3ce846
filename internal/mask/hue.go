package mask

import (
	"fmt"

	"adiat-aoi/internal/aoi"
	"adiat-aoi/pkg/colorutil"
	"adiat-aoi/pkg/geometry"

	"gocv.io/x/gocv"
)

// ApplyHueExpansion grows mask around each AOI: pixels inside the AOI circle
// whose hue lies within hueRange of the AOI's mean detected hue are marked as
// detected. img is BGR and must share the mask's size and the AOIs'
// coordinate space. The returned mask always contains the input mask.
func ApplyHueExpansion(img, mask gocv.Mat, aois []aoi.AOI, hueRange int) (gocv.Mat, error) {
	if img.Empty() || mask.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty image or mask")
	}
	if img.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("hue expansion requires a 3-channel image, got %d", img.Channels())
	}
	if mask.Channels() != 1 {
		return gocv.NewMat(), fmt.Errorf("hue expansion requires a 1-channel mask, got %d", mask.Channels())
	}
	if img.Rows() != mask.Rows() || img.Cols() != mask.Cols() {
		return gocv.NewMat(), fmt.Errorf("image %dx%d and mask %dx%d differ in size",
			img.Cols(), img.Rows(), mask.Cols(), mask.Rows())
	}

	out := mask.Clone()
	if hueRange <= 0 || len(aois) == 0 {
		return out, nil
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV)

	rows, cols := hsv.Rows(), hsv.Cols()
	hueAt := func(x, y int) float64 {
		return float64(hsv.GetUCharAt(y, x*3))
	}

	for _, a := range aois {
		var hues []float64
		for _, p := range a.DetectedPixels {
			if p.X < 0 || p.X >= cols || p.Y < 0 || p.Y >= rows {
				continue
			}
			hues = append(hues, hueAt(p.X, p.Y))
		}
		if len(hues) == 0 {
			continue
		}
		mean := colorutil.MeanHue(hues)

		circle := a.Circle()
		box := geometry.SquareAround(a.Center, a.Radius+1).Clip(cols, rows)
		for y := box.Y; y < box.Y+box.Height; y++ {
			for x := box.X; x < box.X+box.Width; x++ {
				if !circle.Contains(geometry.Point2D{X: float64(x), Y: float64(y)}) {
					continue
				}
				if colorutil.HueDistance(hueAt(x, y), mean) <= float64(hueRange) {
					out.SetUCharAt(y, x, 255)
				}
			}
		}
	}
	return out, nil
}
