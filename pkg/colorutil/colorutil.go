// Package colorutil provides shared color utilities for AOI enrichment and mask work.
package colorutil

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	c := colorful.Color{R: r / 255.0, G: g / 255.0, B: b / 255.0}
	hd, sf, vf := c.Hsv()
	return hd / 2, sf * 255.0, vf * 255.0
}

// HueDistance returns the circular distance between two OpenCV hues (0-179).
func HueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 90 {
		d = 180 - d
	}
	return d
}

// MeanHue returns the circular mean of OpenCV hues (0-179). Plain averaging
// would put the mean of 2 and 178 at 90 instead of 0.
func MeanHue(hues []float64) float64 {
	if len(hues) == 0 {
		return 0
	}
	var sx, sy float64
	for _, h := range hues {
		a := h * 2 * math.Pi / 180
		sx += math.Cos(a)
		sy += math.Sin(a)
	}
	mean := math.Atan2(sy, sx) * 180 / (2 * math.Pi)
	if mean < 0 {
		mean += 180
	}
	return mean
}

// Marker is the vivid marker color derived from the hue of an average color.
type Marker struct {
	RGB        [3]uint8
	Hex        string
	HueDegrees int
}

// MarkerFromRGB returns a full-saturation, full-value color sharing the hue of
// the given 8-bit RGB color.
func MarkerFromRGB(r, g, b uint8) Marker {
	avg := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, _, _ := avg.Hsv()
	vivid := colorful.Hsv(h, 1.0, 1.0)
	rgb := [3]uint8{
		uint8(vivid.R * 255),
		uint8(vivid.G * 255),
		uint8(vivid.B * 255),
	}
	// Hex follows the truncated components; colorful.Hex rounds.
	return Marker{
		RGB:        rgb,
		Hex:        fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]),
		HueDegrees: int(h),
	}
}
