// Package image provides source image and mask loading and conversion to gocv Mats.
package image

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"
)

// Source is a decoded image together with the path it came from.
type Source struct {
	Path  string
	Image image.Image
}

// Load decodes the image at path, applying any EXIF orientation.
func Load(path string) (*Source, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return &Source{Path: path, Image: img}, nil
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// ToMat converts an image to a BGR gocv Mat.
func ToMat(src image.Image) gocv.Mat {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit to 8-bit, BGR order for OpenCV
			m.SetUCharAt(y, x*3+0, uint8(b>>8))
			m.SetUCharAt(y, x*3+1, uint8(g>>8))
			m.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return m
}

// ToGrayMat converts an image to a single-channel gocv Mat.
func ToGrayMat(src image.Image) gocv.Mat {
	gray := imaging.Grayscale(src)
	b := gray.Bounds()

	m := gocv.NewMatWithSize(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			m.SetUCharAt(y, x, gray.Pix[y*gray.Stride+x*4])
		}
	}
	return m
}

// Resize scales m by factor. Nearest-neighbour keeps binary masks binary.
func Resize(m gocv.Mat, factor float64) (gocv.Mat, error) {
	if factor <= 0 {
		return gocv.NewMat(), fmt.Errorf("invalid resize factor: %v", factor)
	}
	w := max(int(float64(m.Cols())*factor), 1)
	h := max(int(float64(m.Rows())*factor), 1)

	dst := gocv.NewMat()
	gocv.Resize(m, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationNearestNeighbor)
	return dst, nil
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
