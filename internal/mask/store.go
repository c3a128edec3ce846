package mask

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

const kelvinOffset = 273.15

// MaskPath returns the mask file path that belongs to an output image path.
func MaskPath(outputFile string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".tif"
}

// TemperaturePath returns the temperature file path that belongs to an output image path.
func TemperaturePath(outputFile string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temperature.tif"
}

// StoreMask writes the detection mask as an 8-bit grayscale TIFF next to
// outputFile. When temperature is non-nil it is written alongside as a 16-bit
// TIFF in centi-Kelvin (0.01 K steps). It returns the mask path.
func StoreMask(outputFile string, m gocv.Mat, temperature *mat.Dense) (string, error) {
	if m.Empty() {
		return "", fmt.Errorf("empty mask")
	}
	if m.Channels() != 1 {
		return "", fmt.Errorf("mask must be single-channel, got %d", m.Channels())
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	maskPath := MaskPath(outputFile)
	if err := writeTIFF(maskPath, matToGray(m)); err != nil {
		return "", err
	}

	if temperature != nil {
		r, c := temperature.Dims()
		if r != m.Rows() || c != m.Cols() {
			return "", fmt.Errorf("temperature data %dx%d does not match mask %dx%d", c, r, m.Cols(), m.Rows())
		}
		if err := writeTIFF(TemperaturePath(outputFile), temperatureToGray16(temperature)); err != nil {
			return "", err
		}
	}
	return maskPath, nil
}

// LoadTemperature reads a temperature TIFF written by StoreMask, in degrees Celsius.
func LoadTemperature(path string) (*mat.Dense, error) {
	img, err := readTIFF(path)
	if err != nil {
		return nil, err
	}
	g16, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("temperature %s is %T, want 16-bit grayscale", path, img)
	}
	b := g16.Bounds()
	out := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := g16.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			out.Set(y, x, float64(v)/100-kelvinOffset)
		}
	}
	return out, nil
}

func matToGray(m gocv.Mat) *image.Gray {
	rows, cols := m.Rows(), m.Cols()
	g := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.Pix[y*g.Stride+x] = m.GetUCharAt(y, x)
		}
	}
	return g
}

func temperatureToGray16(t *mat.Dense) *image.Gray16 {
	rows, cols := t.Dims()
	g := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			ck := math.Round((t.At(y, x) + kelvinOffset) * 100)
			ck = math.Max(0, math.Min(math.MaxUint16, ck))
			v := uint16(ck)
			i := y*g.Stride + x*2
			g.Pix[i] = uint8(v >> 8)
			g.Pix[i+1] = uint8(v)
		}
	}
	return g
}

func writeTIFF(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func readTIFF(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
