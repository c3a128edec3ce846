package image

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestLoadAndConvert(t *testing.T) {
	src := imaging.New(8, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(3, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, imaging.Save(src, path))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Width())
	assert.Equal(t, 6, s.Height())

	m := ToMat(s.Image)
	defer m.Close()
	assert.Equal(t, 3, m.Channels())
	assert.Equal(t, uint8(30), m.GetUCharAt(0, 0))
	assert.Equal(t, uint8(10), m.GetUCharAt(0, 2))

	g := ToGrayMat(s.Image)
	defer g.Close()
	assert.Equal(t, 1, g.Channels())
	assert.Equal(t, uint8(255), g.GetUCharAt(2, 3))
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := Load("notes.txt")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestResizeKeepsMaskBinary(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 40, 20))
	for y := 4; y < 12; y++ {
		for x := 4; x < 12; x++ {
			src.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	m := ToGrayMat(src)
	defer m.Close()

	half, err := Resize(m, 0.5)
	require.NoError(t, err)
	defer half.Close()
	assert.Equal(t, 20, half.Cols())
	assert.Equal(t, 10, half.Rows())
	assert.Equal(t, 16, gocv.CountNonZero(half))
	for y := 0; y < half.Rows(); y++ {
		for x := 0; x < half.Cols(); x++ {
			v := half.GetUCharAt(y, x)
			assert.True(t, v == 0 || v == 255)
		}
	}

	_, err = Resize(m, 0)
	assert.Error(t, err)
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("a/b/IMG_01.JPG"))
	assert.True(t, IsSupportedFormat("mask.tif"))
	assert.False(t, IsSupportedFormat("run.aoirun"))
}
