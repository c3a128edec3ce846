package aoi

import (
	"bytes"
	"testing"

	"adiat-aoi/pkg/geometry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestContourFilterAccumulates(t *testing.T) {
	f := NewContourFilter(Params{MinArea: 50, AOIRadius: 4}, 100, 100)
	defer f.Close()

	_, ok := f.Apply(geometry.RectContour(5, 5, 3, 3))
	assert.False(t, ok)

	cand, ok := f.Apply(geometry.RectContour(40, 40, 10, 10))
	require.True(t, ok)
	assert.Equal(t, 100, cand.Area)
	assert.Len(t, cand.Pixels, 100)
	assert.InDelta(t, 44.5, cand.Circle.Center.X, 0.01)
	assert.InDelta(t, 6.36, cand.Circle.Radius, 0.05)

	assert.Equal(t, 1, f.Passed())
	assert.Equal(t, 100, gocv.CountNonZero(f.OriginalPixels()))
	// Inflated circle is larger than the square itself.
	assert.Greater(t, gocv.CountNonZero(*f.CandidateMask()), 100)
}

func TestContourFilterOrderIndependent(t *testing.T) {
	contours := []geometry.Contour{
		geometry.RectContour(10, 10, 8, 8),
		geometry.RectContour(12, 12, 8, 8),
		geometry.RectContour(60, 60, 2, 2),
	}
	count := func(order []int) (int, int) {
		f := NewContourFilter(Params{MinArea: 10, CombineAOIs: true}, 100, 100)
		defer f.Close()
		for _, i := range order {
			f.Apply(contours[i])
		}
		return f.Passed(), gocv.CountNonZero(f.OriginalPixels())
	}
	p1, n1 := count([]int{0, 1, 2})
	p2, n2 := count([]int{2, 1, 0})
	assert.Equal(t, p1, p2)
	assert.Equal(t, n1, n2)
	assert.Equal(t, 2, p1)
}

func TestCombinerStabilizeIsFixedPoint(t *testing.T) {
	mask := newMask(120, 120)
	defer mask.Close()
	fillCircle(&mask, geometry.PointInt{X: 25, Y: 25}, 10)
	fillCircle(&mask, geometry.PointInt{X: 38, Y: 25}, 10)
	fillCircle(&mask, geometry.PointInt{X: 90, Y: 90}, 12)

	c := NewCombiner(zerolog.Nop())
	first := c.Stabilize(&mask, 3)
	require.Len(t, first, 2)

	second := c.Stabilize(&mask, len(first))
	assert.Len(t, second, len(first))
}

func TestCombinerLogsWhenCapped(t *testing.T) {
	mask := newMask(60, 60)
	defer mask.Close()
	fillCircle(&mask, geometry.PointInt{X: 20, Y: 20}, 5)

	var buf bytes.Buffer
	c := NewCombiner(zerolog.New(&buf))
	// initial=-1 leaves room for a single pass, so convergence is never confirmed.
	contours := c.Stabilize(&mask, -1)
	assert.Len(t, contours, 1)
	assert.Contains(t, buf.String(), "did not converge")
}

func TestCombineRecoversDetectedPixels(t *testing.T) {
	f := NewContourFilter(Params{MinArea: 1, AOIRadius: 6, CombineAOIs: true}, 80, 80)
	defer f.Close()
	_, ok := f.Apply(geometry.RectContour(10, 10, 4, 4))
	require.True(t, ok)
	_, ok = f.Apply(geometry.RectContour(18, 10, 4, 4))
	require.True(t, ok)

	merged := NewCombiner(zerolog.Nop()).Combine(f.CandidateMask(), f.OriginalPixels(), f.Passed())
	require.Len(t, merged, 1)
	assert.Len(t, merged[0].Pixels, 32)
	assert.Greater(t, merged[0].Area, 32)
}

func TestCollectPixelsOfInterest(t *testing.T) {
	mask := newMask(100, 100)
	defer mask.Close()
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			mask.SetUCharAt(y, x, 255)
		}
	}

	pixels := CollectPixelsOfInterest(mask)
	require.Len(t, pixels, 100)
	assert.Equal(t, geometry.PointInt{X: 10, Y: 10}, pixels[0])
	assert.Equal(t, geometry.PointInt{X: 11, Y: 10}, pixels[1])
	assert.Equal(t, geometry.PointInt{X: 19, Y: 19}, pixels[99])

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Nil(t, CollectPixelsOfInterest(empty))
}
