package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContourBounds(t *testing.T) {
	c := RectContour(10, 20, 5, 3)
	assert.Equal(t, RectInt{X: 10, Y: 20, Width: 5, Height: 3}, c.Bounds())
	assert.Equal(t, RectInt{}, Contour{}.Bounds())
}

func TestContourImagePointsRoundTrip(t *testing.T) {
	pts := []image.Point{{1, 2}, {3, 4}, {5, 6}}
	c := NewContour(pts)
	assert.Equal(t, pts, c.ImagePoints())
	assert.Equal(t, PointInt{X: 3, Y: 4}, c[1])
}

func TestRectClip(t *testing.T) {
	tests := []struct {
		name string
		rect RectInt
		want RectInt
	}{
		{"inside", RectInt{X: 2, Y: 2, Width: 4, Height: 4}, RectInt{X: 2, Y: 2, Width: 4, Height: 4}},
		{"top-left overhang", RectInt{X: -5, Y: -5, Width: 10, Height: 10}, RectInt{X: 0, Y: 0, Width: 5, Height: 5}},
		{"bottom-right overhang", RectInt{X: 8, Y: 8, Width: 10, Height: 10}, RectInt{X: 8, Y: 8, Width: 2, Height: 2}},
		{"outside", RectInt{X: 20, Y: 20, Width: 3, Height: 3}, RectInt{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rect.Clip(10, 10)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, PointInt{X: 14, Y: 3}, Point2D{X: 14.9, Y: 3.1}.Truncate())
}

func TestCircleContains(t *testing.T) {
	c := Circle{Center: Point2D{X: 5, Y: 5}, Radius: 2}
	assert.True(t, c.Contains(Point2D{X: 7, Y: 5}))
	assert.False(t, c.Contains(Point2D{X: 8, Y: 5}))
}
