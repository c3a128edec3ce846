// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Truncate converts to PointInt by dropping the fractional part (toward zero).
func (p Point2D) Truncate() PointInt {
	return PointInt{X: int(p.X), Y: int(p.Y)}
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// ToImage converts to an image.Point.
func (p PointInt) ToImage() image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

// Circle is a circle in pixel space.
type Circle struct {
	Center Point2D `json:"center"`
	Radius float64 `json:"radius"`
}

// Contains returns true if the point lies inside or on the circle.
func (c Circle) Contains(p Point2D) bool {
	return c.Center.Distance(p) <= c.Radius
}

// Contour is an ordered sequence of boundary points of a connected region.
type Contour []PointInt

// NewContour builds a contour from image points.
func NewContour(pts []image.Point) Contour {
	c := make(Contour, len(pts))
	for i, p := range pts {
		c[i] = PointInt{X: p.X, Y: p.Y}
	}
	return c
}

// ImagePoints returns the contour as image points, the form gocv expects.
func (c Contour) ImagePoints() []image.Point {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = p.ToImage()
	}
	return pts
}

// Bounds returns the bounding rectangle of the contour.
func (c Contour) Bounds() RectInt {
	if len(c) == 0 {
		return RectInt{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := minX, minY
	for _, p := range c[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Clip returns the intersection of r with the rectangle [0,width)x[0,height).
func (r RectInt) Clip(width, height int) RectInt {
	x1 := max(r.X, 0)
	y1 := max(r.Y, 0)
	x2 := min(r.X+r.Width, width)
	y2 := min(r.Y+r.Height, height)
	if x2 <= x1 || y2 <= y1 {
		return RectInt{}
	}
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// ToImage converts to an image.Rectangle.
func (r RectInt) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// SquareAround returns the square of half-size r centred on c.
func SquareAround(c PointInt, r int) RectInt {
	return RectInt{X: c.X - r, Y: c.Y - r, Width: 2 * r, Height: 2 * r}
}

// RectContour returns the four-corner contour of the w x h block whose top-left pixel is (x, y).
func RectContour(x, y, w, h int) Contour {
	return Contour{
		{X: x, Y: y},
		{X: x + w - 1, Y: y},
		{X: x + w - 1, Y: y + h - 1},
		{X: x, Y: y + h - 1},
	}
}
