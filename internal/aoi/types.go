// Package aoi turns contours traced from a binary detection mask into
// scale-corrected, optionally combined areas of interest.
package aoi

import (
	"errors"
	"fmt"

	"adiat-aoi/pkg/geometry"

	"gocv.io/x/gocv"
)

var (
	// ErrShape is returned when no height/width pair can be derived from the input.
	ErrShape = errors.New("invalid image shape")
	// ErrInvalidScaleFactor is returned for non-positive or non-finite scale factors.
	ErrInvalidScaleFactor = errors.New("scale factor must be a positive finite number")
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid detection parameters")
)

// AOI is a single area of interest. All coordinates are in original image resolution.
type AOI struct {
	Center         geometry.PointInt   `json:"center"`
	Radius         int                 `json:"radius"`
	Area           int                 `json:"area"`
	Contour        geometry.Contour    `json:"contour"`
	DetectedPixels []geometry.PointInt `json:"detected_pixels"`

	// Filled in place by downstream enrichment.
	Confidence  *float64   `json:"confidence,omitempty"`
	ScoreType   string     `json:"score_type,omitempty"`
	RawScore    *float64   `json:"raw_score,omitempty"`
	ScoreMethod string     `json:"score_method,omitempty"`
	ColorInfo   *ColorInfo `json:"color_info,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
}

// ColorInfo is the representative color of an AOI.
type ColorInfo struct {
	RGB        [3]uint8 `json:"rgb"`
	Hex        string   `json:"hex"`
	HueDegrees int      `json:"hue_degrees"`
	AvgRGB     [3]uint8 `json:"avg_rgb"`
}

// Circle returns the AOI footprint as a circle.
func (a AOI) Circle() geometry.Circle {
	return geometry.Circle{Center: a.Center.ToFloat(), Radius: float64(a.Radius)}
}

// Result is the output of IdentifyAreasOfInterest.
type Result struct {
	AreasOfInterest []AOI `json:"areas_of_interest"`
	// BaseContourCount is the number of contours that passed the area gate
	// on their own, before any combining.
	BaseContourCount int `json:"base_contour_count"`
}

// ImageOrShape supplies the processing-resolution height and width.
// It is implemented by Image and Shape only.
type ImageOrShape interface {
	dims() (height, width int, err error)
}

// Image takes its dimensions from an in-memory Mat.
type Image struct {
	Mat gocv.Mat
}

func (i Image) dims() (int, int, error) {
	if i.Mat.Empty() {
		return 0, 0, fmt.Errorf("%w: empty image", ErrShape)
	}
	return i.Mat.Rows(), i.Mat.Cols(), nil
}

// Shape is an explicit (height, width[, channels]) shape for callers that
// no longer hold the image in memory.
type Shape struct {
	Height   int
	Width    int
	Channels int
}

func (s Shape) dims() (int, int, error) {
	if s.Height <= 0 || s.Width <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrShape, s.Width, s.Height)
	}
	return s.Height, s.Width, nil
}

// ShapeFromDims coerces a loose dimension list such as (h, w, c) into a Shape,
// keeping only the first two entries.
func ShapeFromDims(dims []int) (Shape, error) {
	if len(dims) < 2 {
		return Shape{}, fmt.Errorf("%w: need at least 2 dimensions, got %d", ErrShape, len(dims))
	}
	s := Shape{Height: dims[0], Width: dims[1]}
	if len(dims) > 2 {
		s.Channels = dims[2]
	}
	if _, _, err := s.dims(); err != nil {
		return Shape{}, err
	}
	return s, nil
}
