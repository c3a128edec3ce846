package aoi

import "fmt"

// Params holds the area gate and combination settings for AOI extraction.
type Params struct {
	// MinArea is the inclusive lower bound in processing-resolution pixels.
	MinArea int `json:"min_area" toml:"min_area" yaml:"min_area"`
	// MaxArea is the inclusive upper bound; 0 means unbounded.
	MaxArea int `json:"max_area" toml:"max_area" yaml:"max_area"`
	// AOIRadius is the margin added to each enclosing circle.
	AOIRadius   int  `json:"aoi_radius" toml:"aoi_radius" yaml:"aoi_radius"`
	CombineAOIs bool `json:"combine_aois" toml:"combine_aois" yaml:"combine_aois"`
}

// DefaultParams returns the defaults used by the color algorithms.
func DefaultParams() Params {
	return Params{
		MinArea:     10,
		MaxArea:     0,
		AOIRadius:   15,
		CombineAOIs: true,
	}
}

// WithAreaRange returns a copy of params with a new area gate.
func (p Params) WithAreaRange(minArea, maxArea int) Params {
	p.MinArea = minArea
	p.MaxArea = maxArea
	return p
}

// WithRadius returns a copy of params with a new enclosing-circle margin.
func (p Params) WithRadius(radius int) Params {
	p.AOIRadius = radius
	return p
}

// WithCombine returns a copy of params with combining switched on or off.
func (p Params) WithCombine(combine bool) Params {
	p.CombineAOIs = combine
	return p
}

// Validate checks that all values are in range.
func (p Params) Validate() error {
	if p.MinArea < 0 {
		return fmt.Errorf("%w: min_area %d < 0", ErrInvalidParams, p.MinArea)
	}
	if p.MaxArea < 0 {
		return fmt.Errorf("%w: max_area %d < 0", ErrInvalidParams, p.MaxArea)
	}
	if p.MaxArea != 0 && p.MaxArea < p.MinArea {
		return fmt.Errorf("%w: max_area %d < min_area %d", ErrInvalidParams, p.MaxArea, p.MinArea)
	}
	if p.AOIRadius < 0 {
		return fmt.Errorf("%w: aoi_radius %d < 0", ErrInvalidParams, p.AOIRadius)
	}
	return nil
}

// accepts applies the area gate.
func (p Params) accepts(area int) bool {
	return area >= p.MinArea && (p.MaxArea == 0 || area <= p.MaxArea)
}
