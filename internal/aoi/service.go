package aoi

import (
	"fmt"
	"sort"

	"adiat-aoi/pkg/geometry"

	"github.com/rs/zerolog"
)

// Service extracts areas of interest for one detection algorithm. It holds
// per-image configuration only; every call allocates its own masks, so a
// Service may be reused across images but not shared between goroutines
// that set different scale factors. Use WithScaleFactor for that.
type Service struct {
	name        string
	params      Params
	scaleFactor float64
	log         zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates a Service with a scale factor of 1.0.
func NewService(name string, params Params, opts ...Option) (*Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		name:        name,
		params:      params,
		scaleFactor: 1.0,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "aoi.service").Str("algorithm", name).Logger()
	return s, nil
}

// Name returns the algorithm name.
func (s *Service) Name() string { return s.name }

// Params returns the detection parameters.
func (s *Service) Params() Params { return s.params }

// ScaleFactor returns the current processing/original scale factor.
func (s *Service) ScaleFactor() float64 { return s.scaleFactor }

// SetScaleFactor sets the processing/original ratio for the next image.
func (s *Service) SetScaleFactor(f float64) error {
	if !validScale(f) {
		return fmt.Errorf("%w: %v", ErrInvalidScaleFactor, f)
	}
	s.scaleFactor = f
	return nil
}

// WithScaleFactor returns an independent copy using the given scale factor.
func (s *Service) WithScaleFactor(f float64) (*Service, error) {
	c := *s
	if err := c.SetScaleFactor(f); err != nil {
		return nil, err
	}
	return &c, nil
}

// Transformer returns the coordinate transformer for the current scale factor.
func (s *Service) Transformer() Transformer {
	return NewTransformer(s.scaleFactor)
}

// IdentifyAreasOfInterest filters contours by area, optionally combines
// overlapping ones, and maps the survivors to original resolution sorted
// top-to-bottom then left-to-right.
//
// A nil Result with a nil error means no contours were supplied. A non-nil
// Result with an empty list means contours were supplied but none qualified.
func (s *Service) IdentifyAreasOfInterest(src ImageOrShape, contours []geometry.Contour) (*Result, error) {
	if len(contours) == 0 {
		return nil, nil
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no image or shape", ErrShape)
	}
	height, width, err := src.dims()
	if err != nil {
		return nil, err
	}

	filter := NewContourFilter(s.params, height, width)
	defer filter.Close()

	var candidates []Candidate
	for _, c := range contours {
		if cand, ok := filter.Apply(c); ok {
			candidates = append(candidates, cand)
		}
	}
	baseCount := filter.Passed()

	if s.params.CombineAOIs && baseCount > 0 {
		combiner := NewCombiner(s.log.With().Str("component", "aoi.combiner").Logger())
		candidates = combiner.Combine(filter.CandidateMask(), filter.OriginalPixels(), baseCount)
	}

	t := s.Transformer()
	aois := make([]AOI, 0, len(candidates))
	for _, cand := range candidates {
		aois = append(aois, s.pack(t, cand))
	}

	SortAOIs(aois)

	s.log.Debug().
		Int("contours", len(contours)).
		Int("base_contour_count", baseCount).
		Int("aois", len(aois)).
		Float64("scale_factor", s.scaleFactor).
		Msg("identified areas of interest")

	return &Result{AreasOfInterest: aois, BaseContourCount: baseCount}, nil
}

// pack converts a processing-resolution candidate into an original-resolution AOI.
// The margin is only added to contours that were not combined.
func (s *Service) pack(t Transformer, cand Candidate) AOI {
	radius := int(cand.Circle.Radius)
	if !s.params.CombineAOIs {
		radius += s.params.AOIRadius
	}
	// The center is snapped to processing-resolution pixels before scaling.
	center := cand.Circle.Center.Truncate()
	return AOI{
		Center:         t.TransformPoint(float64(center.X), float64(center.Y)),
		Radius:         t.TransformRadius(radius),
		Area:           t.TransformArea(cand.Area),
		Contour:        t.TransformContour(cand.Contour),
		DetectedPixels: t.TransformPixels(cand.Pixels),
	}
}

// SortAOIs orders AOIs by center row, then column.
func SortAOIs(aois []AOI) {
	sort.SliceStable(aois, func(i, j int) bool {
		if aois[i].Center.Y != aois[j].Center.Y {
			return aois[i].Center.Y < aois[j].Center.Y
		}
		return aois[i].Center.X < aois[j].Center.X
	})
}
