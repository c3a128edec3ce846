// Package enrich fills in the downstream AOI fields: representative color,
// mean temperature, gallery thumbnails and rarity confidence.
package enrich

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"adiat-aoi/internal/aoi"
	"adiat-aoi/pkg/colorutil"
	"adiat-aoi/pkg/geometry"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Thumbnail defaults.
const (
	DefaultThumbnailSize = 180
	thumbnailPadding     = 10
)

// ErrNoSamples is returned when an AOI has no pixels inside the source data.
var ErrNoSamples = errors.New("no pixels to sample")

// Stage names the enrichment step that failed.
type Stage string

const (
	StageColor       Stage = "color"
	StageTemperature Stage = "temperature"
	StageThumbnail   Stage = "thumbnail"
)

// EnrichmentError reports a failure for a single AOI.
type EnrichmentError struct {
	Index int
	Stage Stage
	Err   error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("aoi %d: %s: %v", e.Index, e.Stage, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// Enricher annotates AOIs in place.
type Enricher struct {
	cacheDir      string
	thumbnailSize int
	log           zerolog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Enricher) { e.log = l }
}

// WithThumbnailSize sets the square thumbnail edge in pixels.
func WithThumbnailSize(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.thumbnailSize = n
		}
	}
}

// New creates an Enricher. An empty cacheDir disables thumbnails.
func New(cacheDir string, opts ...Option) *Enricher {
	e := &Enricher{
		cacheDir:      cacheDir,
		thumbnailSize: DefaultThumbnailSize,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "enrich").Logger()
	return e
}

// Enrich annotates every AOI with whatever the inputs allow: color info and a
// thumbnail when src is set, a mean temperature when temps is set. Either may
// be nil. A failing AOI is reported and skipped; the rest are still enriched.
func (e *Enricher) Enrich(src image.Image, temps *mat.Dense, aois []aoi.AOI) []*EnrichmentError {
	var errs []*EnrichmentError
	fail := func(i int, stage Stage, err error) {
		ee := &EnrichmentError{Index: i, Stage: stage, Err: err}
		e.log.Warn().Err(err).Int("aoi", i).Str("stage", string(stage)).Msg("enrichment failed")
		errs = append(errs, ee)
	}

	for i := range aois {
		a := &aois[i]
		if src != nil {
			info, err := RepresentativeColor(src, *a)
			if err != nil {
				fail(i, StageColor, err)
			} else {
				a.ColorInfo = info
			}

			if e.cacheDir != "" {
				if _, err := e.SaveThumbnail(src, *a); err != nil {
					fail(i, StageThumbnail, err)
				}
			}
		}
		if temps != nil {
			t, err := MeanTemperature(temps, *a)
			if err != nil {
				fail(i, StageTemperature, err)
			} else {
				a.Temperature = &t
			}
		}
	}

	e.log.Debug().Int("aois", len(aois)).Int("failures", len(errs)).Msg("enrichment finished")
	return errs
}

// ThumbnailPath returns where the thumbnail of a is cached.
func (e *Enricher) ThumbnailPath(a aoi.AOI) string {
	return filepath.Join(e.cacheDir, fmt.Sprintf("aoi_%d_%d_r%d.jpg", a.Center.X, a.Center.Y, a.Radius))
}

// SaveThumbnail writes the thumbnail of a into the cache directory and returns its path.
func (e *Enricher) SaveThumbnail(src image.Image, a aoi.AOI) (string, error) {
	thumb, err := Thumbnail(src, a, e.thumbnailSize)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	path := e.ThumbnailPath(a)
	if err := imaging.Save(thumb, path, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return path, nil
}

// Thumbnail crops the AOI circle plus padding and resizes it to size x size.
func Thumbnail(src image.Image, a aoi.AOI, size int) (*image.NRGBA, error) {
	r := a.Radius + thumbnailPadding
	b := src.Bounds()
	rect := image.Rect(a.Center.X-r, a.Center.Y-r, a.Center.X+r, a.Center.Y+r).Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("%w: crop outside image", ErrNoSamples)
	}
	crop := imaging.Crop(src, rect)
	return imaging.Resize(crop, size, size, imaging.Lanczos), nil
}

// RepresentativeColor averages the AOI's detected pixels, or every pixel in
// its circle when none were recorded, and derives a vivid marker color with
// the same hue.
func RepresentativeColor(src image.Image, a aoi.AOI) (*aoi.ColorInfo, error) {
	b := src.Bounds()
	pts := samplePoints(a, b.Dx(), b.Dy())
	if len(pts) == 0 {
		return nil, ErrNoSamples
	}

	rs := make([]float64, len(pts))
	gs := make([]float64, len(pts))
	bs := make([]float64, len(pts))
	for i, p := range pts {
		c := color.NRGBAModel.Convert(src.At(b.Min.X+p.X, b.Min.Y+p.Y)).(color.NRGBA)
		rs[i], gs[i], bs[i] = float64(c.R), float64(c.G), float64(c.B)
	}
	avg := [3]uint8{
		uint8(stat.Mean(rs, nil)),
		uint8(stat.Mean(gs, nil)),
		uint8(stat.Mean(bs, nil)),
	}

	m := colorutil.MarkerFromRGB(avg[0], avg[1], avg[2])
	return &aoi.ColorInfo{
		RGB:        m.RGB,
		Hex:        m.Hex,
		HueDegrees: m.HueDegrees,
		AvgRGB:     avg,
	}, nil
}

// MeanTemperature averages temps over the AOI's detected pixels, or over its
// circle when none were recorded. temps is indexed [row][col] in original resolution.
func MeanTemperature(temps *mat.Dense, a aoi.AOI) (float64, error) {
	rows, cols := temps.Dims()
	pts := samplePoints(a, cols, rows)
	if len(pts) == 0 {
		return 0, ErrNoSamples
	}
	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = temps.At(p.Y, p.X)
	}
	return stat.Mean(vals, nil), nil
}

// samplePoints returns the in-bounds detected pixels, falling back to the
// pixels of the AOI circle.
func samplePoints(a aoi.AOI, width, height int) []geometry.PointInt {
	inside := func(p geometry.PointInt) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
	}

	if len(a.DetectedPixels) > 0 {
		pts := make([]geometry.PointInt, 0, len(a.DetectedPixels))
		for _, p := range a.DetectedPixels {
			if inside(p) {
				pts = append(pts, p)
			}
		}
		return pts
	}

	var pts []geometry.PointInt
	r := a.Radius
	for y := a.Center.Y - r; y <= a.Center.Y+r; y++ {
		for x := a.Center.X - r; x <= a.Center.X+r; x++ {
			dx, dy := x-a.Center.X, y-a.Center.Y
			p := geometry.PointInt{X: x, Y: y}
			if dx*dx+dy*dy <= r*r && inside(p) {
				pts = append(pts, p)
			}
		}
	}
	return pts
}
