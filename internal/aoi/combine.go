package aoi

import (
	"adiat-aoi/pkg/geometry"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Combiner merges overlapping candidate circles into single regions.
type Combiner struct {
	log zerolog.Logger
}

// NewCombiner returns a combiner that reports loop-cap overruns on log.
func NewCombiner(log zerolog.Logger) Combiner {
	return Combiner{log: log}
}

// Stabilize repeatedly traces the candidate mask and redraws each region's
// enclosing circle until the region count stops changing. Passes are capped
// at initial+2; overrunning the cap is logged.
func (c Combiner) Stabilize(candidate *gocv.Mat, initial int) []geometry.Contour {
	limit := initial + 2
	prev := -1
	var contours []geometry.Contour

	for iter := 0; ; iter++ {
		if iter >= limit {
			c.log.Error().
				Int("iterations", iter).
				Int("regions", len(contours)).
				Msg("combine loop did not converge, using last trace")
			break
		}

		contours = TraceExternal(*candidate)
		for _, cnt := range contours {
			circle := enclosingCircle(cnt)
			fillCircle(candidate, circle.Center.Truncate(), int(circle.Radius))
		}

		if len(contours) == prev {
			c.log.Debug().Int("iterations", iter+1).Int("regions", len(contours)).Msg("combine converged")
			break
		}
		prev = len(contours)
	}
	return contours
}

// Combine stabilizes the candidate mask and measures every resulting region.
// Detected pixels are the original pixels inside each region, not the full
// circle footprint.
func (c Combiner) Combine(candidate *gocv.Mat, original gocv.Mat, initial int) []Candidate {
	contours := c.Stabilize(candidate, initial)
	height, width := candidate.Rows(), candidate.Cols()

	merged := make([]Candidate, 0, len(contours))
	for _, cnt := range contours {
		mask := newMask(height, width)
		fillContour(&mask, cnt)
		area := gocv.CountNonZero(mask)

		detected := gocv.NewMat()
		gocv.BitwiseAnd(original, mask, &detected)

		merged = append(merged, Candidate{
			Contour: cnt,
			Area:    area,
			Circle:  enclosingCircle(cnt),
			Pixels:  CollectPixelsOfInterest(detected),
		})
		detected.Close()
		mask.Close()
	}
	return merged
}
