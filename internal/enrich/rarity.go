package enrich

import (
	"fmt"
	"math"

	"adiat-aoi/internal/aoi"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Rarity score labels.
const (
	ScoreTypeRarity = "rarity"
	ScoreMethodMean = "mean"
)

// ScoreRarity sets a 0-100 confidence on each AOI from per-pixel histogram bin
// counts: the rarer the AOI's colors, the higher the score. binCounts and mask
// are at processing resolution; AOI pixels are mapped back with t. Scores are
// normalised against the min and max bin count over all masked pixels. AOIs
// with no pixels inside the grid score 0.
func ScoreRarity(aois []aoi.AOI, binCounts *mat.Dense, mask gocv.Mat, t aoi.Transformer) error {
	rows, cols := binCounts.Dims()
	if mask.Rows() != rows || mask.Cols() != cols {
		return fmt.Errorf("bin counts %dx%d do not match mask %dx%d", cols, rows, mask.Cols(), mask.Rows())
	}

	var detected []float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if mask.GetUCharAt(y, x) > 0 {
				detected = append(detected, binCounts.At(y, x))
			}
		}
	}
	if len(detected) == 0 {
		return nil
	}

	hi, lo := floats.Max(detected), floats.Min(detected)
	span := 1.0
	if hi > lo {
		span = hi - lo
	}

	for i := range aois {
		a := &aois[i]
		var counts []float64
		for _, p := range a.DetectedPixels {
			q := t.ToProcessing(p)
			if q.X >= 0 && q.X < cols && q.Y >= 0 && q.Y < rows {
				counts = append(counts, binCounts.At(q.Y, q.X))
			}
		}

		confidence, raw := 0.0, 0.0
		if len(counts) > 0 {
			raw = stat.Mean(counts, nil)
			confidence = (hi - raw) / span * 100
		}
		confidence = roundTo(confidence, 1)
		raw = roundTo(raw, 3)

		a.Confidence = &confidence
		a.RawScore = &raw
		a.ScoreType = ScoreTypeRarity
		a.ScoreMethod = ScoreMethodMean
	}
	return nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
