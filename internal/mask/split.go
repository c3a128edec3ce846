package mask

import (
	"fmt"
	"image"
	"math"

	"adiat-aoi/pkg/geometry"

	"gocv.io/x/gocv"
)

// RowsColsFromSegments returns the grid used to split an image into segments.
func RowsColsFromSegments(segments int) (rows, cols int) {
	switch segments {
	case 2:
		return 1, 2
	case 6:
		return 2, 3
	default:
		n := int(math.Sqrt(float64(segments)))
		return n, n
	}
}

// tileGrid lays out the tiles of an h x w image.
type tileGrid struct {
	h, w                int
	rows, cols          int
	rowHeight, colWidth int
	overlapH, overlapW  int
}

func newTileGrid(h, w, segments int, overlap float64) (tileGrid, error) {
	if segments < 1 || overlap < 0 {
		return tileGrid{}, fmt.Errorf("invalid split: segments=%d overlap=%v", segments, overlap)
	}
	rows, cols := RowsColsFromSegments(segments)
	g := tileGrid{h: h, w: w, rows: rows, cols: cols}
	g.rowHeight = int(math.Ceil(float64(h) / float64(rows)))
	g.colWidth = int(math.Ceil(float64(w) / float64(cols)))
	// Ceil-sized tiles can leave the last row or column with nothing in it.
	if (rows-1)*g.rowHeight >= h || (cols-1)*g.colWidth >= w {
		return tileGrid{}, fmt.Errorf("cannot split %dx%d image into %dx%d tiles", w, h, cols, rows)
	}

	g.overlapH, g.overlapW = int(overlap), int(overlap)
	if overlap < 1 {
		g.overlapH = int(float64(g.rowHeight) * overlap)
		g.overlapW = int(float64(g.colWidth) * overlap)
	}
	return g, nil
}

// core is tile (i, j) without overlap.
func (g tileGrid) core(i, j int) image.Rectangle {
	return image.Rect(j*g.colWidth, i*g.rowHeight,
		min((j+1)*g.colWidth, g.w), min((i+1)*g.rowHeight, g.h))
}

// bounds is tile (i, j) including overlap, clipped to the image.
func (g tileGrid) bounds(i, j int) image.Rectangle {
	c := g.core(i, j)
	return image.Rect(max(c.Min.X-g.overlapW, 0), max(c.Min.Y-g.overlapH, 0),
		min(c.Max.X+g.overlapW, g.w), min(c.Max.Y+g.overlapH, g.h))
}

// SplitImage cuts img into a grid of tiles. overlap below 1 is a fraction of
// the tile size; 1 or more is a pixel count. Tiles are owned by the caller.
func SplitImage(img gocv.Mat, segments int, overlap float64) ([][]gocv.Mat, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	g, err := newTileGrid(img.Rows(), img.Cols(), segments, overlap)
	if err != nil {
		return nil, err
	}

	pieces := make([][]gocv.Mat, 0, g.rows)
	for i := 0; i < g.rows; i++ {
		row := make([]gocv.Mat, 0, g.cols)
		for j := 0; j < g.cols; j++ {
			region := img.Region(g.bounds(i, j))
			row = append(row, region.Clone())
			region.Close()
		}
		pieces = append(pieces, row)
	}
	return pieces, nil
}

// TrimOverlap crops tiles produced by SplitImage with the same arguments back
// to their non-overlapping cores, so GlueImage restores the original size.
// The returned tiles are owned by the caller.
func TrimOverlap(pieces [][]gocv.Mat, height, width, segments int, overlap float64) ([][]gocv.Mat, error) {
	g, err := newTileGrid(height, width, segments, overlap)
	if err != nil {
		return nil, err
	}
	if len(pieces) != g.rows {
		return nil, fmt.Errorf("expected %d tile rows, got %d", g.rows, len(pieces))
	}

	trimmed := make([][]gocv.Mat, 0, g.rows)
	for i, rowPieces := range pieces {
		if len(rowPieces) != g.cols {
			ClosePieces(trimmed)
			return nil, fmt.Errorf("expected %d tiles in row %d, got %d", g.cols, i, len(rowPieces))
		}
		row := make([]gocv.Mat, 0, g.cols)
		for j, p := range rowPieces {
			b, c := g.bounds(i, j), g.core(i, j)
			region := p.Region(c.Sub(b.Min))
			row = append(row, region.Clone())
			region.Close()
		}
		trimmed = append(trimmed, row)
	}
	return trimmed, nil
}

// GlueImage stitches a grid of tiles back into one image.
func GlueImage(pieces [][]gocv.Mat) (gocv.Mat, error) {
	if len(pieces) == 0 || len(pieces[0]) == 0 {
		return gocv.NewMat(), fmt.Errorf("no pieces to glue")
	}

	var rows []gocv.Mat
	defer func() {
		for _, r := range rows {
			r.Close()
		}
	}()

	for _, rowPieces := range pieces {
		row := rowPieces[0].Clone()
		for _, p := range rowPieces[1:] {
			if p.Rows() != row.Rows() {
				row.Close()
				return gocv.NewMat(), fmt.Errorf("row tiles differ in height: %d vs %d", p.Rows(), row.Rows())
			}
			joined := gocv.NewMat()
			gocv.Hconcat(row, p, &joined)
			row.Close()
			row = joined
		}
		rows = append(rows, row)
	}

	out := rows[0].Clone()
	for _, r := range rows[1:] {
		if r.Cols() != out.Cols() {
			out.Close()
			return gocv.NewMat(), fmt.Errorf("rows differ in width: %d vs %d", r.Cols(), out.Cols())
		}
		joined := gocv.NewMat()
		gocv.Vconcat(out, r, &joined)
		out.Close()
		out = joined
	}
	return out, nil
}

// ClosePieces releases every tile returned by SplitImage.
func ClosePieces(pieces [][]gocv.Mat) {
	for _, row := range pieces {
		for _, p := range row {
			p.Close()
		}
	}
}

// FindContoursTiled traces a large mask tile by tile: each tile's regions are
// traced and filled, the tiles are trimmed and glued, and the glued mask is
// traced once more so regions crossing tile edges come out whole. With
// segments <= 1 it is FindContours.
func FindContoursTiled(m gocv.Mat, segments int, overlap float64) ([]geometry.Contour, error) {
	if segments <= 1 {
		return FindContours(m), nil
	}
	pieces, err := SplitImage(m, segments, overlap)
	if err != nil {
		return nil, err
	}
	defer ClosePieces(pieces)

	filled := make([][]gocv.Mat, len(pieces))
	defer ClosePieces(filled)
	for i, row := range pieces {
		for _, p := range row {
			filled[i] = append(filled[i], FillContours(p.Rows(), p.Cols(), FindContours(p)))
		}
	}

	trimmed, err := TrimOverlap(filled, m.Rows(), m.Cols(), segments, overlap)
	if err != nil {
		return nil, err
	}
	defer ClosePieces(trimmed)

	glued, err := GlueImage(trimmed)
	if err != nil {
		return nil, err
	}
	defer glued.Close()
	return FindContours(glued), nil
}
