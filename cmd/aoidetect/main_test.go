package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"adiat-aoi/internal/config"
	aoiimage "adiat-aoi/internal/image"
	"adiat-aoi/internal/project"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// writeFixtures writes a 64x64 mask with a 16x16 square at (16,16) and a
// solid red source image of the same size.
func writeFixtures(t *testing.T, dir string) (maskPath, imagePath string) {
	t.Helper()
	m := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 16; y < 32; y++ {
		for x := 16; x < 32; x++ {
			m.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	src := imaging.New(64, 64, color.NRGBA{R: 255, A: 255})

	maskPath = filepath.Join(dir, "input", "mask.png")
	imagePath = filepath.Join(dir, "input", "image.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(maskPath), 0755))
	require.NoError(t, imaging.Save(m, maskPath))
	require.NoError(t, imaging.Save(src, imagePath))
	return maskPath, imagePath
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Detection.CombineAOIs = false
	cfg.Detection.AOIRadius = 4
	cfg.ScaleFactor = 0.5
	cfg.Tiling.Segments = 4
	cfg.Tiling.Overlap = 0.1
	cfg.HueExpansion.Enabled = true
	cfg.HueExpansion.Range = 5
	return cfg
}

func TestRunScaledWithHueExpansion(t *testing.T) {
	dir := t.TempDir()
	maskPath, imagePath := writeFixtures(t, dir)
	outDir := filepath.Join(dir, "output")
	runPath := filepath.Join(outDir, "flight"+project.Extension)

	var stdout bytes.Buffer
	err := run(zerolog.Nop(), testConfig(), options{
		maskPath:  maskPath,
		imagePath: imagePath,
		outPath:   runPath,
		outputDir: outDir,
		stdout:    &stdout,
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Detected 1 areas of interest")

	r, err := project.Load(runPath)
	require.NoError(t, err)
	assert.Equal(t, 0.5, r.Settings.ScaleFactor)
	assert.Equal(t, 5, r.Settings.HueRange)
	require.Len(t, r.Results, 1)
	res := r.Results[0]
	assert.False(t, res.Failed())
	assert.Equal(t, "mask.tif", res.OutputPath)

	// The square at half scale is re-extracted from the grown mask at full scale.
	require.Len(t, res.AreasOfInterest, 1)
	a := res.AreasOfInterest[0]
	assert.InDelta(t, 22, a.Center.X, 1)
	assert.InDelta(t, 22, a.Center.Y, 1)
	assert.Greater(t, len(a.DetectedPixels), 16*16)
	require.NotNil(t, a.ColorInfo)
	assert.Equal(t, [3]uint8{255, 0, 0}, a.ColorInfo.AvgRGB)

	stored, err := aoiimage.Load(filepath.Join(outDir, "mask.tif"))
	require.NoError(t, err)
	gray := aoiimage.ToGrayMat(stored.Image)
	defer gray.Close()
	assert.Equal(t, 64, gray.Cols())
	assert.Greater(t, gocv.CountNonZero(gray), 16*16)
	assert.Equal(t, uint8(255), gray.GetUCharAt(34, 22))
	assert.Equal(t, uint8(0), gray.GetUCharAt(0, 0))
}

func TestRunKeepsUnreadableRunFile(t *testing.T) {
	dir := t.TempDir()
	maskPath, _ := writeFixtures(t, dir)
	runPath := filepath.Join(dir, "broken"+project.Extension)
	corrupt := []byte("{not json")
	require.NoError(t, os.WriteFile(runPath, corrupt, 0644))

	err := run(zerolog.Nop(), config.DefaultConfig(), options{
		maskPath: maskPath,
		outPath:  runPath,
		stdout:   &bytes.Buffer{},
	})
	assert.Error(t, err)

	data, err := os.ReadFile(runPath)
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)
}

func TestRunRecordsFailure(t *testing.T) {
	dir := t.TempDir()
	runPath := filepath.Join(dir, "flight"+project.Extension)
	missing := filepath.Join(dir, "missing.png")

	err := run(zerolog.Nop(), config.DefaultConfig(), options{
		maskPath: missing,
		outPath:  runPath,
		stdout:   &bytes.Buffer{},
	})
	require.Error(t, err)

	r, err := project.Load(runPath)
	require.NoError(t, err)
	require.Len(t, r.Results, 1)
	assert.True(t, r.Results[0].Failed())
	assert.Equal(t, missing, r.Results[0].InputPath)
	assert.Contains(t, r.Results[0].ErrorMessage, "failed to load image")
	assert.Equal(t, 1, r.FailedCount())
}

func TestMaskOutputPath(t *testing.T) {
	dir := t.TempDir()

	p, err := maskOutputPath(options{maskPath: "a.png", storeMaskPath: "explicit.jpg", outputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "explicit.jpg", p)

	p, err = maskOutputPath(options{maskPath: "a.png"})
	require.NoError(t, err)
	assert.Empty(t, p)

	in := filepath.Join(dir, "in")
	p, err = maskOutputPath(options{
		maskPath:  filepath.Join(in, "day1", "a.png"),
		inputDir:  in,
		outputDir: filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "day1", "a.png"), p)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
