package project

import (
	"errors"
	"path/filepath"
	"testing"

	"adiat-aoi/internal/aoi"
	"adiat-aoi/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		full     string
		expected string
	}{
		{"subdir", "/input/subdir/image.jpg", "/output/subdir/image.jpg"},
		{"no subdir", "/input/image.jpg", "/output/image.jpg"},
		{"outside input", "/elsewhere/image.jpg", "/output/image.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.expected), ConstructOutputPath(tt.full, "/input", "/output"))
		})
	}
}

func TestNewAnalysisResult(t *testing.T) {
	res := &aoi.Result{
		AreasOfInterest:  []aoi.AOI{{Center: geometry.PointInt{X: 1, Y: 2}, Radius: 3}},
		BaseContourCount: 4,
	}
	r := NewAnalysisResult("/input/a.jpg", "/output/sub/a.jpg", "/output", res)
	assert.Equal(t, filepath.FromSlash("sub/a.jpg"), r.OutputPath)
	require.NotNil(t, r.BaseContourCount)
	assert.Equal(t, 4, *r.BaseContourCount)
	assert.Len(t, r.AreasOfInterest, 1)
	assert.False(t, r.Failed())

	none := NewAnalysisResult("/input/b.jpg", "rel/b.jpg", "/output", nil)
	assert.Equal(t, "rel/b.jpg", none.OutputPath)
	assert.Nil(t, none.BaseContourCount)
	assert.Nil(t, none.AreasOfInterest)

	failed := NewErrorResult("/input/c.jpg", errors.New("decode failed"))
	assert.True(t, failed.Failed())
	assert.Equal(t, "decode failed", failed.ErrorMessage)
}

func TestRunSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flight"+Extension)

	r := New("flight")
	r.Settings.Algorithm = "ColorRange"
	r.SetInputDir(path, filepath.Join(dir, "images"))
	r.SetOutputDir(path, filepath.Join(dir, "out"))
	r.AddResult(NewAnalysisResult(filepath.Join(dir, "images", "a.jpg"), filepath.Join(dir, "out", "a.jpg"),
		filepath.Join(dir, "out"), &aoi.Result{
			AreasOfInterest:  []aoi.AOI{{Center: geometry.PointInt{X: 5, Y: 6}, Radius: 7, Area: 8}},
			BaseContourCount: 1,
		}))
	require.NoError(t, r.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "flight", loaded.Name)
	assert.Equal(t, "images", loaded.InputDir)
	assert.Equal(t, filepath.Join(dir, "out"), loaded.GetOutputDir(path))
	assert.Equal(t, aoi.DefaultParams(), loaded.Settings.Detection)
	require.Len(t, loaded.Results, 1)
	assert.Equal(t, 1, loaded.AOICount())
	assert.Equal(t, 0, loaded.FailedCount())
	loaded.AddResult(NewErrorResult("b.jpg", errors.New("unreadable")))
	assert.Equal(t, 1, loaded.FailedCount())
	assert.Equal(t, geometry.PointInt{X: 5, Y: 6}, loaded.Results[0].AreasOfInterest[0].Center)

	_, err = Load(filepath.Join(dir, "missing"+Extension))
	assert.Error(t, err)
}
