package project

import (
	"path/filepath"
	"strings"

	"adiat-aoi/internal/aoi"
)

// AnalysisResult is the outcome of processing one image.
type AnalysisResult struct {
	InputPath string `json:"input_path"`
	// OutputPath is relative to the run's output directory.
	OutputPath       string    `json:"output_path,omitempty"`
	AreasOfInterest  []aoi.AOI `json:"areas_of_interest"`
	BaseContourCount *int      `json:"base_contour_count,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
}

// NewAnalysisResult records a processed image. A nil res means nothing was
// detected and leaves BaseContourCount unset.
func NewAnalysisResult(inputPath, outputPath, outputDir string, res *aoi.Result) AnalysisResult {
	r := AnalysisResult{
		InputPath:  inputPath,
		OutputPath: relativeTo(outputDir, outputPath),
	}
	if res != nil {
		r.AreasOfInterest = res.AreasOfInterest
		n := res.BaseContourCount
		r.BaseContourCount = &n
	}
	return r
}

// NewErrorResult records an image that could not be processed.
func NewErrorResult(inputPath string, err error) AnalysisResult {
	return AnalysisResult{InputPath: inputPath, ErrorMessage: err.Error()}
}

// Failed reports whether processing the image failed.
func (r AnalysisResult) Failed() bool {
	return r.ErrorMessage != ""
}

// ConstructOutputPath mirrors fullPath's location under inputDir into outputDir.
// Paths outside inputDir land directly in outputDir.
func ConstructOutputPath(fullPath, inputDir, outputDir string) string {
	rel, err := filepath.Rel(inputDir, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(fullPath)
	}
	return filepath.Join(outputDir, rel)
}

func relativeTo(dir, path string) string {
	if path == "" || dir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return rel
}
