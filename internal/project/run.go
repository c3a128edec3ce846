// Package project provides run file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adiat-aoi/internal/aoi"
)

// Extension is the file extension of run files.
const Extension = ".aoirun"

// Run is a saved detection run (.aoirun).
type Run struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Directories (relative to run file)
	InputDir  string `json:"input_dir,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`

	Settings RunSettings      `json:"settings"`
	Results  []AnalysisResult `json:"results"`
}

// RunSettings records how the run was configured.
type RunSettings struct {
	Algorithm   string     `json:"algorithm"`
	Detection   aoi.Params `json:"detection"`
	ScaleFactor float64    `json:"scale_factor"`
	HueRange    int        `json:"hue_range,omitempty"`
}

// New creates a run with default settings.
func New(name string) *Run {
	now := time.Now()
	return &Run{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: RunSettings{
			Detection:   aoi.DefaultParams(),
			ScaleFactor: 1.0,
		},
	}
}

// Load loads a run from a file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	return &r, nil
}

// Save saves the run to a file.
func (r *Run) Save(path string) error {
	r.Modified = time.Now()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AddResult appends the result for one image.
func (r *Run) AddResult(res AnalysisResult) {
	r.Results = append(r.Results, res)
	r.Modified = time.Now()
}

// AOICount returns the total number of AOIs across all results.
func (r *Run) AOICount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.AreasOfInterest)
	}
	return n
}

// FailedCount returns how many images could not be processed.
func (r *Run) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// SetInputDir sets the input directory (relative to the run file).
func (r *Run) SetInputDir(runPath, dir string) {
	r.InputDir = relativeToRun(runPath, dir)
}

// SetOutputDir sets the output directory (relative to the run file).
func (r *Run) SetOutputDir(runPath, dir string) {
	r.OutputDir = relativeToRun(runPath, dir)
}

// GetInputDir returns the absolute input directory.
func (r *Run) GetInputDir(runPath string) string {
	return resolveFromRun(runPath, r.InputDir)
}

// GetOutputDir returns the absolute output directory.
func (r *Run) GetOutputDir(runPath string) string {
	return resolveFromRun(runPath, r.OutputDir)
}

func relativeToRun(runPath, p string) string {
	rel, err := filepath.Rel(filepath.Dir(runPath), p)
	if err != nil {
		return p
	}
	return rel
}

func resolveFromRun(runPath, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(runPath), p)
}
