// Command aoidetect extracts areas of interest from a detection mask and
// prints them, optionally enriching them from the source image.
package main

import (
	"flag"
	"fmt"
	"os"

	"adiat-aoi/internal/config"
	"adiat-aoi/internal/logger"
	"adiat-aoi/internal/project"
	"adiat-aoi/internal/version"
)

func main() {
	maskPath := flag.String("mask", "", "Path to binary detection mask (TIFF, PNG, or JPEG)")
	imagePath := flag.String("image", "", "Source image for color, thumbnails and hue expansion")
	configPath := flag.String("config", "", "Config file (.json, .toml, .yaml)")
	writeConfig := flag.String("write-config", "", "Write the effective configuration as JSON")
	minArea := flag.Int("min-area", 0, "Minimum contour area in pixels")
	maxArea := flag.Int("max-area", 0, "Maximum contour area in pixels (0 = unbounded)")
	radius := flag.Int("aoi-radius", 0, "Margin added to each enclosing circle")
	combine := flag.Bool("combine", true, "Combine overlapping AOIs")
	scale := flag.Float64("process-scale", 1.0, "Downscale the mask by this factor before detection")
	segments := flag.Int("segments", 1, "Trace the processing mask in this many tiles")
	overlap := flag.Float64("overlap", 0, "Tile overlap (<1 fraction of tile size, otherwise pixels)")
	hueRange := flag.Int("hue-range", 0, "Hue expansion range (0-90, requires -image)")
	temperature := flag.String("temperature", "", "Temperature matrix at original resolution (.csv or _temperature.tif)")
	binCounts := flag.String("bin-counts", "", "Histogram bin count CSV at processing resolution")
	out := flag.String("out", "", "Write a run file ("+project.Extension+")")
	storeMask := flag.String("store-mask", "", "Output image path; the mask is written next to it as .tif")
	inputDir := flag.String("input-dir", "", "Input root mirrored under -output-dir (default: mask directory)")
	outputDir := flag.String("output-dir", "", "Store the mask under this directory when -store-mask is not set")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("aoidetect", version.String())
		return
	}
	if *maskPath == "" {
		fmt.Println("Usage: aoidetect -mask <path> [-image <path>] [-config <file>] [-min-area 10] [-aoi-radius 15] [-out run.aoirun]")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-area":
			cfg.Detection.MinArea = *minArea
		case "max-area":
			cfg.Detection.MaxArea = *maxArea
		case "aoi-radius":
			cfg.Detection.AOIRadius = *radius
		case "combine":
			cfg.Detection.CombineAOIs = *combine
		case "process-scale":
			cfg.ScaleFactor = *scale
		case "segments":
			cfg.Tiling.Segments = *segments
		case "overlap":
			cfg.Tiling.Overlap = *overlap
		case "hue-range":
			cfg.HueExpansion.Enabled = *hueRange > 0
			cfg.HueExpansion.Range = *hueRange
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.NewConsole(level)

	opts := options{
		maskPath:        *maskPath,
		imagePath:       *imagePath,
		temperaturePath: *temperature,
		binCountsPath:   *binCounts,
		outPath:         *out,
		storeMaskPath:   *storeMask,
		inputDir:        *inputDir,
		outputDir:       *outputDir,
		stdout:          os.Stdout,
	}
	if err := run(log, cfg, opts); err != nil {
		log.Error().Err(err).Str("component", "cmd").Msg("detection failed")
		os.Exit(1)
	}
}

// loadConfig loads path, or returns defaults when path is empty. An explicit
// path that does not exist is an error.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return config.Load(path)
}
