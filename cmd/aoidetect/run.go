package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"adiat-aoi/internal/aoi"
	"adiat-aoi/internal/config"
	"adiat-aoi/internal/enrich"
	aoiimage "adiat-aoi/internal/image"
	"adiat-aoi/internal/logger"
	"adiat-aoi/internal/mask"
	"adiat-aoi/internal/project"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

type options struct {
	maskPath        string
	imagePath       string
	temperaturePath string
	binCountsPath   string
	outPath         string
	storeMaskPath   string
	inputDir        string
	outputDir       string
	stdout          io.Writer
}

// run processes one mask and, when a run file is requested, records the
// outcome there, failures included.
func run(log zerolog.Logger, cfg *config.Config, opts options) error {
	cmdLog := logger.Component(log, "cmd")

	svc, err := aoi.NewService(cfg.Algorithm, cfg.Params(), aoi.WithLogger(log))
	if err != nil {
		return err
	}

	result, storedMask, detectErr := detect(log, cfg, svc, opts)
	if detectErr == nil {
		printResult(opts.stdout, result)
	}

	if opts.outPath != "" {
		if err := saveRun(cmdLog, opts, cfg, svc, result, storedMask, detectErr); err != nil {
			return errors.Join(detectErr, err)
		}
		cmdLog.Info().Str("path", opts.outPath).Msg("saved run")
	}
	return detectErr
}

func detect(log zerolog.Logger, cfg *config.Config, svc *aoi.Service, opts options) (*aoi.Result, string, error) {
	cmdLog := logger.Component(log, "cmd")

	src, err := aoiimage.Load(opts.maskPath)
	if err != nil {
		return nil, "", err
	}
	gray := aoiimage.ToGrayMat(src.Image)
	defer gray.Close()
	full, err := mask.Binarize(gray)
	if err != nil {
		return nil, "", err
	}
	defer full.Close()
	cmdLog.Info().Str("mask", opts.maskPath).Int("width", full.Cols()).Int("height", full.Rows()).Msg("loaded mask")

	processing := full
	if cfg.ScaleFactor != 1.0 {
		scaled, err := aoiimage.Resize(full, cfg.ScaleFactor)
		if err != nil {
			return nil, "", err
		}
		defer scaled.Close()
		processing = scaled
		if err := svc.SetScaleFactor(cfg.ScaleFactor); err != nil {
			return nil, "", err
		}
	}

	contours, err := mask.FindContoursTiled(processing, cfg.Tiling.Segments, cfg.Tiling.Overlap)
	if err != nil {
		return nil, "", err
	}
	result, err := svc.IdentifyAreasOfInterest(aoi.Image{Mat: processing}, contours)
	if err != nil {
		return nil, "", err
	}

	temps, err := loadTemperature(opts.temperaturePath)
	if err != nil {
		return nil, "", err
	}

	var srcImg image.Image
	if opts.imagePath != "" {
		source, err := aoiimage.Load(opts.imagePath)
		if err != nil {
			return nil, "", err
		}
		srcImg = source.Image
	}

	finalMask := full
	expanded := false
	if srcImg != nil && result != nil && cfg.HueExpansion.Enabled {
		grown, err := expandHue(srcImg, full, result, cfg.HueExpansion.Range)
		if err != nil {
			return nil, "", err
		}
		defer grown.Close()
		finalMask = grown
		expanded = true

		// The grown mask is at original resolution.
		original, err := svc.WithScaleFactor(1.0)
		if err != nil {
			return nil, "", err
		}
		if result, err = original.IdentifyAreasOfInterest(aoi.Image{Mat: grown}, mask.FindContours(grown)); err != nil {
			return nil, "", err
		}
		cmdLog.Info().Int("hue_range", cfg.HueExpansion.Range).Msg("applied hue expansion")
	}

	if result != nil {
		if srcImg != nil || temps != nil {
			e := enrich.New(cfg.Thumbnails.CacheDir,
				enrich.WithLogger(log),
				enrich.WithThumbnailSize(cfg.Thumbnails.Size))
			if errs := e.Enrich(srcImg, temps, result.AreasOfInterest); len(errs) > 0 {
				cmdLog.Warn().Int("failures", len(errs)).Msg("some areas of interest were not fully enriched")
			}
		}
		// Bin counts match the processing mask, which hue expansion replaces.
		if opts.binCountsPath != "" && !expanded {
			bins, err := readMatrixCSV(opts.binCountsPath)
			if err != nil {
				return nil, "", err
			}
			if err := enrich.ScoreRarity(result.AreasOfInterest, bins, processing, svc.Transformer()); err != nil {
				return nil, "", err
			}
		}
	}

	storePath, err := maskOutputPath(opts)
	if err != nil {
		return nil, "", err
	}
	var storedMask string
	if storePath != "" {
		if storedMask, err = mask.StoreMask(storePath, finalMask, temps); err != nil {
			return nil, "", err
		}
		cmdLog.Info().Str("path", storedMask).Msg("stored mask")
	}
	return result, storedMask, nil
}

// maskOutputPath is -store-mask, or the mask's place mirrored under -output-dir.
func maskOutputPath(opts options) (string, error) {
	if opts.storeMaskPath != "" || opts.outputDir == "" {
		return opts.storeMaskPath, nil
	}
	full, err := filepath.Abs(opts.maskPath)
	if err != nil {
		return "", err
	}
	inputDir := opts.inputDir
	if inputDir == "" {
		inputDir = filepath.Dir(full)
	}
	if inputDir, err = filepath.Abs(inputDir); err != nil {
		return "", err
	}
	return project.ConstructOutputPath(full, inputDir, opts.outputDir), nil
}

// loadTemperature reads a CSV matrix or a temperature TIFF written by StoreMask.
func loadTemperature(path string) (*mat.Dense, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		return nil, nil
	case ".tif", ".tiff":
		return mask.LoadTemperature(path)
	default:
		return readMatrixCSV(path)
	}
}

func expandHue(src image.Image, full gocv.Mat, result *aoi.Result, hueRange int) (gocv.Mat, error) {
	img := aoiimage.ToMat(src)
	defer img.Close()
	if img.Rows() != full.Rows() || img.Cols() != full.Cols() {
		return gocv.NewMat(), fmt.Errorf("image %dx%d and mask %dx%d differ in size",
			img.Cols(), img.Rows(), full.Cols(), full.Rows())
	}
	return mask.ApplyHueExpansion(img, full, result.AreasOfInterest, hueRange)
}

func printResult(w io.Writer, result *aoi.Result) {
	if result == nil {
		fmt.Fprintln(w, "No contours found")
		return
	}

	fmt.Fprintf(w, "\nDetected %d areas of interest (base contour count %d):\n",
		len(result.AreasOfInterest), result.BaseContourCount)
	fmt.Fprintf(w, "%-6s %8s %8s %8s %8s %8s %10s %10s %8s\n",
		"#", "X", "Y", "Radius", "Area", "Pixels", "Confidence", "Color", "Temp")
	fmt.Fprintln(w, strings.Repeat("-", 84))

	for i, a := range result.AreasOfInterest {
		conf, color, temp := "-", "-", "-"
		if a.Confidence != nil {
			conf = fmt.Sprintf("%.1f", *a.Confidence)
		}
		if a.ColorInfo != nil {
			color = a.ColorInfo.Hex
		}
		if a.Temperature != nil {
			temp = fmt.Sprintf("%.2f", *a.Temperature)
		}
		fmt.Fprintf(w, "%-6d %8d %8d %8d %8d %8d %10s %10s %8s\n",
			i+1, a.Center.X, a.Center.Y, a.Radius, a.Area, len(a.DetectedPixels), conf, color, temp)
	}
}

// saveRun adds this mask's outcome to the run file, creating it if needed.
// An existing run file that cannot be read is left alone.
func saveRun(log zerolog.Logger, opts options, cfg *config.Config, svc *aoi.Service, result *aoi.Result, storedMask string, detectErr error) error {
	r, err := project.Load(opts.outPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		name := strings.TrimSuffix(filepath.Base(opts.outPath), filepath.Ext(opts.outPath))
		r = project.New(name)
	case err != nil:
		return err
	}

	r.Settings = project.RunSettings{
		Algorithm:   svc.Name(),
		Detection:   svc.Params(),
		ScaleFactor: svc.ScaleFactor(),
	}
	if cfg.HueExpansion.Enabled {
		r.Settings.HueRange = cfg.HueExpansion.Range
	}

	outDir, err := filepath.Abs(filepath.Dir(opts.outPath))
	if err != nil {
		return err
	}
	if storedMask != "" {
		if storedMask, err = filepath.Abs(storedMask); err != nil {
			return err
		}
	}
	r.SetInputDir(opts.outPath, filepath.Dir(opts.maskPath))
	r.SetOutputDir(opts.outPath, outDir)

	if detectErr != nil {
		r.AddResult(project.NewErrorResult(opts.maskPath, detectErr))
	} else {
		r.AddResult(project.NewAnalysisResult(opts.maskPath, storedMask, outDir, result))
	}
	if n := r.FailedCount(); n > 0 {
		log.Warn().Int("failed", n).Int("results", len(r.Results)).Msg("run contains failed images")
	}
	return r.Save(opts.outPath)
}
