package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	imageprobe "github.com/menta2k/image-probe"
	"github.com/menta2k/image-probe/internal/config"
	"github.com/menta2k/image-probe/internal/logger"
	"github.com/menta2k/image-probe/internal/utils"
	"github.com/menta2k/image-probe/pkg/analyzer"
	"github.com/menta2k/image-probe/pkg/processing"
	"github.com/menta2k/image-probe/pkg/region"
	"github.com/menta2k/image-probe/pkg/types"
)

// report is the JSON document written for every analyzed image
type report struct {
	Source    string             `json:"source"`
	Info      analyzer.ImageInfo `json:"info"`
	Histogram types.Histogram    `json:"histogram"`
	Levels    types.Levels       `json:"levels"`
	Contours  types.ContourSet   `json:"contours"`
	Region    regionReport       `json:"region"`
	Profile   []*float64         `json:"profile"`
}

type regionReport struct {
	Rectangle types.Rectangle `json:"rectangle"`
	Footprint [4]types.Point  `json:"footprint"`
	Rows      int             `json:"rows"`
	Cols      int             `json:"cols"`
	Offset    [2]int          `json:"offset"`
	Axis      string          `json:"axis"`
}

func main() {
	var in, cfgPath, outDir, ext, roi, axis, interp string
	var bins int
	var level, levelFrac, angle float64
	var overlay, verbose, writeConfig bool

	flag.StringVar(&in, "in", "", "input image path, directory or URL (jpg/png/tiff/webp)")
	flag.StringVar(&cfgPath, "config", "", "config file (default: "+config.GetConfigPath()+" when present)")
	flag.StringVar(&outDir, "out", "", "output directory")
	flag.StringVar(&ext, "ext", "", "output image format: png|jpg|webp")
	flag.IntVar(&bins, "bins", 0, "histogram bin count, 0 picks one from the data")
	flag.Float64Var(&level, "level", math.NaN(), "isocurve level (overrides -level-frac)")
	flag.Float64Var(&levelFrac, "level-frac", 0, "isocurve level as a fraction of the luminance range")
	flag.StringVar(&roi, "roi", "", "region of interest as x,y,w,h")
	flag.Float64Var(&angle, "angle", 0, "region rotation in degrees")
	flag.StringVar(&axis, "axis", "", "profile axis to collapse: rows|columns")
	flag.StringVar(&interp, "interp", "", "region interpolation: bilinear|nearest")
	flag.BoolVar(&overlay, "overlay", false, "write an overlay with the region and contours")
	flag.BoolVar(&writeConfig, "write-config", false, "write the effective config to -config and exit")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	logLevel := zerolog.InfoLevel
	if verbose {
		logLevel = zerolog.DebugLevel
	}
	log := logger.NewConsoleLogger(logLevel)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Error("config", err, map[string]interface{}{"path": cfgPath})
		os.Exit(1)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["out"] {
		cfg.Output.OutputDir = outDir
	}
	if set["ext"] {
		cfg.Output.Format = ext
	}
	if set["bins"] {
		cfg.Histogram.Bins = bins
	}
	if set["level-frac"] {
		cfg.Isocurve.LevelFraction = levelFrac
	}
	if set["angle"] {
		cfg.Region.Angle = angle
	}
	if set["axis"] {
		cfg.Region.Axis = axis
	}
	if set["interp"] {
		cfg.Region.Interpolation = interp
	}
	if set["overlay"] {
		cfg.Output.Overlay = overlay
	}
	if set["roi"] {
		v, err := utils.ParseFloats(roi, 4)
		if err != nil {
			log.Error("config", fmt.Errorf("invalid -roi: %w", err), nil)
			os.Exit(2)
		}
		cfg.Region.X, cfg.Region.Y, cfg.Region.Width, cfg.Region.Height = v[0], v[1], v[2], v[3]
	}

	if err := cfg.Validate(); err != nil {
		log.Error("config", err, nil)
		os.Exit(2)
	}

	if writeConfig {
		path := cfgPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if err := cfg.SaveToFile(path); err != nil {
			log.Error("config", err, nil)
			os.Exit(1)
		}
		log.Info("config", "wrote config", map[string]interface{}{"path": path})
		return
	}

	if in == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -in image|dir|URL [-config file] [-out dir] [-bins n] [-level v|-level-frac f] [-roi x,y,w,h] [-angle deg] [-axis rows|columns] [-interp bilinear|nearest] [-overlay] [-ext png|jpg|webp] [-v]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	req, err := buildRequest(cfg, level)
	if err != nil {
		log.Error("config", err, nil)
		os.Exit(2)
	}

	interpolation, _ := region.ParseInterpolation(cfg.Region.Interpolation)
	probe := imageprobe.NewWithConfig(imageprobe.Config{
		Region: region.Config{Interpolation: interpolation},
	})
	probe.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(logLevel).With().Timestamp().Logger())

	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		log.Error("output", err, map[string]interface{}{"dir": cfg.Output.OutputDir})
		os.Exit(1)
	}

	sources := []string{in}
	if !processing.IsURL(in) && utils.DirExists(in) {
		sources, err = utils.ListImageFiles(in)
		if err != nil {
			log.Error("input", err, map[string]interface{}{"dir": in})
			os.Exit(1)
		}
		log.Info("input", "found images", map[string]interface{}{"dir": in, "count": len(sources)})
		if len(sources) == 0 {
			log.Warning("input", "no images found", map[string]interface{}{"dir": in})
		}
	}

	failed := 0
	ctx := context.Background()
	for _, source := range sources {
		if err := process(ctx, probe, cfg, req, source, log); err != nil {
			log.Error("probe", err, map[string]interface{}{"source": source})
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	if def := config.GetConfigPath(); fileExists(def) {
		return config.LoadFromFile(def)
	}
	return config.Default(), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func buildRequest(cfg *config.Config, level float64) (imageprobe.Request, error) {
	axis, ok := types.ParseAxis(cfg.Region.Axis)
	if !ok {
		return imageprobe.Request{}, fmt.Errorf("unknown axis %q", cfg.Region.Axis)
	}

	rect := types.NewRectangle(cfg.Region.X, cfg.Region.Y, cfg.Region.Width, cfg.Region.Height)
	if cfg.Region.Angle != 0 {
		rect = rect.Rotated(cfg.Region.Angle * math.Pi / 180)
	}

	req := imageprobe.Request{
		Region:        rect,
		Axis:          axis,
		Bins:          cfg.Histogram.Bins,
		ClipFraction:  cfg.Histogram.ClipFraction,
		LevelFraction: cfg.Isocurve.LevelFraction,
	}
	if !math.IsNaN(level) {
		req = req.WithLevel(level)
	}
	return req, nil
}

func process(ctx context.Context, probe *imageprobe.Probe, cfg *config.Config, req imageprobe.Request, source string, log *logger.ZerologAdapter) error {
	res, err := probe.AnalyzeFile(ctx, source, req)
	if err != nil {
		return err
	}

	log.Info("probe", "analyzed", map[string]interface{}{
		"source":   source,
		"size":     fmt.Sprintf("%dx%d", res.Info.Width, res.Info.Height),
		"range":    fmt.Sprintf("%.2f..%.2f", res.Info.Min, res.Info.Max),
		"contours": len(res.Contours.Lines),
		"profile":  len(res.Profile),
	})
	warnOffImage(log, source, req, res)

	out := cfg.Output
	reportPath := utils.GenerateOutputFilename(source, out.OutputDir, "_report", "json")
	if err := writeReport(reportPath, source, req, res); err != nil {
		return err
	}
	logWrote(log, reportPath)

	lutPath := utils.GenerateOutputFilename(source, out.OutputDir, "_lut", out.Format)
	if err := probe.SaveImage(probe.Render(res), lutPath, out.Format, out.Quality, out.Lossless); err != nil {
		return fmt.Errorf("save %s failed: %w", lutPath, err)
	}
	logWrote(log, lutPath)

	if out.Overlay {
		overlayPath := utils.GenerateOutputFilename(source, out.OutputDir, "_overlay", out.Format)
		if err := probe.SaveImage(probe.Overlay(res, out.OverlayScale), overlayPath, out.Format, out.Quality, out.Lossless); err != nil {
			return fmt.Errorf("save %s failed: %w", overlayPath, err)
		}
		logWrote(log, overlayPath)
	}

	return nil
}

// warnOffImage flags a sized region that missed the image entirely; the
// profile and report fields for it are then empty.
func warnOffImage(log *logger.ZerologAdapter, source string, req imageprobe.Request, res imageprobe.AnalysisResult) bool {
	if req.Region.Width <= 0 || req.Region.Height <= 0 || !res.Region.Empty() {
		return false
	}
	log.Warning("region", "region does not overlap the image", map[string]interface{}{
		"source": source,
		"x":      req.Region.X,
		"y":      req.Region.Y,
		"width":  req.Region.Width,
		"height": req.Region.Height,
	})
	return true
}

func writeReport(path, source string, req imageprobe.Request, res imageprobe.AnalysisResult) error {
	r := report{
		Source:    source,
		Info:      res.Info,
		Histogram: res.Histogram,
		Levels:    res.Levels,
		Contours:  res.Contours,
		Region: regionReport{
			Rectangle: req.Region,
			Footprint: res.Footprint,
			Rows:      res.Region.Rows,
			Cols:      res.Region.Cols,
			Offset:    res.Region.Offset,
			Axis:      req.Axis.String(),
		},
		Profile: nullable(res.Profile),
	}

	js, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, js, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// nullable maps NaN profile entries to JSON null.
func nullable(p types.Profile) []*float64 {
	out := make([]*float64, len(p))
	for i := range p {
		if !math.IsNaN(p[i]) {
			out[i] = &p[i]
		}
	}
	return out
}

func logWrote(log *logger.ZerologAdapter, path string) {
	fields := map[string]interface{}{"path": path}
	if info, err := os.Stat(path); err == nil {
		fields["size"] = utils.FormatFileSize(info.Size())
	}
	log.Info("output", "wrote "+strings.TrimPrefix(filepath.Ext(path), "."), fields)
}
