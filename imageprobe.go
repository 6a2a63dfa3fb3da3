// Package imageprobe analyzes the brightness of raster images.
//
// An image is first reduced to a luminance matrix. From that matrix the
// package derives a brightness histogram and the display levels it implies,
// an isocurve at a chosen level, a resampled region of interest under an
// arbitrarily rotated or scaled rectangle, and a 1-D brightness profile
// averaged from that region.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		imageprobe "github.com/menta2k/image-probe"
//		"github.com/menta2k/image-probe/pkg/types"
//	)
//
//	func main() {
//		probe := imageprobe.New()
//
//		req := imageprobe.DefaultRequest()
//		req.Region = types.NewRectangle(20, 20, 100, 40).Rotated(0.3)
//
//		result, err := probe.AnalyzeFile(context.Background(), "scan.png", req)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("levels: %.1f..%.1f\n", result.Levels.Min, result.Levels.Max)
//		fmt.Printf("%d contours at %.2f\n", len(result.Contours.Lines), result.Contours.Level)
//		fmt.Printf("profile: %v\n", result.Profile)
//	}
//
// The package consists of these components:
//
// 1. Luminance (pkg/luminance): converts decoded images to a luminance matrix
// 2. Histogram (pkg/histogram): brightness histogram and display lookup table
// 3. Region (pkg/region): samples the matrix under a transformed rectangle
// 4. Profile (pkg/profile): averages a region sample along one axis
// 5. Isocurve (pkg/isocurve): marching-squares contours at a level
// 6. Processing (pkg/processing): image decoding, encoding and overlays
//
// The luminance matrix is never modified once built, so the histogram,
// isocurve and region stages of Analyze run concurrently over it.
package imageprobe

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/image-probe/internal/logger"
	"github.com/menta2k/image-probe/pkg/analyzer"
	"github.com/menta2k/image-probe/pkg/histogram"
	"github.com/menta2k/image-probe/pkg/isocurve"
	"github.com/menta2k/image-probe/pkg/luminance"
	"github.com/menta2k/image-probe/pkg/processing"
	"github.com/menta2k/image-probe/pkg/profile"
	"github.com/menta2k/image-probe/pkg/region"
	"github.com/menta2k/image-probe/pkg/types"
)

// Version of the image probe library
const Version = "1.0.0"

// Probe bundles the analysis components behind one entry point
type Probe struct {
	analyzer  *analyzer.MatrixAnalyzer
	sampler   *region.Sampler
	processor *processing.Processor
	log       *logger.ZerologAdapter
}

// Config holds per-component configuration
type Config struct {
	Analyzer analyzer.Config
	Region   region.Config
}

// New creates a new Probe with default configuration
func New() *Probe {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a new Probe with custom configuration
func NewWithConfig(config Config) *Probe {
	return &Probe{
		analyzer:  analyzer.NewWithConfig(config.Analyzer),
		sampler:   region.NewWithConfig(config.Region),
		processor: processing.NewProcessor(),
		log:       logger.Nop(),
	}
}

// SetLogger routes analysis summaries to l
func (p *Probe) SetLogger(l zerolog.Logger) {
	p.log = logger.Wrap(l)
}

// Request selects what Analyze derives from the luminance matrix
type Request struct {
	// Region is the region of interest; a zero-sized rectangle skips sampling.
	Region types.Rectangle
	// Axis is the axis the region sample is averaged along.
	Axis types.Axis
	// Bins is the histogram bin count; 0 picks one from the data.
	Bins int
	// ClipFraction trims this share of samples from each histogram tail
	// when choosing display levels.
	ClipFraction float64
	// Level is the isocurve level. When nil, LevelFraction places it
	// between the matrix minimum and maximum.
	Level         *float64
	LevelFraction float64
}

// DefaultRequest returns the request used by the command line tool when
// nothing else is configured.
func DefaultRequest() Request {
	return Request{
		Region:        types.NewRectangle(10, 10, 50, 50),
		Axis:          types.AxisRows,
		Bins:          histogram.DefaultBinCount,
		LevelFraction: 0.6,
	}
}

// WithLevel returns a copy of r tracing the isocurve at level
func (r Request) WithLevel(level float64) Request {
	r.Level = &level
	return r
}

// AnalysisResult contains everything derived from one matrix
type AnalysisResult struct {
	Info      analyzer.ImageInfo  `json:"info"`
	Histogram types.Histogram     `json:"histogram"`
	Levels    types.Levels        `json:"levels"`
	Contours  types.ContourSet    `json:"contours"`
	Region    *types.RegionSample `json:"-"`
	Footprint [4]types.Point      `json:"footprint"`
	Profile   types.Profile       `json:"-"`
	Matrix    *types.Matrix       `json:"-"`
}

// Analyze converts raw to luminance and derives every result in req
func (p *Probe) Analyze(ctx context.Context, raw types.RawImage, req Request) (AnalysisResult, error) {
	m, err := luminance.Convert(raw)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("luminance conversion failed: %w", err)
	}
	return p.AnalyzeMatrix(ctx, m, req)
}

// AnalyzeImage converts a decoded image and analyzes it
func (p *Probe) AnalyzeImage(ctx context.Context, img image.Image, req Request) (AnalysisResult, error) {
	return p.Analyze(ctx, p.processor.ToRaw(img), req)
}

// AnalyzeFile loads an image from a path or URL and analyzes it
func (p *Probe) AnalyzeFile(ctx context.Context, source string, req Request) (AnalysisResult, error) {
	img, err := p.processor.LoadImageSmart(source)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("failed to load image: %w", err)
	}
	return p.AnalyzeImage(ctx, img, req)
}

// AnalyzeMatrix derives every result in req from an existing matrix
func (p *Probe) AnalyzeMatrix(ctx context.Context, m *types.Matrix, req Request) (AnalysisResult, error) {
	if err := p.analyzer.ValidateMatrix(m); err != nil {
		return AnalysisResult{}, fmt.Errorf("image validation failed: %w", err)
	}

	res := AnalysisResult{
		Info:      p.analyzer.GetImageInfo(m),
		Matrix:    m,
		Footprint: region.Footprint(req.Region),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		bins := req.Bins
		if bins == 0 {
			bins = histogram.AutoBinCount(m)
		}
		h, err := histogram.Compute(m, bins)
		if err != nil {
			return fmt.Errorf("histogram failed: %w", err)
		}
		res.Histogram = h
		res.Levels = histogram.ClippedLevels(h, req.ClipFraction)
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		level := histogram.DefaultIsoLevel(m, req.LevelFraction)
		if req.Level != nil {
			level = *req.Level
		}
		res.Contours = isocurve.Trace(m, level)
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Region = p.sampler.Sample(m, req.Region)
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Profile = profile.Reduce(res.Region, req.Axis)
		return nil
	})

	if err := g.Wait(); err != nil {
		return AnalysisResult{}, err
	}

	p.log.Debug("probe", "analysis complete", map[string]interface{}{
		"width":     res.Info.Width,
		"height":    res.Info.Height,
		"bins":      len(res.Histogram.Bins),
		"iso_level": res.Contours.Level,
		"contours":  len(res.Contours.Lines),
		"region":    fmt.Sprintf("%dx%d", res.Region.Cols, res.Region.Rows),
		"profile":   len(res.Profile),
	})

	return res, nil
}

// Render maps the analyzed matrix through its display levels
func (p *Probe) Render(res AnalysisResult) *image.Gray {
	return histogram.Render(res.Matrix, res.Levels)
}

// Overlay renders the matrix with the region footprint and contours drawn
// on top, enlarged by scale.
func (p *Probe) Overlay(res AnalysisResult, scale int) *image.NRGBA {
	return p.processor.CreateOverlay(p.Render(res), res.Footprint, res.Contours, scale)
}

// SaveImage saves an image to file
func (p *Probe) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	return p.processor.SaveImage(img, path, format, quality, lossless)
}

// PixelInfo is the matrix value under a point
type PixelInfo struct {
	Col   int     `json:"col"`
	Row   int     `json:"row"`
	Value float32 `json:"value"`
}

// PixelAt returns the value of the pixel covering point (x, y) in matrix
// space, where pixel (row i, column j) covers [j, j+1) x [i, i+1). ok is
// false outside the matrix.
func PixelAt(m *types.Matrix, x, y float64) (PixelInfo, bool) {
	if m.Empty() || !(x >= 0 && x < float64(m.Cols) && y >= 0 && y < float64(m.Rows)) {
		return PixelInfo{}, false
	}
	col, row := int(math.Floor(x)), int(math.Floor(y))
	return PixelInfo{Col: col, Row: row, Value: m.Value(col, row)}, true
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
