// Package analyzer summarises a luminance matrix.
package analyzer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/image-probe/pkg/types"
)

// MatrixAnalyzer reports size and brightness statistics for luminance matrices
type MatrixAnalyzer struct {
	config Config
}

// Config holds configuration for the matrix analyzer
type Config struct {
	// MinImageSize is the smallest accepted width and height; 0 accepts anything.
	MinImageSize int
}

// New creates a new MatrixAnalyzer with default configuration
func New() *MatrixAnalyzer {
	return &MatrixAnalyzer{}
}

// NewWithConfig creates a new MatrixAnalyzer with custom configuration
func NewWithConfig(config Config) *MatrixAnalyzer {
	return &MatrixAnalyzer{config: config}
}

// ImageInfo contains the shape and brightness statistics of a matrix
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Sum         float64 `json:"sum"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
}

// GetImageInfo returns basic information about a matrix. Statistics are
// zero for an empty matrix.
func (a *MatrixAnalyzer) GetImageInfo(m *types.Matrix) ImageInfo {
	if m.Empty() {
		info := ImageInfo{}
		if m != nil {
			info.Width, info.Height = m.Cols, m.Rows
		}
		return info
	}

	info := ImageInfo{
		Width:  m.Cols,
		Height: m.Rows,
		Area:   m.Cols * m.Rows,
	}
	info.AspectRatio = float64(m.Cols) / float64(m.Rows)

	lo, hi := m.MinMax()
	info.Min, info.Max = float64(lo), float64(hi)

	info.Sum = mat.Sum(m)

	values := m.Float64s()
	if len(values) > 1 {
		info.Mean, info.StdDev = stat.MeanStdDev(values, nil)
	} else {
		info.Mean = values[0]
	}
	if math.IsNaN(info.StdDev) {
		info.StdDev = 0
	}
	return info
}

// ValidateMatrix checks if a matrix meets the minimum size
func (a *MatrixAnalyzer) ValidateMatrix(m *types.Matrix) error {
	if a.config.MinImageSize <= 0 {
		return nil
	}
	rows, cols := 0, 0
	if m != nil {
		rows, cols = m.Rows, m.Cols
	}
	if cols < a.config.MinImageSize || rows < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)", cols, rows, a.config.MinImageSize)
	}
	return nil
}
