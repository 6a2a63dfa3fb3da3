// Package types holds the data model shared by the analysis packages.
package types

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RawImage is a decoded numeric array as handed over by an image loader.
// Shape is (H, W) for single channel data or (H, W, C) for multi channel data;
// Data is row-major with channels innermost.
type RawImage struct {
	Shape []int
	Data  []float64
}

// NewRawImage allocates a zeroed RawImage of the given shape.
func NewRawImage(shape ...int) RawImage {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n < 0 {
		n = 0
	}
	return RawImage{Shape: append([]int(nil), shape...), Data: make([]float64, n)}
}

// Size returns the number of elements implied by Shape.
func (r RawImage) Size() int {
	if len(r.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range r.Shape {
		n *= d
	}
	return n
}

// Matrix is a single channel luminance field. Values are stored row-major
// and are never modified after construction.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix wraps data as a rows x cols matrix. It panics if the lengths disagree.
func NewMatrix(rows, cols int, data []float32) *Matrix {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		panic(fmt.Sprintf("types: matrix %dx%d does not match %d values", rows, cols, len(data)))
	}
	return &Matrix{Rows: rows, Cols: cols, Data: data}
}

// Empty reports whether the matrix holds no samples.
func (m *Matrix) Empty() bool {
	return m == nil || m.Rows == 0 || m.Cols == 0
}

// Value returns the sample at column x, row y.
func (m *Matrix) Value(x, y int) float32 {
	return m.Data[y*m.Cols+x]
}

// Row returns row i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// MinMax returns the smallest and largest sample. Both are zero for an empty matrix.
func (m *Matrix) MinMax() (float32, float32) {
	if m.Empty() {
		return 0, 0
	}
	lo, hi := m.Data[0], m.Data[0]
	for _, v := range m.Data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Dims implements mat.Matrix.
func (m *Matrix) Dims() (r, c int) {
	return m.Rows, m.Cols
}

// At implements mat.Matrix.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.Rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.Cols {
		panic(mat.ErrColAccess)
	}
	return float64(m.Data[i*m.Cols+j])
}

// T implements mat.Matrix.
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Float64s copies the samples into a new float64 slice.
func (m *Matrix) Float64s() []float64 {
	out := make([]float64, len(m.Data))
	for i, v := range m.Data {
		out[i] = float64(v)
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
