// Package histogram bins luminance matrices and derives display mappings from the result.
package histogram

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/menta2k/image-probe/pkg/types"
)

// DefaultBinCount is used when the caller has no preference.
const DefaultBinCount = 256

// InvalidBinCountError reports a non-positive bin count.
type InvalidBinCountError struct {
	Count int
}

func (e *InvalidBinCountError) Error() string {
	return fmt.Sprintf("invalid bin count %d: must be positive", e.Count)
}

// Compute bins every sample of m into binCount equal-width intervals over
// [min, max]. Intervals are right-open except the last, which is closed.
// A constant matrix yields a single bin [min, min] holding every sample.
func Compute(m *types.Matrix, binCount int) (types.Histogram, error) {
	if binCount <= 0 {
		return types.Histogram{}, &InvalidBinCountError{Count: binCount}
	}
	if m.Empty() {
		return types.Histogram{}, nil
	}

	lo, hi := m.MinMax()
	total := len(m.Data)

	if lo == hi {
		return types.Histogram{
			Bins:  []types.Bin{{Start: float64(lo), End: float64(lo), Count: total}},
			Min:   lo,
			Max:   hi,
			Total: total,
		}, nil
	}

	edges := floats.Span(make([]float64, binCount+1), float64(lo), float64(hi))
	counts := make([]int, binCount)
	width := (float64(hi) - float64(lo)) / float64(binCount)

	for _, v := range m.Data {
		counts[binIndex(float64(v), edges, width)]++
	}

	bins := make([]types.Bin, binCount)
	for i := range bins {
		bins[i] = types.Bin{Start: edges[i], End: edges[i+1], Count: counts[i]}
	}

	return types.Histogram{Bins: bins, Min: lo, Max: hi, Total: total}, nil
}

// binIndex locates v against the reported edges so that bin membership always
// agrees with the Start/End values handed back to the caller.
func binIndex(v float64, edges []float64, width float64) int {
	last := len(edges) - 2
	idx := int((v - edges[0]) / width)
	if idx > last {
		idx = last
	}
	if idx < 0 {
		idx = 0
	}
	for idx > 0 && v < edges[idx] {
		idx--
	}
	for idx < last && v >= edges[idx+1] {
		idx++
	}
	return idx
}

// AutoBinCount picks a bin count from the matrix's value range and size.
// Integer-valued data with a narrow range gets one bin per level; small
// matrices are capped at the square root of their sample count.
func AutoBinCount(m *types.Matrix) int {
	if m.Empty() {
		return DefaultBinCount
	}

	lo, hi := m.MinMax()
	span := float64(hi) - float64(lo)
	if span == 0 {
		return 1
	}

	bins := DefaultBinCount
	if integral(m) && span < float64(bins) {
		bins = int(span) + 1
	}

	root := int(math.Ceil(math.Sqrt(float64(len(m.Data)))))
	if root < bins {
		bins = max(root, 2)
	}

	return bins
}

func integral(m *types.Matrix) bool {
	for _, v := range m.Data {
		if float64(v) != math.Trunc(float64(v)) {
			return false
		}
	}
	return true
}
