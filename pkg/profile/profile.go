// Package profile reduces region samples to 1-D brightness profiles.
package profile

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/image-probe/pkg/types"
)

// Reduce averages s along axis. AxisRows collapses the rows and yields one
// value per column; AxisColumns yields one value per row. Cells flagged
// invalid in the sample do not contribute; a line with no valid cells
// reduces to NaN. An empty sample gives an empty profile.
func Reduce(s *types.RegionSample, axis types.Axis) types.Profile {
	if s.Empty() {
		return types.Profile{}
	}

	if axis == types.AxisColumns {
		out := make(types.Profile, s.Rows)
		buf := make([]float64, 0, s.Cols)
		for r := range out {
			buf = buf[:0]
			for c := 0; c < s.Cols; c++ {
				if v, ok := s.At(r, c); ok {
					buf = append(buf, float64(v))
				}
			}
			out[r] = mean(buf)
		}
		return out
	}

	out := make(types.Profile, s.Cols)
	buf := make([]float64, 0, s.Rows)
	for c := range out {
		buf = buf[:0]
		for r := 0; r < s.Rows; r++ {
			if v, ok := s.At(r, c); ok {
				buf = append(buf, float64(v))
			}
		}
		out[c] = mean(buf)
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}
