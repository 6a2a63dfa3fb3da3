package histogram

import (
	"image"
	"math"

	"github.com/menta2k/image-probe/pkg/types"
)

// lutSize is the resolution of the display lookup table.
const lutSize = 4096

// DefaultLevels maps the full histogram range onto the display range.
func DefaultLevels(h types.Histogram) types.Levels {
	return types.Levels{Min: float64(h.Min), Max: float64(h.Max)}
}

// ClippedLevels discards fraction of the samples from each tail before
// choosing the display window. Fractions outside (0, 0.5) fall back to DefaultLevels.
func ClippedLevels(h types.Histogram, fraction float64) types.Levels {
	if fraction <= 0 || fraction >= 0.5 || h.Total == 0 || len(h.Bins) < 2 {
		return DefaultLevels(h)
	}

	cut := fraction * float64(h.Total)
	levels := DefaultLevels(h)

	acc := 0
	for _, b := range h.Bins {
		acc += b.Count
		if float64(acc) > cut {
			levels.Min = b.Start
			break
		}
	}

	acc = 0
	for i := len(h.Bins) - 1; i >= 0; i-- {
		acc += h.Bins[i].Count
		if float64(acc) > cut {
			levels.Max = h.Bins[i].End
			break
		}
	}

	if levels.Max < levels.Min {
		return DefaultLevels(h)
	}
	return levels
}

// DefaultIsoLevel returns the level lying fraction of the way from the
// matrix minimum to its maximum.
func DefaultIsoLevel(m *types.Matrix, fraction float64) float64 {
	lo, hi := m.MinMax()
	return float64(lo) + (float64(hi)-float64(lo))*fraction
}

// LUT maps luminance values onto 8-bit display intensities.
type LUT struct {
	levels types.Levels
	table  [lutSize]uint8
}

// NewLUT builds a linear lookup table for the given window.
func NewLUT(levels types.Levels) *LUT {
	l := &LUT{levels: levels}
	for i := range l.table {
		l.table[i] = uint8(math.Round(float64(i) * 255 / (lutSize - 1)))
	}
	return l
}

// Map returns the display intensity for v.
func (l *LUT) Map(v float64) uint8 {
	span := l.levels.Max - l.levels.Min
	if span <= 0 {
		if v >= l.levels.Min {
			return 255
		}
		return 0
	}

	t := (v - l.levels.Min) / span
	switch {
	case t <= 0 || math.IsNaN(t):
		return l.table[0]
	case t >= 1:
		return l.table[lutSize-1]
	}
	return l.table[int(t*(lutSize-1)+0.5)]
}

// Apply renders m through the lookup table. Row y of the matrix becomes
// row y of the image.
func (l *LUT) Apply(m *types.Matrix) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Cols, m.Rows))
	for y := 0; y < m.Rows; y++ {
		row := m.Row(y)
		off := y * img.Stride
		for x, v := range row {
			img.Pix[off+x] = l.Map(float64(v))
		}
	}
	return img
}

// Render is shorthand for NewLUT(levels).Apply(m).
func Render(m *types.Matrix, levels types.Levels) *image.Gray {
	return NewLUT(levels).Apply(m)
}
