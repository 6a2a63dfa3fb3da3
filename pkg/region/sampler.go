// Package region resamples the part of a luminance matrix covered by a
// possibly rotated or scaled rectangle.
package region

import (
	"math"
	"strings"

	"github.com/menta2k/image-probe/pkg/types"
)

// Interpolation selects how values between pixel centres are computed.
type Interpolation int

const (
	Bilinear Interpolation = iota
	Nearest
)

func (i Interpolation) String() string {
	switch i {
	case Bilinear:
		return "bilinear"
	case Nearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// ParseInterpolation parses "bilinear" or "nearest".
func ParseInterpolation(s string) (Interpolation, bool) {
	switch strings.ToLower(s) {
	case "bilinear", "linear", "":
		return Bilinear, true
	case "nearest", "nn":
		return Nearest, true
	}
	return Bilinear, false
}

// snapEpsilon pulls coordinates within rounding noise of a pixel centre onto it.
const snapEpsilon = 1e-9

// Sampler extracts region samples.
type Sampler struct {
	config Config
}

// Config holds configuration for the sampler
type Config struct {
	Interpolation Interpolation
}

// New creates a Sampler using bilinear interpolation.
func New() *Sampler {
	return &Sampler{config: Config{Interpolation: Bilinear}}
}

// NewWithConfig creates a Sampler with custom configuration.
func NewWithConfig(config Config) *Sampler {
	return &Sampler{config: config}
}

// Sample extracts the region under rect with bilinear interpolation.
func Sample(m *types.Matrix, rect types.Rectangle) *types.RegionSample {
	return New().Sample(m, rect)
}

// Footprint returns the corners of rect in matrix coordinates.
func Footprint(rect types.Rectangle) [4]types.Point {
	return rect.Corners()
}

// maxIndex is the largest footprint cell index that float64 addresses exactly.
const maxIndex = 1 << 52

// Shape returns the number of output rows and columns for rect before any
// cropping: the lengths of its height and width edges in matrix space.
// Counts saturate at math.MaxInt; non-finite lengths count as zero.
func Shape(rect types.Rectangle) (rows, cols int) {
	ny, nx := lengths(rect)
	return toCount(ny), toCount(nx)
}

func lengths(rect types.Rectangle) (ny, nx float64) {
	ax, ay := rect.Axes()
	return math.Round(ay.Len()), math.Round(ax.Len())
}

func toCount(f float64) int {
	switch {
	case !(f > 0):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	}
	return int(f)
}

// Sample extracts the region under rect. Cell (r, c) of the footprint grid
// samples the matrix at the centre of the corresponding sub-rectangle;
// matrix pixel (i, j) covers [j, j+1) x [i, i+1). Cells falling outside the
// matrix are dropped and the result is cropped to the remaining ones, so a
// rectangle with no overlap yields an empty sample. Only cells near the
// matrix are visited, so the cost is bounded by the matrix size rather than
// the rectangle size.
func (s *Sampler) Sample(m *types.Matrix, rect types.Rectangle) *types.RegionSample {
	ny, nx := lengths(rect)
	if m.Empty() || !(nx >= 1) || !(ny >= 1) || math.IsInf(nx, 0) || math.IsInf(ny, 0) {
		return &types.RegionSample{}
	}

	g := grid{
		origin: rect.Frame().Apply(types.Point{}),
		nx:     nx,
		ny:     ny,
		w:      float64(m.Cols),
		h:      float64(m.Rows),
	}
	g.ax, g.ay = rect.Axes()

	r0, r1, c0, c1, ok := g.candidates(rect)
	if !ok {
		return &types.RegionSample{}
	}

	rmin, rmax, cmin, cmax := r1+1, -1, c1+1, -1
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if !g.inside(g.at(r, c)) {
				continue
			}
			rmin, rmax = min(rmin, r), max(rmax, r)
			cmin, cmax = min(cmin, c), max(cmax, c)
		}
	}
	if rmax < 0 {
		return &types.RegionSample{}
	}

	rows, cols := rmax-rmin+1, cmax-cmin+1
	out := &types.RegionSample{
		Rows:   rows,
		Cols:   cols,
		Data:   make([]float32, rows*cols),
		Offset: [2]int{cmin, rmin},
	}

	var valid []bool
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			p := g.at(r+rmin, c+cmin)
			if !g.inside(p) {
				if valid == nil {
					valid = make([]bool, rows*cols)
					for k := 0; k < i; k++ {
						valid[k] = true
					}
				}
				continue
			}
			if valid != nil {
				valid[i] = true
			}
			out.Data[i] = s.interpolate(m, p)
		}
	}
	out.Valid = valid

	return out
}

type grid struct {
	origin types.Point
	ax, ay types.Point
	nx, ny float64
	w, h   float64
}

// candidates maps the matrix bounds into the rectangle's local frame and
// returns the footprint rows and columns that can hold in-bounds cells,
// widened by one cell on each side. ok is false when no cell can overlap
// the matrix or the footprint has no area.
func (g grid) candidates(rect types.Rectangle) (r0, r1, c0, c1 int, ok bool) {
	inv, err := rect.Frame().Invert()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	umin, vmin := math.Inf(1), math.Inf(1)
	umax, vmax := math.Inf(-1), math.Inf(-1)
	for _, p := range []types.Point{{}, {X: g.w}, {X: g.w, Y: g.h}, {Y: g.h}} {
		l := inv.Apply(p)
		umin, umax = math.Min(umin, l.X), math.Max(umax, l.X)
		vmin, vmax = math.Min(vmin, l.Y), math.Max(vmax, l.Y)
	}

	c0, c1, okc := cellRange(umin, umax, g.nx)
	r0, r1, okr := cellRange(vmin, vmax, g.ny)
	return r0, r1, c0, c1, okc && okr
}

// cellRange converts a local coordinate interval into the footprint cell
// indices whose centres (i+0.5)/n can fall inside it, clamped to [0, n-1].
func cellRange(lo, hi, n float64) (int, int, bool) {
	first := math.Max(math.Floor(lo*n-0.5)-1, 0)
	last := math.Min(math.Ceil(hi*n-0.5)+1, n-1)
	if !(first <= last) || last > maxIndex {
		return 0, 0, false
	}
	return int(first), int(last), true
}

// at returns the matrix-space position of footprint cell (r, c).
func (g grid) at(r, c int) types.Point {
	u := float64(c) + 0.5
	v := float64(r) + 0.5
	return types.Point{
		X: g.origin.X + g.ax.X*u/g.nx + g.ay.X*v/g.ny,
		Y: g.origin.Y + g.ax.Y*u/g.nx + g.ay.Y*v/g.ny,
	}
}

func (g grid) inside(p types.Point) bool {
	return p.X >= 0 && p.X < g.w && p.Y >= 0 && p.Y < g.h
}

func (s *Sampler) interpolate(m *types.Matrix, p types.Point) float32 {
	if s.config.Interpolation == Nearest {
		x := clampIndex(int(math.Floor(p.X)), m.Cols)
		y := clampIndex(int(math.Floor(p.Y)), m.Rows)
		return m.Value(x, y)
	}

	x0, tx := split(p.X-0.5, m.Cols)
	y0, ty := split(p.Y-0.5, m.Rows)
	x1 := min(x0+1, m.Cols-1)
	y1 := min(y0+1, m.Rows-1)

	top := (1-tx)*float64(m.Value(x0, y0)) + tx*float64(m.Value(x1, y0))
	if ty == 0 {
		return float32(top)
	}
	bottom := (1-tx)*float64(m.Value(x0, y1)) + tx*float64(m.Value(x1, y1))
	return float32((1-ty)*top + ty*bottom)
}

// split returns the lower neighbour index of f and the fractional weight of
// the upper neighbour, clamping at the edges of an axis of length n.
func split(f float64, n int) (int, float64) {
	if r := math.Round(f); math.Abs(f-r) < snapEpsilon {
		f = r
	}
	if f <= 0 {
		return 0, 0
	}
	if f >= float64(n-1) {
		return n - 1, 0
	}
	i := math.Floor(f)
	return int(i), f - i
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
