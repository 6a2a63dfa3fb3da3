// Package isocurve extracts level-set contours from a luminance matrix
// using marching squares.
//
// The matrix is treated as a piecewise-bilinear field sampled on the integer
// grid: sample (row i, column j) sits at point (j, i). Each 2x2 block of
// samples forms a cell; the crossings of the requested level along cell
// edges are found by linear interpolation and joined into segments, which
// are then stitched into polylines.
//
// A sample exactly equal to the level counts as above it. Saddle cells are
// resolved with the mean of their four corners under the same rule.
package isocurve

import (
	"math"

	"github.com/menta2k/image-probe/pkg/types"
)

// Cell edges, clockwise from the top.
const (
	edgeTop = iota
	edgeRight
	edgeBottom
	edgeLeft
)

// segments lists the crossed edge pairs per cell case, where the case index
// sets bit 1 for the top-left corner, 2 top-right, 4 bottom-right and
// 8 bottom-left when that corner is at or above the level. Saddles (5, 10)
// are handled separately.
var segments = [16][][2]int{
	0:  nil,
	1:  {{edgeLeft, edgeTop}},
	2:  {{edgeTop, edgeRight}},
	3:  {{edgeLeft, edgeRight}},
	4:  {{edgeRight, edgeBottom}},
	6:  {{edgeTop, edgeBottom}},
	7:  {{edgeLeft, edgeBottom}},
	8:  {{edgeBottom, edgeLeft}},
	9:  {{edgeTop, edgeBottom}},
	11: {{edgeRight, edgeBottom}},
	12: {{edgeRight, edgeLeft}},
	13: {{edgeTop, edgeRight}},
	14: {{edgeLeft, edgeTop}},
	15: nil,
}

// keyScale sets the spatial hash resolution used when matching endpoints.
const keyScale = 1e6

type key struct{ x, y int64 }

func keyOf(p types.Point) key {
	return key{x: int64(math.Round(p.X * keyScale)), y: int64(math.Round(p.Y * keyScale))}
}

type segment struct {
	a, b   types.Point
	ka, kb key
}

// Trace returns every contour of m at level. The result is empty when level
// lies outside [min, max], is NaN, or the matrix has fewer than 2 rows or columns.
func Trace(m *types.Matrix, level float64) types.ContourSet {
	set := types.ContourSet{Level: level}
	if m.Empty() || m.Rows < 2 || m.Cols < 2 || math.IsNaN(level) {
		return set
	}

	lo, hi := m.MinMax()
	if level < float64(lo) || level > float64(hi) {
		return set
	}

	set.Lines = stitch(march(m, level))
	return set
}

// march emits one or two segments per crossed cell in row-major cell order.
// Zero-length and repeated segments are dropped.
func march(m *types.Matrix, level float64) []segment {
	var segs []segment
	seen := make(map[[2]key]struct{})

	for y := 0; y < m.Rows-1; y++ {
		top, bottom := m.Row(y), m.Row(y+1)
		for x := 0; x < m.Cols-1; x++ {
			c := cell{
				x: x, y: y, level: level,
				tl: float64(top[x]), tr: float64(top[x+1]),
				br: float64(bottom[x+1]), bl: float64(bottom[x]),
			}

			for _, pair := range c.pairs() {
				s := segment{a: c.crossing(pair[0]), b: c.crossing(pair[1])}
				s.ka, s.kb = keyOf(s.a), keyOf(s.b)
				if s.ka == s.kb {
					continue
				}
				id := [2]key{s.ka, s.kb}
				if less(s.kb, s.ka) {
					id = [2]key{s.kb, s.ka}
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				segs = append(segs, s)
			}
		}
	}
	return segs
}

type cell struct {
	x, y           int
	level          float64
	tl, tr, br, bl float64
}

func (c cell) index() int {
	idx := 0
	if c.tl >= c.level {
		idx |= 1
	}
	if c.tr >= c.level {
		idx |= 2
	}
	if c.br >= c.level {
		idx |= 4
	}
	if c.bl >= c.level {
		idx |= 8
	}
	return idx
}

func (c cell) pairs() [][2]int {
	switch idx := c.index(); idx {
	case 5, 10:
		centreAbove := (c.tl+c.tr+c.br+c.bl)/4 >= c.level
		// Connected above-corners leave the two below-corners cut off, and vice versa.
		if (idx == 5) == centreAbove {
			return [][2]int{{edgeTop, edgeRight}, {edgeLeft, edgeBottom}}
		}
		return [][2]int{{edgeLeft, edgeTop}, {edgeRight, edgeBottom}}
	default:
		return segments[idx]
	}
}

// crossing interpolates the level crossing on edge e. Horizontal edges are
// always interpolated left to right and vertical edges top to bottom, so
// neighbouring cells produce identical points on their shared edge.
func (c cell) crossing(e int) types.Point {
	x, y := float64(c.x), float64(c.y)
	switch e {
	case edgeTop:
		return types.Point{X: x + frac(c.tl, c.tr, c.level), Y: y}
	case edgeRight:
		return types.Point{X: x + 1, Y: y + frac(c.tr, c.br, c.level)}
	case edgeBottom:
		return types.Point{X: x + frac(c.bl, c.br, c.level), Y: y + 1}
	default:
		return types.Point{X: x, Y: y + frac(c.tl, c.bl, c.level)}
	}
}

func frac(a, b, level float64) float64 {
	if a == b {
		return 0.5
	}
	t := (level - a) / (b - a)
	return math.Min(1, math.Max(0, t))
}

func less(a, b key) bool {
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}
