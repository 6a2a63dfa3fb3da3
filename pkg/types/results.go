package types

import "strings"

// RegionSample is a resampled block of luminance values covering the part
// of a Rectangle that overlaps the matrix.
type RegionSample struct {
	Rows int
	Cols int
	Data []float32
	// Valid marks in-bounds cells. It is nil when every cell is valid, which
	// is always the case for axis-aligned rectangles.
	Valid []bool
	// Offset is the (column, row) index of the first kept cell within the
	// full, uncropped footprint grid.
	Offset [2]int
}

// Empty reports whether the sample holds no cells.
func (s *RegionSample) Empty() bool {
	return s == nil || s.Rows == 0 || s.Cols == 0
}

// At returns the value in row r, column c and whether that cell is valid.
func (s *RegionSample) At(r, c int) (float32, bool) {
	i := r*s.Cols + c
	if s.Valid != nil && !s.Valid[i] {
		return 0, false
	}
	return s.Data[i], true
}

// Bin is one histogram interval with the number of samples that fell into it.
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram is an ordered set of equal-width bins spanning [Min, Max].
type Histogram struct {
	Bins  []Bin   `json:"bins"`
	Min   float32 `json:"min"`
	Max   float32 `json:"max"`
	Total int     `json:"total"`
}

// Counts returns the bin counts in order.
func (h Histogram) Counts() []int {
	out := make([]int, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = b.Count
	}
	return out
}

// Levels is a display mapping window: Min maps to black, Max to white.
type Levels struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Polyline is an ordered run of points. Closed polylines repeat no point;
// the last point connects back to the first.
type Polyline struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
}

// ContourSet holds every polyline traced at Level.
type ContourSet struct {
	Level float64    `json:"level"`
	Lines []Polyline `json:"lines"`
}

// Empty reports whether no contour was found.
func (c ContourSet) Empty() bool {
	return len(c.Lines) == 0
}

// Profile is a 1-D brightness sequence.
type Profile []float64

// Axis selects which dimension a profile collapses.
type Axis int

const (
	// AxisRows averages down each column, giving one value per column.
	AxisRows Axis = iota
	// AxisColumns averages across each row, giving one value per row.
	AxisColumns
)

func (a Axis) String() string {
	switch a {
	case AxisRows:
		return "rows"
	case AxisColumns:
		return "columns"
	default:
		return "unknown"
	}
}

// ParseAxis parses "rows" or "columns".
func ParseAxis(s string) (Axis, bool) {
	switch strings.ToLower(s) {
	case "rows", "row", "0", "":
		return AxisRows, true
	case "columns", "column", "cols", "1":
		return AxisColumns, true
	}
	return AxisRows, false
}
