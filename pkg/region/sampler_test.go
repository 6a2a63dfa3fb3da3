package region

import (
	"math"
	"testing"
	"time"

	"github.com/menta2k/image-probe/pkg/types"
)

// createMatrix creates a matrix whose value at (x, y) is y*1000 + x
func createMatrix(rows, cols int) *types.Matrix {
	data := make([]float32, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			data[y*cols+x] = float32(y*1000 + x)
		}
	}
	return types.NewMatrix(rows, cols, data)
}

func TestNew(t *testing.T) {
	sampler := New()
	if sampler == nil {
		t.Fatal("New() returned nil")
	}
	if sampler.config.Interpolation != Bilinear {
		t.Errorf("Expected bilinear interpolation by default, got %v", sampler.config.Interpolation)
	}
}

func TestSampleIdentitySubmatrix(t *testing.T) {
	m := createMatrix(100, 100)
	rect := types.NewRectangle(10, 10, 50, 50)

	s := Sample(m, rect)

	if s.Rows != 50 || s.Cols != 50 {
		t.Fatalf("Expected 50x50 sample, got %dx%d", s.Rows, s.Cols)
	}
	if s.Valid != nil {
		t.Error("Expected every cell to be valid for an in-bounds rectangle")
	}
	for r := 0; r < 50; r++ {
		for c := 0; c < 50; c++ {
			got, _ := s.At(r, c)
			expected := m.Value(c+10, r+10)
			if got != expected {
				t.Fatalf("Cell (%d,%d): expected %v, got %v", r, c, expected, got)
			}
		}
	}
}

func TestSampleNearestMatchesSubmatrix(t *testing.T) {
	m := createMatrix(40, 30)
	sampler := NewWithConfig(Config{Interpolation: Nearest})

	s := sampler.Sample(m, types.NewRectangle(3, 7, 12, 9))

	if s.Rows != 9 || s.Cols != 12 {
		t.Fatalf("Expected 9x12 sample, got %dx%d", s.Rows, s.Cols)
	}
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			got, _ := s.At(r, c)
			if expected := m.Value(c+3, r+7); got != expected {
				t.Errorf("Cell (%d,%d): expected %v, got %v", r, c, expected, got)
			}
		}
	}
}

func TestSampleOutside(t *testing.T) {
	m := createMatrix(20, 20)

	tests := []types.Rectangle{
		types.NewRectangle(100, 100, 10, 10),
		types.NewRectangle(-30, 0, 10, 10),
		types.NewRectangle(0, 20, 5, 5),
		types.NewRectangle(5, 5, 0, 10),
		types.NewRectangle(5, 5, 0.2, 0.2),
	}

	for i, rect := range tests {
		s := Sample(m, rect)
		if !s.Empty() {
			t.Errorf("Case %d: expected empty sample, got %dx%d", i, s.Rows, s.Cols)
		}
	}

	if s := Sample(types.NewMatrix(0, 0, nil), types.NewRectangle(0, 0, 5, 5)); !s.Empty() {
		t.Error("Expected empty sample from an empty matrix")
	}
}

func TestSamplePartialOverlapCrops(t *testing.T) {
	m := createMatrix(10, 10)

	s := Sample(m, types.NewRectangle(-5, -5, 20, 20))

	if s.Rows != 10 || s.Cols != 10 {
		t.Fatalf("Expected 10x10 cropped sample, got %dx%d", s.Rows, s.Cols)
	}
	if s.Offset != [2]int{5, 5} {
		t.Errorf("Expected offset (5,5), got %v", s.Offset)
	}
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			got, _ := s.At(r, c)
			if expected := m.Value(c, r); got != expected {
				t.Fatalf("Cell (%d,%d): expected %v, got %v", r, c, expected, got)
			}
		}
	}
}

func TestSampleRotated90(t *testing.T) {
	m := createMatrix(20, 20)
	rect := types.NewRectangle(10, 0, 5, 3).Rotated(math.Pi / 2)

	s := Sample(m, rect)

	if s.Rows != 3 || s.Cols != 5 {
		t.Fatalf("Expected 3x5 sample, got %dx%d", s.Rows, s.Cols)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 5; c++ {
			got, ok := s.At(r, c)
			if !ok {
				t.Fatalf("Cell (%d,%d) unexpectedly invalid", r, c)
			}
			if expected := m.Value(9-r, c); got != expected {
				t.Errorf("Cell (%d,%d): expected %v, got %v", r, c, expected, got)
			}
		}
	}
}

func TestSampleRotatedPartialMask(t *testing.T) {
	m := createMatrix(16, 16)
	rect := types.NewRectangle(0, 8, 16, 16).Rotated(-math.Pi / 4)

	s := Sample(m, rect)

	if s.Empty() {
		t.Fatal("Expected a non-empty sample")
	}
	if s.Valid == nil {
		t.Fatal("Expected a validity mask for a rotated rectangle crossing the border")
	}

	for r := 0; r < s.Rows; r++ {
		found := false
		for c := 0; c < s.Cols; c++ {
			if _, ok := s.At(r, c); ok {
				found = true
				// the cell centre of a valid cell lies inside the rectangle
				u := (float64(c+s.Offset[0]) + 0.5) / 16
				v := (float64(r+s.Offset[1]) + 0.5) / 16
				if p := rect.Frame().Apply(types.Point{X: u, Y: v}); !rect.Contains(p) {
					t.Errorf("Cell (%d,%d) at %v lies outside the rectangle", r, c, p)
				}
			}
		}
		if !found {
			t.Errorf("Row %d has no valid cells", r)
		}
	}
	for c := 0; c < s.Cols; c++ {
		found := false
		for r := 0; r < s.Rows; r++ {
			if _, ok := s.At(r, c); ok {
				found = true
			}
		}
		if !found {
			t.Errorf("Column %d has no valid cells", c)
		}
	}
}

func TestSampleBilinear(t *testing.T) {
	m := types.NewMatrix(1, 4, []float32{0, 1, 2, 3})
	rect := types.NewRectangle(0.3, 0, 2, 1)

	bilinear := Sample(m, rect)
	nearest := NewWithConfig(Config{Interpolation: Nearest}).Sample(m, rect)

	if bilinear.Cols != 2 || nearest.Cols != 2 {
		t.Fatalf("Expected 2 columns, got %d and %d", bilinear.Cols, nearest.Cols)
	}

	for c, expected := range []float64{0.3, 1.3} {
		got, _ := bilinear.At(0, c)
		if math.Abs(float64(got)-expected) > 1e-6 {
			t.Errorf("Bilinear cell %d: expected %v, got %v", c, expected, got)
		}
	}
	for c, expected := range []float32{0, 1} {
		got, _ := nearest.At(0, c)
		if got != expected {
			t.Errorf("Nearest cell %d: expected %v, got %v", c, expected, got)
		}
	}
}

func TestSampleScaledTransform(t *testing.T) {
	m := createMatrix(20, 20)
	scale := types.Scale(2, 1)
	rect := types.Rectangle{X: 2, Y: 3, Width: 4, Height: 2, Transform: &scale}

	s := Sample(m, rect)

	if s.Rows != 2 || s.Cols != 8 {
		t.Fatalf("Expected 2x8 sample, got %dx%d", s.Rows, s.Cols)
	}
	got, _ := s.At(1, 7)
	if expected := m.Value(9, 4); got != expected {
		t.Errorf("Expected last cell %v, got %v", expected, got)
	}
}

func TestSampleDeterministic(t *testing.T) {
	m := createMatrix(64, 64)
	rect := types.NewRectangle(3.7, 11.2, 30.4, 17.9).Rotated(0.3)

	a := Sample(m, rect)
	b := Sample(m, rect)

	if a.Rows != b.Rows || a.Cols != b.Cols {
		t.Fatalf("Shapes differ: %dx%d vs %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	for i := range a.Data {
		if math.Float32bits(a.Data[i]) != math.Float32bits(b.Data[i]) {
			t.Fatalf("Cell %d differs: %v vs %v", i, a.Data[i], b.Data[i])
		}
	}
}

func TestSampleHugeRectangle(t *testing.T) {
	m := createMatrix(10, 10)

	tests := []struct {
		name       string
		rect       types.Rectangle
		rows, cols int
	}{
		{"off image", types.NewRectangle(-30000, -30000, 30000, 30000), 0, 0},
		{"covering", types.NewRectangle(0, 0, 30000, 30000), 10, 10},
		{"covering rotated", types.NewRectangle(-15000, -15000, 30000, 30000).Rotated(0.3), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			s := Sample(m, tt.rect)
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Errorf("Expected sampling cost to follow the matrix size, took %v", elapsed)
			}
			if tt.name == "off image" && !s.Empty() {
				t.Fatalf("Expected empty sample, got %dx%d", s.Rows, s.Cols)
			}
			if tt.rows == 0 {
				return
			}
			if s.Rows != tt.rows || s.Cols != tt.cols {
				t.Fatalf("Expected %dx%d sample, got %dx%d", tt.rows, tt.cols, s.Rows, s.Cols)
			}
			for r := 0; r < s.Rows; r++ {
				for c := 0; c < s.Cols; c++ {
					if got, _ := s.At(r, c); got != m.Value(c, r) {
						t.Fatalf("Cell (%d,%d): expected %v, got %v", r, c, m.Value(c, r), got)
					}
				}
			}
		})
	}
}

func TestSampleRotatedHugeRectangleCoversMatrix(t *testing.T) {
	m := createMatrix(10, 10)
	rect := types.NewRectangle(-15000, -15000, 30000, 30000).Rotated(0.3)

	s := Sample(m, rect)

	// The rectangle covers the whole matrix, so every pixel centre is hit
	// by some cell and the kept block spans roughly the matrix.
	if s.Empty() {
		t.Fatal("Expected a non-empty sample")
	}
	if s.Rows < 8 || s.Rows > 16 || s.Cols < 8 || s.Cols > 16 {
		t.Errorf("Expected a sample about the size of the matrix, got %dx%d", s.Rows, s.Cols)
	}
}

func TestSampleEnormousWidth(t *testing.T) {
	m := createMatrix(10, 10)

	s := Sample(m, types.NewRectangle(0, 0, 1e300, 10))

	if s.Rows != 10 || s.Cols != 10 {
		t.Fatalf("Expected 10x10 sample, got %dx%d", s.Rows, s.Cols)
	}
	if s.Offset != [2]int{0, 0} {
		t.Errorf("Expected offset (0,0), got %v", s.Offset)
	}
	if got, _ := s.At(3, 7); got != m.Value(7, 3) {
		t.Errorf("Expected %v, got %v", m.Value(7, 3), got)
	}
}

func TestSampleNonFiniteGeometry(t *testing.T) {
	m := createMatrix(10, 10)

	tests := []types.Rectangle{
		types.NewRectangle(math.NaN(), 0, 5, 5),
		types.NewRectangle(0, 0, math.Inf(1), 5),
		types.NewRectangle(0, 0, 5, math.NaN()),
	}

	for i, rect := range tests {
		if s := Sample(m, rect); !s.Empty() {
			t.Errorf("Case %d: expected empty sample, got %dx%d", i, s.Rows, s.Cols)
		}
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		rect       types.Rectangle
		rows, cols int
	}{
		{types.NewRectangle(0, 0, 30, 20), 20, 30},
		{types.NewRectangle(0, 0, 1e300, 2), 2, math.MaxInt},
		{types.NewRectangle(0, 0, math.NaN(), 2), 2, 0},
	}

	for _, tt := range tests {
		rows, cols := Shape(tt.rect)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("Shape(%+v): expected %dx%d, got %dx%d", tt.rect, tt.rows, tt.cols, rows, cols)
		}
	}
}

func TestFootprint(t *testing.T) {
	corners := Footprint(types.NewRectangle(10, 20, 30, 40))

	expected := [4]types.Point{{X: 10, Y: 20}, {X: 40, Y: 20}, {X: 40, Y: 60}, {X: 10, Y: 60}}
	if corners != expected {
		t.Errorf("Expected corners %v, got %v", expected, corners)
	}
}

func TestParseInterpolation(t *testing.T) {
	tests := []struct {
		input    string
		expected Interpolation
		ok       bool
	}{
		{"bilinear", Bilinear, true},
		{"Nearest", Nearest, true},
		{"", Bilinear, true},
		{"cubic", Bilinear, false},
	}

	for _, test := range tests {
		got, ok := ParseInterpolation(test.input)
		if got != test.expected || ok != test.ok {
			t.Errorf("ParseInterpolation(%q) = %v, %v; expected %v, %v", test.input, got, ok, test.expected, test.ok)
		}
	}
}

func BenchmarkSample(b *testing.B) {
	m := createMatrix(1080, 1920)
	rect := types.NewRectangle(100, 100, 500, 400).Rotated(0.2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sample(m, rect)
	}
}
