package luminance

import (
	"errors"
	"math"
	"testing"

	"github.com/menta2k/image-probe/pkg/types"
)

// createRGB builds an h x w x c image with distinct values per channel
func createRGB(h, w, c int) types.RawImage {
	raw := types.NewRawImage(h, w, c)
	for i := range raw.Data {
		raw.Data[i] = float64((i*37)%256) + 0.25
	}
	return raw
}

func TestConvertRGB(t *testing.T) {
	raw := createRGB(4, 5, 3)

	m, err := Convert(raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if m.Rows != 4 || m.Cols != 5 {
		t.Fatalf("Expected 4x5 matrix, got %dx%d", m.Rows, m.Cols)
	}

	for i := 0; i < 20; i++ {
		r, g, b := raw.Data[i*3], raw.Data[i*3+1], raw.Data[i*3+2]
		expected := float32(0.2989*r + 0.5870*g + 0.1140*b)
		if m.Data[i] != expected {
			t.Errorf("Pixel %d: expected %v, got %v", i, expected, m.Data[i])
		}
	}
}

func TestConvertIgnoresExtraChannels(t *testing.T) {
	rgb := createRGB(3, 3, 3)
	rgba := types.NewRawImage(3, 3, 5)
	for i := 0; i < 9; i++ {
		copy(rgba.Data[i*5:i*5+3], rgb.Data[i*3:i*3+3])
		rgba.Data[i*5+3] = 255
		rgba.Data[i*5+4] = -1000
	}

	a, err := Convert(rgb)
	if err != nil {
		t.Fatalf("Convert RGB failed: %v", err)
	}
	b, err := Convert(rgba)
	if err != nil {
		t.Fatalf("Convert RGBA failed: %v", err)
	}

	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Errorf("Pixel %d: extra channels changed luminance %v -> %v", i, a.Data[i], b.Data[i])
		}
	}
}

func TestConvertGrayKeepsValues(t *testing.T) {
	raw := types.RawImage{
		Shape: []int{2, 3},
		Data:  []float64{-5, 0, 1.5, 300, 65535, 1e6},
	}

	m, err := Convert(raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	for i, v := range raw.Data {
		if m.Data[i] != float32(v) {
			t.Errorf("Index %d: expected %v, got %v", i, float32(v), m.Data[i])
		}
	}
}

func TestConvertUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  types.RawImage
	}{
		{"1-D", types.RawImage{Shape: []int{4}, Data: make([]float64, 4)}},
		{"4-D", types.RawImage{Shape: []int{2, 2, 3, 1}, Data: make([]float64, 12)}},
		{"two channels", types.RawImage{Shape: []int{2, 2, 2}, Data: make([]float64, 8)}},
		{"no shape", types.RawImage{}},
		{"short data", types.RawImage{Shape: []int{2, 2}, Data: make([]float64, 3)}},
	}

	for _, test := range tests {
		_, err := Convert(test.raw)
		var shapeErr *UnsupportedShapeError
		if !errors.As(err, &shapeErr) {
			t.Errorf("%s: expected UnsupportedShapeError, got %v", test.name, err)
		}
	}
}

func TestConvertRejectsNonFinite(t *testing.T) {
	raw := types.RawImage{Shape: []int{1, 3}, Data: []float64{1, math.NaN(), 3}}

	_, err := Convert(raw)
	var nf *NonFiniteError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NonFiniteError, got %v", err)
	}
	if nf.Index != 1 {
		t.Errorf("Expected index 1, got %d", nf.Index)
	}

	overflow := types.RawImage{Shape: []int{1, 1}, Data: []float64{1e300}}
	if _, err := Convert(overflow); !errors.As(err, &nf) {
		t.Errorf("Expected NonFiniteError for float32 overflow, got %v", err)
	}
}

func TestConvertEmpty(t *testing.T) {
	// zero-size dims are a valid shape, not an UnsupportedShapeError
	for _, shape := range [][]int{{0, 7}, {4, 0}, {4, 0, 3}, {0, 0, 4}} {
		m, err := Convert(types.NewRawImage(shape...))
		if err != nil {
			t.Fatalf("Convert(%v) failed: %v", shape, err)
		}
		if !m.Empty() {
			t.Errorf("Convert(%v): expected empty matrix, got %dx%d", shape, m.Rows, m.Cols)
		}
	}

	var se *UnsupportedShapeError
	negative := types.RawImage{Shape: []int{-1, 3}}
	if _, err := Convert(negative); !errors.As(err, &se) {
		t.Errorf("Expected UnsupportedShapeError for negative dimension, got %v", err)
	}
}

func BenchmarkConvertRGB(b *testing.B) {
	raw := createRGB(1080, 1920, 3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Convert(raw)
	}
}
