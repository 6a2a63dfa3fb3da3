package histogram

import (
	"testing"

	"github.com/menta2k/image-probe/pkg/types"
)

func TestDefaultLevels(t *testing.T) {
	h, err := Compute(createRamp(4, 4), 16)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	levels := DefaultLevels(h)
	if levels.Min != 0 || levels.Max != 15 {
		t.Errorf("Expected levels [0,15], got [%v,%v]", levels.Min, levels.Max)
	}
}

func TestClippedLevels(t *testing.T) {
	h, err := Compute(createRamp(10, 10), 100)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	levels := ClippedLevels(h, 0.05)
	if levels.Min <= 0 || levels.Min > 6 {
		t.Errorf("Expected clipped minimum in (0,6], got %v", levels.Min)
	}
	if levels.Max >= 99 || levels.Max < 93 {
		t.Errorf("Expected clipped maximum in [93,99), got %v", levels.Max)
	}

	full := ClippedLevels(h, 0)
	if full != DefaultLevels(h) {
		t.Errorf("Expected zero clip to match default levels, got %+v", full)
	}
}

func TestDefaultIsoLevel(t *testing.T) {
	m := types.NewMatrix(1, 3, []float32{10, 20, 60})

	level := DefaultIsoLevel(m, 0.6)
	if level != 40 {
		t.Errorf("Expected iso level 40, got %v", level)
	}
}

func TestLUTMap(t *testing.T) {
	lut := NewLUT(types.Levels{Min: 100, Max: 200})

	tests := []struct {
		value    float64
		expected uint8
	}{
		{50, 0},
		{100, 0},
		{150, 128},
		{200, 255},
		{1000, 255},
	}

	for _, test := range tests {
		got := lut.Map(test.value)
		if got != test.expected {
			t.Errorf("Map(%v) = %d, expected %d", test.value, got, test.expected)
		}
	}
}

func TestLUTFlatWindow(t *testing.T) {
	lut := NewLUT(types.Levels{Min: 5, Max: 5})

	if lut.Map(4) != 0 {
		t.Errorf("Expected values below a flat window to map to 0")
	}
	if lut.Map(5) != 255 {
		t.Errorf("Expected values at a flat window to map to 255")
	}
}

func TestRender(t *testing.T) {
	m := types.NewMatrix(2, 3, []float32{0, 5, 10, 10, 5, 0})

	img := Render(m, types.Levels{Min: 0, Max: 10})

	bounds := img.Bounds()
	if bounds.Dx() != 3 || bounds.Dy() != 2 {
		t.Fatalf("Expected 3x2 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(2, 0).Y != 255 {
		t.Errorf("Expected first row to ramp from 0 to 255, got %d..%d", img.GrayAt(0, 0).Y, img.GrayAt(2, 0).Y)
	}
	if img.GrayAt(0, 1).Y != 255 || img.GrayAt(2, 1).Y != 0 {
		t.Errorf("Expected second row to ramp from 255 to 0, got %d..%d", img.GrayAt(0, 1).Y, img.GrayAt(2, 1).Y)
	}
}
