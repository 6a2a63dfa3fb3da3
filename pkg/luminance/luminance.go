// Package luminance turns decoded image arrays into single channel luminance matrices.
package luminance

import (
	"fmt"

	"github.com/menta2k/image-probe/pkg/types"
)

// ITU-R BT.601 luma weights.
const (
	WeightR = 0.2989
	WeightG = 0.5870
	WeightB = 0.1140
)

// UnsupportedShapeError reports a decoded image that is not a 2-D array or
// a 3-D array with at least three channels.
type UnsupportedShapeError struct {
	Shape  []int
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("unsupported image shape %v: %s", e.Shape, e.Reason)
}

// NonFiniteError reports a NaN or infinite input sample.
type NonFiniteError struct {
	Index int
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("non-finite sample %v at index %d", e.Value, e.Index)
}

// Convert produces the luminance matrix for raw. Single channel input is
// cast to float32 unchanged; RGB input is weighted with the BT.601 luma
// coefficients in float64 before narrowing. Channels past the third are ignored.
func Convert(raw types.RawImage) (*types.Matrix, error) {
	if err := checkShape(raw); err != nil {
		return nil, err
	}

	h, w := raw.Shape[0], raw.Shape[1]
	out := make([]float32, h*w)

	if len(raw.Shape) == 2 {
		for i, v := range raw.Data {
			out[i] = float32(v)
			if !types.IsFinite(float64(out[i])) {
				return nil, &NonFiniteError{Index: i, Value: v}
			}
		}
		return types.NewMatrix(h, w, out), nil
	}

	c := raw.Shape[2]
	for i := range out {
		px := raw.Data[i*c : i*c+3]
		y := WeightR*px[0] + WeightG*px[1] + WeightB*px[2]
		out[i] = float32(y)
		if !types.IsFinite(float64(out[i])) {
			return nil, &NonFiniteError{Index: i * c, Value: y}
		}
	}
	return types.NewMatrix(h, w, out), nil
}

func checkShape(raw types.RawImage) error {
	shape := append([]int(nil), raw.Shape...)
	switch {
	case len(shape) < 2 || len(shape) > 3:
		return &UnsupportedShapeError{Shape: shape, Reason: fmt.Sprintf("expected 2 or 3 dimensions, got %d", len(shape))}
	case len(shape) == 3 && shape[2] < 3:
		return &UnsupportedShapeError{Shape: shape, Reason: fmt.Sprintf("expected at least 3 channels, got %d", shape[2])}
	}
	for _, d := range shape {
		if d < 0 {
			return &UnsupportedShapeError{Shape: shape, Reason: "negative dimension"}
		}
	}
	if raw.Size() != len(raw.Data) {
		return &UnsupportedShapeError{Shape: shape, Reason: fmt.Sprintf("shape implies %d values, got %d", raw.Size(), len(raw.Data))}
	}
	return nil
}
