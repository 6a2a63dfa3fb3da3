package types

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a location in matrix space: X runs along columns, Y along rows.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two points.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Len returns the Euclidean length of p taken as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Affine is a 2x3 affine transformation.
// [A B TX]
// [C D TY]
type Affine struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Rotation returns a rotation about the origin. Positive angles turn the
// x axis towards the y axis.
func Rotation(radians float64) Affine {
	cos, sin := math.Cos(radians), math.Sin(radians)
	return Affine{A: cos, B: -sin, C: sin, D: cos}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) Affine {
	return Affine{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t Affine) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyLinear applies only the linear part, ignoring translation.
func (t Affine) ApplyLinear(p Point) Point {
	return Point{X: t.A*p.X + t.B*p.Y, Y: t.C*p.X + t.D*p.Y}
}

// Mul returns t∘o, the transform that applies o first and then t.
func (t Affine) Mul(o Affine) Affine {
	return Affine{
		A:  t.A*o.A + t.B*o.C,
		B:  t.A*o.B + t.B*o.D,
		TX: t.A*o.TX + t.B*o.TY + t.TX,
		C:  t.C*o.A + t.D*o.C,
		D:  t.C*o.B + t.D*o.D,
		TY: t.C*o.TX + t.D*o.TY + t.TY,
	}
}

// Det returns the determinant of the linear part.
func (t Affine) Det() float64 {
	return t.A*t.D - t.B*t.C
}

// Invert returns the inverse transform.
func (t Affine) Invert() (Affine, error) {
	for _, v := range []float64{t.A, t.B, t.TX, t.C, t.D, t.TY} {
		if !IsFinite(v) {
			return Affine{}, fmt.Errorf("affine transform has non-finite coefficient %v", v)
		}
	}
	if math.Abs(t.Det()) < 1e-12 {
		return Affine{}, fmt.Errorf("affine transform is singular (det=%g)", t.Det())
	}
	m := mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		// Very unequal scales are ill-conditioned but still invertible.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) {
			return Affine{}, fmt.Errorf("failed to invert affine transform: %w", err)
		}
	}
	return Affine{
		A: inv.At(0, 0), B: inv.At(0, 1), TX: inv.At(0, 2),
		C: inv.At(1, 0), D: inv.At(1, 1), TY: inv.At(1, 2),
	}, nil
}

// Rectangle is a region of interest. The local unit square is scaled by
// Width/Height, mapped through Transform (identity when nil) and placed at
// (X, Y). Rectangles are passed by value so each call sees a consistent snapshot.
type Rectangle struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Transform *Affine `json:"transform,omitempty"`
}

// NewRectangle creates an axis-aligned rectangle.
func NewRectangle(x, y, width, height float64) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// Rotated returns a copy of r rotated by radians about its origin corner.
func (r Rectangle) Rotated(radians float64) Rectangle {
	t := Rotation(radians).Mul(r.affine())
	r.Transform = &t
	return r
}

// Frame returns the transform mapping local unit-square coordinates into matrix space.
func (r Rectangle) Frame() Affine {
	t := r.affine()
	f := t.Mul(Scale(r.Width, r.Height))
	f.TX += r.X
	f.TY += r.Y
	return f
}

// Axes returns the images of the rectangle's width and height edges in matrix space.
func (r Rectangle) Axes() (Point, Point) {
	t := r.affine()
	return t.ApplyLinear(Point{X: r.Width}), t.ApplyLinear(Point{Y: r.Height})
}

// Corners returns the rectangle's corners in matrix space, starting at the
// origin corner and going around via the width edge.
func (r Rectangle) Corners() [4]Point {
	f := r.Frame()
	return [4]Point{
		f.Apply(Point{X: 0, Y: 0}),
		f.Apply(Point{X: 1, Y: 0}),
		f.Apply(Point{X: 1, Y: 1}),
		f.Apply(Point{X: 0, Y: 1}),
	}
}

// Contains reports whether p lies inside the rectangle's footprint.
func (r Rectangle) Contains(p Point) bool {
	inv, err := r.Frame().Invert()
	if err != nil {
		return false
	}
	l := inv.Apply(p)
	return l.X >= 0 && l.X <= 1 && l.Y >= 0 && l.Y <= 1
}

func (r Rectangle) affine() Affine {
	if r.Transform == nil {
		return Identity()
	}
	return *r.Transform
}
