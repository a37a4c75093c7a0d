// Package transform resamples pixel buffers through 2D affine matrices.
//
// A Transformer accumulates scale, rotate and translate operations, derives
// the destination canvas from them and fills it by mapping every destination
// pixel center back into the source and sampling bilinearly in 16.16 fixed
// point.
package transform

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	intImage "github.com/gogpu/pixelmap/internal/image"
)

// Ops records which kinds of operation contributed to a Matrix.
type Ops uint8

const (
	// OpTranslate marks a non-zero translation.
	OpTranslate Ops = 1 << iota

	// OpScale marks a scale other than (1, 1).
	OpScale

	// OpRotate marks a rotation or skew.
	OpRotate
)

// String returns a string representation of the operation bits.
func (o Ops) String() string {
	if o == 0 {
		return "identity"
	}
	s := ""
	for _, n := range []struct {
		bit  Ops
		name string
	}{{OpTranslate, "translate"}, {OpScale, "scale"}, {OpRotate, "rotate"}} {
		if o&n.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	return s
}

// Matrix represents a 2D affine transformation matrix.
//
// The transformation is represented as a 3x3 matrix:
//
//	| a  b  c |
//	| d  e  f |
//	| 0  0  1 |
type Matrix struct {
	a, b, c float64 // x' = ax + by + c
	d, e, f float64 // y' = dx + ey + f
	ops     Ops
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return Matrix{a: 1, e: 1}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Matrix {
	m := Matrix{a: 1, c: tx, e: 1, f: ty}
	if tx != 0 || ty != 0 {
		m.ops = OpTranslate
	}
	return m
}

// Scale returns a scale by (sx, sy) around the origin.
// Negative values flip the image.
func Scale(sx, sy float64) Matrix {
	m := Matrix{a: sx, e: sy}
	if sx != 1 || sy != 1 {
		m.ops = OpScale
	}
	return m
}

// Rotate returns a rotation by degrees around the origin. In image
// coordinates (y down) positive angles turn clockwise.
func Rotate(degrees float64) Matrix {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	sin, cos = snap(sin), snap(cos)
	return Matrix{a: cos, b: -sin, d: sin, e: cos, ops: OpRotate}
}

// RotateAt returns a rotation by degrees around (px, py).
func RotateAt(degrees, px, py float64) Matrix {
	m := Translate(px, py).Multiply(Rotate(degrees)).Multiply(Translate(-px, -py))
	m.ops = OpRotate
	return m
}

// Skew returns a skew by (kx, ky).
func Skew(kx, ky float64) Matrix {
	return Matrix{a: 1, b: kx, d: ky, e: 1, ops: OpRotate}
}

// snap removes the rounding residue of sin/cos at multiples of 90 degrees.
func snap(v float64) float64 {
	const eps = 1e-12
	switch {
	case math.Abs(v) < eps:
		return 0
	case math.Abs(v-1) < eps:
		return 1
	case math.Abs(v+1) < eps:
		return -1
	}
	return v
}

// Multiply returns m * other: other is applied first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		a:   m.a*other.a + m.b*other.d,
		b:   m.a*other.b + m.b*other.e,
		c:   m.a*other.c + m.b*other.f + m.c,
		d:   m.d*other.a + m.e*other.d,
		e:   m.d*other.b + m.e*other.e,
		f:   m.d*other.c + m.e*other.f + m.f,
		ops: m.ops | other.ops,
	}
}

// Invert returns the inverse transformation.
// It fails with ErrMatrixNotInvertible if the matrix is singular.
func (m Matrix) Invert() (Matrix, error) {
	det := m.a*m.e - m.b*m.d
	if math.Abs(det) < 1e-10 {
		return Matrix{}, fmt.Errorf("%w: determinant %g", intImage.ErrMatrixNotInvertible, det)
	}

	invDet := 1.0 / det

	return Matrix{
		a:   m.e * invDet,
		b:   -m.b * invDet,
		c:   (m.b*m.f - m.c*m.e) * invDet,
		d:   -m.d * invDet,
		e:   m.a * invDet,
		f:   (m.c*m.d - m.a*m.f) * invDet,
		ops: m.ops,
	}, nil
}

// TransformPoint applies the transformation to point (x, y).
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.a*x + m.b*y + m.c, m.d*x + m.e*y + m.f
}

// Ops returns the operation bits accumulated by the matrix.
func (m Matrix) Ops() Ops {
	return m.ops
}

// ScaleX returns the a coefficient.
func (m Matrix) ScaleX() float64 { return m.a }

// ScaleY returns the e coefficient.
func (m Matrix) ScaleY() float64 { return m.e }

// TransX returns the c coefficient.
func (m Matrix) TransX() float64 { return m.c }

// TransY returns the f coefficient.
func (m Matrix) TransY() float64 { return m.f }

// Aff3 returns the matrix in the layout used by golang.org/x/image/draw.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3{m.a, m.b, m.c, m.d, m.e, m.f}
}

// String returns the six coefficients and the operation bits.
func (m Matrix) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g] (%v)", m.a, m.b, m.c, m.d, m.e, m.f, m.ops)
}
