package dynamo

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Value is a scalar or one-dimensional array state quantity.
type Value interface {
	// Len is 1 for a Scalar and the element count for an Array.
	Len() int
	// At returns element i. A Scalar returns itself for every i.
	At(i int) float64
	IsScalar() bool
	Clone() Value
	// NormalLike draws independent standard normal samples shaped like the receiver.
	NormalLike(src rand.Source) Value
}

type Scalar float64

func (s Scalar) Len() int         { return 1 }
func (s Scalar) At(int) float64   { return float64(s) }
func (s Scalar) IsScalar() bool   { return true }
func (s Scalar) Clone() Value     { return s }
func (s Scalar) String() string   { return strconv.FormatFloat(float64(s), 'g', -1, 64) }
func (s Scalar) Float64() float64 { return float64(s) }

type Array []float64

func (a Array) Len() int         { return len(a) }
func (a Array) At(i int) float64 { return a[i] }
func (a Array) IsScalar() bool   { return false }

func (a Array) Clone() Value {
	c := make(Array, len(a))
	copy(c, a)
	return c
}

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Float64s copies v into a plain slice.
func Float64s(v Value) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

// FromFloat64s returns a Scalar for a single element and an Array otherwise.
func FromFloat64s(xs []float64) Value {
	if len(xs) == 1 {
		return Scalar(xs[0])
	}
	a := make(Array, len(xs))
	copy(a, xs)
	return a
}

func IsValid(v Value) bool {
	for i := 0; i < v.Len(); i++ {
		x := v.At(i)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func Norm(v Value) float64 {
	if s, ok := v.(Scalar); ok {
		return math.Abs(float64(s))
	}
	return floats.Norm(Float64s(v), 2)
}

// Equal reports whether a and b have the same shape and bit-identical elements.
func Equal(a, b Value) bool {
	if a.IsScalar() != b.IsScalar() || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}

// EqualApprox reports whether a and b have the same shape and elements within tol.
func EqualApprox(a, b Value, tol float64) bool {
	if a.IsScalar() != b.IsScalar() || a.Len() != b.Len() {
		return false
	}
	return floats.EqualApprox(Float64s(a), Float64s(b), tol)
}

// Map applies fn to every element of v.
func Map(v Value, fn func(float64) float64) Value {
	if s, ok := v.(Scalar); ok {
		return Scalar(fn(float64(s)))
	}
	out := make(Array, v.Len())
	for i := range out {
		out[i] = fn(v.At(i))
	}
	return out
}

// Zip combines a and b elementwise, broadcasting a Scalar against an Array.
// It panics with a *ShapeError when both are arrays of different lengths.
func Zip(op string, a, b Value, fn func(x, y float64) float64) Value {
	as, aScalar := a.(Scalar)
	bs, bScalar := b.(Scalar)
	switch {
	case aScalar && bScalar:
		return Scalar(fn(float64(as), float64(bs)))
	case aScalar:
		out := make(Array, b.Len())
		for i := range out {
			out[i] = fn(float64(as), b.At(i))
		}
		return out
	case bScalar:
		out := make(Array, a.Len())
		for i := range out {
			out[i] = fn(a.At(i), float64(bs))
		}
		return out
	}
	if a.Len() != b.Len() {
		panic(&ShapeError{Op: op, Left: a.Len(), Right: b.Len()})
	}
	out := make(Array, a.Len())
	for i := range out {
		out[i] = fn(a.At(i), b.At(i))
	}
	return out
}

func Add(a, b Value) Value { return Zip("add", a, b, func(x, y float64) float64 { return x + y }) }
func Sub(a, b Value) Value { return Zip("sub", a, b, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Value) Value { return Zip("mul", a, b, func(x, y float64) float64 { return x * y }) }
func Div(a, b Value) Value { return Zip("div", a, b, func(x, y float64) float64 { return x / y }) }
func Neg(v Value) Value    { return Map(v, func(x float64) float64 { return -x }) }
func Exp(v Value) Value    { return Map(v, math.Exp) }

// Scale returns c*v.
func Scale(v Value, c float64) Value {
	return Map(v, func(x float64) float64 { return c * x })
}

// AddScaled returns y + c*x.
func AddScaled(y Value, c float64, x Value) Value {
	return Zip("add_scaled", y, x, func(a, b float64) float64 { return a + c*b })
}
