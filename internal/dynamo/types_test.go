package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		valid bool
	}{
		{"empty", Array{}, true},
		{"normal", Array{1.0, 2.0, 3.0}, true},
		{"scalar", Scalar(0.5), true},
		{"with NaN", Array{1.0, math.NaN()}, false},
		{"with +Inf", Array{1.0, math.Inf(1)}, false},
		{"scalar -Inf", Scalar(math.Inf(-1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.value); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestNorm(t *testing.T) {
	tests := []struct {
		value    Value
		expected float64
	}{
		{Array{3, 4}, 5.0},
		{Array{1, 0}, 1.0},
		{Scalar(-2), 2.0},
		{Array{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := Norm(tt.value); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := Array{1, 2, 3}
	b := Array{4, 5, 6}

	sum := Add(a, b).(Array)
	if sum[0] != 5 || sum[1] != 7 || sum[2] != 9 {
		t.Errorf("Add failed: got %v", sum)
	}

	diff := Sub(b, a).(Array)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	scaled := Scale(a, 2).(Array)
	if scaled[0] != 2 || scaled[1] != 4 || scaled[2] != 6 {
		t.Errorf("Scale failed: got %v", scaled)
	}

	axpy := AddScaled(a, 0.5, b).(Array)
	if axpy[0] != 3 || axpy[1] != 4.5 || axpy[2] != 6 {
		t.Errorf("AddScaled failed: got %v", axpy)
	}
}

func TestBroadcast(t *testing.T) {
	got := Mul(Scalar(2), Array{1, 2})
	if !Equal(got, Array{2, 4}) {
		t.Errorf("scalar*array = %v", got)
	}

	got = Div(Array{2, 4}, Scalar(2))
	if !Equal(got, Array{1, 2}) {
		t.Errorf("array/scalar = %v", got)
	}

	if s, ok := Add(Scalar(1), Scalar(2)).(Scalar); !ok || s != 3 {
		t.Errorf("scalar+scalar should stay scalar, got %v", s)
	}
}

func TestZipShapeMismatch(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrDimensionMismatch) {
			t.Fatalf("expected ErrDimensionMismatch panic, got %v", r)
		}
	}()
	Add(Array{1, 2}, Array{1, 2, 3})
}

func TestClone(t *testing.T) {
	src := Array{1, 2, 3}
	c := src.Clone().(Array)
	c[0] = 99
	if src[0] == 99 {
		t.Error("Clone did not create independent copy")
	}
}

func TestNormalLikeShape(t *testing.T) {
	src := NewSource(7, 0)

	if _, ok := Scalar(1).NormalLike(src).(Scalar); !ok {
		t.Error("scalar noise should be scalar")
	}
	if got := (Array{0, 0, 0, 0}).NormalLike(src); got.Len() != 4 || got.IsScalar() {
		t.Errorf("array noise has wrong shape: %v", got)
	}
}

func TestNormalLikeReproducible(t *testing.T) {
	a := Array(make([]float64, 8)).NormalLike(NewSource(42, 1))
	b := Array(make([]float64, 8)).NormalLike(NewSource(42, 1))
	if !Equal(a, b) {
		t.Errorf("same seed should give same draws: %v vs %v", a, b)
	}

	c := Array(make([]float64, 8)).NormalLike(NewSource(42, 2))
	if Equal(a, c) {
		t.Error("different streams should give different draws")
	}
}

func TestNormalLikeMoments(t *testing.T) {
	n := 20000
	draws := Array(make([]float64, n)).NormalLike(NewSource(1, 0)).(Array)

	mean := 0.0
	for _, x := range draws {
		mean += x
	}
	mean /= float64(n)

	variance := 0.0
	for _, x := range draws {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(n - 1)

	if math.Abs(mean) > 0.05 {
		t.Errorf("mean too far from 0: %f", mean)
	}
	if math.Abs(variance-1) > 0.05 {
		t.Errorf("variance too far from 1: %f", variance)
	}
}

func TestShapeErrorMessage(t *testing.T) {
	err := &ShapeError{Op: "add", Left: 2, Right: 3}
	expected := "dynamo: dimension mismatch: add of length 2 and 3"
	if err.Error() != expected {
		t.Errorf("ShapeError.Error() = %q, want %q", err.Error(), expected)
	}
}
