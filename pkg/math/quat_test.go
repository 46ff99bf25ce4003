package math

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.0001
}

func approxVec(a, b [3]float32) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if !approx(length, 1) {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}

	if z := (Quat{}).Normalize(); z != QuatIdentity() {
		t.Errorf("Zero quaternion should normalize to identity, got %v", z)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle([3]float32{0, 0, 1}, math.Pi/2)
	got := q.Rotate([3]float32{1, 0, 0})
	if !approxVec(got, [3]float32{0, 1, 0}) {
		t.Errorf("90 degrees about Z should map X to Y, got %v", got)
	}
}

func TestQuatFromEuler(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float32
		in      [3]float32
		want    [3]float32
	}{
		{"none", 0, 0, 0, [3]float32{1, 2, 3}, [3]float32{1, 2, 3}},
		{"x only", math.Pi / 2, 0, 0, [3]float32{0, 1, 0}, [3]float32{0, 0, 1}},
		{"y only", 0, math.Pi / 2, 0, [3]float32{0, 0, 1}, [3]float32{1, 0, 0}},
		// X first turns Y into Z, then Z turns nothing further about Z.
		{"x then z", math.Pi / 2, 0, math.Pi / 2, [3]float32{0, 1, 0}, [3]float32{0, 0, 1}},
		// X leaves X alone, then Z turns it into Y.
		{"x then z on x", math.Pi / 2, 0, math.Pi / 2, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromEuler(tt.x, tt.y, tt.z).Rotate(tt.in)
			if !approxVec(got, tt.want) {
				t.Errorf("Rotate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuatMul(t *testing.T) {
	a := QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/4)
	got := a.Mul(a).Rotate([3]float32{0, 0, 1})
	want := QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/2).Rotate([3]float32{0, 0, 1})
	if !approxVec(got, want) {
		t.Errorf("Two 45 degree turns should equal one 90 degree turn: got %v, want %v", got, want)
	}
}

func TestRadians(t *testing.T) {
	if !approx(Radians(180), math.Pi) {
		t.Errorf("Radians(180) = %v", Radians(180))
	}
}
