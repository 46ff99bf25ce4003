// Package math provides the rotation helpers used to place rig joints.
package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis [3]float32, angle float32) Quat {
	s, c := math.Sincos(float64(angle) / 2)
	return Quat{
		X: axis[0] * float32(s),
		Y: axis[1] * float32(s),
		Z: axis[2] * float32(s),
		W: float32(c),
	}
}

// QuatFromEuler creates a quaternion from rotations in radians about the
// X, Y and Z axes, applied in that order.
func QuatFromEuler(x, y, z float32) Quat {
	qx := QuatFromAxisAngle([3]float32{1, 0, 0}, x)
	qy := QuatFromAxisAngle([3]float32{0, 1, 0}, y)
	qz := QuatFromAxisAngle([3]float32{0, 0, 1}, z)
	return qz.Mul(qy).Mul(qx).Normalize()
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Mul multiplies two quaternions (combines rotations). The result applies
// other first.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v [3]float32) [3]float32 {
	p := q.Mul(Quat{X: v[0], Y: v[1], Z: v[2]}).Mul(Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W})
	return [3]float32{p.X, p.Y, p.Z}
}

// Array returns the components in X, Y, Z, W order.
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}
