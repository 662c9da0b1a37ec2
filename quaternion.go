package orbital

import "math"

// Vec3 represents a 3D direction vector.
type Vec3 struct {
	X, Y, Z float64
}

// Quaternion represents a rotation as a unit quaternion (x, y, z, w).
type Quaternion struct {
	X, Y, Z, W float64
}

// defaultAxis is returned by ToAxisAngle for near-zero rotations,
// where the true axis is undefined. Yaw rotates about +Y, so it is
// the natural fallback.
var defaultAxis = Vec3{X: 0, Y: 1, Z: 0}

// QuaternionIdentity returns the identity rotation.
func QuaternionIdentity() Quaternion {
	return Quaternion{W: 1}
}

// FromYawPitch builds the orientation quaternion for a yaw rotation
// about the vertical (Y) axis followed by a pitch rotation about the
// horizontal (X) axis. Yaw is in radians, pitch in degrees to match
// the integrator's state.
func FromYawPitch(yaw, pitchDegrees float64) Quaternion {
	pitch := pitchDegrees * math.Pi / 180

	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)

	// qYaw (about Y) composed with qPitch (about X): qYaw * qPitch.
	return Quaternion{
		X: cy * sp,
		Y: sy * cp,
		Z: -sy * sp,
		W: cy * cp,
	}
}

// Mul returns the Hamilton product q*r: the rotation r followed by q.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Norm returns the quaternion's Euclidean norm.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns the unit quaternion with the same orientation.
// The zero quaternion normalizes to the identity.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return QuaternionIdentity()
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// ToAxisAngle decomposes the quaternion into a unit rotation axis and
// an angle in radians in [0, 2π).
//
// For near-zero rotations sin(angle/2) vanishes and the axis is
// undefined; rather than dividing by zero the decomposition returns
// the default (+Y) axis with a zero angle.
func (q Quaternion) ToAxisAngle() (axis Vec3, angle float64) {
	w := math.Max(-1, math.Min(1, q.W))
	angle = 2 * math.Acos(w)

	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return defaultAxis, 0
	}
	return Vec3{X: q.X / s, Y: q.Y / s, Z: q.Z / s}, angle
}
