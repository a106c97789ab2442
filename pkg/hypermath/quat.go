package hypermath

import (
	"github.com/go-gl/mathgl/mgl64"
)

var (
	axisI = mgl64.Vec3{1, 0, 0}
	axisJ = mgl64.Vec3{0, 1, 0}
	axisK = mgl64.Vec3{0, 0, 1}
)

// QuatFromVec4 reads (x, y, z, w) as the quaternion w + xi + yj + zk.
func QuatFromVec4(v mgl64.Vec4) mgl64.Quat {
	return mgl64.Quat{W: v[3], V: mgl64.Vec3{v[0], v[1], v[2]}}
}

// Vec4FromQuat is the inverse of QuatFromVec4.
func Vec4FromQuat(q mgl64.Quat) mgl64.Vec4 {
	return mgl64.Vec4{q.V[0], q.V[1], q.V[2], q.W}
}

// DoubleRotation is a 4D rotation written as p' = Left * p * Right for unit
// quaternions Left and Right.
type DoubleRotation struct {
	Left, Right mgl64.Quat
}

// IdentityDouble returns the rotation that leaves every point unchanged.
func IdentityDouble() DoubleRotation {
	return DoubleRotation{Left: mgl64.QuatIdent(), Right: mgl64.QuatIdent()}
}

// PlaneDouble returns the quaternion pair equivalent to PlaneMatrix(p, angle).
//
// Planes that do not touch W are 3D rotations (conjugation, Right = Left⁻¹).
// Planes that include W are left-right symmetric: exp(uθ/2)·p·exp(uθ/2) turns
// W towards u, so the sign is flipped to match the a→b convention.
func PlaneDouble(p Plane, angle float64) DoubleRotation {
	switch p {
	case XY:
		return DoubleRotation{mgl64.QuatRotate(angle, axisK), mgl64.QuatRotate(-angle, axisK)}
	case XZ:
		return DoubleRotation{mgl64.QuatRotate(-angle, axisJ), mgl64.QuatRotate(angle, axisJ)}
	case YZ:
		return DoubleRotation{mgl64.QuatRotate(angle, axisI), mgl64.QuatRotate(-angle, axisI)}
	case XW:
		q := mgl64.QuatRotate(-angle, axisI)
		return DoubleRotation{q, q}
	case YW:
		q := mgl64.QuatRotate(-angle, axisJ)
		return DoubleRotation{q, q}
	case ZW:
		q := mgl64.QuatRotate(-angle, axisK)
		return DoubleRotation{q, q}
	}
	return IdentityDouble()
}

// Then returns the rotation that applies d first and next second.
func (d DoubleRotation) Then(next DoubleRotation) DoubleRotation {
	return DoubleRotation{
		Left:  next.Left.Mul(d.Left),
		Right: d.Right.Mul(next.Right),
	}
}

// Apply rotates v.
func (d DoubleRotation) Apply(v mgl64.Vec4) mgl64.Vec4 {
	return Vec4FromQuat(d.Left.Mul(QuatFromVec4(v)).Mul(d.Right))
}

// Normalize renormalises both quaternions to counter accumulated drift.
func (d DoubleRotation) Normalize() DoubleRotation {
	return DoubleRotation{Left: d.Left.Normalize(), Right: d.Right.Normalize()}
}

// Matrix expands the pair into a 4x4 matrix by rotating the basis vectors.
func (d DoubleRotation) Matrix() mgl64.Mat4 {
	var m mgl64.Mat4
	for col := 0; col < 4; col++ {
		var e mgl64.Vec4
		e[col] = 1
		r := d.Apply(e)
		for row := 0; row < 4; row++ {
			m.Set(row, col, r[row])
		}
	}
	return m
}

// Double converts the plane angles into a quaternion pair with the same
// composition order as Matrix.
func (r Rotation) Double() DoubleRotation {
	d := IdentityDouble()
	for p := XY; p < NumPlanes; p++ {
		if r[p] == 0 {
			continue
		}
		d = d.Then(PlaneDouble(p, r[p]))
	}
	return d
}
