package hypermath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// minDepth keeps points at or behind the eye from blowing up the projection.
const minDepth = 1e-3

// Project4To3 performs a perspective projection along W with the eye at
// w = distance. Points on the w = 0 hyperplane keep their coordinates.
func Project4To3(v mgl64.Vec4, distance float64) mgl64.Vec3 {
	depth := distance - v[3]
	if depth < minDepth {
		depth = minDepth
	}
	f := distance / depth
	return mgl64.Vec3{v[0] * f, v[1] * f, v[2] * f}
}

// Project3To2 performs the same projection one dimension down, along Z.
func Project3To2(v mgl64.Vec3, distance float64) mgl64.Vec2 {
	depth := distance - v[2]
	if depth < minDepth {
		depth = minDepth
	}
	f := distance / depth
	return mgl64.Vec2{v[0] * f, v[1] * f}
}

// Project rotates v and takes it straight to the screen plane.
func Project(v mgl64.Vec4, rot mgl64.Mat4, dist4, dist3 float64) mgl64.Vec2 {
	return Project3To2(Project4To3(rot.Mul4x1(v), dist4), dist3)
}
