// Package hypermath implements the 4D rotation and projection math shared by
// the renderer and the sound engine. All functions are pure.
package hypermath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane identifies one of the six coordinate planes of 4D space.
type Plane int

// Planes in composition order.
const (
	XY Plane = iota
	XZ
	YZ
	XW
	YW
	ZW
	NumPlanes
)

var planeNames = [NumPlanes]string{"XY", "XZ", "YZ", "XW", "YW", "ZW"}

// planeAxes holds the (a, b) axis indices of each plane. A positive angle
// turns axis a towards axis b.
var planeAxes = [NumPlanes][2]int{
	XY: {0, 1},
	XZ: {0, 2},
	YZ: {1, 2},
	XW: {0, 3},
	YW: {1, 3},
	ZW: {2, 3},
}

func (p Plane) String() string {
	if p < 0 || p >= NumPlanes {
		return "?"
	}
	return planeNames[p]
}

// Axes returns the axis indices spanned by the plane.
func (p Plane) Axes() (a, b int) {
	return planeAxes[p][0], planeAxes[p][1]
}

// Rotation holds one angle in radians per plane.
type Rotation [NumPlanes]float64

// WrapAngle maps an angle into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// Wrapped returns the rotation with every angle in [0, 2π).
func (r Rotation) Wrapped() Rotation {
	for i := range r {
		r[i] = WrapAngle(r[i])
	}
	return r
}

// PlaneMatrix returns the Givens rotation for a single plane.
func PlaneMatrix(p Plane, angle float64) mgl64.Mat4 {
	m := mgl64.Ident4()
	a, b := p.Axes()
	c, s := math.Cos(angle), math.Sin(angle)
	m.Set(a, a, c)
	m.Set(a, b, -s)
	m.Set(b, a, s)
	m.Set(b, b, c)
	return m
}

// Matrix composes the six plane rotations, XY applied first and ZW last.
func (r Rotation) Matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	for p := XY; p < NumPlanes; p++ {
		if r[p] == 0 {
			continue
		}
		m = PlaneMatrix(p, r[p]).Mul4(m)
	}
	return m
}

// Rotate applies the rotation to v.
func (r Rotation) Rotate(v mgl64.Vec4) mgl64.Vec4 {
	return r.Matrix().Mul4x1(v)
}
