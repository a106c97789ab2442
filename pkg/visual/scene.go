// Package visual is a headless stand-in for the renderer: it owns the 4D
// rotation state the bridge reads and the display parameters it writes.
package visual

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/oisee/hypersynth/internal/atomicfloat"
	"github.com/oisee/hypersynth/pkg/hypermath"
	"github.com/oisee/hypersynth/pkg/synth"
)

// Base angular velocity per plane in rad/s at rotation speed 1.
var baseRates = [hypermath.NumPlanes]float64{0.31, 0.23, 0.17, 0.41, 0.29, 0.19}

const (
	MinProjection = 1.5
	MaxProjection = 10
	MaxSpeed      = 10
	eyeDistance   = 3
)

// Scene is safe for one renderer goroutine writing rotation state and one
// bridge goroutine writing display parameters, with reads from anywhere.
type Scene struct {
	angles     [hypermath.NumPlanes]atomicfloat.Float64
	geometry   atomic.Int32
	projection atomicfloat.Float64
	layer      atomicfloat.Float64
	morph      atomicfloat.Float64

	speed        atomicfloat.Float64
	tessellation atomicfloat.Float64
	brightness   atomicfloat.Float64
	hue          atomicfloat.Float64
	glow         atomicfloat.Float64

	// renderer goroutine only
	cache     []mgl64.Vec4
	cacheKey  [3]float64
	cacheFull bool
}

// NewScene returns a scene showing geometry 0 at rest.
func NewScene() *Scene {
	s := &Scene{}
	s.projection.Store(4)
	s.layer.Store(0.5)
	s.speed.Store(1)
	s.tessellation.Store(0.5)
	s.brightness.Store(0.7)
	s.glow.Store(0.2)
	return s
}

// Advance turns every plane by its base rate times the rotation speed.
func (s *Scene) Advance(dt float64) {
	speed := s.speed.Load()
	for p := range s.angles {
		a := s.angles[p].Load() + baseRates[p]*speed*dt
		s.angles[p].Store(hypermath.WrapAngle(a))
	}
}

// SetAngle sets one plane's angle.
func (s *Scene) SetAngle(p hypermath.Plane, rad float64) {
	s.angles[p].Store(hypermath.WrapAngle(rad))
}

func (s *Scene) RotationAngles() hypermath.Rotation {
	var r hypermath.Rotation
	for p := range s.angles {
		r[p] = s.angles[p].Load()
	}
	return r
}

// SetGeometry selects the displayed geometry.
func (s *Scene) SetGeometry(index int) error {
	if _, err := synth.NewGeometry(index); err != nil {
		return err
	}
	s.geometry.Store(int32(index))
	return nil
}

// StepGeometry moves delta geometries forward, wrapping around.
func (s *Scene) StepGeometry(delta int) int {
	i := (s.GeometryIndex() + delta) % synth.NumGeometries
	if i < 0 {
		i += synth.NumGeometries
	}
	s.geometry.Store(int32(i))
	return i
}

func (s *Scene) GeometryIndex() int { return int(s.geometry.Load()) }

func (s *Scene) SetProjectionDistance(d float64) {
	s.projection.Store(clamp(d, MinProjection, MaxProjection))
}

func (s *Scene) ProjectionDistance() float64 { return s.projection.Load() }

func (s *Scene) SetLayerSeparation(v float64) { s.layer.Store(clamp(v, 0, 1)) }

func (s *Scene) LayerSeparation() float64 { return s.layer.Load() }

func (s *Scene) SetMorphFactor(v float64) { s.morph.Store(clamp(v, 0, 1)) }

func (s *Scene) MorphFactor() float64 { return s.morph.Load() }

func (s *Scene) SetRotationSpeed(v float64) { s.speed.Store(clamp(v, 0, MaxSpeed)) }

func (s *Scene) RotationSpeed() float64 { return s.speed.Load() }

func (s *Scene) SetTessellationDensity(v float64) { s.tessellation.Store(clamp(v, 0, 1)) }

func (s *Scene) TessellationDensity() float64 { return s.tessellation.Load() }

func (s *Scene) SetVertexBrightness(v float64) { s.brightness.Store(clamp(v, 0, 1)) }

func (s *Scene) VertexBrightness() float64 { return s.brightness.Load() }

// SetHueShift stores deg wrapped to [0, 360).
func (s *Scene) SetHueShift(deg float64) {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	s.hue.Store(h)
}

func (s *Scene) HueShift() float64 { return s.hue.Load() }

func (s *Scene) SetGlowIntensity(v float64) { s.glow.Store(clamp(v, 0, 1)) }

func (s *Scene) GlowIntensity() float64 { return s.glow.Load() }

// Frame projects the current geometry to the screen plane, appending to
// dst. Call it from the renderer goroutine only.
func (s *Scene) Frame(dst []mgl64.Vec2) []mgl64.Vec2 {
	g := synth.MustGeometry(s.GeometryIndex())
	density := math.Round(s.TessellationDensity()*20) / 20
	morph := math.Round(s.MorphFactor()*50) / 50
	key := [3]float64{float64(g.Index()), density, morph}
	if !s.cacheFull || key != s.cacheKey {
		s.cache = Vertices(g, density, morph)
		s.cacheKey = key
		s.cacheFull = true
	}

	rot := s.RotationAngles().Matrix()
	dist := s.ProjectionDistance()
	// layer separation pushes the shape along W towards or away from the eye
	shift := (s.LayerSeparation() - 0.5) * 0.8
	for _, v := range s.cache {
		w := rot.Mul4x1(v)
		w[3] += shift
		dst = append(dst, hypermath.Project3To2(hypermath.Project4To3(w, dist), eyeDistance))
	}
	return dst
}
