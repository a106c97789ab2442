package visual

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/oisee/hypersynth/pkg/synth"
)

// simplex holds the five unit vertices of the regular 5-cell.
var simplex = func() [5]mgl64.Vec4 {
	a := 1 / math.Sqrt(5)
	raw := [5]mgl64.Vec4{
		{1, 1, 1, -a},
		{1, -1, -1, -a},
		{-1, 1, -1, -a},
		{-1, -1, 1, -a},
		{0, 0, 0, 4 * a},
	}
	for i := range raw {
		raw[i] = raw[i].Normalize()
	}
	return raw
}()

// Vertices returns the point cloud for g. density in [0,1] controls how
// finely edges and surfaces are sampled; morph in [0,1] controls how
// strongly the core warps the base shape.
func Vertices(g synth.Geometry, density, morph float64) []mgl64.Vec4 {
	density = clamp(density, 0, 1)
	morph = clamp(morph, 0, 1)
	pts := baseShape(g.Base(), density)
	switch g.Core() {
	case synth.CoreHypersphere:
		t := 0.5 + 0.5*morph
		for i, p := range pts {
			if l := p.Len(); l > 0 {
				pts[i] = lerp(p, p.Mul(1/l), t)
			}
		}
	case synth.CoreHypertetrahedron:
		t := 0.3 + 0.5*morph
		for i, p := range pts {
			pts[i] = lerp(p, nearestSimplex(p).Mul(p.Len()), t)
		}
	}
	return pts
}

func baseShape(b synth.BaseGeometry, density float64) []mgl64.Vec4 {
	steps := 2 + int(math.Round(density*10))
	switch b {
	case synth.Tetrahedron:
		return edges(simplex[:], 2*math.Sqrt(5.0/8), steps)
	case synth.Hypercube:
		return edges(tesseract(), 1, steps)
	case synth.Sphere:
		return hopf(steps, 0, math.Pi/2)
	case synth.Torus:
		return hopf(steps*2, math.Pi/4, math.Pi/4)
	case synth.KleinBottle:
		return klein(steps * 3)
	case synth.Fractal:
		return sierpinski(1 + int(math.Round(density*2)))
	case synth.Wave:
		return wave(steps * 2)
	case synth.Crystal:
		return edges(cell24(), 1, steps)
	}
	return nil
}

// edges samples every segment between vertices exactly length apart.
func edges(verts []mgl64.Vec4, length float64, steps int) []mgl64.Vec4 {
	out := append([]mgl64.Vec4(nil), verts...)
	for i := range verts {
		for j := i + 1; j < len(verts); j++ {
			if math.Abs(verts[i].Sub(verts[j]).Len()-length) > 1e-6 {
				continue
			}
			for s := 1; s < steps; s++ {
				out = append(out, lerp(verts[i], verts[j], float64(s)/float64(steps)))
			}
		}
	}
	return out
}

func tesseract() []mgl64.Vec4 {
	out := make([]mgl64.Vec4, 0, 16)
	for i := 0; i < 16; i++ {
		var v mgl64.Vec4
		for k := 0; k < 4; k++ {
			v[k] = -0.5
			if i&(1<<k) != 0 {
				v[k] = 0.5
			}
		}
		out = append(out, v)
	}
	return out
}

// cell24 is the 24-cell: permutations of (±1, ±1, 0, 0)/√2. Its edge
// length equals its circumradius.
func cell24() []mgl64.Vec4 {
	r := 1 / math.Sqrt2
	var out []mgl64.Vec4
	for a := 0; a < 4; a++ {
		for b := a + 1; b < 4; b++ {
			for _, sa := range []float64{-r, r} {
				for _, sb := range []float64{-r, r} {
					var v mgl64.Vec4
					v[a], v[b] = sa, sb
					out = append(out, v)
				}
			}
		}
	}
	return out
}

// hopf samples the 3-sphere in Hopf coordinates for eta in [lo, hi].
func hopf(steps int, lo, hi float64) []mgl64.Vec4 {
	var out []mgl64.Vec4
	etaSteps := 1
	if hi > lo {
		etaSteps = steps / 2
	}
	for e := 0; e < etaSteps; e++ {
		eta := lo
		if etaSteps > 1 {
			eta = lo + (hi-lo)*(float64(e)+0.5)/float64(etaSteps)
		}
		se, ce := math.Sincos(eta)
		for i := 0; i < steps; i++ {
			x1 := 2 * math.Pi * float64(i) / float64(steps)
			s1, c1 := math.Sincos(x1)
			for j := 0; j < steps; j++ {
				x2 := 2 * math.Pi * float64(j) / float64(steps)
				s2, c2 := math.Sincos(x2)
				out = append(out, mgl64.Vec4{c1 * se, s1 * se, c2 * ce, s2 * ce})
			}
		}
	}
	return out
}

func klein(steps int) []mgl64.Vec4 {
	const major, minor = 0.6, 0.3
	out := make([]mgl64.Vec4, 0, steps*steps)
	for i := 0; i < steps; i++ {
		u := 2 * math.Pi * float64(i) / float64(steps)
		su, cu := math.Sincos(u)
		sh, ch := math.Sincos(u / 2)
		for j := 0; j < steps; j++ {
			v := 2 * math.Pi * float64(j) / float64(steps)
			sv, cv := math.Sincos(v)
			out = append(out, mgl64.Vec4{
				(major + minor*cv) * cu,
				(major + minor*cv) * su,
				minor * sv * ch,
				minor * sv * sh,
			})
		}
	}
	return out
}

// sierpinski repeatedly halves the way from every point to each simplex
// vertex, giving 5^(levels+1) points.
func sierpinski(levels int) []mgl64.Vec4 {
	pts := append([]mgl64.Vec4(nil), simplex[:]...)
	for l := 0; l < levels; l++ {
		next := make([]mgl64.Vec4, 0, len(pts)*len(simplex))
		for _, p := range pts {
			for _, v := range simplex {
				next = append(next, lerp(p, v, 0.5))
			}
		}
		pts = next
	}
	return pts
}

func wave(steps int) []mgl64.Vec4 {
	out := make([]mgl64.Vec4, 0, steps*steps)
	for i := 0; i < steps; i++ {
		x := 2*float64(i)/float64(steps-1) - 1
		for j := 0; j < steps; j++ {
			y := 2*float64(j)/float64(steps-1) - 1
			out = append(out, mgl64.Vec4{
				x,
				y,
				0.3 * math.Sin(2*math.Pi*(x+y)/2),
				0.4 * math.Sin(3*x) * math.Cos(3*y),
			})
		}
	}
	return out
}

func nearestSimplex(p mgl64.Vec4) mgl64.Vec4 {
	best, bestDot := simplex[0], math.Inf(-1)
	for _, s := range simplex {
		if d := p.Dot(s); d > bestDot {
			best, bestDot = s, d
		}
	}
	return best
}

func lerp(a, b mgl64.Vec4, t float64) mgl64.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
