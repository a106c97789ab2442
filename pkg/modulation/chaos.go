package modulation

import "math"

// Lorenz system constants
const (
	lorenzSigma = 10.0
	lorenzRho   = 28.0
	lorenzBeta  = 8.0 / 3.0

	// largest integration step; longer deltas are split
	lorenzMaxStep = 0.005
)

// Chaos is a bounded, continuous, non-periodic modulation source built on the
// Lorenz attractor.
type Chaos struct {
	// Scale converts wall-clock seconds into attractor time.
	Scale float64

	x, y, z float64
	level   float64
	out     float64
}

// NewChaos creates a chaos generator at the canonical starting point.
func NewChaos() *Chaos {
	return &Chaos{Scale: 0.5, x: 0.1, y: 0, z: 0}
}

// SetChaosLevel sets the output gain, clamped to [0, 1].
func (c *Chaos) SetChaosLevel(level float64) {
	c.level = clamp(level, 0, 1)
}

// Level returns the current chaos level
func (c *Chaos) Level() float64 {
	return c.level
}

// ChaosModulation integrates the attractor forward by dt × Scale and returns
// clamp(x/20, -1, 1) × level.
func (c *Chaos) ChaosModulation(dt float64) float64 {
	c.integrate(dt * c.Scale)
	if c.level == 0 {
		c.out = 0
		return 0
	}
	c.out = clamp(c.x/20, -1, 1) * c.level
	return c.out
}

// Value returns the last output without advancing.
func (c *Chaos) Value() float64 {
	return c.out
}

// NoiseAmplitude is the noise injection amount, 0–30% of full scale.
func (c *Chaos) NoiseAmplitude() float64 {
	return c.level * 0.3
}

// CutoffJitter is the relative filter cutoff offset, within ±50% × level.
func (c *Chaos) CutoffJitter() float64 {
	return c.out * 0.5
}

// State returns the attractor position.
func (c *Chaos) State() (x, y, z float64) {
	return c.x, c.y, c.z
}

func (c *Chaos) integrate(t float64) {
	if t <= 0 || math.IsNaN(t) {
		return
	}
	steps := int(math.Ceil(t / lorenzMaxStep))
	h := t / float64(steps)
	for i := 0; i < steps; i++ {
		c.rk4(h)
	}
}

func lorenz(x, y, z float64) (dx, dy, dz float64) {
	return lorenzSigma * (y - x), x*(lorenzRho-z) - y, x*y - lorenzBeta*z
}

func (c *Chaos) rk4(h float64) {
	k1x, k1y, k1z := lorenz(c.x, c.y, c.z)
	k2x, k2y, k2z := lorenz(c.x+h/2*k1x, c.y+h/2*k1y, c.z+h/2*k1z)
	k3x, k3y, k3z := lorenz(c.x+h/2*k2x, c.y+h/2*k2y, c.z+h/2*k2z)
	k4x, k4y, k4z := lorenz(c.x+h*k3x, c.y+h*k3y, c.z+h*k3z)
	c.x += h / 6 * (k1x + 2*k2x + 2*k3x + k4x)
	c.y += h / 6 * (k1y + 2*k2y + 2*k3y + k4y)
	c.z += h / 6 * (k1z + 2*k2z + 2*k3z + k4z)
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
