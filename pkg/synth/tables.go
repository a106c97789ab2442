package synth

import (
	"fmt"
	"strings"

	"github.com/oisee/hypersynth/pkg/modulation"
)

// VisualSystem is the rendering style, which selects the sound family.
type VisualSystem int

const (
	Quantum VisualSystem = iota
	Faceted
	Holographic
	numVisualSystems
)

var systemNames = [numVisualSystems]string{"quantum", "faceted", "holographic"}

func (v VisualSystem) String() string {
	if v < 0 || v >= numVisualSystems {
		return fmt.Sprintf("VisualSystem(%d)", int(v))
	}
	return systemNames[v]
}

// Valid reports whether v names a known system
func (v VisualSystem) Valid() bool {
	return v >= 0 && v < numVisualSystems
}

// Next cycles Quantum → Faceted → Holographic → Quantum
func (v VisualSystem) Next() VisualSystem {
	return (v + 1) % numVisualSystems
}

// ParseVisualSystem accepts the system names case-insensitively.
func ParseVisualSystem(s string) (VisualSystem, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range systemNames {
		if n == name {
			return VisualSystem(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown visual system %q", ErrInvalidInput, s)
}

// WaveMix weights the four basic waveforms.
type WaveMix struct {
	Sine, Triangle, Saw, Square float64
}

// SoundFamily holds the timbre coefficients for one visual system.
type SoundFamily struct {
	Name       string
	Wave       WaveMix
	FilterQ    float64
	NoiseFloor float64
	ReverbMix  float64
	Harmonics  [modulation.NumHarmonics]float64 // Harmonics[0] is the fundamental, always 1
}

var soundFamilies = [numVisualSystems]SoundFamily{
	Quantum: {
		Name:       "quantum",
		Wave:       WaveMix{Sine: 0.6, Triangle: 0.3, Saw: 0.1},
		FilterQ:    2.5,
		NoiseFloor: 0.01,
		ReverbMix:  0.30,
		Harmonics:  [8]float64{1, 0.5, 0.33, 0.25, 0.2, 0.16, 0.14, 0.12},
	},
	Faceted: {
		Name:       "faceted",
		Wave:       WaveMix{Sine: 0.2, Triangle: 0.3, Square: 0.5},
		FilterQ:    1.2,
		NoiseFloor: 0.005,
		ReverbMix:  0.20,
		Harmonics:  [8]float64{1, 0, 0.33, 0, 0.2, 0, 0.14, 0},
	},
	Holographic: {
		Name:       "holographic",
		Wave:       WaveMix{Sine: 0.2, Triangle: 0.2, Saw: 0.6},
		FilterQ:    4.0,
		NoiseFloor: 0.02,
		ReverbMix:  0.45,
		Harmonics:  [8]float64{1, 0.7, 0.5, 0.35, 0.25, 0.18, 0.12, 0.08},
	},
}

// Family returns the constant sound family for v.
func (v VisualSystem) Family() SoundFamily {
	if !v.Valid() {
		return soundFamilies[Quantum]
	}
	return soundFamilies[v]
}

// VoiceCharacter is the envelope and articulation preset of a base geometry.
type VoiceCharacter struct {
	AttackMs        float64
	ReleaseMs       float64
	DetuneCents     float64
	HarmonicCount   int
	ReverbMix       float64
	Chorus          bool
	FilterSweep     bool
	PhaseModulation bool
}

var voiceCharacters = [basesPerCore]VoiceCharacter{
	Tetrahedron: {AttackMs: 10, ReleaseMs: 200, DetuneCents: 0, HarmonicCount: 3, ReverbMix: 0.20},
	Hypercube:   {AttackMs: 25, ReleaseMs: 400, DetuneCents: 5, HarmonicCount: 5, ReverbMix: 0.30, Chorus: true},
	Sphere:      {AttackMs: 80, ReleaseMs: 800, DetuneCents: 3, HarmonicCount: 2, ReverbMix: 0.40, Chorus: true},
	Torus:       {AttackMs: 40, ReleaseMs: 600, DetuneCents: 7, HarmonicCount: 4, ReverbMix: 0.35, FilterSweep: true, PhaseModulation: true},
	KleinBottle: {AttackMs: 60, ReleaseMs: 900, DetuneCents: 12, HarmonicCount: 6, ReverbMix: 0.50, Chorus: true, PhaseModulation: true},
	Fractal:     {AttackMs: 15, ReleaseMs: 500, DetuneCents: 9, HarmonicCount: 8, ReverbMix: 0.30, FilterSweep: true},
	Wave:        {AttackMs: 50, ReleaseMs: 700, DetuneCents: 4, HarmonicCount: 3, ReverbMix: 0.40, Chorus: true, FilterSweep: true},
	Crystal:     {AttackMs: 2, ReleaseMs: 300, DetuneCents: 2, HarmonicCount: 8, ReverbMix: 0.25},
}

// Voice returns the constant voice character for b.
func (b BaseGeometry) Voice() VoiceCharacter {
	if b < 0 || int(b) >= len(voiceCharacters) {
		return voiceCharacters[Tetrahedron]
	}
	return voiceCharacters[b]
}

// Route is the fully resolved synthesis configuration. Routes are immutable;
// the manager swaps them whole.
type Route struct {
	Geometry Geometry
	System   VisualSystem
	Branch   Branch
	Family   SoundFamily
	Voice    VoiceCharacter
}

// Resolve builds the route for a geometry and visual system.
func Resolve(g Geometry, sys VisualSystem) Route {
	return Route{
		Geometry: g,
		System:   sys,
		Branch:   g.Branch(),
		Family:   sys.Family(),
		Voice:    g.Base().Voice(),
	}
}

// DefaultReverbMix blends the family and voice reverb amounts.
func (r Route) DefaultReverbMix() float64 {
	return (r.Family.ReverbMix + r.Voice.ReverbMix) / 2
}
