// Package modulation provides the control-rate modulation sources shared by
// the sound engine and the visual bridge. Every primitive is a plain state
// machine: setters take external input, and one Update/Next call advances it
// per tick. None of them own timers or goroutines.
package modulation

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Waveform is the LFO wave shape
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSaw
	WaveRandom // step-and-hold, new value each cycle
)

var waveformNames = []string{"sine", "triangle", "square", "saw", "random"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// LFO is a low frequency oscillator advanced by wall-clock delta
type LFO struct {
	Rate     float64 // Hz
	Waveform Waveform

	phase float64 // radians, [0, 2π)
	held  float64
	rng   *rand.Rand
}

// NewLFO creates an LFO. The seed drives the step-and-hold waveform only.
func NewLFO(rate float64, wf Waveform, seed uint64) *LFO {
	l := &LFO{
		Rate:     rate,
		Waveform: wf,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	l.held = l.rng.Float64()*2 - 1
	return l
}

// SetRate sets the rate in Hz. Negative rates are treated as zero.
func (l *LFO) SetRate(hz float64) {
	if hz < 0 {
		hz = 0
	}
	l.Rate = hz
}

// SetWaveform selects the wave shape
func (l *LFO) SetWaveform(wf Waveform) {
	l.Waveform = wf
}

// Phase returns the current phase in radians
func (l *LFO) Phase() float64 {
	return l.phase
}

// Reset zeroes the phase
func (l *LFO) Reset() {
	l.phase = 0
}

// NextValue advances the phase by rate × dt × 2π and returns the wave value
// in [-1, 1].
func (l *LFO) NextValue(dt float64) float64 {
	l.phase += l.Rate * dt * 2 * math.Pi
	if l.phase >= 2*math.Pi {
		l.phase = math.Mod(l.phase, 2*math.Pi)
		l.held = l.rng.Float64()*2 - 1
	}
	return l.value()
}

func (l *LFO) value() float64 {
	p := l.phase / (2 * math.Pi)
	switch l.Waveform {
	case WaveSine:
		return math.Sin(l.phase)
	case WaveTriangle:
		if p < 0.5 {
			return 4.0*p - 1.0
		}
		return 3.0 - 4.0*p
	case WaveSquare:
		if p < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveSaw:
		return 2.0*p - 1.0
	case WaveRandom:
		return l.held
	}
	return 0
}
