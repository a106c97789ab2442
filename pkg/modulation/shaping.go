package modulation

import "math"

// SpectralTilt is a first-order gain approximation of a tilting EQ.
type SpectralTilt struct {
	amount float64 // [-1, 1]
}

// SetTilt sets the tilt amount, clamped to [-1, 1]. Positive values brighten.
func (s *SpectralTilt) SetTilt(amount float64) {
	s.amount = clamp(amount, -1, 1)
}

// Amount returns the tilt amount
func (s *SpectralTilt) Amount() float64 {
	return s.amount
}

// TiltDB is the tilt at full normalized frequency, ±12 dB.
func (s *SpectralTilt) TiltDB() float64 {
	return s.amount * 12
}

// Gain returns the linear gain at a normalized frequency (0 = DC, 1 = Nyquist).
func (s *SpectralTilt) Gain(normFreq float64) float64 {
	return TiltGain(s.TiltDB(), normFreq)
}

// TiltGain is 10^(tiltDB × normFreq × 0.05) clamped to [0.25, 4].
func TiltGain(tiltDB, normFreq float64) float64 {
	return clamp(math.Pow(10, tiltDB*normFreq*0.05), 0.25, 4.0)
}

// Voice count limits
const (
	MinVoices = 1
	MaxVoices = 8
)

// VoiceSmoother moves the voice count toward its target by at most one voice
// per update so polyphony never jumps.
type VoiceSmoother struct {
	current int
	target  int
}

// NewVoiceSmoother starts at a single voice.
func NewVoiceSmoother() *VoiceSmoother {
	return &VoiceSmoother{current: MinVoices, target: MinVoices}
}

// SetTarget maps density in [0, 1] to round(1 + density × 7).
func (v *VoiceSmoother) SetTarget(density float64) {
	density = clamp(density, 0, 1)
	t := int(math.Round(1 + density*7))
	if t < MinVoices {
		t = MinVoices
	}
	if t > MaxVoices {
		t = MaxVoices
	}
	v.target = t
}

// Update steps the current count and returns it.
func (v *VoiceSmoother) Update() int {
	switch {
	case v.current < v.target:
		v.current++
	case v.current > v.target:
		v.current--
	}
	return v.current
}

// Current returns the smoothed voice count
func (v *VoiceSmoother) Current() int { return v.current }

// Target returns the target voice count
func (v *VoiceSmoother) Target() int { return v.target }

// StereoWidth is a mid/side width processor.
// Width 0 is mono, 1 leaves the signal alone, 2 is ultra-wide.
type StereoWidth struct {
	width float64
}

// NewStereoWidth returns an identity processor.
func NewStereoWidth() *StereoWidth {
	return &StereoWidth{width: 1}
}

// SetWidth clamps width to [0, 2].
func (s *StereoWidth) SetWidth(width float64) {
	s.width = clamp(width, 0, 2)
}

// Width returns the width
func (s *StereoWidth) Width() float64 { return s.width }

// ProcessStereo scales the side signal. The mid signal passes unchanged.
func (s *StereoWidth) ProcessStereo(l, r float64) (float64, float64) {
	mid := (l + r) / 2
	side := (l - r) / 2 * s.width
	return mid + side, mid - side
}

// NumHarmonics is the length of every harmonic amplitude series.
const NumHarmonics = 8

// Harmonics derives a harmonic amplitude series from a single complexity
// knob. Higher complexity adds partials, spreads them more and slows their
// falloff.
type Harmonics struct {
	complexity float64
	count      int
	spread     float64
	ratio      float64 // amplitude ratio between successive partials
	amps       [NumHarmonics]float64
}

// NewHarmonics creates a controller at zero complexity.
func NewHarmonics() *Harmonics {
	h := &Harmonics{}
	h.Update()
	return h
}

// SetComplexity clamps complexity to [0, 1]. Takes effect on Update.
func (h *Harmonics) SetComplexity(c float64) {
	h.complexity = clamp(c, 0, 1)
}

// Complexity returns the complexity
func (h *Harmonics) Complexity() float64 { return h.complexity }

// Update recomputes the series from the current complexity.
func (h *Harmonics) Update() {
	c := h.complexity
	h.count = int(math.Round(2 + c*6))
	h.spread = c
	h.ratio = 0.5 + 0.4*c
	for n := 1; n <= NumHarmonics; n++ {
		if n > h.count {
			h.amps[n-1] = 0
			continue
		}
		k := float64(n - 1)
		h.amps[n-1] = math.Pow(h.ratio, k) * (1 + h.spread*0.2*k)
	}
}

// Count returns the number of active harmonics, 2–8.
func (h *Harmonics) Count() int { return h.count }

// Spread returns the current spread factor
func (h *Harmonics) Spread() float64 { return h.spread }

// FalloffRatio returns the amplitude ratio between successive partials,
// 0.5–0.9. It rises with complexity.
func (h *Harmonics) FalloffRatio() float64 { return h.ratio }

// Decay is the fraction of amplitude lost per partial, 1 − FalloffRatio.
// Higher complexity means lower decay.
func (h *Harmonics) Decay() float64 { return 1 - h.ratio }

// Amplitudes returns the amplitude of harmonics 1..8; inactive ones are 0.
func (h *Harmonics) Amplitudes() [NumHarmonics]float64 { return h.amps }
