// Package analysis reduces an audio window to a handful of perceptual
// features: three band energies, spectral centroid and RMS.
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Band edges in Hz
const (
	BassLow  = 20.0
	BassHigh = 250.0
	MidHigh  = 2000.0
	HighHigh = 8000.0
)

// Features is one analysis snapshot. Band energies are normalised so a
// full-scale sine lands near 1; they are clamped to [0, 1].
type Features struct {
	Bass     float64 `json:"bass"`
	Mid      float64 `json:"mid"`
	High     float64 `json:"high"`
	Centroid float64 `json:"centroid"` // Hz
	RMS      float64 `json:"rms"`
}

// Extractor runs a Hann-windowed real FFT over fixed-size windows.
// All buffers are allocated up front; Extract does not allocate.
type Extractor struct {
	size       int
	sampleRate float64
	fft        *fourier.FFT
	window     []float64
	input      []float64
	coeffs     []complex128
	binWidth   float64
}

// NewExtractor creates an extractor for windows of size samples.
func NewExtractor(size int, sampleRate float64) *Extractor {
	if size < 2 {
		size = 2
	}
	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}
	return &Extractor{
		size:       size,
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(size),
		window:     window.Hann(w),
		input:      make([]float64, size),
		coeffs:     make([]complex128, size/2+1),
		binWidth:   sampleRate / float64(size),
	}
}

// Size returns the window length
func (e *Extractor) Size() int { return e.size }

// Extract analyses the most recent Size() samples of samples. Shorter input is
// zero padded at the front; nil or silent input yields zero Features.
func (e *Extractor) Extract(samples []float64) Features {
	if len(samples) > e.size {
		samples = samples[len(samples)-e.size:]
	}
	pad := e.size - len(samples)
	clear(e.input[:pad])
	copy(e.input[pad:], samples)

	var sumSq float64
	for _, s := range samples {
		sumSq += s * s
	}
	if sumSq == 0 {
		return Features{}
	}
	rms := math.Sqrt(sumSq / float64(e.size))

	for i := range e.input {
		e.input[i] *= e.window[i]
	}
	e.coeffs = e.fft.Coefficients(e.coeffs, e.input)

	// A full-scale sine through a Hann window peaks at size/4.
	ref := float64(e.size) / 4
	var bass, mid, high, weighted, total float64
	for i := 1; i < len(e.coeffs); i++ {
		mag := cmplx.Abs(e.coeffs[i])
		f := float64(i) * e.binWidth
		weighted += f * mag
		total += mag
		switch {
		case f >= BassLow && f < BassHigh:
			bass += mag
		case f >= BassHigh && f < MidHigh:
			mid += mag
		case f >= MidHigh && f < HighHigh:
			high += mag
		}
	}

	out := Features{
		Bass: clamp01(bass / ref),
		Mid:  clamp01(mid / ref),
		High: clamp01(high / ref),
		RMS:  rms,
	}
	if total > 0 {
		out.Centroid = weighted / total
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
