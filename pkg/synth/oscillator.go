package synth

import "math"

// Phases are kept as cycle fractions in [0, 1).

func advance(phase, inc float64) float64 {
	phase += inc
	if phase >= 1.0 {
		phase -= math.Floor(phase)
	}
	return phase
}

// Triangle wave: /\/\/\
func triangle(p float64) float64 {
	if p < 0.5 {
		return 4.0*p - 1.0
	}
	return 3.0 - 4.0*p
}

// Sawtooth wave: /|/|/|
func sawtooth(p float64) float64 {
	return 2.0*p - 1.0
}

// Square wave: _|-|_|-|
func square(p float64) float64 {
	if p < 0.5 {
		return 1.0
	}
	return -1.0
}

func sine(p float64) float64 {
	return math.Sin(2 * math.Pi * p)
}

// wave evaluates the family waveform blend at phase p.
func (w WaveMix) wave(p float64) float64 {
	p -= math.Floor(p)
	var s float64
	if w.Sine != 0 {
		s += w.Sine * sine(p)
	}
	if w.Triangle != 0 {
		s += w.Triangle * triangle(p)
	}
	if w.Saw != 0 {
		s += w.Saw * sawtooth(p)
	}
	if w.Square != 0 {
		s += w.Square * square(p)
	}
	return s
}

// noiseLCG is the deterministic noise source of the audio path.
type noiseLCG struct {
	seed uint32
}

func (n *noiseLCG) next() float64 {
	n.seed = n.seed*1103515245 + 12345
	return float64(int32(n.seed)) / float64(math.MaxInt32)
}

// detuneRatios fills ratios with symmetric detune around 1.0, spread by cents.
func detuneRatios(ratios []float64, voices int, cents float64) {
	if voices <= 1 {
		ratios[0] = 1
		return
	}
	if cents < 0 {
		cents = 0
	}
	step := 2 * cents / float64(voices-1)
	for i := 0; i < voices; i++ {
		c := -cents + float64(i)*step
		ratios[i] = math.Pow(2.0, c/1200.0)
	}
}

// equalPowerPan returns gains for left/right given pan in [-1,1].
func equalPowerPan(p float64) (float64, float64) {
	if p < -1 {
		p = -1
	}
	if p > 1 {
		p = 1
	}
	theta := (p + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}
