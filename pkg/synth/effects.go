package synth

import "math"

// svf is a topology-preserving state variable low-pass filter (Simper).
type svf struct {
	ic1, ic2 float64
}

type svfCoeffs struct {
	a1, a2, a3 float64
}

func newSVFCoeffs(cutoff, q, sampleRate float64) svfCoeffs {
	ratio := cutoff / sampleRate
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 0.499 {
		ratio = 0.499
	}
	g := math.Tan(math.Pi * ratio)
	if q < 1e-3 {
		q = 1e-3
	}
	k := 1 / q
	a1 := 1 / (1 + g*(g+k))
	a2 := g * a1
	return svfCoeffs{a1: a1, a2: a2, a3: g * a2}
}

func (f *svf) lowpass(x float64, c svfCoeffs) float64 {
	v3 := x - f.ic2
	v1 := c.a1*f.ic1 + c.a2*v3
	v2 := f.ic2 + c.a2*f.ic1 + c.a3*v3
	f.ic1 = 2*v1 - f.ic1
	f.ic2 = 2*v2 - f.ic2
	return v2
}

// delayLine is a fixed-size circular buffer.
type delayLine struct {
	buf []float64
	pos int
}

func newDelayLine(samples int) *delayLine {
	if samples < 2 {
		samples = 2
	}
	return &delayLine{buf: make([]float64, samples)}
}

func (d *delayLine) write(x float64) {
	d.buf[d.pos] = x
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

// read returns the sample written delay samples ago, linearly interpolated.
func (d *delayLine) read(delay float64) float64 {
	n := len(d.buf)
	if delay < 1 {
		delay = 1
	}
	if delay > float64(n-1) {
		delay = float64(n - 1)
	}
	i := int(delay)
	frac := delay - float64(i)
	a := d.buf[(d.pos-i+n)%n]
	b := d.buf[(d.pos-i-1+n)%n]
	return a + (b-a)*frac
}

// space is a feedback delay used as a small room.
type space struct {
	line     *delayLine
	delay    float64
	feedback float64
}

func newSpace(delaySeconds, feedback, sampleRate float64) *space {
	d := delaySeconds * sampleRate
	return &space{
		line:     newDelayLine(int(d) + 2),
		delay:    d,
		feedback: feedback,
	}
}

func (s *space) process(x, mix float64) float64 {
	wet := s.line.read(s.delay)
	s.line.write(x + wet*s.feedback)
	return x*(1-mix) + wet*mix
}

func (s *space) reset() {
	clear(s.line.buf)
}
