package synth

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/oisee/hypersynth/internal/atomicfloat"
	"github.com/oisee/hypersynth/pkg/modulation"
)

// Rendering constants.
const (
	DefaultCutoff = 8000.0
	outputGain    = 0.8
	panSpread     = 0.6

	chorusBase   = 0.015 // seconds
	chorusDepth  = 0.005
	chorusRate   = 0.8 // Hz
	chorusMix    = 0.3
	sweepRate    = 0.25 // Hz
	sweepOctaves = 1.5
	pmRatio      = 0.5
	pmDepth      = 0.3 // radians
	spaceLeft    = 0.037
	spaceRight   = 0.041
	spaceFB      = 0.45

	// release leveller: peak follower decay time and gain floor
	followTime  = 0.01 // seconds
	followFloor = 1e-9
)

// voiceState holds the oscillator phases of one unison voice.
type voiceState struct {
	carrier float64
	second  float64 // FM modulator or ring-mod oscillator
}

// Manager resolves geometry into a synthesis route and renders buffers.
//
// Fields are single-writer: the route and note gate are written by the
// control side (UI, bridge), the bridge parameters by the bridge tick, and
// everything else only inside buffer generation.
type Manager struct {
	sampleRate float64
	logger     *slog.Logger

	routeMu sync.Mutex // serialises route writers only
	route   atomic.Pointer[Route]

	gate    atomic.Bool
	trigger atomic.Uint64

	// bridge-written parameters
	detune       atomicfloat.Float64
	cutoff       atomicfloat.Float64
	reverbMix    atomicfloat.Float64
	reverbSet    atomic.Bool
	voiceCount   atomic.Int32
	tilt         atomicfloat.Float64
	chaosJitter  atomicfloat.Float64
	chaosNoise   atomicfloat.Float64
	stereoWidth  atomicfloat.Float64
	harmonicGain [modulation.NumHarmonics]atomicfloat.Float64

	corrupt atomic.Uint64

	// audio path state
	env         Envelope
	lastTrigger uint64
	elapsed     uint64
	voices      [modulation.MaxVoices]voiceState
	ratios      [modulation.MaxVoices]float64
	panL, panR  [modulation.MaxVoices]float64
	partials    [modulation.NumHarmonics]float64
	activeVoice int
	pmPhase     float64
	chorusPhase float64
	sweepPhase  float64
	follow      float64 // peak follower of the pre-envelope mid signal
	releaseRef  float64 // follower level when the release began
	releasing   bool
	noise       noiseLCG
	filterL     svf
	filterR     svf
	chorus      *delayLine
	spaceL      *space
	spaceR      *space
	stereo      *modulation.StereoWidth
	left, right []float64
	mono        []float64
}

// NewManager creates a manager at geometry 0 with the Quantum family.
func NewManager(sampleRate float64, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		sampleRate:  sampleRate,
		logger:      logger,
		noise:       noiseLCG{seed: 1},
		chorus:      newDelayLine(int((chorusBase+chorusDepth)*sampleRate) + 4),
		spaceL:      newSpace(spaceLeft, spaceFB, sampleRate),
		spaceR:      newSpace(spaceRight, spaceFB, sampleRate),
		stereo:      modulation.NewStereoWidth(),
		activeVoice: 1,
	}
	r := Resolve(MustGeometry(0), Quantum)
	m.route.Store(&r)
	m.cutoff.Store(DefaultCutoff)
	m.voiceCount.Store(1)
	m.stereoWidth.Store(1)
	for i := range m.harmonicGain {
		m.harmonicGain[i].Store(1)
	}
	return m
}

// SampleRate returns the rendering sample rate
func (m *Manager) SampleRate() float64 { return m.sampleRate }

// Route returns the active route
func (m *Manager) Route() Route { return *m.route.Load() }

// SetGeometry switches geometry, branch, family and voice character in one
// step. The envelope is not retriggered.
func (m *Manager) SetGeometry(index int) error {
	g, err := NewGeometry(index)
	if err != nil {
		return err
	}
	m.routeMu.Lock()
	defer m.routeMu.Unlock()
	r := Resolve(g, m.route.Load().System)
	m.route.Store(&r)
	return nil
}

// SetVisualSystem switches the sound family; geometry is untouched.
func (m *Manager) SetVisualSystem(sys VisualSystem) error {
	if !sys.Valid() {
		return ErrInvalidInput
	}
	m.routeMu.Lock()
	defer m.routeMu.Unlock()
	r := Resolve(m.route.Load().Geometry, sys)
	m.route.Store(&r)
	return nil
}

// NoteOn opens the gate; the envelope starts on the next buffer.
func (m *Manager) NoteOn() {
	m.gate.Store(true)
	m.trigger.Add(1)
}

// NoteOff closes the gate
func (m *Manager) NoteOff() {
	m.gate.Store(false)
}

// Gate reports whether a note is held
func (m *Manager) Gate() bool { return m.gate.Load() }

// SetDetune adds cents to the voice character's unison spread.
func (m *Manager) SetDetune(cents float64) { m.detune.Store(math.Max(0, cents)) }

// SetFilterCutoff sets the low-pass cutoff in Hz
func (m *Manager) SetFilterCutoff(hz float64) { m.cutoff.Store(math.Max(20, hz)) }

// SetReverbMix overrides the route's reverb mix, clamped to [0, 1].
func (m *Manager) SetReverbMix(mix float64) {
	m.reverbMix.Store(clamp01(mix))
	m.reverbSet.Store(true)
}

// SetVoiceCount sets the unison voice count, clamped to [1, 8].
func (m *Manager) SetVoiceCount(n int) {
	if n < modulation.MinVoices {
		n = modulation.MinVoices
	}
	if n > modulation.MaxVoices {
		n = modulation.MaxVoices
	}
	m.voiceCount.Store(int32(n))
}

// SetHarmonicAmplitudes scales the family harmonic series.
func (m *Manager) SetHarmonicAmplitudes(amps [modulation.NumHarmonics]float64) {
	for i, a := range amps {
		m.harmonicGain[i].Store(a)
	}
}

// SetTilt sets the spectral tilt amount in [-1, 1]
func (m *Manager) SetTilt(amount float64) { m.tilt.Store(math.Max(-1, math.Min(1, amount))) }

// SetChaos injects the chaos source: jitter is the relative cutoff offset,
// noise the extra noise amplitude. Both are bounded here.
func (m *Manager) SetChaos(jitter, noise float64) {
	m.chaosJitter.Store(math.Max(-0.5, math.Min(0.5, jitter)))
	m.chaosNoise.Store(math.Max(0, math.Min(0.3, noise)))
}

// SetStereoWidth sets the mid/side width in [0, 2]
func (m *Manager) SetStereoWidth(w float64) { m.stereoWidth.Store(w) }

// EnvelopeStage returns the current envelope stage. Only meaningful from the
// goroutine that generates buffers.
func (m *Manager) EnvelopeStage() EnvelopeStage { return m.env.Stage }

// EnvelopeAmplitude returns the current envelope amplitude
func (m *Manager) EnvelopeAmplitude() float64 { return m.env.Amplitude }

// VoiceCount returns the unison voice count in use
func (m *Manager) VoiceCount() int { return int(m.voiceCount.Load()) }

// CorruptSamples counts NaN/Inf samples replaced with silence.
func (m *Manager) CorruptSamples() uint64 { return m.corrupt.Load() }

// Reset silences the engine and clears all effect state.
func (m *Manager) Reset() {
	m.env = Envelope{}
	m.gate.Store(false)
	m.lastTrigger = m.trigger.Load()
	m.elapsed = 0
	m.voices = [modulation.MaxVoices]voiceState{}
	m.pmPhase, m.chorusPhase, m.sweepPhase = 0, 0, 0
	m.follow, m.releaseRef, m.releasing = 0, 0, false
	m.noise = noiseLCG{seed: 1}
	m.filterL, m.filterR = svf{}, svf{}
	clear(m.chorus.buf)
	m.spaceL.reset()
	m.spaceR.reset()
}

// GenerateBuffer renders frames mono samples at frequency. The returned slice
// is reused by the next call.
func (m *Manager) GenerateBuffer(frames int, frequency float64) []float64 {
	l, r := m.buffers(frames)
	m.GenerateStereo(l, r, frequency)
	if cap(m.mono) < frames {
		m.mono = make([]float64, frames)
	}
	m.mono = m.mono[:frames]
	for i := range m.mono {
		m.mono[i] = (l[i] + r[i]) / 2
	}
	return m.mono
}

func (m *Manager) buffers(frames int) ([]float64, []float64) {
	if cap(m.left) < frames {
		m.left = make([]float64, frames)
		m.right = make([]float64, frames)
	}
	return m.left[:frames], m.right[:frames]
}

// GenerateStereo renders len(left) frames into left and right. Every sample
// ends up in [-1, 1].
func (m *Manager) GenerateStereo(left, right []float64, frequency float64) {
	route := m.route.Load()
	m.syncNote()
	m.env.Configure(route.Voice.AttackMs, route.Voice.ReleaseMs, m.sampleRate)
	m.prepare(route, frequency)

	frames := len(left)
	if len(right) < frames {
		frames = len(right)
	}

	if m.env.Stage == StageIdle {
		clear(left[:frames])
		clear(right[:frames])
		m.elapsed += uint64(frames)
		return
	}

	reverb := route.DefaultReverbMix()
	if m.reverbSet.Load() {
		reverb = m.reverbMix.Load()
	}
	noiseAmp := route.Family.NoiseFloor + m.chaosNoise.Load()
	baseCutoff := m.cutoff.Load() * (1 + m.chaosJitter.Load())
	coeffs := newSVFCoeffs(baseCutoff, route.Family.FilterQ, m.sampleRate)
	m.stereo.SetWidth(m.stereoWidth.Load())
	norm := 1 / math.Sqrt(float64(m.activeVoice))
	dt := 1 / m.sampleRate
	followDecay := math.Exp(-dt / followTime)

	for i := 0; i < frames; i++ {
		var pm float64
		if route.Voice.PhaseModulation {
			m.pmPhase = advance(m.pmPhase, frequency*pmRatio*dt)
			pm = pmDepth * sine(m.pmPhase)
		}

		var l, r float64
		for v := 0; v < m.activeVoice; v++ {
			s := m.voiceSample(route, v, frequency*m.ratios[v]*dt, pm)
			l += s * m.panL[v]
			r += s * m.panR[v]
		}
		l *= norm
		r *= norm

		n := m.noise.next() * noiseAmp
		l += n
		r += n

		if route.Voice.Chorus {
			m.chorusPhase = advance(m.chorusPhase, chorusRate*dt)
			m.chorus.write((l + r) / 2)
			mod := chorusDepth * sine(m.chorusPhase)
			l += chorusMix * m.chorus.read((chorusBase+mod)*m.sampleRate)
			r += chorusMix * m.chorus.read((chorusBase-mod)*m.sampleRate)
		}

		if route.Voice.FilterSweep {
			m.sweepPhase = advance(m.sweepPhase, sweepRate*dt)
			cut := baseCutoff * math.Pow(2, sweepOctaves*sine(m.sweepPhase)-sweepOctaves/2)
			coeffs = newSVFCoeffs(cut, route.Family.FilterQ, m.sampleRate)
		}
		l = m.filterL.lowpass(l, coeffs)
		r = m.filterR.lowpass(r, coeffs)

		l = m.spaceL.process(l, reverb)
		r = m.spaceR.process(r, reverb)

		level := math.Abs(l+r) / 2
		if level >= m.follow*followDecay {
			m.follow = level
		} else {
			m.follow *= followDecay
		}

		amp := m.releaseGain(m.env.Next()) * outputGain
		l, r = m.stereo.ProcessStereo(l*amp, r*amp)

		left[i] = m.sanitize(l)
		right[i] = m.sanitize(r)
		m.elapsed++
	}
}

// releaseGain levels the signal against its peak follower while the envelope
// releases, so the output peak is bounded by env × releaseRef and reaches that
// bound on every follower peak.
func (m *Manager) releaseGain(env float64) float64 {
	if m.env.Stage != StageRelease {
		m.releasing = false
		return env
	}
	if !m.releasing {
		m.releasing = true
		m.releaseRef = m.follow
	}
	return env * m.releaseRef / math.Max(m.follow, followFloor)
}

// syncNote applies gate changes made since the last buffer.
func (m *Manager) syncNote() {
	if t := m.trigger.Load(); t != m.lastTrigger {
		m.lastTrigger = t
		m.env.NoteOn()
	}
	if !m.gate.Load() {
		m.env.NoteOff()
	}
}

// prepare computes per-buffer voice and partial tables.
func (m *Manager) prepare(route *Route, frequency float64) {
	n := int(m.voiceCount.Load())
	for v := m.activeVoice; v < n; v++ {
		m.voices[v] = m.voices[0]
	}
	m.activeVoice = n

	detuneRatios(m.ratios[:], n, route.Voice.DetuneCents+m.detune.Load())
	for v := 0; v < n; v++ {
		pan := 0.0
		if n > 1 {
			pan = -panSpread + 2*panSpread*float64(v)/float64(n-1)
		}
		m.panL[v], m.panR[v] = equalPowerPan(pan)
	}

	if route.Branch != BranchDirect {
		return
	}
	tiltDB := m.tilt.Load() * 12
	nyquist := m.sampleRate / 2
	count := route.Voice.HarmonicCount
	var sum float64
	for h := 0; h < modulation.NumHarmonics; h++ {
		if h >= count {
			m.partials[h] = 0
			continue
		}
		f := frequency * float64(h+1)
		if f >= nyquist {
			m.partials[h] = 0
			continue
		}
		g := route.Family.Harmonics[h] * m.harmonicGain[h].Load() * modulation.TiltGain(tiltDB, f/nyquist)
		m.partials[h] = g
		sum += math.Abs(g)
	}
	if sum > 0 {
		for h := range m.partials {
			m.partials[h] /= sum
		}
	}
}

// voiceSample advances voice v by inc cycles and returns its sample.
func (m *Manager) voiceSample(route *Route, v int, inc, pm float64) float64 {
	vs := &m.voices[v]
	vs.carrier = advance(vs.carrier, inc)
	p := vs.carrier + pm/(2*math.Pi)

	switch route.Branch {
	case BranchDirect:
		var partials float64
		theta := 2 * math.Pi * p
		for h, g := range m.partials {
			if g != 0 {
				partials += g * math.Sin(float64(h+1)*theta)
			}
		}
		return directPartialWeight*partials + (1-directPartialWeight)*route.Family.Wave.wave(p)

	case BranchFM:
		vs.second = advance(vs.second, inc*fmModRatio)
		index := fmIndexPerHarmonic * float64(route.Voice.HarmonicCount)
		fm := math.Sin(2*math.Pi*p + index*sine(vs.second))
		return fmCarrierWeight*fm + (1-fmCarrierWeight)*route.Family.Wave.wave(p)

	case BranchRingMod:
		vs.second = advance(vs.second, inc*ringModRatio)
		a := route.Family.Wave.wave(p)
		return ringModWet*a*sine(vs.second) + ringModDry*a
	}
	return 0
}

func (m *Manager) sanitize(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		n := m.corrupt.Add(1)
		m.logger.Warn("corrupt sample replaced with silence", "sample", m.elapsed, "total", n)
		return 0
	}
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
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
