package modulation

import "math"

// State bundles every primitive advanced by the bridge tick.
type State struct {
	LFO       *LFO
	Chaos     *Chaos
	Tilt      *SpectralTilt
	Voices    *VoiceSmoother
	Stereo    *StereoWidth
	Harmonics *Harmonics

	// last outputs
	LFOValue   float64
	ChaosValue float64
}

// NewState creates the default bundle: a 0.25 Hz sine LFO, a silent chaos
// source, flat tilt, one voice, identity width and minimal harmonics.
func NewState() *State {
	return &State{
		LFO:       NewLFO(0.25, WaveSine, 1),
		Chaos:     NewChaos(),
		Tilt:      &SpectralTilt{},
		Voices:    NewVoiceSmoother(),
		Stereo:    NewStereoWidth(),
		Harmonics: NewHarmonics(),
	}
}

// Step advances all primitives by dt seconds.
func (s *State) Step(dt float64) {
	s.LFOValue = s.LFO.NextValue(dt)
	s.ChaosValue = s.Chaos.ChaosModulation(dt)
	s.Voices.Update()
	s.Harmonics.Update()
}

// Snapshot is the serialisable form of State.
type Snapshot struct {
	LFORate      float64  `json:"lfo_rate"`
	LFOWaveform  Waveform `json:"lfo_waveform"`
	LFOPhase     float64  `json:"lfo_phase"`
	ChaosLevel   float64  `json:"chaos_level"`
	ChaosX       float64  `json:"chaos_x"`
	ChaosY       float64  `json:"chaos_y"`
	ChaosZ       float64  `json:"chaos_z"`
	Tilt         float64  `json:"tilt"`
	TargetVoices int      `json:"target_voices"`
	Voices       int      `json:"voices"`
	StereoWidth  float64  `json:"stereo_width"`
	Complexity   float64  `json:"complexity"`
}

// Snapshot captures the state.
func (s *State) Snapshot() Snapshot {
	x, y, z := s.Chaos.State()
	return Snapshot{
		LFORate:      s.LFO.Rate,
		LFOWaveform:  s.LFO.Waveform,
		LFOPhase:     s.LFO.Phase(),
		ChaosLevel:   s.Chaos.Level(),
		ChaosX:       x,
		ChaosY:       y,
		ChaosZ:       z,
		Tilt:         s.Tilt.Amount(),
		TargetVoices: s.Voices.Target(),
		Voices:       s.Voices.Current(),
		StereoWidth:  s.Stereo.Width(),
		Complexity:   s.Harmonics.Complexity(),
	}
}

// Restore loads a snapshot. Out-of-range values are clamped by the setters.
func (s *State) Restore(snap Snapshot) {
	s.LFO.SetRate(snap.LFORate)
	s.LFO.SetWaveform(snap.LFOWaveform)
	s.LFO.phase = math.Mod(math.Abs(snap.LFOPhase), 2*math.Pi)
	s.Chaos.SetChaosLevel(snap.ChaosLevel)
	s.Chaos.x, s.Chaos.y, s.Chaos.z = snap.ChaosX, snap.ChaosY, snap.ChaosZ
	s.Tilt.SetTilt(snap.Tilt)
	s.Voices.target = clampInt(snap.TargetVoices, MinVoices, MaxVoices)
	s.Voices.current = clampInt(snap.Voices, MinVoices, MaxVoices)
	s.Stereo.SetWidth(snap.StereoWidth)
	s.Harmonics.SetComplexity(snap.Complexity)
	s.Harmonics.Update()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
