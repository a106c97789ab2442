package synth

import (
	"errors"
	"math"
	"testing"
)

const testSampleRate = 44100.0

func TestGeometry_RoundTrip(t *testing.T) {
	for i := MinGeometry; i <= MaxGeometry; i++ {
		g, err := NewGeometry(i)
		if err != nil {
			t.Fatalf("NewGeometry(%d): %v", i, err)
		}
		core, base := int(g.Core()), int(g.Base())
		if core < 0 || core > 2 {
			t.Errorf("index %d: core %d outside {0,1,2}", i, core)
		}
		if base < 0 || base > 7 {
			t.Errorf("index %d: base %d outside [0,7]", i, base)
		}
		if core*8+base != i {
			t.Errorf("index %d: core*8+base = %d", i, core*8+base)
		}
		if int(g.Branch()) != core {
			t.Errorf("index %d: branch %v for core %v", i, g.Branch(), g.Core())
		}
	}
}

func TestSetGeometry_RejectsOutOfRange(t *testing.T) {
	m := NewManager(testSampleRate, nil)
	for _, idx := range []int{-1, 24, 100} {
		err := m.SetGeometry(idx)
		if err == nil {
			t.Fatalf("SetGeometry(%d) succeeded", idx)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("SetGeometry(%d) error %v is not ErrInvalidInput", idx, err)
		}
		var re *RangeError
		if !errors.As(err, &re) || re.Index != idx {
			t.Errorf("SetGeometry(%d) error %v is not a RangeError", idx, err)
		}
	}
	for i := MinGeometry; i <= MaxGeometry; i++ {
		if err := m.SetGeometry(i); err != nil {
			t.Errorf("SetGeometry(%d): %v", i, err)
		}
		if got := m.Route().Geometry.Index(); got != i {
			t.Errorf("route geometry = %d, want %d", got, i)
		}
	}
}

func TestParseVisualSystem(t *testing.T) {
	tests := []struct {
		in      string
		want    VisualSystem
		wantErr bool
	}{
		{"quantum", Quantum, false},
		{"Faceted", Faceted, false},
		{" HOLOGRAPHIC ", Holographic, false},
		{"", 0, true},
		{"wireframe", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseVisualSystem(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseVisualSystem(%q) error = %v, want ErrInvalidInput", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseVisualSystem(%q) = %v, %v", tc.in, got, err)
		}
	}
	if Holographic.Next() != Quantum || Quantum.Next() != Faceted {
		t.Error("Next does not cycle through the systems")
	}
}

func TestSoundFamilies_FundamentalFixed(t *testing.T) {
	for sys := Quantum; sys < numVisualSystems; sys++ {
		if h := sys.Family().Harmonics[0]; h != 1 {
			t.Errorf("%v fundamental = %f", sys, h)
		}
	}
}

func TestGenerateBuffer_SilentBeforeNoteOn(t *testing.T) {
	m := NewManager(testSampleRate, nil)
	for b := 0; b < 3; b++ {
		for i, s := range m.GenerateBuffer(512, 440) {
			if s != 0 {
				t.Fatalf("buffer %d sample %d = %f before NoteOn", b, i, s)
			}
		}
	}
	if m.EnvelopeStage() != StageIdle {
		t.Errorf("stage = %v, want idle", m.EnvelopeStage())
	}
}

func TestGenerateBuffer_AllRoutesBoundedAndAudible(t *testing.T) {
	for sys := Quantum; sys < numVisualSystems; sys++ {
		for idx := MinGeometry; idx <= MaxGeometry; idx++ {
			m := NewManager(testSampleRate, nil)
			if err := m.SetVisualSystem(sys); err != nil {
				t.Fatal(err)
			}
			if err := m.SetGeometry(idx); err != nil {
				t.Fatal(err)
			}
			m.NoteOn()
			audible := false
			for b := 0; b < 10; b++ {
				for _, s := range m.GenerateBuffer(512, 440) {
					if s < -1 || s > 1 || math.IsNaN(s) {
						t.Fatalf("%v geometry %d: sample %f out of range", sys, idx, s)
					}
					if math.Abs(s) > 0.001 {
						audible = true
					}
				}
			}
			if !audible {
				t.Errorf("%v geometry %d: no audible sample", sys, idx)
			}
		}
	}
}

func TestGenerateStereo_ClampsLoudVoices(t *testing.T) {
	m := NewManager(testSampleRate, nil)
	_ = m.SetGeometry(15) // Hypersphere/Crystal
	m.SetVoiceCount(8)
	m.SetStereoWidth(2)
	m.SetReverbMix(1)
	m.NoteOn()
	l := make([]float64, 512)
	r := make([]float64, 512)
	for b := 0; b < 20; b++ {
		m.GenerateStereo(l, r, 880)
		for i := range l {
			if math.Abs(l[i]) > 1 || math.Abs(r[i]) > 1 {
				t.Fatalf("sample outside [-1,1]: %f %f", l[i], r[i])
			}
		}
	}
}

func TestEnvelope_ReleaseDecaysToSilence(t *testing.T) {
	for sys := Quantum; sys < numVisualSystems; sys++ {
		for idx := MinGeometry; idx <= MaxGeometry; idx++ {
			m := NewManager(testSampleRate, nil)
			if err := m.SetVisualSystem(sys); err != nil {
				t.Fatal(err)
			}
			if err := m.SetGeometry(idx); err != nil {
				t.Fatal(err)
			}
			m.NoteOn()
			for b := 0; b < 20; b++ {
				m.GenerateBuffer(512, 440)
			}
			if m.EnvelopeStage() != StageSustain {
				t.Fatalf("%v geometry %d: stage = %v, want sustain", sys, idx, m.EnvelopeStage())
			}

			m.NoteOff()
			prev := math.Inf(1)
			reachedSilence := false
			for b := 0; b < 200; b++ {
				peak := 0.0
				for _, s := range m.GenerateBuffer(512, 440) {
					peak = math.Max(peak, math.Abs(s))
				}
				if peak < 0.001 {
					reachedSilence = true
					break
				}
				if peak >= prev {
					t.Fatalf("%v geometry %d: buffer %d peak %f did not drop below %f", sys, idx, b, peak, prev)
				}
				prev = peak
			}
			if !reachedSilence {
				t.Fatalf("%v geometry %d: release never reached silence", sys, idx)
			}

			for b := 0; b < 200 && m.EnvelopeStage() != StageIdle; b++ {
				m.GenerateBuffer(512, 440)
			}
			if m.EnvelopeStage() != StageIdle {
				t.Errorf("%v geometry %d: stage = %v after release, want idle", sys, idx, m.EnvelopeStage())
			}
		}
	}
}

func TestEnvelope_ReleaseIsContinuous(t *testing.T) {
	m := NewManager(testSampleRate, nil)
	_ = m.SetGeometry(17) // Hypertetrahedron/Hypercube: chorus
	m.NoteOn()
	var sustainPeak float64
	for b := 0; b < 20; b++ {
		sustainPeak = 0
		for _, s := range m.GenerateBuffer(512, 440) {
			sustainPeak = math.Max(sustainPeak, math.Abs(s))
		}
	}
	m.NoteOff()
	var releasePeak float64
	for _, s := range m.GenerateBuffer(512, 440) {
		releasePeak = math.Max(releasePeak, math.Abs(s))
	}
	if releasePeak < sustainPeak*0.5 {
		t.Errorf("release starts at %f, sustain was %f", releasePeak, sustainPeak)
	}
}

func TestSetGeometry_DoesNotRetrigger(t *testing.T) {
	m := NewManager(testSampleRate, nil)
	m.NoteOn()
	for b := 0; b < 10; b++ {
		m.GenerateBuffer(512, 440)
	}
	if err := m.SetGeometry(9); err != nil {
		t.Fatal(err)
	}
	m.GenerateBuffer(512, 440)
	if m.EnvelopeStage() != StageSustain || m.EnvelopeAmplitude() != 1 {
		t.Errorf("after SetGeometry stage=%v amp=%f, want sustain at 1", m.EnvelopeStage(), m.EnvelopeAmplitude())
	}
	if m.Route().Branch != BranchFM {
		t.Errorf("branch = %v, want FM", m.Route().Branch)
	}
}

func TestHolographicTorusScenario(t *testing.T) {
	ring := NewManager(testSampleRate, nil)
	if err := ring.SetVisualSystem(Holographic); err != nil {
		t.Fatal(err)
	}
	if err := ring.SetGeometry(19); err != nil {
		t.Fatal(err)
	}
	r := ring.Route()
	if r.Branch != BranchRingMod || r.Branch.Ratio() != 1.5 {
		t.Errorf("branch = %v ratio %f, want RingMod 1.5", r.Branch, r.Branch.Ratio())
	}
	if r.Geometry.Core() != CoreHypertetrahedron || r.Geometry.Base() != Torus {
		t.Errorf("geometry = %v", r.Geometry)
	}
	if r.Family.Name != "holographic" || r.Family.ReverbMix != 0.45 {
		t.Errorf("family = %+v", r.Family)
	}
	if r.Family.Wave.Saw <= r.Family.Wave.Sine || r.Family.Wave.Saw <= r.Family.Wave.Square {
		t.Errorf("holographic family not sawtooth-biased: %+v", r.Family.Wave)
	}
	if !r.Voice.PhaseModulation || !r.Voice.FilterSweep {
		t.Errorf("torus voice = %+v, want phase modulation and filter sweep", r.Voice)
	}

	direct := NewManager(testSampleRate, nil)
	if err := direct.SetGeometry(3); err != nil {
		t.Fatal(err)
	}
	if direct.Route().Branch != BranchDirect || direct.Route().System != Quantum {
		t.Fatalf("route = %+v", direct.Route())
	}

	ring.NoteOn()
	direct.NoteOn()
	a := append([]float64(nil), ring.GenerateBuffer(512, 440)...)
	b := direct.GenerateBuffer(512, 440)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("ring-mod and direct renders are identical")
	}
}

func TestGenerateBuffer_Deterministic(t *testing.T) {
	render := func() []float64 {
		m := NewManager(testSampleRate, nil)
		_ = m.SetVisualSystem(Faceted)
		_ = m.SetGeometry(12)
		m.SetVoiceCount(3)
		m.NoteOn()
		var out []float64
		for b := 0; b < 4; b++ {
			out = append(out, m.GenerateBuffer(256, 330)...)
		}
		return out
	}
	a, b := render(), render()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestSanitize_ReplacesNaN(t *testing.T) {
	m := NewManager(testSampleRate, nil)
	if got := m.sanitize(math.NaN()); got != 0 {
		t.Errorf("sanitize(NaN) = %f", got)
	}
	if got := m.sanitize(math.Inf(-1)); got != 0 {
		t.Errorf("sanitize(-Inf) = %f", got)
	}
	if got := m.sanitize(1.7); got != 1 {
		t.Errorf("sanitize(1.7) = %f", got)
	}
	if m.CorruptSamples() != 2 {
		t.Errorf("CorruptSamples = %d, want 2", m.CorruptSamples())
	}
}

func TestEnvelope_Transitions(t *testing.T) {
	var e Envelope
	e.Configure(1, 1, 1000) // one sample each way
	if e.Next() != 0 || e.Stage != StageIdle {
		t.Fatal("idle envelope produced output")
	}
	e.NoteOn()
	if e.Next() != 1 || e.Stage != StageSustain {
		t.Fatalf("after attack stage=%v amp=%f", e.Stage, e.Amplitude)
	}
	e.NoteOff()
	if e.Stage != StageRelease {
		t.Fatalf("stage after NoteOff = %v", e.Stage)
	}
	for i := 0; i < 3 && e.Stage != StageIdle; i++ {
		e.Next()
	}
	if e.Stage != StageIdle || e.Amplitude != 0 {
		t.Errorf("stage after release = %v", e.Stage)
	}
}
