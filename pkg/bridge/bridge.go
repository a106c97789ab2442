// Package bridge runs the fixed-rate loop that couples audio analysis to
// the renderer and renderer state back to the synthesizer.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/oisee/hypersynth/pkg/analysis"
	"github.com/oisee/hypersynth/pkg/format"
	"github.com/oisee/hypersynth/pkg/mapping"
	"github.com/oisee/hypersynth/pkg/modulation"
)

// Direction identifies one half of a tick.
type Direction int

const (
	AudioToVisual Direction = iota
	VisualToAudio
	numDirections
)

func (d Direction) String() string {
	switch d {
	case AudioToVisual:
		return "audio->visual"
	case VisualToAudio:
		return "visual->audio"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// RunState is the bridge lifecycle state.
type RunState int

const (
	Stopped RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// ErrRunning is returned by Start on a running bridge.
var ErrRunning = errors.New("bridge already running")

// Config holds the loop parameters.
type Config struct {
	TickRate       float64 // Hz
	ErrorThreshold int     // consecutive errors before a direction is disabled
	MinFPS         float64 // below this a performance warning is emitted
	Smoothing      float64 // EMA blend of new features, 0–1
	FFTSize        int
	SampleRate     float64
}

// DefaultConfig returns a 60 Hz loop with a 10 error threshold.
func DefaultConfig() Config {
	return Config{
		TickRate:       60,
		ErrorThreshold: 10,
		MinFPS:         30,
		Smoothing:      0.3,
		FFTSize:        2048,
		SampleRate:     44100,
	}
}

// Deps are the collaborators the bridge talks to. Input may be nil (no
// analysis input); every other field is required except Logger and Clock.
type Deps struct {
	Input   AudioInput
	Visual  VisualSource
	Display VisualSink
	Synth   SynthTarget
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Health is the externally observable failure state.
type Health struct {
	ConsecutiveAudioToVisual int
	ConsecutiveVisualToAudio int
	TotalErrors              int
	AudioToVisualDisabled    bool
	VisualToAudioDisabled    bool
	Ticks                    uint64
	FPS                      float64
}

// Disabled reports whether direction d has been shut off.
func (h Health) Disabled(d Direction) bool {
	if d == AudioToVisual {
		return h.AudioToVisualDisabled
	}
	return h.VisualToAudioDisabled
}

// Telemetry is the latest tick output, for display.
type Telemetry struct {
	Features   analysis.Features
	LFO        float64
	Chaos      float64
	Voices     int
	Complexity float64
	Visual     map[string]float64
	Audio      map[string]float64
}

// Bridge owns the tick loop. All methods are safe for concurrent use; ticks
// are serialised.
type Bridge struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger
	clock  func() time.Time

	tickMu sync.Mutex // held for a whole tick; guards the tick-only fields

	mu        sync.Mutex
	state     RunState
	cancel    context.CancelFunc
	a2v, v2a  mapping.Table
	pending   *modulation.Snapshot
	snapshot  modulation.Snapshot
	telemetry Telemetry
	observers []func(Event)

	healthMu    sync.Mutex
	consecutive [numDirections]int
	disabled    [numDirections]bool
	totalErrors int
	ticks       uint64
	fps         float64

	// tick only
	extractor     *analysis.Extractor
	mod           *modulation.State
	window        []float64
	smoothed      analysis.Features
	primed        bool
	lastGeometry  int
	a2vIn, a2vOut map[string]float64
	v2aIn, v2aOut map[string]float64
	fpsStart      time.Time
	fpsTicks      int
}

// New validates cfg and deps and builds a stopped bridge with the default
// mapping tables.
func New(cfg Config, deps Deps) (*Bridge, error) {
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %v", cfg.TickRate)
	}
	if cfg.ErrorThreshold < 1 {
		return nil, fmt.Errorf("error threshold must be at least 1, got %d", cfg.ErrorThreshold)
	}
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		return nil, fmt.Errorf("smoothing must be in (0, 1], got %v", cfg.Smoothing)
	}
	if cfg.FFTSize < 2 || cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("bad analysis settings: fft %d at %v Hz", cfg.FFTSize, cfg.SampleRate)
	}
	if deps.Visual == nil || deps.Display == nil || deps.Synth == nil {
		return nil, errors.New("bridge needs visual source, visual sink and synth target")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	b := &Bridge{
		cfg:          cfg,
		deps:         deps,
		logger:       logger,
		clock:        clock,
		a2v:          mapping.DefaultAudioToVisual(),
		v2a:          mapping.DefaultVisualToAudio(),
		extractor:    analysis.NewExtractor(cfg.FFTSize, cfg.SampleRate),
		mod:          modulation.NewState(),
		window:       make([]float64, cfg.FFTSize),
		lastGeometry: -1,
		a2vIn:        make(map[string]float64),
		a2vOut:       make(map[string]float64),
		v2aIn:        make(map[string]float64),
		v2aOut:       make(map[string]float64),
		telemetry: Telemetry{
			Visual: make(map[string]float64),
			Audio:  make(map[string]float64),
		},
	}
	b.snapshot = b.mod.Snapshot()
	return b, nil
}

// Start begins ticking at the configured rate. Health is reset.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Running {
		return ErrRunning
	}
	b.ResetHealth()
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.state = Running
	go b.loop(ctx)
	b.logger.Info("bridge started", "rate", b.cfg.TickRate)
	return nil
}

// Stop cancels ticking. An in-flight tick finishes before any later one starts.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Running {
		return
	}
	b.cancel()
	b.cancel = nil
	b.state = Stopped
	b.logger.Info("bridge stopped")
}

// State returns the lifecycle state
func (b *Bridge) State() RunState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bridge) loop(ctx context.Context) {
	period := time.Duration(float64(time.Second) / b.cfg.TickRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	last := b.clock()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			now := b.clock()
			dt := now.Sub(last).Seconds()
			last = now
			b.Tick(dt)
		}
	}
}

// Tick runs both directions once with a wall-clock delta of dt seconds.
// Each direction fails and recovers independently. The modulation primitives
// advance outside both directions so neither stalls the other.
func (b *Bridge) Tick(dt float64) {
	b.tickMu.Lock()
	defer b.tickMu.Unlock()

	b.mu.Lock()
	a2v, v2a := b.a2v, b.v2a
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if pending != nil {
		b.mod.Restore(*pending)
	}
	b.mod.Step(dt)

	b.run(AudioToVisual, func() error { return b.audioToVisual(a2v) })
	b.run(VisualToAudio, func() error { return b.visualToAudio(v2a) })

	b.publish()
	b.measure()
}

func (b *Bridge) run(d Direction, fn func() error) {
	if b.isDisabled(d) {
		return
	}
	if err := protect(fn); err != nil {
		b.fail(d, err)
		return
	}
	b.succeed(d)
}

// protect turns a panic inside fn into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (b *Bridge) audioToVisual(table mapping.Table) error {
	var window []float64
	if b.deps.Input != nil {
		window = b.deps.Input.Window(b.window)
	}
	f := b.extractor.Extract(window)
	if !b.primed {
		b.smoothed = f
		b.primed = true
	} else {
		a := b.cfg.Smoothing
		b.smoothed = analysis.Features{
			Bass:     b.smoothed.Bass*(1-a) + f.Bass*a,
			Mid:      b.smoothed.Mid*(1-a) + f.Mid*a,
			High:     b.smoothed.High*(1-a) + f.High*a,
			Centroid: b.smoothed.Centroid*(1-a) + f.Centroid*a,
			RMS:      b.smoothed.RMS*(1-a) + f.RMS*a,
		}
	}

	in := b.a2vIn
	in[mapping.SrcBass] = b.smoothed.Bass
	in[mapping.SrcMid] = b.smoothed.Mid
	in[mapping.SrcHigh] = b.smoothed.High
	in[mapping.SrcCentroid] = b.smoothed.Centroid
	in[mapping.SrcRMS] = b.smoothed.RMS
	in[mapping.SrcLFO] = b.mod.LFOValue
	in[mapping.SrcChaos] = b.mod.ChaosValue

	out := table.Apply(in, b.a2vOut)
	if err := checkFinite(out); err != nil {
		return err
	}
	d := b.deps.Display
	for target, v := range out {
		switch target {
		case mapping.DstRotationSpeed:
			d.SetRotationSpeed(v)
		case mapping.DstTessellation:
			d.SetTessellationDensity(v)
		case mapping.DstBrightness:
			d.SetVertexBrightness(v)
		case mapping.DstHueShift:
			d.SetHueShift(v)
		case mapping.DstGlow:
			d.SetGlowIntensity(v)
		}
	}
	return nil
}

func (b *Bridge) visualToAudio(table mapping.Table) error {
	v := b.deps.Visual
	rot := v.RotationAngles()
	idx := v.GeometryIndex()

	in := b.v2aIn
	for p, name := range mapping.RotationSources {
		in[name] = rot[p]
	}
	in[mapping.SrcWEnergy] = mapping.RotationEnergy(rot[3], rot[4], rot[5])
	in[mapping.SrcXYZEnergy] = mapping.RotationEnergy(rot[0], rot[1], rot[2])
	in[mapping.SrcGeometry] = float64(idx)
	in[mapping.SrcProjection] = v.ProjectionDistance()
	in[mapping.SrcLayer] = v.LayerSeparation()
	in[mapping.SrcMorph] = v.MorphFactor()

	out := table.Apply(in, b.v2aOut)
	if err := checkFinite(out); err != nil {
		return err
	}

	s := b.deps.Synth
	if idx != b.lastGeometry {
		if err := s.SetGeometry(idx); err != nil {
			return fmt.Errorf("set geometry: %w", err)
		}
		b.lastGeometry = idx
	}
	for target, val := range out {
		switch target {
		case mapping.DstDetune:
			s.SetDetune(val)
		case mapping.DstCutoff:
			s.SetFilterCutoff(val)
		case mapping.DstReverb:
			s.SetReverbMix(val)
		case mapping.DstVoices:
			b.mod.Voices.SetTarget(val)
		case mapping.DstComplexity:
			b.mod.Harmonics.SetComplexity(val)
		case mapping.DstChaos:
			b.mod.Chaos.SetChaosLevel(val)
		case mapping.DstTilt:
			b.mod.Tilt.SetTilt(val)
		case mapping.DstWidth:
			b.mod.Stereo.SetWidth(val)
		case mapping.DstLFORate:
			b.mod.LFO.SetRate(val)
		}
	}

	s.SetVoiceCount(b.mod.Voices.Current())
	s.SetHarmonicAmplitudes(b.mod.Harmonics.Amplitudes())
	s.SetTilt(b.mod.Tilt.Amount())
	s.SetChaos(b.mod.Chaos.CutoffJitter(), b.mod.Chaos.NoiseAmplitude())
	s.SetStereoWidth(b.mod.Stereo.Width())
	return nil
}

func checkFinite(values map[string]float64) error {
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value %v for %s", v, k)
		}
	}
	return nil
}

// publish copies the tick output into the telemetry maps allocated in New.
func (b *Bridge) publish() {
	snap := b.mod.Snapshot()
	b.mu.Lock()
	t := &b.telemetry
	t.Features = b.smoothed
	t.LFO = b.mod.LFOValue
	t.Chaos = b.mod.ChaosValue
	t.Voices = b.mod.Voices.Current()
	t.Complexity = b.mod.Harmonics.Complexity()
	fillMap(t.Visual, b.a2vOut)
	fillMap(t.Audio, b.v2aOut)
	b.snapshot = snap
	b.mu.Unlock()
}

func fillMap(dst, src map[string]float64) {
	clear(dst)
	for k, v := range src {
		dst[k] = v
	}
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Telemetry returns a copy of the output of the last tick.
func (b *Bridge) Telemetry() Telemetry {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.telemetry
	t.Visual = copyMap(t.Visual)
	t.Audio = copyMap(t.Audio)
	return t
}

// ApplyPreset swaps both mapping tables at once and schedules the
// modulation snapshot for the next tick.
func (b *Bridge) ApplyPreset(p format.Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	snap := p.Modulation
	b.mu.Lock()
	defer b.mu.Unlock()
	b.a2v = p.AudioToVisual.Clone()
	b.v2a = p.VisualToAudio.Clone()
	b.pending = &snap
	b.logger.Info("preset applied", "name", p.Name)
	return nil
}

// Preset captures the current tables and modulation state.
func (b *Bridge) Preset(name string) format.Preset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return format.Preset{
		Version:       format.Version,
		Name:          name,
		AudioToVisual: b.a2v.Clone(),
		VisualToAudio: b.v2a.Clone(),
		Modulation:    b.snapshot,
	}
}
