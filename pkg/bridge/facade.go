package bridge

import (
	"github.com/oisee/hypersynth/pkg/hypermath"
	"github.com/oisee/hypersynth/pkg/modulation"
)

// AudioInput supplies the most recent raw samples for analysis. Window may
// return nil when no input is active; that is analysed as silence.
type AudioInput interface {
	Window(dst []float64) []float64
}

// VisualSource is the renderer state the bridge reads.
type VisualSource interface {
	RotationAngles() hypermath.Rotation
	GeometryIndex() int
	ProjectionDistance() float64
	LayerSeparation() float64
	MorphFactor() float64
}

// VisualSink is the renderer parameter surface the bridge writes.
type VisualSink interface {
	SetRotationSpeed(v float64)
	SetTessellationDensity(v float64)
	SetVertexBrightness(v float64)
	SetHueShift(deg float64)
	SetGlowIntensity(v float64)
}

// SynthTarget is the synthesis parameter surface the bridge writes.
// *synth.Manager implements it.
type SynthTarget interface {
	SetGeometry(index int) error
	SetDetune(cents float64)
	SetFilterCutoff(hz float64)
	SetReverbMix(mix float64)
	SetVoiceCount(n int)
	SetHarmonicAmplitudes(amps [modulation.NumHarmonics]float64)
	SetTilt(amount float64)
	SetChaos(jitter, noise float64)
	SetStereoWidth(w float64)
}
