package mapping

import "math"

// Audio→Visual sources
const (
	SrcBass     = "bass"
	SrcMid      = "mid"
	SrcHigh     = "high"
	SrcCentroid = "centroid"
	SrcRMS      = "rms"
	SrcLFO      = "lfo"
	SrcChaos    = "chaos"
)

// Audio→Visual targets
const (
	DstRotationSpeed = "rotation_speed"
	DstTessellation  = "tessellation"
	DstBrightness    = "brightness"
	DstHueShift      = "hue_shift"
	DstGlow          = "glow"
)

// Visual→Audio sources. The rotation energies are mean |sin θ| over the
// planes that do (w) or do not (xyz) involve the W axis; unlike raw angles
// they do not jump when an angle wraps.
const (
	SrcRotXY      = "rot_xy"
	SrcRotXZ      = "rot_xz"
	SrcRotYZ      = "rot_yz"
	SrcRotXW      = "rot_xw"
	SrcRotYW      = "rot_yw"
	SrcRotZW      = "rot_zw"
	SrcWEnergy    = "w_energy"
	SrcXYZEnergy  = "xyz_energy"
	SrcGeometry   = "geometry"
	SrcProjection = "projection"
	SrcLayer      = "layer"
	SrcMorph      = "morph"
)

// Visual→Audio targets
const (
	DstDetune     = "detune"
	DstCutoff     = "cutoff"
	DstReverb     = "reverb"
	DstVoices     = "voices"
	DstComplexity = "complexity"
	DstChaos      = "chaos"
	DstTilt       = "tilt"
	DstWidth      = "width"
	DstLFORate    = "lfo_rate"
)

// RotationSources lists the per-plane sources in hypermath plane order.
var RotationSources = [6]string{SrcRotXY, SrcRotXZ, SrcRotYZ, SrcRotXW, SrcRotYW, SrcRotZW}

// Parameter name sets for Validate.
var AudioSources = set(SrcBass, SrcMid, SrcHigh, SrcCentroid, SrcRMS, SrcLFO, SrcChaos)

var VisualTargets = set(DstRotationSpeed, DstTessellation, DstBrightness, DstHueShift, DstGlow)

var VisualSources = set(append(RotationSources[:],
	SrcWEnergy, SrcXYZEnergy, SrcGeometry, SrcProjection, SrcLayer, SrcMorph)...)

var AudioTargets = set(DstDetune, DstCutoff, DstReverb, DstVoices, DstComplexity,
	DstChaos, DstTilt, DstWidth, DstLFORate)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// DefaultAudioToVisual is the stock Audio→Visual table.
func DefaultAudioToVisual() Table {
	return Table{
		{Source: SrcBass, Target: DstRotationSpeed, From: Range{0, 1}, To: Range{0.5, 3}, Curve: Exponential},
		{Source: SrcMid, Target: DstTessellation, From: Range{0, 1}, To: Range{0.2, 1}, Curve: Linear},
		{Source: SrcHigh, Target: DstBrightness, From: Range{0, 1}, To: Range{0.3, 1}, Curve: Logarithmic},
		{Source: SrcCentroid, Target: DstHueShift, From: Range{0, 8000}, To: Range{0, 360}, Curve: Linear},
		{Source: SrcRMS, Target: DstGlow, From: Range{0, 0.7}, To: Range{0, 1}, Curve: Sinusoidal},
	}
}

// DefaultVisualToAudio is the stock Visual→Audio table.
func DefaultVisualToAudio() Table {
	return Table{
		{Source: SrcWEnergy, Target: DstDetune, From: Range{0, 1}, To: Range{0, 20}, Curve: Linear},
		{Source: SrcXYZEnergy, Target: DstCutoff, From: Range{0, 1}, To: Range{800, 12000}, Curve: Exponential},
		{Source: SrcLayer, Target: DstReverb, From: Range{0, 1}, To: Range{0.1, 0.7}, Curve: Linear},
		{Source: SrcProjection, Target: DstVoices, From: Range{2, 6}, To: Range{1, 0}, Curve: Linear},
		{Source: SrcMorph, Target: DstComplexity, From: Range{0, 1}, To: Range{0, 1}, Curve: Linear},
		{Source: SrcWEnergy, Target: DstChaos, From: Range{0, 1}, To: Range{0, 0.6}, Curve: Exponential},
		{Source: SrcGeometry, Target: DstTilt, From: Range{0, 23}, To: Range{-0.6, 0.6}, Curve: Linear},
		{Source: SrcMorph, Target: DstWidth, From: Range{0, 1}, To: Range{0.8, 1.8}, Curve: Linear},
		{Source: SrcXYZEnergy, Target: DstLFORate, From: Range{0, 1}, To: Range{0.1, 4}, Curve: Exponential},
	}
}

// RotationEnergy returns mean |sin θ| over the given angles.
func RotationEnergy(angles ...float64) float64 {
	if len(angles) == 0 {
		return 0
	}
	var s float64
	for _, a := range angles {
		s += math.Abs(math.Sin(a))
	}
	return s / float64(len(angles))
}
