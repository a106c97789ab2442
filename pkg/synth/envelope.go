package synth

import "math"

// EnvelopeStage is the position of the amplitude envelope.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageSustain
	StageRelease
)

var stageNames = [...]string{"idle", "attack", "sustain", "release"}

func (s EnvelopeStage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "?"
	}
	return stageNames[s]
}

// silenceThreshold is where release snaps to idle (-80 dB).
const silenceThreshold = 1e-4

// Envelope is an attack/sustain/release amplitude envelope.
type Envelope struct {
	Stage     EnvelopeStage
	Amplitude float64

	attackStep  float64
	releaseCoef float64
}

// Configure sets the attack and release times. It can be called mid-note; the
// stage and amplitude are kept.
func (e *Envelope) Configure(attackMs, releaseMs, sampleRate float64) {
	attackSamples := attackMs * sampleRate / 1000
	if attackSamples < 1 {
		attackSamples = 1
	}
	e.attackStep = 1 / attackSamples

	releaseSamples := releaseMs * sampleRate / 1000
	if releaseSamples < 1 {
		releaseSamples = 1
	}
	e.releaseCoef = math.Exp(math.Log(silenceThreshold) / releaseSamples)
}

// NoteOn starts (or restarts) the attack from the current amplitude.
func (e *Envelope) NoteOn() {
	e.Stage = StageAttack
}

// NoteOff releases the note
func (e *Envelope) NoteOff() {
	if e.Stage == StageAttack || e.Stage == StageSustain {
		e.Stage = StageRelease
	}
}

// Next advances one sample and returns the amplitude.
func (e *Envelope) Next() float64 {
	switch e.Stage {
	case StageAttack:
		e.Amplitude += e.attackStep
		if e.Amplitude >= 1 {
			e.Amplitude = 1
			e.Stage = StageSustain
		}
	case StageSustain:
		e.Amplitude = 1
	case StageRelease:
		e.Amplitude *= e.releaseCoef
		if e.Amplitude < silenceThreshold {
			e.Amplitude = 0
			e.Stage = StageIdle
		}
	default:
		e.Amplitude = 0
	}
	return e.Amplitude
}
