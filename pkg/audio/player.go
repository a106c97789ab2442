package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/oisee/hypersynth/internal/atomicfloat"
	"github.com/oisee/hypersynth/pkg/synth"
)

// NoteToFreq converts a MIDI note number to Hz (A4 = 69 = 440 Hz)
func NoteToFreq(note int) float64 {
	return 440.0 * math.Pow(2, float64(note-69)/12.0)
}

// NoteName returns e.g. "C#4" for a MIDI note number
func NoteName(note int) string {
	names := [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}
	if note < 0 {
		return "---"
	}
	return fmt.Sprintf("%s%d", names[note%12], note/12-1)
}

// Player drives a synth.Manager at a held pitch and keeps a loopback copy
// of its output for analysis.
type Player struct {
	Synth      *synth.Manager
	SampleRate int
	Channels   int

	freq atomicfloat.Float64
	note atomic.Int32

	mu          sync.Mutex // guards the buffers and the loopback ring
	left, right []float64
	ring        []float64
	ringPos     int
	ringFill    int
}

// NewPlayer creates a stereo player. ringSize is the number of mono samples
// kept for Window.
func NewPlayer(m *synth.Manager, ringSize int) *Player {
	p := &Player{
		Synth:      m,
		SampleRate: int(m.SampleRate()),
		Channels:   2,
		ring:       make([]float64, ringSize),
	}
	p.note.Store(69)
	p.freq.Store(NoteToFreq(69))
	return p
}

// NoteOn sets the pitch and retriggers the envelope
func (p *Player) NoteOn(note int) {
	p.note.Store(int32(note))
	p.freq.Store(NoteToFreq(note))
	p.Synth.NoteOn()
}

// NoteOff releases the note
func (p *Player) NoteOff() {
	p.Synth.NoteOff()
}

// Note returns the last note played
func (p *Player) Note() int { return int(p.note.Load()) }

// SetFrequency changes the pitch without retriggering
func (p *Player) SetFrequency(hz float64) { p.freq.Store(hz) }

func (p *Player) Frequency() float64 { return p.freq.Load() }

// GenerateSamples fills buffer with interleaved stereo samples
func (p *Player) GenerateSamples(buffer []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frames := len(buffer) / 2
	if cap(p.left) < frames {
		p.left = make([]float64, frames)
		p.right = make([]float64, frames)
	}
	l, r := p.left[:frames], p.right[:frames]
	p.Synth.GenerateStereo(l, r, p.freq.Load())

	for i := 0; i < frames; i++ {
		buffer[2*i] = softLimit(l[i])
		buffer[2*i+1] = softLimit(r[i])
		p.push((l[i] + r[i]) / 2)
	}
}

func (p *Player) push(s float64) {
	if len(p.ring) == 0 {
		return
	}
	p.ring[p.ringPos] = s
	p.ringPos = (p.ringPos + 1) % len(p.ring)
	if p.ringFill < len(p.ring) {
		p.ringFill++
	}
}

// Window copies the most recent len(dst) mono samples into dst, oldest
// first and zero-padded at the front. It returns nil until something has
// been generated.
func (p *Player) Window(dst []float64) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ringFill == 0 {
		return nil
	}
	n := len(dst)
	avail := min(n, p.ringFill)
	clear(dst[:n-avail])
	start := p.ringPos - avail
	if start < 0 {
		start += len(p.ring)
	}
	for i := 0; i < avail; i++ {
		dst[n-avail+i] = p.ring[(start+i)%len(p.ring)]
	}
	return dst
}

// Reset silences the synth and clears the loopback
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Synth.Reset()
	clear(p.ring)
	p.ringPos = 0
	p.ringFill = 0
}

// softLimit leaves the signal alone below 0.9 and bends it towards ±1 above.
func softLimit(s float64) float64 {
	if s > 0.9 {
		return 0.9 + 0.1*math.Tanh((s-0.9)*10)
	}
	if s < -0.9 {
		return -0.9 + 0.1*math.Tanh((s+0.9)*10)
	}
	return s
}
