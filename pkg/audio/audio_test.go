package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/oisee/hypersynth/pkg/synth"
)

func newTestPlayer(ring int) *Player {
	return NewPlayer(synth.NewManager(44100, nil), ring)
}

func TestNoteToFreq(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653},
	}
	for _, tt := range tests {
		if got := NoteToFreq(tt.note); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("NoteToFreq(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

func TestNoteName(t *testing.T) {
	tests := map[int]string{69: "A-4", 60: "C-4", 61: "C#4", 0: "C--1", -1: "---"}
	for note, want := range tests {
		if got := NoteName(note); got != want {
			t.Errorf("NoteName(%d) = %q, want %q", note, got, want)
		}
	}
}

func TestPlayer_SilentUntilNoteOn(t *testing.T) {
	p := newTestPlayer(256)
	buf := make([]float64, 512)
	p.GenerateSamples(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v before NoteOn", i, s)
		}
	}

	p.NoteOn(60)
	if p.Note() != 60 || math.Abs(p.Frequency()-NoteToFreq(60)) > 1e-9 {
		t.Errorf("note %d freq %v", p.Note(), p.Frequency())
	}
	var peak float64
	for k := 0; k < 8; k++ {
		p.GenerateSamples(buf)
		for _, s := range buf {
			peak = math.Max(peak, math.Abs(s))
			if s > 1 || s < -1 {
				t.Fatalf("sample %v out of range", s)
			}
		}
	}
	if peak < 0.01 {
		t.Errorf("peak %v after NoteOn", peak)
	}
}

func TestPlayer_WindowLoopback(t *testing.T) {
	p := newTestPlayer(64)
	dst := make([]float64, 16)
	if got := p.Window(dst); got != nil {
		t.Fatalf("Window before generation = %v, want nil", got)
	}

	p.NoteOn(69)
	buf := make([]float64, 2*100)
	p.GenerateSamples(buf)

	got := p.Window(dst)
	// the last 16 frames, mono-mixed
	for i := range got {
		frame := 100 - 16 + i
		want := (p.left[frame] + p.right[frame]) / 2
		if got[i] != want {
			t.Fatalf("window[%d] = %v, want %v", i, got[i], want)
		}
	}

	big := make([]float64, 128)
	for i := range big {
		big[i] = 7
	}
	p.Window(big)
	for i := 0; i < 64; i++ {
		if big[i] != 0 {
			t.Fatalf("window[%d] = %v, want zero padding", i, big[i])
		}
	}

	p.Reset()
	if p.Window(dst) != nil {
		t.Error("Window after Reset should be nil")
	}
}

func TestSoftLimit(t *testing.T) {
	if softLimit(0.5) != 0.5 || softLimit(-0.9) != -0.9 {
		t.Error("soft limit changed a quiet sample")
	}
	if v := softLimit(1); v <= 0.9 || v > 1 {
		t.Errorf("softLimit(1) = %v", v)
	}
	if v := softLimit(-1); v >= -0.9 || v < -1 {
		t.Errorf("softLimit(-1) = %v", v)
	}
}

func TestAudioReader(t *testing.T) {
	p := newTestPlayer(0)
	p.NoteOn(69)
	r := NewAudioReader(p, 64)

	buf := make([]byte, 1001)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1000 {
		t.Errorf("read %d bytes, want 1000", n)
	}
	var nonzero bool
	for i := 0; i+2 <= n; i += 2 {
		if int16(binary.LittleEndian.Uint16(buf[i:])) != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Error("all samples silent")
	}

	r.Stop()
	for i := range buf {
		buf[i] = 0xff
	}
	if n, _ := r.Read(buf); n != len(buf) || buf[0] != 0 || buf[len(buf)-1] != 0 {
		t.Error("stopped reader did not return silence")
	}
}

func TestExportWAV(t *testing.T) {
	p := newTestPlayer(0)
	p.NoteOn(57)
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	var ticks int
	var elapsed float64
	err = ExportWAV(p, f, 0.25, 735, func(dt float64) {
		ticks++
		elapsed += dt
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	frames := int(0.25 * 44100)
	if want := (frames + 734) / 735; ticks != want {
		t.Errorf("chunk callbacks = %d, want %d", ticks, want)
	}
	if math.Abs(elapsed-0.25) > 1e-9 {
		t.Errorf("elapsed = %v, want 0.25", elapsed)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	d := wav.NewDecoder(in)
	if !d.IsValidFile() {
		t.Fatal("invalid wav")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if d.SampleRate != 44100 || d.NumChans != 2 || d.BitDepth != 16 {
		t.Errorf("format %d Hz, %d ch, %d bit", d.SampleRate, d.NumChans, d.BitDepth)
	}
	if len(buf.Data) != frames*2 {
		t.Errorf("samples = %d, want %d", len(buf.Data), frames*2)
	}
}

func TestExportWAV_RejectsBadChunk(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := ExportWAV(newTestPlayer(0), f, 1, 0, nil); err == nil {
		t.Error("ExportWAV accepted chunk size 0")
	}
}
