package audio

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// AudioReader implements io.Reader over a Player as 16-bit little-endian
// interleaved stereo PCM.
type AudioReader struct {
	player  *Player
	buffer  []float64
	pos     int
	stopped atomic.Bool
}

// NewAudioReader creates a reader generating frames stereo frames at a time
func NewAudioReader(p *Player, frames int) *AudioReader {
	buf := make([]float64, frames*2)
	return &AudioReader{player: p, buffer: buf, pos: len(buf)}
}

// Stop makes further reads return silence
func (ar *AudioReader) Stop() { ar.stopped.Store(true) }

// Read implements io.Reader - generates audio samples
func (ar *AudioReader) Read(p []byte) (n int, err error) {
	if ar.stopped.Load() {
		clear(p)
		return len(p), nil
	}
	for n+2 <= len(p) {
		if ar.pos >= len(ar.buffer) {
			ar.player.GenerateSamples(ar.buffer)
			ar.pos = 0
		}
		binary.LittleEndian.PutUint16(p[n:], uint16(toInt16(ar.buffer[ar.pos])))
		ar.pos++
		n += 2
	}
	return n, nil
}

func toInt16(s float64) int16 {
	if s > 1.0 {
		s = 1.0
	}
	if s < -1.0 {
		s = -1.0
	}
	return int16(s * 32767)
}

// RealtimeOutput plays a Player through the system audio device
type RealtimeOutput struct {
	reader    *AudioReader
	otoCtx    *oto.Context
	otoPlayer *oto.Player
}

// NewRealtimeOutput opens the device and starts playback
func NewRealtimeOutput(p *Player, bufferFrames int) (*RealtimeOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   p.SampleRate,
		ChannelCount: p.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	rt := &RealtimeOutput{
		reader: NewAudioReader(p, bufferFrames),
		otoCtx: otoCtx,
	}
	rt.otoPlayer = otoCtx.NewPlayer(rt.reader)
	rt.otoPlayer.SetBufferSize(p.SampleRate / 10 * p.Channels * 2) // 100ms
	rt.otoPlayer.Play()
	return rt, nil
}

// Close stops the audio output
func (rt *RealtimeOutput) Close() error {
	rt.reader.Stop()
	if rt.otoPlayer != nil {
		return rt.otoPlayer.Close()
	}
	return nil
}
