package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// WAVSink encodes interleaved float samples as 16-bit PCM WAV
type WAVSink struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

// NewWAVSink starts a WAV stream on w. Close must be called to finish the
// header.
func NewWAVSink(w io.WriteSeeker, sampleRate, channels int) *WAVSink {
	return &WAVSink{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

// WriteSamples writes interleaved samples in [-1, 1]
func (s *WAVSink) WriteSamples(samples []float64) error {
	if cap(s.buf.Data) < len(samples) {
		s.buf.Data = make([]int, len(samples))
	}
	s.buf.Data = s.buf.Data[:len(samples)]
	for i, v := range samples {
		s.buf.Data[i] = int(toInt16(v))
	}
	return s.enc.Write(s.buf)
}

// Close finalizes the file
func (s *WAVSink) Close() error {
	return s.enc.Close()
}

// ExportWAV renders durationSeconds of the player into w. Before every
// chunk of chunkFrames frames, onChunk (if set) is called with the chunk's
// length in seconds; offline rendering drives the bridge from it.
func ExportWAV(player *Player, w io.WriteSeeker, durationSeconds float64, chunkFrames int, onChunk func(dt float64)) error {
	if chunkFrames <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", chunkFrames)
	}
	total := int(durationSeconds * float64(player.SampleRate))
	sink := NewWAVSink(w, player.SampleRate, player.Channels)

	buffer := make([]float64, chunkFrames*player.Channels)
	for written := 0; written < total; {
		frames := min(chunkFrames, total-written)
		if onChunk != nil {
			onChunk(float64(frames) / float64(player.SampleRate))
		}
		chunk := buffer[:frames*player.Channels]
		player.GenerateSamples(chunk)
		if err := sink.WriteSamples(chunk); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		written += frames
	}
	return sink.Close()
}
