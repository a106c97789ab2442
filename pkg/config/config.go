// Package config holds runtime settings and their command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/oisee/hypersynth/pkg/bridge"
	"github.com/oisee/hypersynth/pkg/synth"
)

// Config is everything the binary can be told from the command line
type Config struct {
	SampleRate     int
	Channels       int
	BufferFrames   int
	TickRate       float64
	ErrorThreshold int
	MinFPS         float64
	FFTSize        int
	Smoothing      float64

	LogLevel string
	LogFile  string

	Geometry int
	System   string
	Note     int
	Preset   string

	Render   string  // offline output path; empty runs the realtime UI
	Duration float64 // seconds, offline only
}

// Default returns the stock settings
func Default() Config {
	return Config{
		SampleRate:     44100,
		Channels:       2,
		BufferFrames:   512,
		TickRate:       60,
		ErrorThreshold: 10,
		MinFPS:         30,
		FFTSize:        2048,
		Smoothing:      0.3,
		LogLevel:       "info",
		LogFile:        "hypersynth.log",
		System:         synth.Quantum.String(),
		Note:           57,
		Duration:       4,
	}
}

// RegisterFlags binds every field to fs, using c's values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "Output sample rate in Hz")
	fs.IntVar(&c.BufferFrames, "buffer", c.BufferFrames, "Frames generated per audio callback")
	fs.Float64Var(&c.TickRate, "tick-rate", c.TickRate, "Bridge ticks per second")
	fs.IntVar(&c.ErrorThreshold, "error-threshold", c.ErrorThreshold, "Consecutive errors before a bridge direction is disabled")
	fs.Float64Var(&c.MinFPS, "min-fps", c.MinFPS, "Tick rate below which a performance warning is logged")
	fs.IntVar(&c.FFTSize, "fft", c.FFTSize, "Analysis window size (power of two)")
	fs.Float64Var(&c.Smoothing, "smoothing", c.Smoothing, "Feature smoothing blend (0-1]")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log destination in UI mode (offline mode logs to stderr)")
	fs.IntVar(&c.Geometry, "geometry", c.Geometry, "Initial geometry index (0-23)")
	fs.StringVar(&c.System, "system", c.System, "Visual system: quantum, faceted, holographic")
	fs.IntVar(&c.Note, "note", c.Note, "MIDI note to play")
	fs.StringVar(&c.Preset, "preset", c.Preset, "Preset file to load")
	fs.StringVar(&c.Render, "render", c.Render, "Render to this WAV file instead of starting the UI")
	fs.Float64Var(&c.Duration, "duration", c.Duration, "Render length in seconds")
}

// Validate rejects settings nothing downstream can work with
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample rate %d out of range", c.SampleRate))
	}
	if c.Channels != 2 {
		errs = append(errs, fmt.Errorf("only stereo output is supported, got %d channels", c.Channels))
	}
	if c.BufferFrames < 64 {
		errs = append(errs, fmt.Errorf("buffer of %d frames is too small", c.BufferFrames))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate must be positive, got %v", c.TickRate))
	}
	if c.ErrorThreshold < 1 {
		errs = append(errs, fmt.Errorf("error threshold must be at least 1, got %d", c.ErrorThreshold))
	}
	if c.FFTSize < 64 || c.FFTSize&(c.FFTSize-1) != 0 {
		errs = append(errs, fmt.Errorf("fft size %d is not a power of two >= 64", c.FFTSize))
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("smoothing %v outside (0, 1]", c.Smoothing))
	}
	if _, err := ResolveLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := synth.NewGeometry(c.Geometry); err != nil {
		errs = append(errs, err)
	}
	if _, err := synth.ParseVisualSystem(c.System); err != nil {
		errs = append(errs, err)
	}
	if c.Note < 0 || c.Note > 127 {
		errs = append(errs, fmt.Errorf("note %d out of MIDI range", c.Note))
	}
	if c.Render != "" && c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("render duration must be positive, got %v", c.Duration))
	}
	return errors.Join(errs...)
}

// Bridge returns the bridge settings
func (c Config) Bridge() bridge.Config {
	return bridge.Config{
		TickRate:       c.TickRate,
		ErrorThreshold: c.ErrorThreshold,
		MinFPS:         c.MinFPS,
		Smoothing:      c.Smoothing,
		FFTSize:        c.FFTSize,
		SampleRate:     float64(c.SampleRate),
	}
}

// ResolveLogLevel maps a level name to slog
func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// NewLogger builds a text logger at c.LogLevel. In UI mode it appends to
// c.LogFile so the terminal stays clean; the returned closer releases it.
func (c Config) NewLogger(ui bool) (*slog.Logger, io.Closer, error) {
	level, err := ResolveLogLevel(c.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if ui {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}
