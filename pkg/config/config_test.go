package config

import (
	"errors"
	"flag"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/oisee/hypersynth/pkg/synth"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	b := c.Bridge()
	if b.TickRate != 60 || b.ErrorThreshold != 10 || b.MinFPS != 30 || b.SampleRate != 44100 {
		t.Errorf("bridge config = %+v", b)
	}
}

func TestRegisterFlags(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	err := fs.Parse([]string{"-geometry", "19", "-system", "holographic", "-render", "out.wav", "-duration", "2", "-log-level", "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Geometry != 19 || c.System != "holographic" || c.Render != "out.wav" || c.Duration != 2 || c.LogLevel != "debug" {
		t.Errorf("parsed %+v", c)
	}
	if c.SampleRate != 44100 {
		t.Error("untouched flag lost its default")
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]func(*Config){
		"sample rate": func(c *Config) { c.SampleRate = 100 },
		"mono":        func(c *Config) { c.Channels = 1 },
		"buffer":      func(c *Config) { c.BufferFrames = 8 },
		"tick rate":   func(c *Config) { c.TickRate = 0 },
		"threshold":   func(c *Config) { c.ErrorThreshold = 0 },
		"fft":         func(c *Config) { c.FFTSize = 1000 },
		"smoothing":   func(c *Config) { c.Smoothing = 0 },
		"log level":   func(c *Config) { c.LogLevel = "loud" },
		"geometry":    func(c *Config) { c.Geometry = 24 },
		"system":      func(c *Config) { c.System = "cubist" },
		"note":        func(c *Config) { c.Note = 128 },
		"no duration": func(c *Config) { c.Render, c.Duration = "x.wav", 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate succeeded")
			}
		})
	}

	c := Default()
	c.Geometry = -1
	if err := c.Validate(); !errors.Is(err, synth.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestResolveLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ResolveLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ResolveLogLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ResolveLogLevel("INFO"); err == nil {
		t.Error("level names are lower case")
	}
}

func TestNewLogger_UIWritesFile(t *testing.T) {
	c := Default()
	c.LogFile = filepath.Join(t.TempDir(), "run.log")
	logger, closer, err := c.NewLogger(true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	c.LogLevel = "nope"
	if _, _, err := c.NewLogger(false); err == nil {
		t.Error("bad level accepted")
	}
}
