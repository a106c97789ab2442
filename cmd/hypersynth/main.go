package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oisee/hypersynth/pkg/audio"
	"github.com/oisee/hypersynth/pkg/bridge"
	"github.com/oisee/hypersynth/pkg/config"
	"github.com/oisee/hypersynth/pkg/format"
	"github.com/oisee/hypersynth/pkg/synth"
	"github.com/oisee/hypersynth/pkg/tui"
	"github.com/oisee/hypersynth/pkg/visual"
)

// releaseAt is the fraction of an offline render after which the note is
// released, so the file ends on the release tail.
const releaseAt = 0.75

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type session struct {
	cfg    config.Config
	logger *slog.Logger
	scene  *visual.Scene
	player *audio.Player
	bridge *bridge.Bridge
}

func run(cfg config.Config) error {
	offline := cfg.Render != ""
	logger, closer, err := cfg.NewLogger(!offline)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	if offline {
		return s.render()
	}
	return s.live()
}

func newSession(cfg config.Config, logger *slog.Logger) (*session, error) {
	sys, err := synth.ParseVisualSystem(cfg.System)
	if err != nil {
		return nil, err
	}
	m := synth.NewManager(float64(cfg.SampleRate), logger)
	if err := m.SetVisualSystem(sys); err != nil {
		return nil, err
	}
	if err := m.SetGeometry(cfg.Geometry); err != nil {
		return nil, err
	}

	scene := visual.NewScene()
	if err := scene.SetGeometry(cfg.Geometry); err != nil {
		return nil, err
	}
	player := audio.NewPlayer(m, cfg.FFTSize)

	b, err := bridge.New(cfg.Bridge(), bridge.Deps{
		Input:   player,
		Visual:  scene,
		Display: scene,
		Synth:   m,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Preset != "" {
		p, err := format.LoadFile(cfg.Preset)
		if err != nil {
			return nil, fmt.Errorf("load preset: %w", err)
		}
		if err := b.ApplyPreset(p); err != nil {
			return nil, err
		}
	}

	logger.Info("session ready",
		"geometry", synth.MustGeometry(cfg.Geometry).String(),
		"system", sys.String(),
		"branch", m.Route().Branch.String())

	return &session{cfg: cfg, logger: logger, scene: scene, player: player, bridge: b}, nil
}

// render drives the bridge once per tick period of audio and writes a WAV.
func (s *session) render() error {
	f, err := os.Create(s.cfg.Render)
	if err != nil {
		return err
	}

	chunk := max(int(float64(s.cfg.SampleRate)/s.cfg.TickRate), 1)
	var elapsed float64
	s.player.NoteOn(s.cfg.Note)
	err = audio.ExportWAV(s.player, f, s.cfg.Duration, chunk, func(dt float64) {
		s.scene.Advance(dt)
		s.bridge.Tick(dt)
		elapsed += dt
		if elapsed >= s.cfg.Duration*releaseAt && s.player.Synth.Gate() {
			s.player.NoteOff()
		}
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	h := s.bridge.Health()
	s.logger.Info("render finished", "file", s.cfg.Render, "seconds", s.cfg.Duration,
		"ticks", h.Ticks, "errors", h.TotalErrors, "corrupt", s.player.Synth.CorruptSamples())
	fmt.Printf("Rendered %.1fs to %s (%d bridge ticks)\n", s.cfg.Duration, s.cfg.Render, h.Ticks)
	return nil
}

// live plays through the sound card and runs the monitor until quit.
func (s *session) live() error {
	rt, err := audio.NewRealtimeOutput(s.player, s.cfg.BufferFrames)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := s.bridge.Start(ctx); err != nil {
		return err
	}
	defer s.bridge.Stop()

	s.player.NoteOn(s.cfg.Note)
	model := tui.NewModel(s.scene, s.player, s.bridge)
	if s.cfg.Preset != "" {
		model.PresetPath = s.cfg.Preset
	}
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
