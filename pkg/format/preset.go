// Package format reads and writes bridge presets.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/oisee/hypersynth/pkg/mapping"
	"github.com/oisee/hypersynth/pkg/modulation"
)

// Version is written into every preset.
const Version = 1

// Preset is the persisted part of a session: both mapping tables and the
// modulation state.
type Preset struct {
	Version       int                 `json:"version"`
	Name          string              `json:"name"`
	AudioToVisual mapping.Table       `json:"audio_to_visual"`
	VisualToAudio mapping.Table       `json:"visual_to_audio"`
	Modulation    modulation.Snapshot `json:"modulation"`
}

// Default returns the stock tables with a fresh modulation state.
func Default() Preset {
	return Preset{
		Version:       Version,
		Name:          "default",
		AudioToVisual: mapping.DefaultAudioToVisual(),
		VisualToAudio: mapping.DefaultVisualToAudio(),
		Modulation:    modulation.NewState().Snapshot(),
	}
}

// Validate checks both tables against the known parameter names.
func (p Preset) Validate() error {
	if err := p.AudioToVisual.Validate(mapping.AudioSources, mapping.VisualTargets); err != nil {
		return fmt.Errorf("audio to visual: %w", err)
	}
	if err := p.VisualToAudio.Validate(mapping.VisualSources, mapping.AudioTargets); err != nil {
		return fmt.Errorf("visual to audio: %w", err)
	}
	return nil
}

// Save writes p as indented JSON.
func Save(w io.Writer, p Preset) error {
	if p.Version == 0 {
		p.Version = Version
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// Load reads and validates a preset.
func Load(r io.Reader) (Preset, error) {
	var p Preset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	if p.Version > Version {
		return Preset{}, fmt.Errorf("preset version %d is newer than supported %d", p.Version, Version)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// LoadFile opens and loads a preset file.
func LoadFile(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preset{}, err
	}
	defer f.Close()
	return Load(f)
}

// SaveFile writes a preset file.
func SaveFile(path string, p Preset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
