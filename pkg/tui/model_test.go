package tui

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oisee/hypersynth/pkg/audio"
	"github.com/oisee/hypersynth/pkg/bridge"
	"github.com/oisee/hypersynth/pkg/format"
	"github.com/oisee/hypersynth/pkg/synth"
	"github.com/oisee/hypersynth/pkg/visual"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scene := visual.NewScene()
	m := synth.NewManager(44100, logger)
	player := audio.NewPlayer(m, 2048)
	b, err := bridge.New(bridge.DefaultConfig(), bridge.Deps{
		Input:   player,
		Visual:  scene,
		Display: scene,
		Synth:   m,
		Logger:  logger,
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(scene, player, b)
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestKeyToNote(t *testing.T) {
	tests := []struct {
		key    string
		octave int
		want   int
	}{
		{"z", 4, 60},
		{"s", 4, 61},
		{"m", 4, 71},
		{"w", 4, 74},
		{"z", 0, 12},
		{"p", 8, -1},
		{"p", 7, 124},
		{"q", 4, -1},
		{"k", 4, -1},
	}
	for _, tt := range tests {
		if got := keyToNote(tt.key, tt.octave); got != tt.want {
			t.Errorf("keyToNote(%q, %d) = %d, want %d", tt.key, tt.octave, got, tt.want)
		}
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(2, 1)
	if got := c.String(); got != "⠀⠀" {
		t.Errorf("empty canvas = %q", got)
	}
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if got := c.String(); got != "⠁⢀" {
		t.Errorf("canvas = %q", got)
	}
	c.Clear()
	c.Plot([]mgl64.Vec2{{0, 0}}, 1)
	if got := c.String(); got == "⠀⠀" {
		t.Error("centre point not drawn")
	}

	c.Resize(3, 2)
	if lines := strings.Split(c.String(), "\n"); len(lines) != 2 || len([]rune(lines[0])) != 3 {
		t.Errorf("resized canvas = %q", c.String())
	}
}

func TestUpdate_GeometryAndSystem(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "left")
	if m.Scene.GeometryIndex() != 23 {
		t.Errorf("geometry = %d, want 23", m.Scene.GeometryIndex())
	}
	m = press(m, "right")
	m = press(m, "right")
	if m.Scene.GeometryIndex() != 1 {
		t.Errorf("geometry = %d, want 1", m.Scene.GeometryIndex())
	}

	m = press(m, "tab")
	if got := m.Player.Synth.Route().System; got != synth.Faceted {
		t.Errorf("system = %v, want faceted", got)
	}

	// the bridge carries the scene's geometry to the synth
	m.Bridge.Tick(1.0 / 60)
	if got := m.Player.Synth.Route().Geometry.Index(); got != 1 {
		t.Errorf("synth geometry = %d, want 1", got)
	}
}

func TestUpdate_Notes(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "z")
	if m.Player.Note() != 60 || !m.Player.Synth.Gate() {
		t.Errorf("note %d gate %v", m.Player.Note(), m.Player.Synth.Gate())
	}
	m = press(m, " ")
	if m.Player.Synth.Gate() {
		t.Error("space did not release the note")
	}
	m = press(m, " ")
	if !m.Player.Synth.Gate() || m.Player.Note() != 60 {
		t.Error("space did not retrigger the last note")
	}
	m = press(m, "*")
	if m.Octave != 5 {
		t.Errorf("octave = %d", m.Octave)
	}
}

func TestUpdate_FrameAdvancesScene(t *testing.T) {
	m := newTestModel(t)
	start := time.Unix(100, 0)
	next, cmd := m.Update(frameMsg(start))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("frame did not schedule the next one")
	}
	before := m.Scene.RotationAngles()
	next, _ = m.Update(frameMsg(start.Add(500 * time.Millisecond)))
	m = next.(Model)
	if m.Scene.RotationAngles() == before {
		t.Error("rotation did not advance")
	}
	if len(m.points) == 0 {
		t.Error("no projected points")
	}
	m.Width, m.Height = 100, 30
	if v := m.View(); !strings.Contains(v, "HYPERSYNTH") || !strings.Contains(v, "Tetrahedron") {
		t.Errorf("view missing header:\n%s", v)
	}
}

func TestUpdate_SavePreset(t *testing.T) {
	m := newTestModel(t)
	m.PresetPath = filepath.Join(t.TempDir(), "p.json")
	m.Bridge.Tick(1.0 / 60)
	m = press(m, "ctrl+s")
	if !strings.HasPrefix(m.StatusMsg, "saved") {
		t.Fatalf("status = %q", m.StatusMsg)
	}
	p, err := format.LoadFile(m.PresetPath)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "session" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "z")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.Player.Synth.Gate() {
		t.Error("quit left the note held")
	}
}

func TestHueColor(t *testing.T) {
	if got := hueColor(0, 1); got != "#ff3333" {
		t.Errorf("red = %v", got)
	}
	if got := hueColor(120, 1); got != "#33ff33" {
		t.Errorf("green = %v", got)
	}
}
