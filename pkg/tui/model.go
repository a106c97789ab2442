// Package tui implements the terminal monitor
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oisee/hypersynth/pkg/audio"
	"github.com/oisee/hypersynth/pkg/bridge"
	"github.com/oisee/hypersynth/pkg/format"
	"github.com/oisee/hypersynth/pkg/synth"
	"github.com/oisee/hypersynth/pkg/visual"
)

const sidePanelWidth = 34

// Model is the main TUI model. It plays the renderer: every frame it
// advances the scene's rotation and draws the projected geometry.
type Model struct {
	Scene  *visual.Scene
	Player *audio.Player
	Bridge *bridge.Bridge

	// View state
	Width    int
	Height   int
	ShowHelp bool
	Octave   int

	// PresetPath is where ctrl+s saves
	PresetPath string

	// Status message
	StatusMsg string

	lastFrame time.Time
	points    []mgl64.Vec2
	canvas    *Canvas
}

// NewModel creates a new TUI model
func NewModel(scene *visual.Scene, player *audio.Player, b *bridge.Bridge) Model {
	return Model{
		Scene:      scene,
		Player:     player,
		Bridge:     b,
		Width:      120,
		Height:     30,
		Octave:     4,
		PresetPath: "hypersynth-preset.json",
		canvas:     NewCanvas(80, 24),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
	)
}

// frameMsg is sent at the display rate
type frameMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(16_666_666, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			m.Scene.Advance(now.Sub(m.lastFrame).Seconds())
		}
		m.lastFrame = now
		m.points = m.Scene.Frame(m.points[:0])
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) synth() *synth.Manager { return m.Player.Synth }

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.Player.NoteOff()
		return m, tea.Quit

	case "f1", "?":
		m.ShowHelp = !m.ShowHelp

	// Note gate
	case " ":
		if m.synth().Gate() {
			m.Player.NoteOff()
		} else {
			m.Player.NoteOn(m.Player.Note())
		}

	case ".":
		m.Player.NoteOff()

	// Geometry and system
	case "left":
		m.stepGeometry(-1)

	case "right":
		m.stepGeometry(1)

	case "tab":
		sys := m.synth().Route().System.Next()
		if err := m.synth().SetVisualSystem(sys); err != nil {
			m.StatusMsg = err.Error()
		} else {
			m.StatusMsg = "system " + sys.String()
		}

	// Shape controls
	case "up":
		m.Scene.SetMorphFactor(m.Scene.MorphFactor() + 0.05)
	case "down":
		m.Scene.SetMorphFactor(m.Scene.MorphFactor() - 0.05)
	case "pgup":
		m.Scene.SetProjectionDistance(m.Scene.ProjectionDistance() + 0.25)
	case "pgdown":
		m.Scene.SetProjectionDistance(m.Scene.ProjectionDistance() - 0.25)
	case "]":
		m.Scene.SetLayerSeparation(m.Scene.LayerSeparation() + 0.05)
	case "[":
		m.Scene.SetLayerSeparation(m.Scene.LayerSeparation() - 0.05)

	// Octave
	case "*":
		if m.Octave < 8 {
			m.Octave++
		}
	case "/":
		if m.Octave > 0 {
			m.Octave--
		}

	case "ctrl+r":
		if m.Bridge != nil {
			m.Bridge.ResetHealth()
			m.StatusMsg = "bridge re-enabled"
		}

	case "ctrl+s":
		m.savePreset()

	default:
		if note := keyToNote(msg.String(), m.Octave); note >= 0 {
			m.Player.NoteOn(note)
			m.StatusMsg = "note " + audio.NoteName(note)
		}
	}

	return m, nil
}

func (m *Model) stepGeometry(delta int) {
	i := m.Scene.StepGeometry(delta)
	m.StatusMsg = fmt.Sprintf("geometry %d %s", i, synth.MustGeometry(i))
}

func (m *Model) savePreset() {
	if m.Bridge == nil {
		return
	}
	if err := format.SaveFile(m.PresetPath, m.Bridge.Preset("session")); err != nil {
		m.StatusMsg = "save failed: " + err.Error()
		return
	}
	m.StatusMsg = "saved " + m.PresetPath
}

// keyToNote converts keyboard key to MIDI note
func keyToNote(key string, octave int) int {
	// Piano-style keyboard layout:
	// Lower row: Z S X D C V G B H N J M (white + black keys)
	// Upper row:   2 W 3 E R 5 T 6 Y 7 U
	notes := map[string]int{
		// Lower octave
		"z": 0, "s": 1, "x": 2, "d": 3, "c": 4, "v": 5,
		"g": 6, "b": 7, "h": 8, "n": 9, "j": 10, "m": 11,
		// Upper octave ("q" quits)
		"2": 13, "w": 14, "3": 15, "e": 16, "r": 17,
		"5": 18, "t": 19, "6": 20, "y": 21, "7": 22, "u": 23,
		"i": 24, "9": 25, "o": 26, "0": 27, "p": 28,
	}

	if n, ok := notes[key]; ok {
		note := (octave+1)*12 + n
		if note > 127 {
			return -1
		}
		return note
	}
	return -1
}

// View implements tea.Model
func (m Model) View() string {
	if m.ShowHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.sceneView(), m.sideView()))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("14")).
		Render("HYPERSYNTH")

	route := m.synth().Route()
	gate := "RELEASED"
	if m.synth().Gate() {
		gate = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Render("HELD")
	}

	info := fmt.Sprintf(" │ %02d %s │ %s │ %s │ Note:%s Oct:%d │ %s",
		route.Geometry.Index(), route.Geometry, route.System, route.Branch,
		audio.NoteName(m.Player.Note()), m.Octave, gate)

	return title + info
}

func (m Model) sceneView() string {
	cols := max(m.Width-sidePanelWidth-2, 10)
	rows := max(m.Height-4, 6)
	if m.canvas.cols != cols || m.canvas.rows != rows {
		m.canvas.Resize(cols, rows)
	}
	m.canvas.Clear()
	m.canvas.Plot(m.points, 1.6)

	color := hueColor(m.Scene.HueShift(), m.Scene.VertexBrightness())
	style := lipgloss.NewStyle().Foreground(color)
	if m.Scene.GlowIntensity() > 0.6 {
		style = style.Bold(true)
	}
	return style.Render(m.canvas.String())
}

func (m Model) sideView() string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	var lines []string
	add := func(name, value string) {
		lines = append(lines, label.Render(fmt.Sprintf("%-10s", name))+value)
	}

	if m.Bridge != nil {
		t := m.Bridge.Telemetry()
		add("bass", bar(t.Features.Bass, 16))
		add("mid", bar(t.Features.Mid, 16))
		add("high", bar(t.Features.High, 16))
		add("rms", bar(t.Features.RMS, 16))
		add("centroid", fmt.Sprintf("%6.0f Hz", t.Features.Centroid))
		add("lfo", fmt.Sprintf("%+.2f", t.LFO))
		add("chaos", fmt.Sprintf("%+.2f", t.Chaos))
		add("voices", fmt.Sprintf("%d", t.Voices))
		add("richness", bar(t.Complexity, 16))
		lines = append(lines, "")

		h := m.Bridge.Health()
		add("a→v", directionStatus(h.AudioToVisualDisabled, h.ConsecutiveAudioToVisual))
		add("v→a", directionStatus(h.VisualToAudioDisabled, h.ConsecutiveVisualToAudio))
		add("errors", fmt.Sprintf("%d", h.TotalErrors))
		fps := fmt.Sprintf("%.1f", h.FPS)
		if h.FPS > 0 && h.FPS < 30 {
			fps = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(fps)
		}
		add("fps", fps)
		lines = append(lines, "")
	}

	add("speed", fmt.Sprintf("%.2f", m.Scene.RotationSpeed()))
	add("morph", bar(m.Scene.MorphFactor(), 16))
	add("layer", bar(m.Scene.LayerSeparation(), 16))
	add("distance", fmt.Sprintf("%.2f", m.Scene.ProjectionDistance()))
	add("hue", fmt.Sprintf("%3.0f°", m.Scene.HueShift()))

	if m.StatusMsg != "" {
		lines = append(lines, "", m.StatusMsg)
	}

	return lipgloss.NewStyle().
		Width(sidePanelWidth).
		PaddingLeft(2).
		Render(strings.Join(lines, "\n"))
}

func directionStatus(disabled bool, consecutive int) string {
	switch {
	case disabled:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("DISABLED")
	case consecutive > 0:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render(fmt.Sprintf("failing (%d)", consecutive))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("ok")
}

func bar(v float64, width int) string {
	n := int(math.Round(math.Max(0, math.Min(1, v)) * float64(width)))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

// hueColor converts a hue in degrees and a brightness in [0,1] to a hex color
func hueColor(hue, brightness float64) lipgloss.Color {
	v := 0.4 + 0.6*brightness
	const s = 0.8
	c := v * s
	h := math.Mod(hue, 360) / 60
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))
	var r, g, b float64
	switch {
	case h < 1:
		r, g = c, x
	case h < 2:
		r, g = x, c
	case h < 3:
		g, b = c, x
	case h < 4:
		g, b = x, c
	case h < 5:
		r, b = x, c
	default:
		r, b = c, x
	}
	mm := v - c
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x",
		int((r+mm)*255), int((g+mm)*255), int((b+mm)*255)))
}

func (m Model) footerView() string {
	keys := " [Space]Gate [←→]Geometry [Tab]System [↑↓]Morph [PgUp/Dn]Distance [*/]Oct [^S]Save [F1]Help [Q]Quit"
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(keys)
}

func (m Model) helpView() string {
	help := `
╔══════════════════════════════════════════════════════════════════╗
║                       HYPERSYNTH HELP                            ║
╠══════════════════════════════════════════════════════════════════╣
║ GEOMETRY                                                         ║
║   ← →       Previous/next geometry (0-23)                        ║
║   Tab       Cycle visual system                                  ║
║   ↑ ↓       Morph factor                                         ║
║   PgUp/Dn   Projection distance                                  ║
║   [ ]       Layer separation                                     ║
║                                                                  ║
║ NOTES (piano keyboard)                                           ║
║   Z S X D C V G B H N J M  - Lower octave (C to B)               ║
║   2 W 3 E R 5 T 6 Y 7 U    - Upper octave                        ║
║   * /       Octave up/down                                       ║
║   Space     Hold/release note                                    ║
║   .         Note off                                             ║
║                                                                  ║
║ BRIDGE                                                           ║
║   Ctrl+R    Re-enable disabled directions                        ║
║   Ctrl+S    Save preset                                          ║
║                                                                  ║
║                              [F1] Close help                     ║
╚══════════════════════════════════════════════════════════════════╝
`
	return lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Render(help)
}
