package tui

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a grid of braille cells, each holding 2x4 dots.
type Canvas struct {
	cols, rows int
	cells      []uint8
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the size in cells and clears the canvas
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 1), max(rows, 1)
	c.cells = make([]uint8, c.cols*c.rows)
}

func (c *Canvas) Clear() { clear(c.cells) }

// Set turns on the dot at (x, y) in dot coordinates; out-of-range dots are
// ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.cells[(y/4)*c.cols+x/2] |= 1 << brailleBits[x%2][y%4]
}

// Plot draws points centred on the canvas, where extent is the coordinate
// that reaches the nearest edge.
func (c *Canvas) Plot(points []mgl64.Vec2, extent float64) {
	w, h := float64(c.cols*2), float64(c.rows*4)
	scale := min(w, h) / (2 * extent)
	for _, p := range points {
		c.Set(int(w/2+p[0]*scale), int(h/2-p[1]*scale))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			b.WriteRune(rune(0x2800 + int(c.cells[row*c.cols+col])))
		}
	}
	return b.String()
}
