package viz

import (
	"math"
	"strings"

	"github.com/san-kum/numlab/internal/rootfind"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBase = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid mapped onto a world-coordinate window.
// Its resolution is (Width*2) x (Height*4) dots.
type Canvas struct {
	Width, Height int
	Window        rootfind.Window
	grid          [][]rune
}

func NewCanvas(w, h int, win rootfind.Window) *Canvas {
	c := &Canvas{Width: w, Height: h, Window: win, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = brailleBase
		}
	}
}

// Set turns on the dot at (x, y) in dot coordinates, origin top left.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= dotBits[y%4][x%2]
}

// dot maps world coordinates to dot coordinates; ok is false outside the
// window or for non-finite input.
func (c *Canvas) dot(x, y float64) (int, int, bool) {
	w := c.Window
	if math.IsNaN(y) || math.IsInf(y, 0) || x < w.XMin || x > w.XMax || y < w.YMin || y > w.YMax {
		return 0, 0, false
	}
	dx := int(math.Round((x - w.XMin) / (w.XMax - w.XMin) * float64(c.Width*2-1)))
	dy := int(math.Round((w.YMax - y) / (w.YMax - w.YMin) * float64(c.Height*4-1)))
	return dx, dy, true
}

// Line draws a straight segment between two dots (Bresenham).
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Plot samples fn once per dot column and joins neighbouring samples that
// are both inside the window.
func (c *Canvas) Plot(fn func(float64) float64) {
	cols := c.Width * 2
	w := c.Window
	px, py, have := 0, 0, false
	for i := 0; i < cols; i++ {
		x := w.XMin + (w.XMax-w.XMin)*float64(i)/float64(cols-1)
		dx, dy, ok := c.dot(x, fn(x))
		if ok && have {
			c.Line(px, py, dx, dy)
		} else if ok {
			c.Set(dx, dy)
		}
		px, py, have = dx, dy, ok
	}
}

// HLine draws y = const across the window.
func (c *Canvas) HLine(y float64) {
	if _, dy, ok := c.dot(c.Window.XMin, y); ok {
		c.Line(0, dy, c.Width*2-1, dy)
	}
}

// Mark draws a small cross centred on a world point.
func (c *Canvas) Mark(x, y float64) {
	dx, dy, ok := c.dot(x, y)
	if !ok {
		return
	}
	c.Line(dx-1, dy-1, dx+1, dy+1)
	c.Line(dx-1, dy+1, dx+1, dy-1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
