package games

import (
	"math/rand"
	"strings"

	"github.com/mattn/go-runewidth"
)

// canvas is a fixed-size character grid for composing trial frames.
// Coordinates are column, row with the origin at the top left.
type canvas struct {
	width  int
	height int
	cells  [][]rune
}

func newCanvas(width, height int) *canvas {
	cells := make([][]rune, height)
	for y := range cells {
		row := make([]rune, width)
		for x := range row {
			row[x] = ' '
		}
		cells[y] = row
	}
	return &canvas{width: width, height: height, cells: cells}
}

// draw writes s starting at (x, y), clipping at the edges. Wide runes
// consume a following cell so columns stay aligned.
func (c *canvas) draw(x, y int, s string) {
	if y < 0 || y >= c.height {
		return
	}
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= c.width {
			c.cells[y][col] = r
			for i := 1; i < w; i++ {
				c.cells[y][col+i] = 0
			}
		}
		col += w
	}
}

// drawCentered writes s centered on (x, y).
func (c *canvas) drawCentered(x, y int, s string) {
	c.draw(x-runewidth.StringWidth(s)/2, y, s)
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		line := make([]rune, 0, len(row))
		for _, r := range row {
			if r != 0 {
				line = append(line, r)
			}
		}
		b.WriteString(strings.TrimRight(string(line), " "))
	}
	return b.String()
}

// radialSlot returns the canvas position of one of count slots arranged
// clockwise from twelve o'clock. Horizontal radius is doubled to offset
// the terminal cell aspect ratio.
func radialSlot(slot, count, centerX, centerY, radius int) (int, int) {
	x, y := radialOffset(slot, count, radius)
	return centerX + x, centerY + y
}

func radialOffset(slot, count, radius int) (int, int) {
	// Eight compass points avoid float jitter for the common case.
	if count == 8 {
		dirs := [8][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
		d := dirs[slot%8]
		return d[0] * radius * 2, d[1] * radius
	}
	return 0, 0
}

// pickSlots returns n distinct values from candidates in random order.
func pickSlots(candidates []int, n int, rnd *rand.Rand) []int {
	shuffled := append([]int(nil), candidates...)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
