package tui

import (
	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
)

type Cell struct {
	Ch     rune
	Fg, Bg termbox.Attribute
}

// Canvas is an off-screen character grid, copied to the terminal on flush.
type Canvas struct {
	W, H  int
	cells []Cell
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{W: w, H: h, cells: make([]Cell, w*h)}
	for i := range c.cells {
		c.cells[i] = Cell{Ch: ' ', Fg: termbox.ColorDefault, Bg: termbox.ColorDefault}
	}
	return c
}

func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return Cell{}
	}
	return c.cells[y*c.W+x]
}

func (c *Canvas) Put(x, y int, ch rune, fg, bg termbox.Attribute) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return
	}
	c.cells[y*c.W+x] = Cell{Ch: ch, Fg: fg, Bg: bg}
}

// Text writes s from x and returns the column after it. Wide runes take
// two columns; text past the right edge is cut.
func (c *Canvas) Text(x, y int, s string, fg, bg termbox.Attribute) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.W {
			break
		}
		c.Put(x, y, r, fg, bg)
		for i := 1; i < w; i++ {
			c.Put(x+i, y, 0, fg, bg)
		}
		x += w
	}
	return x
}

// Fill paints n columns of background from x.
func (c *Canvas) Fill(x, y, n int, bg termbox.Attribute) {
	for i := 0; i < n; i++ {
		cell := c.At(x+i, y)
		c.Put(x+i, y, cell.Ch, cell.Fg, bg)
	}
}

// Row returns line y as a string, for tests and logs.
func (c *Canvas) Row(y int) string {
	out := make([]rune, 0, c.W)
	for x := 0; x < c.W; x++ {
		if ch := c.At(x, y).Ch; ch != 0 {
			out = append(out, ch)
		}
	}
	return string(out)
}

func (c *Canvas) flush() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	tw, th := termbox.Size()
	for y := 0; y < min(c.H, th); y++ {
		for x := 0; x < min(c.W, tw); x++ {
			cell := c.cells[y*c.W+x]
			if cell.Ch == 0 {
				continue
			}
			termbox.SetCell(x, y, cell.Ch, cell.Fg, cell.Bg)
		}
	}
	return termbox.Flush()
}

// truncate cuts s to w display columns.
func truncate(s string, w int) string {
	return runewidth.Truncate(s, w, "…")
}
