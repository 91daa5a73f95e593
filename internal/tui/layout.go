package tui

import (
	"fmt"

	"github.com/nsf/termbox-go"

	"github.com/park285/seabattle-client/internal/adapter/gamepresenter"
	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/render"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/syncloop"
)

const (
	cellCols  = 5
	gridLeft  = 3
	gridTop   = 2
	helpLine  = "arrows/hjkl move  enter click  [ ] kind  c clear  a auto  s submit  p/P pause  u unpause  R resign  q quit"
	maxNotice = 4
)

var markBg = map[render.Mark]termbox.Attribute{
	render.MarkOrigin:      termbox.ColorYellow,
	render.MarkMember:      termbox.ColorYellow,
	render.MarkDestination: termbox.ColorGreen,
	render.MarkCandidate:   termbox.ColorCyan,
	render.MarkCarried:     termbox.ColorBlue,
	render.MarkTarget:      termbox.ColorRed,
}

// Layout draws one frame. It is pure so it can be checked without a
// terminal.
func Layout(f *gamepresenter.Formatter, fr syncloop.Frame, cur Cursor, notices []string, width int) *Canvas {
	gridW := gridLeft + board.Cols*cellCols
	width = max(width, gridW)
	height := gridTop + board.Rows + 6 + maxNotice
	c := NewCanvas(width, height)

	c.Text(0, 0, truncate(f.Header(fr), width), termbox.ColorWhite|termbox.AttrBold, termbox.ColorDefault)
	for col := 0; col < board.Cols; col++ {
		c.Text(gridLeft+col*cellCols+1, 1, string(rune('a'+col)), termbox.ColorDefault, termbox.ColorDefault)
	}

	marks := render.Marks(fr.Selection)
	zone := fr.View == session.ViewSetup
	for row := 0; row < board.Rows; row++ {
		y := gridTop + row
		c.Text(0, y, fmt.Sprintf("%2d", row+1), termbox.ColorDefault, termbox.ColorDefault)
		for col := 0; col < board.Cols; col++ {
			at := board.ToServer(fr.Seat, board.Coord{X: col, Y: row})
			x := gridLeft + col*cellCols
			text, fg := cellGlyph(fr, at)
			bg := termbox.ColorDefault
			if zone && board.InZone(fr.Seat, at) {
				bg = termbox.ColorBlack
			}
			if b, ok := markBg[marks[at]]; ok {
				bg = b
			}
			c.Fill(x, y, cellCols, bg)
			c.Text(x+1, y, text, fg, bg)
			if cur.Col == col && cur.Row == row {
				c.Put(x, y, '[', termbox.ColorWhite|termbox.AttrBold, bg)
				c.Put(x+cellCols-1, y, ']', termbox.ColorWhite|termbox.AttrBold, bg)
			}
		}
	}

	y := gridTop + board.Rows + 1
	if s := f.Clock(fr); s != "" {
		c.Text(0, y, truncate(s, width), clockColor(fr), termbox.ColorDefault)
	}
	y++
	if s := f.Remaining(fr); s != "" && fr.View == session.ViewSetup {
		c.Text(0, y, truncate(s, width), termbox.ColorDefault, termbox.ColorDefault)
	} else if fr.View == session.ViewPlay {
		c.Text(0, y, truncate(f.Pauses(fr), width), termbox.ColorDefault, termbox.ColorDefault)
	}
	y++
	switch k := fr.SetupSelected; {
	case fr.View == session.ViewSetup && k != "":
		c.Text(0, y, truncate(fmt.Sprintf("placing %s (%s)", k, fleet.Label(k)), width), termbox.ColorYellow, termbox.ColorDefault)
	case fr.View != session.ViewSetup:
		c.Text(0, y, truncate(f.Killed(fr), width), termbox.ColorRed, termbox.ColorDefault)
	}
	y++
	start := max(0, len(notices)-maxNotice)
	for _, n := range notices[start:] {
		c.Text(0, y, truncate(n, width), termbox.ColorDefault, termbox.ColorDefault)
		y++
	}
	c.Text(0, height-1, truncate(helpLine, width), termbox.ColorMagenta, termbox.ColorDefault)
	return c
}

func cellGlyph(fr syncloop.Frame, at board.Coord) (string, termbox.Attribute) {
	p, ok := fr.Board.At(at)
	switch {
	case !ok:
		return "·", termbox.ColorBlue
	case p.Owner != fr.Seat && p.Hidden():
		return "??", termbox.ColorRed
	case p.Owner != fr.Seat:
		return string(p.Kind), termbox.ColorRed | termbox.AttrBold
	default:
		return string(p.Kind), termbox.ColorCyan | termbox.AttrBold
	}
}

func clockColor(fr syncloop.Frame) termbox.Attribute {
	if fr.HUD.TurnUrgent {
		return termbox.ColorRed | termbox.AttrBold
	}
	return termbox.ColorGreen
}
