package render

import (
	"fmt"
	"strings"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
)

const cellWidth = 6

// Text draws the scene as a fixed-width grid. Own pieces show their kind
// code, concealed enemy pieces "??", and the selection overlay prefixes
// each marked cell.
func Text(s Scene) string {
	var b strings.Builder
	if s.Header != "" {
		b.WriteString(s.Header)
		b.WriteByte('\n')
	}
	if s.HUD != nil {
		b.WriteString(hudLine(*s.HUD))
		b.WriteByte('\n')
	}

	b.WriteString("   ")
	for col := 0; col < board.Cols; col++ {
		fmt.Fprintf(&b, "%-*s", cellWidth, string(rune('a'+col)))
	}
	b.WriteByte('\n')

	marks := Marks(s.Selection)
	cells(s.Seat, func(row, col int, at board.Coord) {
		if col == 0 {
			fmt.Fprintf(&b, "%2d ", row+1)
		}
		b.WriteString(cellText(s, at, marks[at]))
		if col == board.Cols-1 {
			b.WriteByte('\n')
		}
	})
	return strings.TrimRight(b.String(), "\n")
}

func cellText(s Scene, at board.Coord, m Mark) string {
	body := "."
	if s.Zone && board.InZone(s.Seat, at) {
		body = ":"
	}
	if s.Board != nil {
		if p, ok := s.Board.At(at); ok {
			switch {
			case p.Owner != s.Seat && p.Hidden():
				body = "??"
			case p.Owner != s.Seat:
				body = strings.ToLower(string(p.Kind))
			default:
				body = string(p.Kind)
			}
		}
	}
	cell := string(m.glyph()) + body
	if len(cell) > cellWidth-1 {
		cell = cell[:cellWidth-1]
	}
	return fmt.Sprintf("%-*s", cellWidth, cell)
}

func hudLine(d clock.Display) string {
	parts := []string{"turn " + d.TurnText, "you " + d.MyBank, "opp " + d.OpponentBank}
	if d.TurnUrgent {
		parts[0] += "!"
	}
	if d.Overlay != nil {
		parts = append(parts, "paused "+d.Overlay.Text)
	}
	return strings.Join(parts, " | ")
}

// Legend lists the kind codes with their labels, strongest first.
func Legend() string {
	var b strings.Builder
	for i, sp := range fleet.All() {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%s=%s", sp.Kind, sp.Label)
	}
	return b.String()
}
