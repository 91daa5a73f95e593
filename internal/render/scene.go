package render

import (
	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/selection"
)

// Scene is everything a board drawing needs. Board and Selection use
// absolute coordinates; drawing flips them for Seat.
type Scene struct {
	Seat      board.Seat
	Board     *board.Board
	Selection selection.State

	// Zone shades the local setup rows.
	Zone bool

	Header string
	HUD    *clock.Display
}

type Mark int

const (
	MarkNone Mark = iota
	MarkTarget
	MarkCarried
	MarkCandidate
	MarkDestination
	MarkMember
	MarkOrigin
)

func (m Mark) glyph() byte {
	switch m {
	case MarkOrigin:
		return '*'
	case MarkMember:
		return '#'
	case MarkDestination:
		return '+'
	case MarkCandidate:
		return 'o'
	case MarkCarried:
		return 'c'
	case MarkTarget:
		return 'x'
	default:
		return ' '
	}
}

// Marks resolves the selection overlay per cell; the stronger mark wins
// where several apply.
func Marks(s selection.State) map[board.Coord]Mark {
	out := make(map[board.Coord]Mark)
	put := func(c board.Coord, m Mark) {
		if m > out[c] {
			out[c] = m
		}
	}
	if s.Mode == selection.Idle {
		return out
	}
	for c := range s.Targets {
		put(c, MarkTarget)
	}
	for _, c := range s.Carried {
		put(c, MarkCarried)
	}
	for _, c := range s.Candidates {
		put(c, MarkCandidate)
	}
	for _, c := range s.Destinations {
		put(c, MarkDestination)
	}
	for _, c := range s.Members {
		put(c, MarkMember)
	}
	put(s.Origin, MarkOrigin)
	return out
}

// cells walks the board in view order, top row first.
func cells(seat board.Seat, fn func(row, col int, at board.Coord)) {
	for row := 0; row < board.Rows; row++ {
		for col := 0; col < board.Cols; col++ {
			fn(row, col, board.ToServer(seat, board.Coord{X: col, Y: row}))
		}
	}
}
