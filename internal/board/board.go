package board

import (
	"sort"

	"github.com/park285/seabattle-client/internal/fleet"
)

// Piece is one occupant of a cell. Identity is positional within a snapshot.
type Piece struct {
	Kind  fleet.Kind
	Owner Seat
	Alive bool
}

// Hidden reports whether the piece kind is concealed from the viewer.
func (p Piece) Hidden() bool { return p.Kind == fleet.Unknown || p.Kind == "" }

// Board is a sparse occupancy map in the absolute frame. A Board is never
// patched field by field; each snapshot produces a new one.
type Board struct {
	cells map[Coord]Piece
}

func New(cells map[Coord]Piece) *Board {
	b := &Board{cells: make(map[Coord]Piece, len(cells))}
	for c, p := range cells {
		if !c.InBounds() || !p.Alive {
			continue
		}
		b.cells[c] = p
	}
	return b
}

// Empty returns a board with no pieces.
func Empty() *Board { return &Board{cells: map[Coord]Piece{}} }

func (b *Board) At(c Coord) (Piece, bool) {
	if b == nil {
		return Piece{}, false
	}
	p, ok := b.cells[c]
	return p, ok
}

func (b *Board) Occupied(c Coord) bool {
	_, ok := b.At(c)
	return ok
}

// OwnedBy reports whether c holds a piece of seat.
func (b *Board) OwnedBy(c Coord, seat Seat) bool {
	p, ok := b.At(c)
	return ok && p.Owner == seat
}

func (b *Board) Len() int {
	if b == nil {
		return 0
	}
	return len(b.cells)
}

// Coords returns occupied cells ordered by row then column.
func (b *Board) Coords() []Coord {
	if b == nil {
		return nil
	}
	out := make([]Coord, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// CountOwned returns the number of pieces of seat.
func (b *Board) CountOwned(seat Seat) int {
	n := 0
	if b == nil {
		return 0
	}
	for _, p := range b.cells {
		if p.Owner == seat {
			n++
		}
	}
	return n
}

// Equal compares occupancy cell by cell.
func (b *Board) Equal(o *Board) bool {
	if b.Len() != o.Len() {
		return false
	}
	if b == nil {
		return true
	}
	for c, p := range b.cells {
		q, ok := o.At(c)
		if !ok || q != p {
			return false
		}
	}
	return true
}
