package board

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Cols = 14
	Rows = 15
)

// Seat is a player slot, 1 or 2.
type Seat int

const (
	Seat1 Seat = 1
	Seat2 Seat = 2
)

func (s Seat) Valid() bool { return s == Seat1 || s == Seat2 }

// Opponent returns the other seat.
func (s Seat) Opponent() Seat {
	if s == Seat1 {
		return Seat2
	}
	return Seat1
}

// Coord is a cell position. Unless stated otherwise it is in the absolute
// server frame.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string { return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) }

func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < Cols && c.Y >= 0 && c.Y < Rows
}

func (c Coord) Add(d Dir) Coord { return Coord{X: c.X + d.DX, Y: c.Y + d.DY} }

// ParseCoord parses the "x,y" key used in board snapshots.
func ParseCoord(s string) (Coord, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Coord{}, fmt.Errorf("coord %q: missing comma", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Coord{}, fmt.Errorf("coord %q: %w", s, err)
	}
	return Coord{X: x, Y: y}, nil
}

// ToServer maps a seat-relative view cell to the absolute frame.
// Seat 1 sees the native orientation; seat 2 sees rows mirrored.
func ToServer(seat Seat, ui Coord) Coord {
	if seat == Seat2 {
		return Coord{X: ui.X, Y: Rows - 1 - ui.Y}
	}
	return ui
}

// ToUI is the inverse of ToServer.
func ToUI(seat Seat, server Coord) Coord {
	if seat == Seat2 {
		return Coord{X: server.X, Y: Rows - 1 - server.Y}
	}
	return server
}

// Dir is an orthogonal step.
type Dir struct {
	DX int
	DY int
}

// Orthogonal is the fixed probing order: +x, −x, +y, −y.
var Orthogonal = [4]Dir{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Neighbors returns the in-bounds orthogonal neighbours of c in probing order.
func Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range Orthogonal {
		n := c.Add(d)
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

// ZoneRows returns the inclusive absolute row range a seat may place into.
func ZoneRows(seat Seat) (lo, hi int) {
	if seat == Seat2 {
		return 0, 4
	}
	return 10, 14
}

// InZone reports whether c lies in seat's setup half.
func InZone(seat Seat, c Coord) bool {
	lo, hi := ZoneRows(seat)
	return c.InBounds() && c.Y >= lo && c.Y <= hi
}
