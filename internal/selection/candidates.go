package selection

import (
	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
)

const (
	longRangeReach = 2
	torpedoReach   = 7
	airReach       = 5
)

// Destinations returns the advisory single-move targets of the piece at
// origin. The server re-validates every move.
func Destinations(b *board.Board, seat board.Seat, origin board.Coord, kind fleet.Kind) []board.Coord {
	reach := 1
	if kind == fleet.LongRange {
		reach = longRangeReach
	}
	var out []board.Coord
	for _, d := range board.Orthogonal {
		c := origin
		for step := 0; step < reach; step++ {
			c = c.Add(d)
			if !c.InBounds() {
				break
			}
			p, occupied := b.At(c)
			if !occupied {
				out = append(out, c)
				continue
			}
			if p.Owner != seat {
				out = append(out, c)
			}
			break
		}
	}
	return out
}

// GroupDestinations is the deduplicated union of the members' orthogonal
// neighbours, minus member cells and friendly-occupied cells.
func GroupDestinations(b *board.Board, seat board.Seat, members []board.Coord) []board.Coord {
	isMember := make(map[board.Coord]bool, len(members))
	for _, m := range members {
		isMember[m] = true
	}
	seen := make(map[board.Coord]bool)
	var out []board.Coord
	for _, m := range members {
		for _, n := range board.Neighbors(m) {
			if isMember[n] || seen[n] || b.OwnedBy(n, seat) {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// TorpedoRay walks from the torpedo cell along d, up to seven cells,
// stopping at the edge or on (and including) the first occupied cell.
func TorpedoRay(b *board.Board, from board.Coord, d board.Dir) []board.Coord {
	var out []board.Coord
	c := from
	for i := 0; i < torpedoReach; i++ {
		c = c.Add(d)
		if !c.InBounds() {
			break
		}
		out = append(out, c)
		if b.Occupied(c) {
			break
		}
	}
	return out
}

// AirColumn is the strike zone: up to five cells from the plane along the
// row axis in direction (-1 or +1), cut at the board edge.
func AirColumn(from board.Coord, direction int) []board.Coord {
	if direction == 0 {
		return nil
	}
	if direction > 0 {
		direction = 1
	} else {
		direction = -1
	}
	var out []board.Coord
	c := from
	for i := 0; i < airReach; i++ {
		c.Y += direction
		if !c.InBounds() {
			break
		}
		out = append(out, c)
	}
	return out
}

// Followers relocates each carried piece to the first free orthogonal
// neighbour of dest, probing +x, −x, +y, −y. A cell is free when it is
// empty or vacated by this move and not already claimed. Carried pieces
// without a free cell are left out.
func Followers(b *board.Board, origin, dest board.Coord, carried []board.Coord) []game.Follower {
	vacated := map[board.Coord]bool{origin: true}
	for _, c := range carried {
		vacated[c] = true
	}
	claimed := map[board.Coord]bool{dest: true}
	var out []game.Follower
	for _, from := range carried {
		if from == origin || from == dest {
			continue
		}
		for _, n := range board.Neighbors(dest) {
			if claimed[n] || n == from {
				continue
			}
			if b.Occupied(n) && !vacated[n] {
				continue
			}
			claimed[n] = true
			out = append(out, game.Follower{From: from, To: n})
			break
		}
	}
	return out
}
