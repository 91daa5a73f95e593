package board

import (
	"testing"

	"github.com/park285/seabattle-client/internal/fleet"
)

func TestCoordinateMappingIsInverse(t *testing.T) {
	for _, seat := range []Seat{Seat1, Seat2} {
		for x := 0; x < Cols; x++ {
			for y := 0; y < Rows; y++ {
				c := Coord{X: x, Y: y}
				s := ToServer(seat, c)
				if !s.InBounds() {
					t.Fatalf("seat %d: ToServer(%v)=%v out of bounds", seat, c, s)
				}
				if got := ToUI(seat, s); got != c {
					t.Fatalf("seat %d: ToUI(ToServer(%v))=%v", seat, c, got)
				}
				if got := ToServer(seat, ToUI(seat, c)); got != c {
					t.Fatalf("seat %d: ToServer(ToUI(%v))=%v", seat, c, got)
				}
			}
		}
	}
}

func TestSeatTwoFlip(t *testing.T) {
	server := ToServer(Seat2, Coord{X: 3, Y: 2})
	if server != (Coord{X: 3, Y: 12}) {
		t.Fatalf("ToServer: got %v", server)
	}
	if ui := ToUI(Seat2, Coord{X: 3, Y: 12}); ui != (Coord{X: 3, Y: 2}) {
		t.Fatalf("ToUI: got %v", ui)
	}
	if got := ToServer(Seat1, Coord{X: 3, Y: 2}); got != (Coord{X: 3, Y: 2}) {
		t.Fatalf("seat 1 must be native, got %v", got)
	}
}

func TestNeighborsOrderAndBounds(t *testing.T) {
	got := Neighbors(Coord{X: 5, Y: 5})
	want := []Coord{{6, 5}, {4, 5}, {5, 6}, {5, 4}}
	if len(got) != len(want) {
		t.Fatalf("len: got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbor[%d]: got %v want %v", i, got[i], want[i])
		}
	}
	corner := Neighbors(Coord{X: 0, Y: 0})
	if len(corner) != 2 {
		t.Fatalf("corner neighbors: %v", corner)
	}
	far := Neighbors(Coord{X: Cols - 1, Y: Rows - 1})
	for _, c := range far {
		if !c.InBounds() {
			t.Fatalf("out of bounds neighbor %v", c)
		}
	}
}

func TestZones(t *testing.T) {
	cases := []struct {
		seat Seat
		c    Coord
		want bool
	}{
		{Seat1, Coord{0, 10}, true},
		{Seat1, Coord{13, 14}, true},
		{Seat1, Coord{0, 9}, false},
		{Seat2, Coord{0, 0}, true},
		{Seat2, Coord{5, 4}, true},
		{Seat2, Coord{5, 5}, false},
		{Seat2, Coord{14, 0}, false},
	}
	for _, tc := range cases {
		if got := InZone(tc.seat, tc.c); got != tc.want {
			t.Fatalf("InZone(%d,%v)=%v want %v", tc.seat, tc.c, got, tc.want)
		}
	}
}

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord(" 3, 12")
	if err != nil || c != (Coord{3, 12}) {
		t.Fatalf("ParseCoord: %v %v", c, err)
	}
	if _, err := ParseCoord("3"); err == nil {
		t.Fatalf("expected error for missing comma")
	}
	if _, err := ParseCoord("a,1"); err == nil {
		t.Fatalf("expected error for non-numeric")
	}
}

func TestBoardDropsDeadAndOutOfBounds(t *testing.T) {
	b := New(map[Coord]Piece{
		{1, 1}:  {Kind: fleet.KR, Owner: Seat1, Alive: true},
		{2, 2}:  {Kind: fleet.KR, Owner: Seat1, Alive: false},
		{20, 2}: {Kind: fleet.KR, Owner: Seat2, Alive: true},
	})
	if b.Len() != 1 {
		t.Fatalf("len: got %d", b.Len())
	}
	if !b.OwnedBy(Coord{1, 1}, Seat1) || b.OwnedBy(Coord{1, 1}, Seat2) {
		t.Fatalf("ownership mismatch")
	}
	other := New(map[Coord]Piece{{1, 1}: {Kind: fleet.KR, Owner: Seat1, Alive: true}})
	if !b.Equal(other) {
		t.Fatalf("boards should be equal")
	}
	if b.Equal(Empty()) {
		t.Fatalf("boards should differ")
	}
}
