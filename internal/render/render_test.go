package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/selection"
)

func sampleBoard() *board.Board {
	return board.New(map[board.Coord]board.Piece{
		{X: 0, Y: 14}: {Owner: board.Seat1, Kind: fleet.KRPL, Alive: true},
		{X: 3, Y: 0}:  {Owner: board.Seat2, Kind: fleet.Unknown, Alive: true},
		{X: 4, Y: 1}:  {Owner: board.Seat2, Kind: fleet.TK, Alive: true},
	})
}

func gridRows(t *testing.T, out string) []string {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != board.Rows+1 {
		t.Fatalf("expected %d lines, got %d:\n%s", board.Rows+1, len(lines), out)
	}
	return lines[1:]
}

func cellAt(row string, col int) string {
	start := 3 + col*cellWidth
	return strings.TrimSpace(row[start : start+cellWidth])
}

func TestTextOrientsBoardForSeat(t *testing.T) {
	b := sampleBoard()

	rows := gridRows(t, Text(Scene{Seat: board.Seat1, Board: b}))
	if got := cellAt(rows[14], 0); got != "KRPL" {
		t.Fatalf("seat 1 bottom-left = %q", got)
	}
	if got := cellAt(rows[0], 3); got != "??" {
		t.Fatalf("hidden enemy = %q", got)
	}
	if got := cellAt(rows[1], 4); got != "tk" {
		t.Fatalf("revealed enemy = %q", got)
	}

	rows = gridRows(t, Text(Scene{Seat: board.Seat2, Board: b}))
	if got := cellAt(rows[0], 0); got != "krpl" {
		t.Fatalf("seat 2 sees the enemy KRPL on its top row, got %q", got)
	}
	if got := cellAt(rows[14], 3); got != "?" {
		t.Fatalf("own piece of unknown kind keeps its code, got %q", got)
	}
}

func TestTextShowsSelectionMarks(t *testing.T) {
	sel := selection.State{
		Mode:         selection.PieceSelected,
		Origin:       board.Coord{X: 0, Y: 14},
		Kind:         fleet.KRPL,
		Destinations: []board.Coord{{X: 0, Y: 13}},
		Candidates:   []board.Coord{{X: 1, Y: 14}, {X: 0, Y: 13}},
	}
	rows := gridRows(t, Text(Scene{Seat: board.Seat1, Board: sampleBoard(), Selection: sel}))
	if got := cellAt(rows[14], 0); got != "*KRPL" {
		t.Fatalf("origin = %q", got)
	}
	if got := cellAt(rows[13], 0); got != "+." {
		t.Fatalf("destination outranks candidate, got %q", got)
	}
	if got := cellAt(rows[14], 1); got != "o." {
		t.Fatalf("candidate = %q", got)
	}
}

func TestTextHeaderAndHUD(t *testing.T) {
	hud := clock.Display{TurnText: "12s", MyBank: "4:00", OpponentBank: "3:10", TurnUrgent: false}
	out := Text(Scene{Seat: board.Seat1, Header: "game g-1", HUD: &hud, Zone: true})
	lines := strings.Split(out, "\n")
	if lines[0] != "game g-1" || !strings.Contains(lines[1], "turn 12s") || !strings.Contains(lines[1], "opp 3:10") {
		t.Fatalf("unexpected header block:\n%s", out)
	}
	if got := cellAt(lines[3+14], 0); got != ":" {
		t.Fatalf("zone row should be shaded, got %q", got)
	}
	if got := cellAt(lines[3], 0); got != "." {
		t.Fatalf("opponent rows are not shaded, got %q", got)
	}
}

func TestPNGDimensions(t *testing.T) {
	sel := selection.State{
		Mode:    selection.AttackTargeting,
		Origin:  board.Coord{X: 0, Y: 14},
		Targets: map[board.Coord]selection.Target{{X: 0, Y: 12}: {Attack: selection.AttackTorpedo}},
	}
	hud := clock.Display{TurnText: "bank", TurnUrgent: true, MyBank: "0:40", OpponentBank: "2:00"}
	data, err := PNG(context.Background(), Scene{Seat: board.Seat1, Board: sampleBoard(), Selection: sel, Header: "game g-1", HUD: &hud})
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	wantW := board.Cols*cellSize + sideMargin*2
	wantH := board.Rows*cellSize + hudHeight + gapToBoard + sideMargin
	if b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}
}

func TestPNGHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PNG(ctx, Scene{Seat: board.Seat1}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestEveryKindHasIcon(t *testing.T) {
	for _, k := range append(fleet.Kinds(), fleet.Unknown) {
		if _, err := renderIcon(iconName(k), ownTint, 24); err != nil {
			t.Fatalf("icon for %s: %v", k, err)
		}
	}
}
