package tui

import (
	"strings"
	"testing"

	"github.com/nsf/termbox-go"

	"github.com/park285/seabattle-client/internal/adapter/gamepresenter"
	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/syncloop"
)

func TestKeyBindings(t *testing.T) {
	cases := []struct {
		ev   termbox.Event
		want Action
	}{
		{termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowUp}, ActUp},
		{termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEnter}, ActClick},
		{termbox.Event{Type: termbox.EventKey, Ch: 'P'}, ActPauseLong},
		{termbox.Event{Type: termbox.EventKey, Ch: 'p'}, ActPauseShort},
		{termbox.Event{Type: termbox.EventKey, Ch: 'z'}, ActNone},
		{termbox.Event{Type: termbox.EventResize}, ActNone},
	}
	for _, tc := range cases {
		if got := ActionOf(tc.ev); got != tc.want {
			t.Fatalf("ActionOf(%+v) = %v, want %v", tc.ev, got, tc.want)
		}
	}
}

func TestCursorStaysOnBoard(t *testing.T) {
	c := Cursor{Col: 0, Row: 0}.Move(ActUp).Move(ActLeft)
	if c != (Cursor{}) {
		t.Fatalf("cursor left the board: %+v", c)
	}
	c = Cursor{Col: board.Cols - 1, Row: board.Rows - 1}.Move(ActDown).Move(ActRight)
	if c.Col != board.Cols-1 || c.Row != board.Rows-1 {
		t.Fatalf("cursor left the board: %+v", c)
	}
}

func TestMessagesCarryViewCoordinates(t *testing.T) {
	msg, ok := Message(ActClick, Cursor{Col: 3, Row: 11}, syncloop.Frame{})
	if !ok || msg != (syncloop.Click{At: board.Coord{X: 3, Y: 11}}) {
		t.Fatalf("unexpected click %+v", msg)
	}
	msg, ok = Message(ActPauseLong, Cursor{}, syncloop.Frame{})
	if !ok || msg != (syncloop.Command{Op: syncloop.OpPause, Pause: game.PauseLong}) {
		t.Fatalf("unexpected pause %+v", msg)
	}
	if _, ok := Message(ActUp, Cursor{}, syncloop.Frame{}); ok {
		t.Fatalf("cursor moves are local")
	}
}

func TestKindCycleSkipsDepleted(t *testing.T) {
	fr := syncloop.Frame{Remaining: map[fleet.Kind]int{fleet.BDK: 0, fleet.KR: 2, fleet.M: 1}}
	k, ok := cycleKind(fr, true)
	if !ok || k != fleet.KR {
		t.Fatalf("first kind = %v", k)
	}
	fr.SetupSelected = fleet.M
	if k, _ := cycleKind(fr, true); k != fleet.KR {
		t.Fatalf("cycle should wrap to KR, got %v", k)
	}
	if k, _ := cycleKind(fr, false); k != fleet.KR {
		t.Fatalf("backwards from M should be KR, got %v", k)
	}
	if _, ok := cycleKind(syncloop.Frame{}, true); ok {
		t.Fatalf("nothing to cycle when all are placed")
	}
}

func TestLayoutDrawsBoardAndCursor(t *testing.T) {
	fr := syncloop.Frame{
		GameID: "g-9",
		Seat:   board.Seat2,
		View:   session.ViewPlay,
		Board: board.New(map[board.Coord]board.Piece{
			{X: 1, Y: 0}:  {Owner: board.Seat2, Kind: fleet.BDK, Alive: true},
			{X: 1, Y: 14}: {Owner: board.Seat1, Kind: fleet.Unknown, Alive: true},
		}),
		Selection: selection.State{Mode: selection.PieceSelected, Origin: board.Coord{X: 1, Y: 0}},
		Killed:    map[fleet.Kind]int{fleet.KR: 1},
	}
	notices := []string{"notice-1", "notice-2", "notice-3", "notice-4", "notice-5"}
	c := Layout(gamepresenter.NewFormatter(nil), fr, Cursor{Col: 1, Row: 14}, notices, 80)

	if !strings.Contains(c.Row(0), "game g-9") {
		t.Fatalf("header row = %q", c.Row(0))
	}
	own := c.Row(gridTop + 14)
	if !strings.Contains(own, "[BDK") {
		t.Fatalf("seat 2 own piece should be on the bottom row under the cursor: %q", own)
	}
	if bg := c.At(gridLeft+cellCols+2, gridTop+14).Bg; bg != termbox.ColorYellow {
		t.Fatalf("origin should be highlighted, bg=%v", bg)
	}
	if top := c.Row(gridTop); !strings.Contains(top, "??") {
		t.Fatalf("hidden enemy should be on the top row: %q", top)
	}

	all := ""
	for y := 0; y < c.H; y++ {
		all += c.Row(y) + "\n"
	}
	if strings.Contains(all, "notice-1") || !strings.Contains(all, "notice-5") {
		t.Fatalf("only the latest notices are shown:\n%s", all)
	}
	if !strings.Contains(c.Row(gridTop+board.Rows+3), "opponent lost: KR 1/6") {
		t.Fatalf("loss tally should sit under the clock:\n%s", all)
	}
}

func TestCanvasTextHandlesWideRunes(t *testing.T) {
	c := NewCanvas(6, 1)
	next := c.Text(0, 0, "日本語", termbox.ColorDefault, termbox.ColorDefault)
	if next != 6 || c.Row(0) != "日本語" {
		t.Fatalf("wide text: next=%d row=%q", next, c.Row(0))
	}
	c = NewCanvas(5, 1)
	c.Text(0, 0, "日本語", termbox.ColorDefault, termbox.ColorDefault)
	if c.Row(0) != "日本 " {
		t.Fatalf("wide text should be cut at the edge, got %q", c.Row(0))
	}
}
