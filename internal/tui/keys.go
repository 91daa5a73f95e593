package tui

import (
	"github.com/nsf/termbox-go"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/syncloop"
)

type Action int

const (
	ActNone Action = iota
	ActUp
	ActDown
	ActLeft
	ActRight
	ActClick
	ActNextKind
	ActPrevKind
	ActClear
	ActAuto
	ActSubmit
	ActPauseShort
	ActPauseLong
	ActUnpause
	ActResign
	ActQuit
)

var runeActions = map[rune]Action{
	'h': ActLeft, 'j': ActDown, 'k': ActUp, 'l': ActRight,
	' ': ActClick,
	']': ActNextKind, '[': ActPrevKind,
	'c': ActClear, 'a': ActAuto, 's': ActSubmit,
	'p': ActPauseShort, 'P': ActPauseLong, 'u': ActUnpause,
	'R': ActResign,
	'q': ActQuit,
}

var keyActions = map[termbox.Key]Action{
	termbox.KeyArrowUp:    ActUp,
	termbox.KeyArrowDown:  ActDown,
	termbox.KeyArrowLeft:  ActLeft,
	termbox.KeyArrowRight: ActRight,
	termbox.KeyEnter:      ActClick,
	termbox.KeyCtrlC:      ActQuit,
}

// ActionOf maps a key event; anything else is ActNone.
func ActionOf(ev termbox.Event) Action {
	if ev.Type != termbox.EventKey {
		return ActNone
	}
	if ev.Ch != 0 {
		return runeActions[ev.Ch]
	}
	return keyActions[ev.Key]
}

// Cursor is a cell in the local view frame.
type Cursor struct{ Col, Row int }

func (c Cursor) Move(a Action) Cursor {
	switch a {
	case ActUp:
		c.Row = max(0, c.Row-1)
	case ActDown:
		c.Row = min(board.Rows-1, c.Row+1)
	case ActLeft:
		c.Col = max(0, c.Col-1)
	case ActRight:
		c.Col = min(board.Cols-1, c.Col+1)
	}
	return c
}

// Message turns an action into a runner message. ok is false for actions
// the screen handles itself.
func Message(a Action, cur Cursor, fr syncloop.Frame) (syncloop.Msg, bool) {
	switch a {
	case ActClick:
		return syncloop.Click{At: board.Coord{X: cur.Col, Y: cur.Row}}, true
	case ActNextKind, ActPrevKind:
		k, ok := cycleKind(fr, a == ActNextKind)
		if !ok {
			return nil, false
		}
		return syncloop.SelectKind{Kind: k}, true
	case ActClear:
		return syncloop.Command{Op: syncloop.OpClear}, true
	case ActAuto:
		return syncloop.Command{Op: syncloop.OpAuto}, true
	case ActSubmit:
		return syncloop.Command{Op: syncloop.OpSubmit}, true
	case ActPauseShort:
		return syncloop.Command{Op: syncloop.OpPause, Pause: game.PauseShort}, true
	case ActPauseLong:
		return syncloop.Command{Op: syncloop.OpPause, Pause: game.PauseLong}, true
	case ActUnpause:
		return syncloop.Command{Op: syncloop.OpCancelPause}, true
	case ActResign:
		return syncloop.Command{Op: syncloop.OpResign}, true
	default:
		return nil, false
	}
}

// cycleKind steps through kinds that still have pieces to place.
func cycleKind(fr syncloop.Frame, forward bool) (fleet.Kind, bool) {
	kinds := fleet.Kinds()
	avail := make([]fleet.Kind, 0, len(kinds))
	at := -1
	for _, k := range kinds {
		if fr.Remaining[k] <= 0 {
			continue
		}
		if k == fr.SetupSelected {
			at = len(avail)
		}
		avail = append(avail, k)
	}
	if len(avail) == 0 {
		return "", false
	}
	switch {
	case at < 0 && forward:
		return avail[0], true
	case at < 0:
		return avail[len(avail)-1], true
	case forward:
		return avail[(at+1)%len(avail)], true
	default:
		return avail[(at-1+len(avail))%len(avail)], true
	}
}
