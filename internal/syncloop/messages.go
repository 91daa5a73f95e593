package syncloop

import (
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
	"github.com/park285/seabattle-client/internal/session"
	"github.com/park285/seabattle-client/internal/setup"
)

type Msg interface{ isMsg() }

// Click is a cell click in the local seat's view frame.
type Click struct{ At board.Coord }

type SelectKind struct{ Kind fleet.Kind }

type Op int

const (
	OpClear Op = iota + 1
	OpAuto
	OpSubmit
	OpPause
	OpCancelPause
	OpResign
)

type Command struct {
	Op    Op
	Pause game.PauseKind
}

// GetFrame asks for the current frame without racing the loop.
type GetFrame struct{ Reply chan Frame }

// Leave closes the view; the runner stops after handling it.
type Leave struct{}

type boardFetched struct {
	snap *game.Snapshot
	err  error
}

type timerFetched struct {
	tick *clock.Tick
	err  error
}

type killedFetched struct {
	killed map[fleet.Kind]int
	err    error
}

type resultArrived struct{ res session.Result }

type pushed struct {
	snap *game.Snapshot
	tick *clock.Tick
}

func (Click) isMsg()         {}
func (SelectKind) isMsg()    {}
func (Command) isMsg()       {}
func (GetFrame) isMsg()      {}
func (Leave) isMsg()         {}
func (boardFetched) isMsg()  {}
func (timerFetched) isMsg()  {}
func (killedFetched) isMsg() {}
func (resultArrived) isMsg() {}
func (pushed) isMsg()        {}

// Frame is everything a presenter needs to draw the view at one instant.
type Frame struct {
	GameID string
	Seat   board.Seat
	View   session.View
	Phase  game.Phase
	Turn   board.Seat
	MyTurn bool

	Board     *board.Board
	Selection selection.State

	SetupStage    setup.Stage
	SetupSelected fleet.Kind
	Remaining     map[fleet.Kind]int
	SetupDeadline time.Time

	HUD clock.Display

	Ended  bool
	Winner board.Seat
	Reason string

	// Killed is the opponent's losses per kind; empty until the first
	// tally arrives or when it could not be fetched.
	Killed map[fleet.Kind]int

	Pauses   session.PauseUsage
	Degraded int
}
