package session

import (
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
)

type RequestKind int

const (
	ReqPlace RequestKind = iota + 1
	ReqClear
	ReqAuto
	ReqSubmit
	ReqGroupCandidates
	ReqCarried
	ReqSpecialAttacks
	ReqMove
	ReqTorpedo
	ReqAir
	ReqPause
	ReqCancelPause
	ReqResign
)

var requestNames = map[RequestKind]string{
	ReqPlace:           "place",
	ReqClear:           "clear_setup",
	ReqAuto:            "auto_setup",
	ReqSubmit:          "submit_setup",
	ReqGroupCandidates: "group_candidates",
	ReqCarried:         "carried",
	ReqSpecialAttacks:  "special_attacks",
	ReqMove:            "move",
	ReqTorpedo:         "torpedo",
	ReqAir:             "air",
	ReqPause:           "pause",
	ReqCancelPause:     "cancel_pause",
	ReqResign:          "resign",
}

func (k RequestKind) String() string {
	if n, ok := requestNames[k]; ok {
		return n
	}
	return "unknown"
}

// Advisory reports whether a failure of this request degrades to an empty
// answer instead of surfacing an error.
func (k RequestKind) Advisory() bool {
	return k == ReqGroupCandidates || k == ReqCarried || k == ReqSpecialAttacks
}

// Request is a network call the session wants issued.
type Request struct {
	Kind RequestKind
	Seq  uint64

	// selection token for advisory queries
	Token uint64

	Piece fleet.Kind
	At    board.Coord

	Move    game.MoveRequest
	Torpedo game.TorpedoRequest
	Air     game.AirRequest
	Pause   game.PauseKind

	// ThenSubmit chains a submit after a forced auto-complete.
	ThenSubmit bool
}

// Result is the answer to a Request, posted back by the runner.
type Result struct {
	Req Request

	Snapshot *game.Snapshot
	Action   *game.ActionResult
	Submit   *game.SubmitResult
	Coords   []board.Coord
	Options  *game.SpecialOptions

	Err error
}

type Level int

const (
	Info Level = iota
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notice is a user-visible message, rendered through the message catalog.
type Notice struct {
	Level Level
	Key   string
	Data  map[string]any
	Err   error
}

// Effects is the outcome of feeding one event to the session.
type Effects struct {
	Requests []Request
	Notices  []Notice

	// ArmDeadline, when non-zero, (re)schedules the setup deadline.
	ArmDeadline    time.Time
	CancelDeadline bool

	// Ended is set exactly once, on the event that ended the game.
	Ended bool
	// Timer carries a fresh timer snapshot for the HUD.
	Timer *clock.Snapshot

	Redraw bool
}

func (e *Effects) merge(o Effects) {
	e.Requests = append(e.Requests, o.Requests...)
	e.Notices = append(e.Notices, o.Notices...)
	if !o.ArmDeadline.IsZero() {
		e.ArmDeadline = o.ArmDeadline
	}
	e.CancelDeadline = e.CancelDeadline || o.CancelDeadline
	e.Ended = e.Ended || o.Ended
	if o.Timer != nil {
		e.Timer = o.Timer
	}
	e.Redraw = e.Redraw || o.Redraw
}

func (e *Effects) notice(l Level, key string, data map[string]any) {
	e.Notices = append(e.Notices, Notice{Level: l, Key: key, Data: data})
}
