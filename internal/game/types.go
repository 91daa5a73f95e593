package game

import (
	"strings"
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
)

// Phase is the coarse server lifecycle of a game.
type Phase string

const (
	PhaseUnknown  Phase = ""
	PhaseSetup    Phase = "SETUP"
	PhasePlay     Phase = "PLAY"
	PhaseFinished Phase = "FINISHED"
)

// ParsePhase folds the server's phase and status spellings
// (SETUP, TURN_P1, TURN_P2, FINISHED, ...) into a Phase.
func ParsePhase(s string) Phase {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case s == "":
		return PhaseUnknown
	case s == "SETUP":
		return PhaseSetup
	case strings.HasPrefix(s, "TURN"), s == "PLAY", s == "ACTIVE", s == "BATTLE":
		return PhasePlay
	case s == "FINISHED", s == "DONE":
		return PhaseFinished
	default:
		return PhaseUnknown
	}
}

// Snapshot is one authoritative board/phase state as seen by the local seat.
type Snapshot struct {
	GameID string
	Seat   board.Seat
	Phase  Phase
	Turn   board.Seat
	Board  *board.Board

	// SetupCounts holds the local seat's remaining counts when the server
	// reports them; nil otherwise.
	SetupCounts   map[fleet.Kind]int
	SetupDeadline time.Time

	Winner    board.Seat
	WinReason string

	Version    int64
	HasVersion bool
}

// Finished reports whether the snapshot ends the game.
func (s *Snapshot) Finished() bool {
	return s != nil && (s.Phase == PhaseFinished || s.Winner != 0)
}

// Follower is a piece relocated together with the mover.
type Follower struct {
	From board.Coord
	To   board.Coord
}

type MoveRequest struct {
	From      board.Coord
	To        board.Coord
	Followers []Follower
}

type TorpedoRequest struct {
	Launcher board.Coord
	Torpedo  board.Coord
	Dir      board.Dir
}

type AirRequest struct {
	Carrier board.Coord
	Plane   board.Coord
}

// TorpedoOption pairs a launcher with a loaded torpedo and its legal directions.
type TorpedoOption struct {
	Launcher   board.Coord
	Torpedo    board.Coord
	Directions []board.Dir
}

// AirOption pairs a carrier with a plane; Direction is -1 or +1 along rows.
type AirOption struct {
	Carrier   board.Coord
	Plane     board.Coord
	Direction int
}

type SpecialOptions struct {
	Torpedo []TorpedoOption
	Air     []AirOption
}

func (o *SpecialOptions) Empty() bool {
	return o == nil || (len(o.Torpedo) == 0 && len(o.Air) == 0)
}

type PauseKind string

const (
	PauseShort PauseKind = "short"
	PauseLong  PauseKind = "long"
)

func (k PauseKind) Duration() time.Duration {
	if k == PauseLong {
		return 3 * time.Minute
	}
	return time.Minute
}

// ActionResult is the server's answer to a move, attack or resign.
type ActionResult struct {
	Snapshot *Snapshot
	Outcome  *Outcome
}

// SubmitResult is the acknowledgement of a setup submission.
type SubmitResult struct {
	Phase    Phase
	Turn     board.Seat
	Snapshot *Snapshot
}

// Waiting reports whether the opponent still has to submit.
func (r *SubmitResult) Waiting() bool {
	return r == nil || r.Phase == PhaseSetup || r.Phase == PhaseUnknown
}
