package setup

import (
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
)

type Stage int

const (
	Placing Stage = iota
	// Waiting: submitted, the opponent has not finished yet.
	Waiting
	Active
)

func (s Stage) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Active:
		return "active"
	default:
		return "placing"
	}
}

// Errors
var (
	ErrUnknownKind      = staticErr("unknown piece kind")
	ErrNoKindSelected   = staticErr("no piece kind selected")
	ErrKindDepleted     = staticErr("no pieces of this kind left")
	ErrOutsideZone      = staticErr("cell is outside your setup zone")
	ErrCellOccupied     = staticErr("cell is already occupied")
	ErrSetupIncomplete  = staticErr("not all pieces are placed")
	ErrAlreadySubmitted = staticErr("setup already submitted")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }

// DeadlineAction is what the caller must do when the setup timer fires.
type DeadlineAction int

const (
	DeadlineNone DeadlineAction = iota
	DeadlineSubmit
	DeadlineAutoThenSubmit
)

// Controller tracks fleet placement for the local seat. It validates
// locally and records accepted results; the server owns the placements.
type Controller struct {
	seat      board.Seat
	stage     Stage
	remaining map[fleet.Kind]int
	selected  fleet.Kind
	deadline  time.Time
}

// New starts placement. A zero deadline means now+setupDuration.
func New(seat board.Seat, deadline time.Time, now time.Time, setupDuration time.Duration) *Controller {
	if deadline.IsZero() {
		deadline = now.Add(setupDuration)
	}
	return &Controller{
		seat:      seat,
		remaining: fleet.InitialCounts(),
		deadline:  deadline,
	}
}

func (c *Controller) Seat() board.Seat             { return c.seat }
func (c *Controller) Stage() Stage                 { return c.stage }
func (c *Controller) Selected() fleet.Kind         { return c.selected }
func (c *Controller) Deadline() time.Time          { return c.deadline }
func (c *Controller) Submitted() bool              { return c.stage != Placing }
func (c *Controller) RemainingOf(k fleet.Kind) int { return c.remaining[k] }

func (c *Controller) Remaining() map[fleet.Kind]int {
	out := make(map[fleet.Kind]int, len(c.remaining))
	for k, v := range c.remaining {
		out[k] = v
	}
	return out
}

// Complete reports whether every count reached zero.
func (c *Controller) Complete() bool {
	for _, n := range c.remaining {
		if n > 0 {
			return false
		}
	}
	return true
}

// Left is the total number of pieces still to place.
func (c *Controller) Left() int {
	n := 0
	for _, v := range c.remaining {
		n += v
	}
	return n
}

// Select picks the kind the next placement uses.
func (c *Controller) Select(k fleet.Kind) error {
	if _, ok := fleet.Lookup(k); !ok {
		return ErrUnknownKind
	}
	if c.remaining[k] <= 0 {
		return ErrKindDepleted
	}
	c.selected = k
	return nil
}

// CheckPlace validates a placement of the selected kind at an absolute cell.
func (c *Controller) CheckPlace(b *board.Board, at board.Coord) (fleet.Kind, error) {
	if c.stage != Placing {
		return "", ErrAlreadySubmitted
	}
	if c.selected == "" {
		return "", ErrNoKindSelected
	}
	if c.remaining[c.selected] <= 0 {
		return "", ErrKindDepleted
	}
	if !board.InZone(c.seat, at) {
		return "", ErrOutsideZone
	}
	if b.Occupied(at) {
		return "", ErrCellOccupied
	}
	return c.selected, nil
}

// Placed records a placement the server accepted.
func (c *Controller) Placed(k fleet.Kind) {
	if c.remaining[k] > 0 {
		c.remaining[k]--
	}
	if c.remaining[k] == 0 && c.selected == k {
		c.selected = ""
	}
}

// Cleared records that the server removed every placement.
func (c *Controller) Cleared() {
	c.remaining = fleet.InitialCounts()
	c.selected = ""
}

// AutoCompleted records a server-side auto arrangement.
func (c *Controller) AutoCompleted() {
	for k := range c.remaining {
		c.remaining[k] = 0
	}
	c.selected = ""
}

func (c *Controller) CheckSubmit() error {
	if c.stage != Placing {
		return ErrAlreadySubmitted
	}
	if !c.Complete() {
		return ErrSetupIncomplete
	}
	return nil
}

// SubmitAccepted moves to Waiting. Active is reached only through
// Activate once the server phase changes.
func (c *Controller) SubmitAccepted() {
	if c.stage == Placing {
		c.stage = Waiting
	}
}

func (c *Controller) Activate() { c.stage = Active }

// Reconcile overwrites local counts with the server's view. Unknown kinds
// are ignored; kinds missing from counts keep their local value.
func (c *Controller) Reconcile(counts map[fleet.Kind]int) {
	for k, n := range counts {
		if _, ok := c.remaining[k]; !ok || n < 0 {
			continue
		}
		c.remaining[k] = n
	}
	if c.selected != "" && c.remaining[c.selected] == 0 {
		c.selected = ""
	}
}

// SetDeadline adopts a server-provided deadline.
func (c *Controller) SetDeadline(t time.Time) {
	if !t.IsZero() {
		c.deadline = t
	}
}

// OnDeadline decides the forced completion when the timer fires at now.
func (c *Controller) OnDeadline(now time.Time) DeadlineAction {
	if c.stage != Placing || now.Before(c.deadline) {
		return DeadlineNone
	}
	if c.Complete() {
		return DeadlineSubmit
	}
	return DeadlineAutoThenSubmit
}
