package clock

import (
	"fmt"
	"time"

	"github.com/park285/seabattle-client/internal/board"
)

const (
	TurnDuration  = 30 * time.Second
	BankDuration  = 15 * time.Minute
	SetupDuration = 15 * time.Minute

	UrgentSeconds  = 10
	LowBankSeconds = 60
)

// Tick is a timer/pause snapshot in absolute terms, as the server reports it.
// Has* flags mark fields that were present on the wire.
type Tick struct {
	Turn        board.Seat
	TurnLeft    int
	HasTurnLeft bool

	BankMs  [3]int64
	HasBank [3]bool

	Paused         bool
	PauseLeft      int
	PauseInitiator board.Seat

	Finished bool
	Winner   board.Seat
	Reason   string

	Version    int64
	HasVersion bool
}

// Snapshot is the timer state relative to the local seat.
type Snapshot struct {
	IsMyTurn                bool
	MyTurnSecondsLeft       int
	MoverSecondsLeft        int
	MyBankSecondsLeft       int
	OpponentBankSecondsLeft int

	Paused           bool
	PauseSecondsLeft int
	PauseInitiator   board.Seat

	Finished bool
	Winner   board.Seat
	Reason   string
}

// Relative converts t for seat. Fields missing from t keep their value
// from prev.
func Relative(t Tick, seat board.Seat, prev Snapshot) Snapshot {
	out := prev
	if t.Turn.Valid() {
		out.IsMyTurn = t.Turn == seat
	}
	if t.HasTurnLeft {
		out.MoverSecondsLeft = max(0, t.TurnLeft)
	}
	if out.IsMyTurn {
		out.MyTurnSecondsLeft = out.MoverSecondsLeft
	} else {
		out.MyTurnSecondsLeft = 0
	}
	if seat.Valid() {
		if t.HasBank[seat] {
			out.MyBankSecondsLeft = int(max(0, t.BankMs[seat]) / 1000)
		}
		if opp := seat.Opponent(); t.HasBank[opp] {
			out.OpponentBankSecondsLeft = int(max(0, t.BankMs[opp]) / 1000)
		}
	}
	out.Paused = t.Paused
	if t.Paused {
		out.PauseSecondsLeft = max(0, t.PauseLeft)
		out.PauseInitiator = t.PauseInitiator
	} else {
		out.PauseSecondsLeft = 0
		out.PauseInitiator = 0
	}
	out.Finished = t.Finished
	out.Winner = t.Winner
	out.Reason = t.Reason
	return out
}

// Countdown extrapolates the last applied snapshot between polls.
// Its values are advisory; the next snapshot always replaces them.
type Countdown struct {
	snap Snapshot
	at   time.Time
}

func (c *Countdown) Apply(s Snapshot, now time.Time) {
	c.snap = s
	c.at = now
}

func (c *Countdown) Last() Snapshot { return c.snap }

// At returns the snapshot advanced to now.
func (c *Countdown) At(now time.Time) Snapshot {
	s := c.snap
	if c.at.IsZero() || s.Finished {
		return s
	}
	elapsed := int(now.Sub(c.at) / time.Second)
	if elapsed <= 0 {
		return s
	}
	if s.Paused {
		s.PauseSecondsLeft = max(0, s.PauseSecondsLeft-elapsed)
		return s
	}
	overflow := elapsed - s.MoverSecondsLeft
	s.MoverSecondsLeft = max(0, s.MoverSecondsLeft-elapsed)
	if s.IsMyTurn {
		s.MyTurnSecondsLeft = s.MoverSecondsLeft
		if overflow > 0 {
			s.MyBankSecondsLeft = max(0, s.MyBankSecondsLeft-overflow)
		}
	} else if overflow > 0 {
		s.OpponentBankSecondsLeft = max(0, s.OpponentBankSecondsLeft-overflow)
	}
	return s
}

// TurnState is what the turn indicator shows.
type TurnState int

const (
	TurnWaiting TurnState = iota
	TurnCounting
	TurnBank
)

// PauseOverlay is shown while a pause is active.
type PauseOverlay struct {
	Initiator   board.Seat
	SecondsLeft int
	Text        string
	CanCancel   bool
}

// Display is the HUD projection of a Snapshot.
type Display struct {
	Turn       TurnState
	TurnText   string
	TurnUrgent bool

	MyBank          string
	MyBankLow       bool
	OpponentBank    string
	OpponentBankLow bool

	Overlay *PauseOverlay
}

// Render projects s for the local seat.
func Render(s Snapshot, seat board.Seat) Display {
	d := Display{
		MyBank:          FormatClock(s.MyBankSecondsLeft),
		MyBankLow:       s.MyBankSecondsLeft <= LowBankSeconds,
		OpponentBank:    FormatClock(s.OpponentBankSecondsLeft),
		OpponentBankLow: s.OpponentBankSecondsLeft <= LowBankSeconds,
	}
	switch {
	case !s.IsMyTurn:
		d.Turn = TurnWaiting
		d.TurnText = "waiting"
	case s.MyTurnSecondsLeft > 0:
		d.Turn = TurnCounting
		d.TurnText = fmt.Sprintf("%ds", s.MyTurnSecondsLeft)
		d.TurnUrgent = s.MyTurnSecondsLeft <= UrgentSeconds
	default:
		d.Turn = TurnBank
		d.TurnText = "bank"
		d.TurnUrgent = true
	}
	if s.Paused {
		d.Overlay = &PauseOverlay{
			Initiator:   s.PauseInitiator,
			SecondsLeft: s.PauseSecondsLeft,
			Text:        FormatClock(s.PauseSecondsLeft),
			CanCancel:   s.PauseInitiator != 0 && s.PauseInitiator == seat,
		}
	}
	return d
}

// FormatClock renders seconds as m:ss.
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
