package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
	"github.com/park285/seabattle-client/internal/setup"
)

// View is the screen the session currently drives.
type View int

const (
	ViewSetup View = iota
	ViewPlay
	ViewEnded
)

func (v View) String() string {
	switch v {
	case ViewPlay:
		return "play"
	case ViewEnded:
		return "ended"
	default:
		return "setup"
	}
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithSetupDuration(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.setupDuration = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// PauseUsage records which pause kinds the local player has spent.
type PauseUsage struct {
	Short bool `json:"short"`
	Long  bool `json:"long"`
}

// Session is the explicit context of one open game view. It is not safe for
// concurrent use; a single goroutine owns it and feeds it events.
type Session struct {
	log           *zap.Logger
	now           func() time.Time
	setupDuration time.Duration

	gameID string
	seat   board.Seat
	view   View
	phase  game.Phase
	turn   board.Seat

	board *board.Board
	sel   selection.State
	setup *setup.Controller

	timer     clock.Snapshot
	countdown clock.Countdown

	boardVersion   int64
	boardVersioned bool
	timerVersion   int64
	timerVersioned bool

	winner    board.Seat
	winReason string
	ended     bool

	pauses PauseUsage

	seq      uint64
	degraded int
}

// Open builds a session from the snapshot returned by the invite lookup.
func Open(snap *game.Snapshot, opts ...Option) (*Session, Effects) {
	s := &Session{
		log:           zap.NewNop(),
		now:           time.Now,
		setupDuration: clock.SetupDuration,
		board:         board.Empty(),
	}
	for _, o := range opts {
		o(s)
	}
	if snap != nil {
		s.gameID = snap.GameID
		s.seat = snap.Seat
	}
	if !s.seat.Valid() {
		s.seat = board.Seat1
	}
	s.setup = setup.New(s.seat, time.Time{}, s.now(), s.setupDuration)

	var eff Effects
	if snap != nil {
		if snap.Phase == game.PhasePlay || snap.Phase == game.PhaseFinished {
			s.view = ViewPlay
			s.setup.Activate()
		}
		eff = s.apply(snap, false)
	}
	if s.view == ViewSetup && !s.ended {
		eff.ArmDeadline = s.setup.Deadline()
	}
	s.log.Info("session_open",
		zap.String("game_id", s.gameID),
		zap.Int("seat", int(s.seat)),
		zap.String("view", s.view.String()))
	return s, eff
}

func (s *Session) GameID() string             { return s.gameID }
func (s *Session) Seat() board.Seat           { return s.seat }
func (s *Session) View() View                 { return s.view }
func (s *Session) Phase() game.Phase          { return s.phase }
func (s *Session) Turn() board.Seat           { return s.turn }
func (s *Session) Board() *board.Board        { return s.board }
func (s *Session) Selection() selection.State { return s.sel }
func (s *Session) Setup() *setup.Controller   { return s.setup }
func (s *Session) Timer() clock.Snapshot      { return s.timer }
func (s *Session) Ended() bool                { return s.ended }
func (s *Session) Winner() board.Seat         { return s.winner }
func (s *Session) WinReason() string          { return s.winReason }
func (s *Session) Pauses() PauseUsage         { return s.pauses }

// DegradedQueries counts advisory lookups that failed and were answered empty.
func (s *Session) DegradedQueries() int { return s.degraded }

// RestorePauses re-applies pause usage recovered from the resume store.
func (s *Session) RestorePauses(p PauseUsage) { s.pauses = p }

// MyTurn reports whether input is currently accepted in the play view.
func (s *Session) MyTurn() bool { return s.turn == s.seat }

// HUD is the clock display advanced to now.
func (s *Session) HUD(now time.Time) clock.Display {
	return clock.Render(s.countdown.At(now), s.seat)
}

func (s *Session) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Session) request(r Request) Request {
	r.Seq = s.nextSeq()
	return r
}

func (s *Session) env() selection.Env {
	return selection.Env{Board: s.board, Seat: s.seat}
}

// end marks the game finished. Only the first call reports Ended.
func (s *Session) end(winner board.Seat, reason string) Effects {
	if s.ended {
		return Effects{}
	}
	s.ended = true
	s.view = ViewEnded
	s.winner = winner
	s.winReason = reason
	s.sel, _ = selection.Step(s.env(), s.sel, selection.Reset{})

	eff := Effects{Ended: true, CancelDeadline: true, Redraw: true}
	data := map[string]any{"Reason": reason}
	switch {
	case winner == s.seat:
		eff.notice(Info, "game.won", data)
	case winner.Valid():
		eff.notice(Info, "game.lost", data)
	default:
		eff.notice(Info, "game.over", data)
	}
	s.log.Info("game_end",
		zap.String("game_id", s.gameID),
		zap.Int("winner", int(winner)),
		zap.String("reason", reason))
	return eff
}
