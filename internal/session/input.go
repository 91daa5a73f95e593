package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
	"github.com/park285/seabattle-client/internal/setup"
)

// Click handles a click on a cell given in the local seat's view frame.
// A non-nil error is a local rejection; no request was issued for it.
func (s *Session) Click(ui board.Coord) (Effects, error) {
	if !ui.InBounds() {
		return Effects{}, nil
	}
	at := board.ToServer(s.seat, ui)
	switch s.view {
	case ViewSetup:
		return s.place(at)
	case ViewPlay:
		return s.play(at)
	default:
		return s.reject(ErrGameFinished)
	}
}

func (s *Session) reject(err error) (Effects, error) {
	var eff Effects
	eff.Notices = append(eff.Notices, errorNotice(err))
	return eff, err
}

func (s *Session) place(at board.Coord) (Effects, error) {
	kind, err := s.setup.CheckPlace(s.board, at)
	if err != nil {
		return s.reject(err)
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqPlace, Piece: kind, At: at})}}, nil
}

func (s *Session) play(at board.Coord) (Effects, error) {
	if s.ended {
		return s.reject(ErrGameFinished)
	}
	if !s.MyTurn() {
		return s.reject(ErrNotYourTurn)
	}
	next, out := selection.Step(s.env(), s.sel, selection.Click{At: at})
	s.sel = next
	return s.translate(out)
}

// translate turns selection effects into requests and notices.
func (s *Session) translate(out selection.Effects) (Effects, error) {
	eff := Effects{Redraw: true}
	for _, q := range out.Queries {
		r := Request{Token: q.Token, At: q.Origin}
		switch q.Kind {
		case selection.QueryGroup:
			r.Kind = ReqGroupCandidates
		case selection.QueryCarried:
			r.Kind = ReqCarried
		default:
			r.Kind = ReqSpecialAttacks
		}
		eff.Requests = append(eff.Requests, s.request(r))
	}
	if a := out.Action; a != nil {
		var r Request
		switch a.Kind {
		case selection.ActionMove:
			r = Request{Kind: ReqMove, Move: a.Move}
		case selection.ActionTorpedo:
			r = Request{Kind: ReqTorpedo, Torpedo: a.Torpedo}
		case selection.ActionAir:
			r = Request{Kind: ReqAir, Air: a.Air}
		}
		eff.Requests = append(eff.Requests, s.request(r))
	}
	if out.Err != nil {
		n := errorNotice(out.Err)
		if out.HintData != nil {
			n.Data = out.HintData
		}
		eff.Notices = append(eff.Notices, n)
		return eff, out.Err
	}
	if out.Hint != "" {
		eff.notice(Info, out.Hint, out.HintData)
	}
	return eff, nil
}

// SelectKind chooses the piece kind for the next setup placement.
func (s *Session) SelectKind(k fleet.Kind) (Effects, error) {
	if s.view != ViewSetup {
		return s.reject(ErrWrongPhase)
	}
	if err := s.setup.Select(k); err != nil {
		return s.reject(err)
	}
	return Effects{Redraw: true}, nil
}

func (s *Session) ClearSetup() (Effects, error) {
	if err := s.setupOpen(); err != nil {
		return s.reject(err)
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqClear})}}, nil
}

func (s *Session) AutoSetup() (Effects, error) {
	if err := s.setupOpen(); err != nil {
		return s.reject(err)
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqAuto})}}, nil
}

func (s *Session) SubmitSetup() (Effects, error) {
	if s.view != ViewSetup {
		return s.reject(ErrWrongPhase)
	}
	if err := s.setup.CheckSubmit(); err != nil {
		return s.reject(err)
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqSubmit})}}, nil
}

func (s *Session) setupOpen() error {
	if s.view != ViewSetup {
		return ErrWrongPhase
	}
	if s.setup.Submitted() {
		return setup.ErrAlreadySubmitted
	}
	return nil
}

// OnDeadline forces completion of an unfinished setup.
func (s *Session) OnDeadline(now time.Time) Effects {
	if s.view != ViewSetup {
		return Effects{}
	}
	var eff Effects
	switch s.setup.OnDeadline(now) {
	case setup.DeadlineAutoThenSubmit:
		eff.Requests = append(eff.Requests, s.request(Request{Kind: ReqAuto, ThenSubmit: true}))
		eff.notice(Warn, "setup.deadline", nil)
	case setup.DeadlineSubmit:
		eff.Requests = append(eff.Requests, s.request(Request{Kind: ReqSubmit}))
		eff.notice(Warn, "setup.deadline", nil)
	default:
		if s.setup.Stage() == setup.Placing {
			// fired early, e.g. after the server moved the deadline
			eff.ArmDeadline = s.setup.Deadline()
		}
		return eff
	}
	s.log.Info("setup_deadline", zap.String("game_id", s.gameID), zap.Int("left", s.setup.Left()))
	return eff
}

func (s *Session) Pause(kind game.PauseKind) (Effects, error) {
	if s.view != ViewPlay {
		return s.reject(ErrWrongPhase)
	}
	if s.ended {
		return s.reject(ErrGameFinished)
	}
	if (kind == game.PauseLong && s.pauses.Long) || (kind != game.PauseLong && s.pauses.Short) {
		return s.reject(ErrPauseUsed)
	}
	if kind != game.PauseLong {
		kind = game.PauseShort
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqPause, Pause: kind})}}, nil
}

func (s *Session) CancelPause() (Effects, error) {
	if !s.timer.Paused {
		return s.reject(ErrNotPaused)
	}
	if s.timer.PauseInitiator != s.seat {
		return s.reject(ErrNotPauseInitiator)
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqCancelPause})}}, nil
}

func (s *Session) Resign() (Effects, error) {
	if s.ended {
		return s.reject(ErrGameFinished)
	}
	if s.view != ViewPlay {
		return s.reject(ErrWrongPhase)
	}
	return Effects{Requests: []Request{s.request(Request{Kind: ReqResign})}}, nil
}
