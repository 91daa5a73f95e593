package session

import (
	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
)

// OnResult applies the answer to a request the session issued earlier.
func (s *Session) OnResult(res Result) Effects {
	req := res.Req
	if res.Err != nil {
		return s.failed(req, res.Err)
	}
	switch req.Kind {
	case ReqGroupCandidates:
		s.sel, _ = selection.Step(s.env(), s.sel, selection.CandidatesLoaded{Token: req.Token, Coords: res.Coords})
		return Effects{Redraw: true}
	case ReqCarried:
		s.sel, _ = selection.Step(s.env(), s.sel, selection.CarriedLoaded{Token: req.Token, Coords: res.Coords})
		return Effects{}
	case ReqSpecialAttacks:
		var out selection.Effects
		s.sel, out = selection.Step(s.env(), s.sel, selection.SpecialLoaded{Token: req.Token, Options: res.Options})
		eff := Effects{Redraw: true}
		if out.Hint != "" {
			eff.notice(Info, out.Hint, out.HintData)
		}
		return eff

	case ReqPlace:
		eff := s.apply(res.Snapshot, true)
		s.setup.Placed(req.Piece)
		if res.Snapshot != nil && res.Snapshot.SetupCounts != nil {
			s.setup.Reconcile(res.Snapshot.SetupCounts)
		}
		eff.Redraw = true
		return eff
	case ReqClear:
		eff := s.apply(res.Snapshot, true)
		s.setup.Cleared()
		eff.notice(Info, "setup.cleared", nil)
		return eff
	case ReqAuto:
		eff := s.apply(res.Snapshot, true)
		s.setup.AutoCompleted()
		eff.notice(Info, "setup.auto", nil)
		if req.ThenSubmit && s.view == ViewSetup && !s.setup.Submitted() {
			eff.Requests = append(eff.Requests, s.request(Request{Kind: ReqSubmit}))
		}
		return eff
	case ReqSubmit:
		s.setup.SubmitAccepted()
		var eff Effects
		if res.Submit.Waiting() {
			eff.notice(Info, "setup.waiting", nil)
		} else {
			eff.notice(Info, "setup.submitted", nil)
		}
		eff.Redraw = true
		return eff

	case ReqMove, ReqTorpedo, ReqAir, ReqResign:
		return s.actionDone(req, res.Action)

	case ReqPause:
		if req.Pause == game.PauseLong {
			s.pauses.Long = true
		} else {
			s.pauses.Short = true
		}
		var eff Effects
		eff.notice(Info, "pause."+string(req.Pause), map[string]any{"Seconds": int(req.Pause.Duration().Seconds())})
		return eff
	case ReqCancelPause:
		var eff Effects
		eff.notice(Info, "pause.cancelled", nil)
		return eff
	}
	return Effects{}
}

func (s *Session) actionDone(req Request, ar *game.ActionResult) Effects {
	var eff Effects
	if ar != nil && ar.Snapshot != nil {
		eff = s.apply(ar.Snapshot, true)
	}
	// a result without a snapshot still ends the selection
	if s.sel.Mode != selection.Idle {
		s.sel, _ = selection.Step(s.env(), s.sel, selection.Reset{})
	}
	eff.Redraw = true
	if ar != nil && ar.Outcome != nil {
		if n, ok := outcomeNotice(ar.Outcome); ok {
			eff.Notices = append([]Notice{n}, eff.Notices...)
		}
	}
	s.log.Info("action_applied",
		zap.String("game_id", s.gameID),
		zap.String("kind", req.Kind.String()),
		zap.Uint64("seq", req.Seq))
	return eff
}

func outcomeNotice(o *game.Outcome) (Notice, bool) {
	if o.Kind == game.OutcomeMove && len(o.Destroyed) == 0 && len(o.Lost) == 0 {
		return Notice{}, false
	}
	return Notice{
		Level: Info,
		Key:   "outcome." + string(o.Kind),
		Data: map[string]any{
			"Event":     o.Event,
			"Destroyed": o.Destroyed,
			"Lost":      o.Lost,
			"ExtraTurn": o.ExtraTurn,
		},
	}, true
}

func (s *Session) failed(req Request, err error) Effects {
	class := Classify(err)
	if req.Kind.Advisory() {
		s.degraded++
		s.log.Warn("query_degraded",
			zap.String("kind", req.Kind.String()),
			zap.String("class", class.String()),
			zap.Int("degraded_total", s.degraded),
			zap.Error(err))
		switch req.Kind {
		case ReqGroupCandidates:
			s.sel, _ = selection.Step(s.env(), s.sel, selection.CandidatesLoaded{Token: req.Token, Coords: []board.Coord{}})
		case ReqCarried:
			s.sel, _ = selection.Step(s.env(), s.sel, selection.CarriedLoaded{Token: req.Token})
		}
		return Effects{}
	}
	if class == ClassNone {
		return Effects{}
	}
	s.log.Warn("action_rejected",
		zap.String("game_id", s.gameID),
		zap.String("kind", req.Kind.String()),
		zap.String("class", class.String()),
		zap.Error(err))
	if s.sel.Mode != selection.Idle {
		s.sel, _ = selection.Step(s.env(), s.sel, selection.Reset{})
	}
	eff := Effects{Redraw: true}
	eff.Notices = append(eff.Notices, errorNotice(err))
	return eff
}
