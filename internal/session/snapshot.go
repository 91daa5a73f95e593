package session

import (
	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
)

// OnBoardSnapshot applies a polled board/phase snapshot.
func (s *Session) OnBoardSnapshot(snap *game.Snapshot) Effects {
	return s.apply(snap, false)
}

// OnTimer applies a polled timer/pause snapshot.
func (s *Session) OnTimer(t *clock.Tick) Effects {
	if t == nil {
		return Effects{}
	}
	if t.HasVersion {
		if s.timerVersioned && t.Version < s.timerVersion {
			s.log.Debug("sync_timer_stale", zap.Int64("version", t.Version), zap.Int64("applied", s.timerVersion))
			return Effects{}
		}
		s.timerVersion, s.timerVersioned = t.Version, true
	}
	if t.Turn.Valid() {
		s.turn = t.Turn
	}
	prev := s.timer
	prev.IsMyTurn = s.MyTurn()
	s.timer = clock.Relative(*t, s.seat, prev)
	s.countdown.Apply(s.timer, s.now())

	snap := s.timer
	eff := Effects{Timer: &snap, Redraw: true}
	if t.Finished {
		eff.merge(s.end(t.Winner, t.Reason))
	}
	return eff
}

// apply replaces the board wholesale and runs phase transitions. Snapshots
// older than the applied version are dropped when both carry one.
func (s *Session) apply(snap *game.Snapshot, fromAction bool) Effects {
	if snap == nil {
		return Effects{}
	}
	if snap.HasVersion {
		if s.boardVersioned && snap.Version < s.boardVersion {
			s.log.Debug("sync_board_stale",
				zap.Int64("version", snap.Version),
				zap.Int64("applied", s.boardVersion),
				zap.Bool("from_action", fromAction))
			return Effects{}
		}
		s.boardVersion, s.boardVersioned = snap.Version, true
	}

	var eff Effects
	next := snap.Board
	if next == nil {
		// field missing: keep the board we have
		next = s.board
	}
	disqualifying := fromAction ||
		!next.Equal(s.board) ||
		(snap.Phase != game.PhaseUnknown && snap.Phase != s.phase) ||
		(snap.Turn.Valid() && snap.Turn != s.turn)

	s.board = next
	if snap.Turn.Valid() {
		s.turn = snap.Turn
	}
	if snap.Phase != game.PhaseUnknown {
		s.phase = snap.Phase
	}
	if disqualifying && s.sel.Mode != selection.Idle {
		s.sel, _ = selection.Step(s.env(), s.sel, selection.Reset{})
		s.log.Debug("selection_reset", zap.String("game_id", s.gameID), zap.Bool("from_action", fromAction))
	}
	eff.Redraw = true

	switch {
	case s.view == ViewSetup && s.phase == game.PhaseSetup:
		if snap.SetupCounts != nil {
			s.setup.Reconcile(snap.SetupCounts)
		}
		if !snap.SetupDeadline.IsZero() && !snap.SetupDeadline.Equal(s.setup.Deadline()) {
			s.setup.SetDeadline(snap.SetupDeadline)
			eff.ArmDeadline = s.setup.Deadline()
		}
	case s.view == ViewSetup && (s.phase == game.PhasePlay || s.phase == game.PhaseFinished):
		s.setup.Activate()
		s.view = ViewPlay
		eff.CancelDeadline = true
		eff.notice(Info, "phase.started", map[string]any{"MyTurn": s.MyTurn()})
		s.log.Info("sync_phase_play", zap.String("game_id", s.gameID), zap.Int("turn", int(s.turn)))
	}

	if snap.Finished() {
		eff.merge(s.end(snap.Winner, snap.WinReason))
	}
	s.log.Debug("sync_board_applied",
		zap.String("game_id", s.gameID),
		zap.Int("pieces", s.board.Len()),
		zap.String("phase", string(s.phase)),
		zap.Bool("from_action", fromAction))
	return eff
}

