package session

import (
	"errors"
	"testing"
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
	"github.com/park285/seabattle-client/internal/setup"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return t0 }

func piece(seat board.Seat, k fleet.Kind) board.Piece {
	return board.Piece{Kind: k, Owner: seat, Alive: true}
}

func playSnapshot(seat board.Seat, cells map[board.Coord]board.Piece) *game.Snapshot {
	return &game.Snapshot{
		GameID: "g-1",
		Seat:   seat,
		Phase:  game.PhasePlay,
		Turn:   seat,
		Board:  board.New(cells),
	}
}

func kinds(reqs []Request) []RequestKind {
	out := make([]RequestKind, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Kind)
	}
	return out
}

func findRequest(t *testing.T, reqs []Request, k RequestKind) Request {
	t.Helper()
	for _, r := range reqs {
		if r.Kind == k {
			return r
		}
	}
	t.Fatalf("no %v request in %v", k, kinds(reqs))
	return Request{}
}

func hasNotice(eff Effects, key string) bool {
	for _, n := range eff.Notices {
		if n.Key == key {
			return true
		}
	}
	return false
}

func TestSeatTwoClickMapsToServerFrame(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat2, map[board.Coord]board.Piece{
		{X: 3, Y: 12}: piece(board.Seat2, fleet.KR),
	}), WithClock(fixedNow))

	eff, err := s.Click(board.Coord{X: 3, Y: 2})
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	sel := s.Selection()
	if sel.Mode != selection.PieceSelected || sel.Origin != (board.Coord{X: 3, Y: 12}) {
		t.Fatalf("selection: %+v", sel)
	}
	if r := findRequest(t, eff.Requests, ReqGroupCandidates); r.At != (board.Coord{X: 3, Y: 12}) {
		t.Fatalf("query origin in server frame: %v", r.At)
	}
	findRequest(t, eff.Requests, ReqSpecialAttacks)
}

func TestImmobileClickIssuesNothing(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, map[board.Coord]board.Piece{
		{X: 4, Y: 14}: piece(board.Seat1, fleet.SM),
	}))
	eff, err := s.Click(board.Coord{X: 4, Y: 14})
	if !errors.Is(err, selection.ErrImmobile) {
		t.Fatalf("expected ErrImmobile, got %v", err)
	}
	if len(eff.Requests) != 0 {
		t.Fatalf("no request expected, got %v", kinds(eff.Requests))
	}
	if s.Selection().Mode != selection.Idle {
		t.Fatalf("no transition expected")
	}
	if !hasNotice(eff, "error.immobile") || Classify(err) != UserInputRejected {
		t.Fatalf("warning expected: %+v", eff.Notices)
	}
}

func TestMineExplosionOutcome(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, map[board.Coord]board.Piece{
		{X: 5, Y: 5}: piece(board.Seat1, fleet.KR),
		{X: 5, Y: 4}: piece(board.Seat2, fleet.Unknown),
	}))
	if _, err := s.Click(board.Coord{X: 5, Y: 5}); err != nil {
		t.Fatalf("select: %v", err)
	}
	eff, err := s.Click(board.Coord{X: 5, Y: 4})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	mv := findRequest(t, eff.Requests, ReqMove)
	if mv.Move.From != (board.Coord{X: 5, Y: 5}) || mv.Move.To != (board.Coord{X: 5, Y: 4}) {
		t.Fatalf("move request: %+v", mv.Move)
	}

	after := playSnapshot(board.Seat1, map[board.Coord]board.Piece{})
	after.Turn = board.Seat2
	out := s.OnResult(Result{Req: mv, Action: &game.ActionResult{
		Snapshot: after,
		Outcome:  &game.Outcome{Kind: game.ParseOutcome("mine_boom"), Event: "mine_boom", Lost: []string{"KR"}},
	}})
	if s.Selection().Mode != selection.Idle {
		t.Fatalf("selection must clear")
	}
	if s.Board().Len() != 0 {
		t.Fatalf("board must come from the response")
	}
	if !hasNotice(out, "outcome.mine_explosion") || hasNotice(out, "outcome.other") {
		t.Fatalf("mine notice expected: %+v", out.Notices)
	}
}

func TestDisqualifyingSnapshotResetsSelection(t *testing.T) {
	cells := map[board.Coord]board.Piece{{X: 5, Y: 5}: piece(board.Seat1, fleet.KR)}
	s, _ := Open(playSnapshot(board.Seat1, cells))
	if _, err := s.Click(board.Coord{X: 5, Y: 5}); err != nil {
		t.Fatalf("select: %v", err)
	}
	s.OnBoardSnapshot(playSnapshot(board.Seat1, cells))
	if s.Selection().Mode != selection.PieceSelected {
		t.Fatalf("identical poll must keep the selection")
	}
	moved := map[board.Coord]board.Piece{
		{X: 5, Y: 5}: piece(board.Seat1, fleet.KR),
		{X: 1, Y: 1}: piece(board.Seat2, fleet.Unknown),
	}
	s.OnBoardSnapshot(playSnapshot(board.Seat1, moved))
	if s.Selection().Mode != selection.Idle {
		t.Fatalf("changed board must reset selection")
	}
	if s.Board().Len() != 2 {
		t.Fatalf("board not replaced")
	}

	if _, err := s.Click(board.Coord{X: 5, Y: 5}); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	passed := playSnapshot(board.Seat1, moved)
	passed.Turn = board.Seat2
	s.OnBoardSnapshot(passed)
	if s.Selection().Mode != selection.Idle {
		t.Fatalf("turn change on an unchanged board must reset selection")
	}
}

func TestVersionedSnapshotsDropStale(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, nil))
	newer := playSnapshot(board.Seat1, map[board.Coord]board.Piece{{X: 2, Y: 2}: piece(board.Seat1, fleet.F)})
	newer.Version, newer.HasVersion = 7, true
	s.OnBoardSnapshot(newer)
	older := playSnapshot(board.Seat1, nil)
	older.Version, older.HasVersion = 6, true
	s.OnBoardSnapshot(older)
	if s.Board().Len() != 1 {
		t.Fatalf("stale snapshot overwrote newer state")
	}
	unversioned := playSnapshot(board.Seat1, nil)
	s.OnBoardSnapshot(unversioned)
	if s.Board().Len() != 0 {
		t.Fatalf("unversioned snapshot applies in arrival order")
	}
}

func TestTurnGate(t *testing.T) {
	snap := playSnapshot(board.Seat1, map[board.Coord]board.Piece{{X: 5, Y: 5}: piece(board.Seat1, fleet.KR)})
	snap.Turn = board.Seat2
	s, _ := Open(snap)
	eff, err := s.Click(board.Coord{X: 5, Y: 5})
	if !errors.Is(err, ErrNotYourTurn) || len(eff.Requests) != 0 {
		t.Fatalf("expected turn gate, got %v %v", err, kinds(eff.Requests))
	}
	s.OnTimer(&clock.Tick{Turn: board.Seat1, TurnLeft: 30, HasTurnLeft: true})
	if _, err := s.Click(board.Coord{X: 5, Y: 5}); err != nil {
		t.Fatalf("my turn via timer: %v", err)
	}
}

func TestTimerWithoutTurnKeepsHUDInStep(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, nil), WithClock(fixedNow))
	s.OnTimer(&clock.Tick{TurnLeft: 15, HasTurnLeft: true})
	if d := s.HUD(t0); !s.MyTurn() || d.Turn != clock.TurnCounting || d.TurnText != "15s" {
		t.Fatalf("first tick without turn should follow the session turn: my=%v hud=%+v", s.MyTurn(), d)
	}

	s.OnTimer(&clock.Tick{Turn: board.Seat1, TurnLeft: 20, HasTurnLeft: true})
	s.OnTimer(&clock.Tick{})
	if d := s.HUD(t0); !s.MyTurn() || d.Turn != clock.TurnCounting || d.TurnText != "20s" {
		t.Fatalf("tick without turn must not flip the HUD to waiting: my=%v hud=%+v", s.MyTurn(), d)
	}
}

func TestSetupFlow(t *testing.T) {
	s, open := Open(&game.Snapshot{GameID: "g-2", Seat: board.Seat1, Phase: game.PhaseSetup, Board: board.Empty()},
		WithClock(fixedNow), WithSetupDuration(15*time.Minute))
	if s.View() != ViewSetup || !open.ArmDeadline.Equal(t0.Add(15*time.Minute)) {
		t.Fatalf("open: view=%v deadline=%v", s.View(), open.ArmDeadline)
	}

	if _, err := s.Click(board.Coord{X: 0, Y: 12}); !errors.Is(err, setup.ErrNoKindSelected) {
		t.Fatalf("expected ErrNoKindSelected, got %v", err)
	}
	if _, err := s.SelectKind(fleet.KRPL); err != nil {
		t.Fatalf("SelectKind: %v", err)
	}
	if _, err := s.Click(board.Coord{X: 0, Y: 3}); !errors.Is(err, setup.ErrOutsideZone) {
		t.Fatalf("expected ErrOutsideZone, got %v", err)
	}
	eff, err := s.Click(board.Coord{X: 0, Y: 12})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	place := findRequest(t, eff.Requests, ReqPlace)
	if place.Piece != fleet.KRPL || place.At != (board.Coord{X: 0, Y: 12}) {
		t.Fatalf("place request: %+v", place)
	}
	placed := &game.Snapshot{Phase: game.PhaseSetup, Board: board.New(map[board.Coord]board.Piece{
		{X: 0, Y: 12}: piece(board.Seat1, fleet.KRPL),
	})}
	s.OnResult(Result{Req: place, Snapshot: placed})
	if s.Setup().RemainingOf(fleet.KRPL) != 0 {
		t.Fatalf("count must decrement on accept")
	}
	if _, err := s.SelectKind(fleet.KRPL); !errors.Is(err, setup.ErrKindDepleted) {
		t.Fatalf("expected ErrKindDepleted, got %v", err)
	}

	if _, err := s.SubmitSetup(); !errors.Is(err, setup.ErrSetupIncomplete) {
		t.Fatalf("expected ErrSetupIncomplete, got %v", err)
	}
	eff, _ = s.AutoSetup()
	auto := findRequest(t, eff.Requests, ReqAuto)
	s.OnResult(Result{Req: auto, Snapshot: &game.Snapshot{Phase: game.PhaseSetup, Board: board.Empty()}})
	if !s.Setup().Complete() {
		t.Fatalf("auto must zero counts")
	}
	eff, err = s.SubmitSetup()
	if err != nil {
		t.Fatalf("SubmitSetup: %v", err)
	}
	out := s.OnResult(Result{Req: findRequest(t, eff.Requests, ReqSubmit), Submit: &game.SubmitResult{Phase: game.PhaseSetup}})
	if !hasNotice(out, "setup.waiting") || s.View() != ViewSetup {
		t.Fatalf("waiting state expected: %+v", out.Notices)
	}

	started := s.OnBoardSnapshot(&game.Snapshot{Phase: game.PhasePlay, Turn: board.Seat1, Board: board.Empty()})
	if s.View() != ViewPlay || !started.CancelDeadline || s.Setup().Stage() != setup.Active {
		t.Fatalf("phase change: view=%v %+v", s.View(), started)
	}
}

func TestDeadlineForcesAutoThenSubmit(t *testing.T) {
	s, _ := Open(&game.Snapshot{GameID: "g-3", Seat: board.Seat2, Phase: game.PhaseSetup, Board: board.Empty()},
		WithClock(fixedNow), WithSetupDuration(time.Minute))
	if eff := s.OnDeadline(t0.Add(30 * time.Second)); len(eff.Requests) != 0 {
		t.Fatalf("early deadline must not act")
	}
	eff := s.OnDeadline(t0.Add(time.Minute))
	auto := findRequest(t, eff.Requests, ReqAuto)
	if !auto.ThenSubmit {
		t.Fatalf("auto must chain submit")
	}
	next := s.OnResult(Result{Req: auto, Snapshot: &game.Snapshot{Phase: game.PhaseSetup, Board: board.Empty()}})
	findRequest(t, next.Requests, ReqSubmit)
}

func TestAdvisoryFailureDegrades(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, map[board.Coord]board.Piece{{X: 5, Y: 5}: piece(board.Seat1, fleet.KR)}))
	eff, _ := s.Click(board.Coord{X: 5, Y: 5})
	q := findRequest(t, eff.Requests, ReqGroupCandidates)
	out := s.OnResult(Result{Req: q, Err: errors.New("dial tcp: timeout")})
	if len(out.Notices) != 0 {
		t.Fatalf("advisory failure must stay silent to the user: %+v", out.Notices)
	}
	if s.DegradedQueries() != 1 {
		t.Fatalf("failure must be counted")
	}
	if s.Selection().Mode != selection.PieceSelected {
		t.Fatalf("selection must survive a failed query")
	}
}

type rejection struct{ msg string }

func (r rejection) Error() string         { return "rejected: " + r.msg }
func (r rejection) ServerMessage() string { return r.msg }
func (r rejection) Is(target error) bool  { return target == game.ErrRejected }

func TestRejectedActionSurfacesMessage(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, map[board.Coord]board.Piece{{X: 5, Y: 5}: piece(board.Seat1, fleet.KR)}))
	s.Click(board.Coord{X: 5, Y: 5})
	eff, _ := s.Click(board.Coord{X: 6, Y: 5})
	mv := findRequest(t, eff.Requests, ReqMove)
	out := s.OnResult(Result{Req: mv, Err: rejection{msg: "illegal move"}})
	if len(out.Notices) != 1 || out.Notices[0].Key != "error.rejected" || out.Notices[0].Data["Message"] != "illegal move" {
		t.Fatalf("rejection notice: %+v", out.Notices)
	}
	if s.Selection().Mode != selection.Idle || s.Ended() {
		t.Fatalf("rejection resets to Idle and keeps the session")
	}
}

func TestGameEndIsIdempotent(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, nil))
	won := playSnapshot(board.Seat1, nil)
	won.Winner = board.Seat1
	first := s.OnBoardSnapshot(won)
	if !first.Ended || !hasNotice(first, "game.won") {
		t.Fatalf("first end: %+v", first)
	}
	again := s.OnTimer(&clock.Tick{Turn: board.Seat1, Finished: true, Winner: board.Seat1})
	if again.Ended {
		t.Fatalf("game end must fire once")
	}
	if _, err := s.Click(board.Coord{X: 1, Y: 1}); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("clicks after end: %v", err)
	}
}

func TestPauseRules(t *testing.T) {
	s, _ := Open(playSnapshot(board.Seat1, nil), WithClock(fixedNow))
	s.OnTimer(&clock.Tick{Turn: board.Seat1, Paused: true, PauseLeft: 45, PauseInitiator: board.Seat2})
	if hud := s.HUD(t0); hud.Overlay == nil || hud.Overlay.CanCancel {
		t.Fatalf("overlay without cancel expected: %+v", hud.Overlay)
	}
	if _, err := s.CancelPause(); !errors.Is(err, ErrNotPauseInitiator) {
		t.Fatalf("expected ErrNotPauseInitiator, got %v", err)
	}

	eff, err := s.Pause(game.PauseShort)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	s.OnResult(Result{Req: findRequest(t, eff.Requests, ReqPause)})
	if !s.Pauses().Short {
		t.Fatalf("short pause must be marked used")
	}
	if _, err := s.Pause(game.PauseShort); !errors.Is(err, ErrPauseUsed) {
		t.Fatalf("expected ErrPauseUsed, got %v", err)
	}
	if _, err := s.Pause(game.PauseLong); err != nil {
		t.Fatalf("long pause still available: %v", err)
	}
}
