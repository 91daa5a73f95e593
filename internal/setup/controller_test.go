package setup

import (
	"errors"
	"testing"
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
)

var t0 = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

func newController(seat board.Seat) *Controller {
	return New(seat, time.Time{}, t0, 15*time.Minute)
}

func TestPlacementRules(t *testing.T) {
	c := newController(board.Seat1)
	empty := board.Empty()

	if _, err := c.CheckPlace(empty, board.Coord{X: 0, Y: 12}); !errors.Is(err, ErrNoKindSelected) {
		t.Fatalf("expected ErrNoKindSelected, got %v", err)
	}
	if err := c.Select(fleet.TN); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := c.CheckPlace(empty, board.Coord{X: 0, Y: 9}); !errors.Is(err, ErrOutsideZone) {
		t.Fatalf("row 9 is outside seat 1's zone: %v", err)
	}
	occupied := board.New(map[board.Coord]board.Piece{{X: 0, Y: 12}: {Kind: fleet.KR, Owner: board.Seat1, Alive: true}})
	if _, err := c.CheckPlace(occupied, board.Coord{X: 0, Y: 12}); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
	k, err := c.CheckPlace(empty, board.Coord{X: 0, Y: 14})
	if err != nil || k != fleet.TN {
		t.Fatalf("CheckPlace: %v %v", k, err)
	}
	c.Placed(k)
	if c.RemainingOf(fleet.TN) != 0 || c.Selected() != "" {
		t.Fatalf("count/selection after placing the only TN: %d %q", c.RemainingOf(fleet.TN), c.Selected())
	}
	if err := c.Select(fleet.TN); !errors.Is(err, ErrKindDepleted) {
		t.Fatalf("expected ErrKindDepleted, got %v", err)
	}
	if err := c.Select("ZZ"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestZoneIsSeatFixed(t *testing.T) {
	c := newController(board.Seat2)
	if err := c.Select(fleet.KR); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := c.CheckPlace(board.Empty(), board.Coord{X: 3, Y: 12}); !errors.Is(err, ErrOutsideZone) {
		t.Fatalf("seat 2 cannot place on row 12: %v", err)
	}
	if _, err := c.CheckPlace(board.Empty(), board.Coord{X: 3, Y: 2}); err != nil {
		t.Fatalf("seat 2 places on row 2: %v", err)
	}
}

func TestSubmitRequiresEmptyCounts(t *testing.T) {
	c := newController(board.Seat1)
	if err := c.CheckSubmit(); !errors.Is(err, ErrSetupIncomplete) {
		t.Fatalf("expected ErrSetupIncomplete, got %v", err)
	}
	for _, s := range fleet.All() {
		for i := 0; i < s.InitialCount; i++ {
			c.Placed(s.Kind)
		}
	}
	c.Placed(fleet.KR) // extra accept must not go negative
	if c.RemainingOf(fleet.KR) != 0 || c.Left() != 0 {
		t.Fatalf("counts: %v", c.Remaining())
	}
	if err := c.CheckSubmit(); err != nil {
		t.Fatalf("CheckSubmit: %v", err)
	}
	c.SubmitAccepted()
	if c.Stage() != Waiting {
		t.Fatalf("stage after submit: %v", c.Stage())
	}
	if err := c.CheckSubmit(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("double submit: %v", err)
	}
	c.Activate()
	if c.Stage() != Active {
		t.Fatalf("stage: %v", c.Stage())
	}
}

func TestClearAutoAndReconcile(t *testing.T) {
	c := newController(board.Seat1)
	c.Placed(fleet.BDK)
	c.AutoCompleted()
	if !c.Complete() {
		t.Fatalf("auto must zero counts")
	}
	c.Cleared()
	if c.Left() != fleet.TotalPieces() {
		t.Fatalf("clear must restore %d pieces, got %d", fleet.TotalPieces(), c.Left())
	}
	c.Reconcile(map[fleet.Kind]int{fleet.KR: 2, "XX": 3, fleet.F: -1})
	if c.RemainingOf(fleet.KR) != 2 || c.RemainingOf(fleet.F) != 6 {
		t.Fatalf("reconcile: %v", c.Remaining())
	}
}

func TestDeadline(t *testing.T) {
	c := newController(board.Seat1)
	if c.Deadline() != t0.Add(15*time.Minute) {
		t.Fatalf("default deadline: %v", c.Deadline())
	}
	if a := c.OnDeadline(t0.Add(time.Minute)); a != DeadlineNone {
		t.Fatalf("early fire: %v", a)
	}
	if a := c.OnDeadline(t0.Add(15 * time.Minute)); a != DeadlineAutoThenSubmit {
		t.Fatalf("incomplete at deadline: %v", a)
	}
	c.AutoCompleted()
	if a := c.OnDeadline(t0.Add(16 * time.Minute)); a != DeadlineSubmit {
		t.Fatalf("complete at deadline: %v", a)
	}
	c.SubmitAccepted()
	if a := c.OnDeadline(t0.Add(16 * time.Minute)); a != DeadlineNone {
		t.Fatalf("submitted: %v", a)
	}

	server := t0.Add(5 * time.Minute)
	c2 := New(board.Seat2, server, t0, 15*time.Minute)
	if !c2.Deadline().Equal(server) {
		t.Fatalf("server deadline ignored")
	}
}
