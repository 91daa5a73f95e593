package gameapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/pkg/wire"
)

func pair(c board.Coord) wire.Pair { return wire.Pair{c.X, c.Y} }

func coord(p wire.Pair) board.Coord { return board.Coord{X: p[0], Y: p[1]} }

func coords(ps []wire.Pair) []board.Coord {
	out := make([]board.Coord, 0, len(ps))
	for _, p := range ps {
		out = append(out, coord(p))
	}
	return out
}

// snapshotOf builds a domain snapshot from a reply. gameID and seat fill in
// what the reply itself does not say.
func snapshotOf(r *wire.Reply, gameID string, seat board.Seat) *game.Snapshot {
	if r == nil {
		return nil
	}
	snap := &game.Snapshot{GameID: gameID, Seat: seat}
	switch {
	case r.ID != "":
		snap.GameID = r.ID
	case r.Game != "":
		snap.GameID = r.Game
	}
	if s := board.Seat(r.MyPlayer); s.Valid() {
		snap.Seat = s
	}
	snap.Phase = game.ParsePhase(r.Status)
	if t := board.Seat(r.Turn); t.Valid() {
		snap.Turn = t
	}

	st := r.State
	if st == nil {
		if snap.Phase == game.PhaseUnknown && snap.Turn == 0 {
			return nil
		}
		return snap
	}
	if snap.Phase == game.PhaseUnknown {
		snap.Phase = game.ParsePhase(st.Phase)
	}
	if t := board.Seat(st.Turn); t.Valid() {
		snap.Turn = t
	}
	if st.Board != nil {
		snap.Board = boardOf(st.Board)
	}
	snap.SetupCounts = remainingCounts(st.SetupCounts, snap.Seat)
	if st.SetupDeadlineAt != "" {
		if t, err := time.Parse(time.RFC3339, st.SetupDeadlineAt); err == nil {
			snap.SetupDeadline = t
		}
	}
	if st.Winner != nil {
		snap.Winner = board.Seat(*st.Winner)
		snap.WinReason = st.WinReason
	}
	if st.Version != nil {
		snap.Version = *st.Version
		snap.HasVersion = true
	}
	return snap
}

// boardOf decodes cells that are either one piece object or a list of them.
// Undecodable cells and keys are skipped.
func boardOf(raw map[string]json.RawMessage) *board.Board {
	cells := make(map[board.Coord]board.Piece, len(raw))
	for key, v := range raw {
		at, err := board.ParseCoord(key)
		if err != nil {
			continue
		}
		p, ok := cellPiece(v)
		if !ok {
			continue
		}
		cells[at] = p
	}
	return board.New(cells)
}

func cellPiece(v json.RawMessage) (board.Piece, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return board.Piece{}, false
	}
	var list []wire.PieceCell
	if v[0] == '[' {
		if err := json.Unmarshal(v, &list); err != nil {
			return board.Piece{}, false
		}
	} else {
		var one wire.PieceCell
		if err := json.Unmarshal(v, &one); err != nil {
			return board.Piece{}, false
		}
		list = []wire.PieceCell{one}
	}
	for _, pc := range list {
		if pc.Alive != nil && !*pc.Alive {
			continue
		}
		owner := board.Seat(pc.Owner)
		if !owner.Valid() {
			continue
		}
		kind, ok := fleet.ParseKind(pc.Kind)
		if !ok {
			kind = fleet.Unknown
		}
		return board.Piece{Kind: kind, Owner: owner, Alive: true}, true
	}
	return board.Piece{}, false
}

// remainingCounts turns the server's per-seat placed tallies into what the
// local seat still has to place.
func remainingCounts(placed map[string]map[string]int, seat board.Seat) map[fleet.Kind]int {
	if placed == nil {
		return nil
	}
	mine, ok := placed[strconv.Itoa(int(seat))]
	if !ok {
		return nil
	}
	out := fleet.InitialCounts()
	for code, n := range mine {
		k, ok := fleet.ParseKind(code)
		if !ok {
			continue
		}
		left := out[k] - n
		if left < 0 {
			left = 0
		}
		out[k] = left
	}
	return out
}

func tickOf(t *wire.Tick) *clock.Tick {
	if t == nil {
		return nil
	}
	out := &clock.Tick{
		Turn:           board.Seat(t.Turn),
		Paused:         t.Paused,
		PauseLeft:      t.PauseLeft,
		PauseInitiator: board.Seat(t.PauseInitiator),
		Finished:       t.Finished,
		Reason:         t.Reason,
	}
	if t.TurnLeft != nil {
		out.TurnLeft = *t.TurnLeft
		out.HasTurnLeft = true
	}
	if t.BankMsP1 != nil {
		out.BankMs[board.Seat1] = *t.BankMsP1
		out.HasBank[board.Seat1] = true
	}
	if t.BankMsP2 != nil {
		out.BankMs[board.Seat2] = *t.BankMsP2
		out.HasBank[board.Seat2] = true
	}
	if t.WinnerPlayer != nil {
		out.Winner = board.Seat(*t.WinnerPlayer)
	}
	if t.Version != nil {
		out.Version = *t.Version
		out.HasVersion = true
	}
	return out
}

func optionsOf(o *wire.SpecialOptions) *game.SpecialOptions {
	out := &game.SpecialOptions{}
	if o == nil {
		return out
	}
	for _, t := range o.Torpedo {
		opt := game.TorpedoOption{Launcher: coord(t.TK), Torpedo: coord(t.Torpedo)}
		for _, d := range t.Directions {
			opt.Directions = append(opt.Directions, board.Dir{DX: d[0], DY: d[1]})
		}
		out.Torpedo = append(out.Torpedo, opt)
	}
	for _, a := range o.Air {
		dir := 1
		if a.Direction < 0 {
			dir = -1
		}
		out.Air = append(out.Air, game.AirOption{Carrier: coord(a.Carrier), Plane: coord(a.Plane), Direction: dir})
	}
	return out
}

func outcomeOf(o *wire.Outcome) *game.Outcome {
	if o == nil {
		return nil
	}
	kind := game.ParseOutcome(o.Event)
	if o.Exchange && kind == game.OutcomeCombat {
		kind = game.OutcomeDraw
	}
	return &game.Outcome{
		Kind:      kind,
		Event:     o.Event,
		Destroyed: o.Captures,
		Lost:      o.CapturesSelf,
		ExtraTurn: o.ExtraTurn,
	}
}

func moveData(m game.MoveRequest) wire.Move {
	out := wire.Move{Src: pair(m.From), Dst: pair(m.To), Followers: []wire.Quad{}}
	for _, f := range m.Followers {
		out.Followers = append(out.Followers, wire.Quad{f.From.X, f.From.Y, f.To.X, f.To.Y})
	}
	return out
}

// killedOf folds the tally by kind; unknown kinds and non-positive counts
// are dropped.
func killedOf(k *wire.Killed) map[fleet.Kind]int {
	out := make(map[fleet.Kind]int)
	if k == nil {
		return out
	}
	for _, it := range k.Items {
		kind, ok := fleet.ParseKind(it.Piece)
		if !ok || it.Killed <= 0 {
			continue
		}
		out[kind] += it.Killed
	}
	return out
}
