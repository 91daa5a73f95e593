package gameapi

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/pkg/wire"
)

type Mode string

const (
	ModeHTTP Mode = "http"
	ModeWS   Mode = "ws"
	ModeAuto Mode = "auto"
)

func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeHTTP, ModeWS, ModeAuto:
		return m, true
	case "":
		return ModeHTTP, true
	default:
		return ModeHTTP, false
	}
}

type transport interface {
	Send(ctx context.Context, gameID string, env wire.Envelope) (*wire.Reply, error)
}

// Remote implements game.Remote. Reads always go over HTTP; framed requests
// use the transport picked by mode.
type Remote struct {
	http   *Client
	ws     *WSClient
	tx     transport
	logger *zap.Logger

	seatM sync.Mutex
	seats map[string]board.Seat
}

var _ game.Remote = (*Remote)(nil)

// NewRemote creates a Remote based on mode. When mode is auto, WS is used
// while it is connected (or not yet tried); a request that never reached
// the socket falls back to HTTP once.
func NewRemote(mode Mode, c *Client, ws *WSClient, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Remote{http: c, ws: ws, logger: logger, seats: make(map[string]board.Seat)}
	switch {
	case mode == ModeWS && ws != nil:
		r.tx = ws
	case mode == ModeAuto && ws != nil:
		r.tx = &autoTransport{ws: ws, http: c, logger: logger}
	default:
		r.tx = c
		r.ws = nil
	}
	return r
}

// autoTransport prefers WS, with single fallback to HTTP.
type autoTransport struct {
	ws     *WSClient
	http   *Client
	logger *zap.Logger
}

func (a *autoTransport) Send(ctx context.Context, gameID string, env wire.Envelope) (*wire.Reply, error) {
	if a.ws.ConnectedTo(gameID) || a.ws.State() == WSStateDisconnected {
		r, err := a.ws.Send(ctx, gameID, env)
		if err == nil || !isNotSent(err) {
			return r, err
		}
		a.logger.Warn("transport_fallback", zap.String("type", env.Type), zap.String("game_id", gameID), zap.Error(err))
	}
	if a.http == nil {
		return nil, errNoTransport
	}
	return a.http.Send(ctx, gameID, env)
}

func (r *Remote) rememberSeat(gameID string, s board.Seat) {
	if gameID == "" || !s.Valid() {
		return
	}
	r.seatM.Lock()
	r.seats[gameID] = s
	r.seatM.Unlock()
}

func (r *Remote) seatOf(gameID string) board.Seat {
	r.seatM.Lock()
	defer r.seatM.Unlock()
	return r.seats[gameID]
}

func (r *Remote) snapshot(reply *wire.Reply, gameID string) *game.Snapshot {
	snap := snapshotOf(reply, gameID, r.seatOf(gameID))
	if snap != nil {
		r.rememberSeat(snap.GameID, snap.Seat)
	}
	return snap
}

func (r *Remote) send(ctx context.Context, gameID, typ string, data any) (*wire.Reply, error) {
	if r.tx == nil {
		return nil, errNoTransport
	}
	if data == nil {
		data = wire.Empty{}
	}
	return r.tx.Send(ctx, gameID, wire.Envelope{Type: typ, Data: data})
}

func (r *Remote) OpenByCode(ctx context.Context, code string) (*game.Snapshot, error) {
	reply, err := r.http.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	snap := r.snapshot(reply, "")
	if snap == nil || snap.GameID == "" {
		return nil, fmt.Errorf("by_code %q: reply without game id", code)
	}
	return snap, nil
}

func (r *Remote) FetchState(ctx context.Context, gameID string) (*game.Snapshot, error) {
	reply, err := r.http.State(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return r.snapshot(reply, gameID), nil
}

// Resume reopens a known game by id. seat stands in until the server
// reports one.
func (r *Remote) Resume(ctx context.Context, gameID string, seat board.Seat) (*game.Snapshot, error) {
	r.rememberSeat(gameID, seat)
	snap, err := r.FetchState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("state %q: empty reply", gameID)
	}
	return snap, nil
}

func (r *Remote) FetchTimer(ctx context.Context, gameID string) (*clock.Tick, error) {
	t, err := r.http.Timer(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return tickOf(t), nil
}

// Killed returns the opponent's losses per kind. The tally is only served
// over HTTP.
func (r *Remote) Killed(ctx context.Context, gameID string) (map[fleet.Kind]int, error) {
	k, err := r.http.Killed(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return killedOf(k), nil
}

func (r *Remote) PlacePiece(ctx context.Context, gameID string, kind string, at board.Coord) (*game.Snapshot, error) {
	reply, err := r.send(ctx, gameID, wire.TypeSetupPiece, wire.SetupPiece{Coord: pair(at), Kind: kind})
	if err != nil {
		return nil, err
	}
	return r.snapshot(reply, gameID), nil
}

func (r *Remote) ClearSetup(ctx context.Context, gameID string) (*game.Snapshot, error) {
	reply, err := r.send(ctx, gameID, wire.TypeClearSetup, nil)
	if err != nil {
		return nil, err
	}
	return r.snapshot(reply, gameID), nil
}

func (r *Remote) AutoSetup(ctx context.Context, gameID string) (*game.Snapshot, error) {
	reply, err := r.send(ctx, gameID, wire.TypeAutoSetup, nil)
	if err != nil {
		return nil, err
	}
	return r.snapshot(reply, gameID), nil
}

func (r *Remote) SubmitSetup(ctx context.Context, gameID string) (*game.SubmitResult, error) {
	reply, err := r.send(ctx, gameID, wire.TypeSubmitSetup, nil)
	if err != nil {
		return nil, err
	}
	snap := r.snapshot(reply, gameID)
	res := &game.SubmitResult{Snapshot: snap}
	if snap != nil {
		res.Phase = snap.Phase
		res.Turn = snap.Turn
	}
	return res, nil
}

func (r *Remote) GroupCandidates(ctx context.Context, gameID string, origin board.Coord) ([]board.Coord, error) {
	reply, err := r.send(ctx, gameID, wire.TypeGroupCandidates, wire.CoordQuery{Coord: pair(origin)})
	if err != nil {
		return nil, err
	}
	return coords(reply.Candidates), nil
}

func (r *Remote) CarriedPieces(ctx context.Context, gameID string, origin board.Coord) ([]board.Coord, error) {
	reply, err := r.send(ctx, gameID, wire.TypeCarried, wire.CoordQuery{Coord: pair(origin)})
	if err != nil {
		return nil, err
	}
	return coords(reply.Carried), nil
}

func (r *Remote) SpecialAttacks(ctx context.Context, gameID string) (*game.SpecialOptions, error) {
	reply, err := r.send(ctx, gameID, wire.TypeSpecialAttacks, nil)
	if err != nil {
		return nil, err
	}
	return optionsOf(reply.Options), nil
}

func (r *Remote) action(ctx context.Context, gameID, typ string, data any) (*game.ActionResult, error) {
	reply, err := r.send(ctx, gameID, typ, data)
	if err != nil {
		return nil, err
	}
	return &game.ActionResult{Snapshot: r.snapshot(reply, gameID), Outcome: outcomeOf(reply.Result)}, nil
}

func (r *Remote) Move(ctx context.Context, gameID string, req game.MoveRequest) (*game.ActionResult, error) {
	return r.action(ctx, gameID, wire.TypeMove, moveData(req))
}

func (r *Remote) Torpedo(ctx context.Context, gameID string, req game.TorpedoRequest) (*game.ActionResult, error) {
	return r.action(ctx, gameID, wire.TypeTorpedo, wire.Torpedo{
		Torpedo:   pair(req.Torpedo),
		TK:        pair(req.Launcher),
		Direction: wire.Pair{req.Dir.DX, req.Dir.DY},
	})
}

func (r *Remote) Air(ctx context.Context, gameID string, req game.AirRequest) (*game.ActionResult, error) {
	return r.action(ctx, gameID, wire.TypeAir, wire.Air{Carrier: pair(req.Carrier), Plane: pair(req.Plane)})
}

func (r *Remote) Pause(ctx context.Context, gameID string, kind game.PauseKind) error {
	_, err := r.send(ctx, gameID, wire.TypePause, wire.Pause{Type: string(kind)})
	return err
}

func (r *Remote) CancelPause(ctx context.Context, gameID string) error {
	_, err := r.send(ctx, gameID, wire.TypeCancelPause, nil)
	return err
}

func (r *Remote) Resign(ctx context.Context, gameID string) (*game.ActionResult, error) {
	return r.action(ctx, gameID, wire.TypeResign, nil)
}

func (r *Remote) CancelInvite(ctx context.Context, token string) error {
	return r.http.CancelInvite(ctx, token)
}

// OnPush forwards server-initiated state and tick frames, converted to the
// local seat's view. Without a websocket it never fires.
func (r *Remote) OnPush(fn func(*game.Snapshot, *clock.Tick)) (remove func()) {
	if r.ws == nil || fn == nil {
		return func() {}
	}
	id := r.ws.OnPush(func(p Push) {
		switch {
		case p.Tick != nil:
			fn(nil, tickOf(p.Tick))
		case p.Reply != nil:
			if snap := r.snapshot(p.Reply, p.GameID); snap != nil {
				fn(snap, nil)
			}
		}
	})
	return func() { r.ws.RemovePushCallback(id) }
}
