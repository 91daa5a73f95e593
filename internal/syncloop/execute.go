package syncloop

import (
	"context"
	"fmt"

	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/session"
)

// execute performs one session request against the server. It runs off the
// loop goroutine and touches nothing but its arguments.
func execute(ctx context.Context, remote game.Remote, gameID string, req session.Request) session.Result {
	res := session.Result{Req: req}
	switch req.Kind {
	case session.ReqPlace:
		res.Snapshot, res.Err = remote.PlacePiece(ctx, gameID, string(req.Piece), req.At)
	case session.ReqClear:
		res.Snapshot, res.Err = remote.ClearSetup(ctx, gameID)
	case session.ReqAuto:
		res.Snapshot, res.Err = remote.AutoSetup(ctx, gameID)
	case session.ReqSubmit:
		res.Submit, res.Err = remote.SubmitSetup(ctx, gameID)
		if res.Submit != nil {
			res.Snapshot = res.Submit.Snapshot
		}

	case session.ReqGroupCandidates:
		res.Coords, res.Err = remote.GroupCandidates(ctx, gameID, req.At)
	case session.ReqCarried:
		res.Coords, res.Err = remote.CarriedPieces(ctx, gameID, req.At)
	case session.ReqSpecialAttacks:
		res.Options, res.Err = remote.SpecialAttacks(ctx, gameID)

	case session.ReqMove:
		res.Action, res.Err = remote.Move(ctx, gameID, req.Move)
	case session.ReqTorpedo:
		res.Action, res.Err = remote.Torpedo(ctx, gameID, req.Torpedo)
	case session.ReqAir:
		res.Action, res.Err = remote.Air(ctx, gameID, req.Air)
	case session.ReqResign:
		res.Action, res.Err = remote.Resign(ctx, gameID)

	case session.ReqPause:
		res.Err = remote.Pause(ctx, gameID, req.Pause)
	case session.ReqCancelPause:
		res.Err = remote.CancelPause(ctx, gameID)

	default:
		res.Err = fmt.Errorf("unsupported request %s", req.Kind)
	}
	return res
}
