package game

import (
	"context"
	"errors"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/fleet"
)

// ErrRejected matches any error the server returned on purpose
// (a declined action as opposed to a failed request).
var ErrRejected = errors.New("request rejected by server")

// Remote is the authoritative game server as the client consumes it.
type Remote interface {
	OpenByCode(ctx context.Context, code string) (*Snapshot, error)
	FetchState(ctx context.Context, gameID string) (*Snapshot, error)
	FetchTimer(ctx context.Context, gameID string) (*clock.Tick, error)

	PlacePiece(ctx context.Context, gameID string, kind string, at board.Coord) (*Snapshot, error)
	ClearSetup(ctx context.Context, gameID string) (*Snapshot, error)
	AutoSetup(ctx context.Context, gameID string) (*Snapshot, error)
	SubmitSetup(ctx context.Context, gameID string) (*SubmitResult, error)

	GroupCandidates(ctx context.Context, gameID string, origin board.Coord) ([]board.Coord, error)
	CarriedPieces(ctx context.Context, gameID string, origin board.Coord) ([]board.Coord, error)
	SpecialAttacks(ctx context.Context, gameID string) (*SpecialOptions, error)
	// Killed is the opponent's losses per kind so far.
	Killed(ctx context.Context, gameID string) (map[fleet.Kind]int, error)

	Move(ctx context.Context, gameID string, req MoveRequest) (*ActionResult, error)
	Torpedo(ctx context.Context, gameID string, req TorpedoRequest) (*ActionResult, error)
	Air(ctx context.Context, gameID string, req AirRequest) (*ActionResult, error)

	Pause(ctx context.Context, gameID string, kind PauseKind) error
	CancelPause(ctx context.Context, gameID string) error
	Resign(ctx context.Context, gameID string) (*ActionResult, error)

	CancelInvite(ctx context.Context, token string) error
}
