package session

import (
	"context"
	"errors"

	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/internal/selection"
	"github.com/park285/seabattle-client/internal/setup"
)

var (
	ErrNotYourTurn       = staticErr("not your turn")
	ErrGameFinished      = staticErr("game is finished")
	ErrWrongPhase        = staticErr("not available in this phase")
	ErrPauseUsed         = staticErr("pause of this kind already used")
	ErrNotPauseInitiator = staticErr("only the initiator can cancel the pause")
	ErrNotPaused         = staticErr("game is not paused")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }

// Class is the recovery category of an error.
type Class int

const (
	ClassNone Class = iota
	UserInputRejected
	RequestRejected
	TransientNetworkFailure
)

func (c Class) String() string {
	switch c {
	case UserInputRejected:
		return "user_input_rejected"
	case RequestRejected:
		return "request_rejected"
	case TransientNetworkFailure:
		return "transient_network_failure"
	default:
		return "none"
	}
}

var localErrors = []error{
	ErrNotYourTurn, ErrGameFinished, ErrWrongPhase, ErrPauseUsed, ErrNotPauseInitiator, ErrNotPaused,
	selection.ErrImmobile,
	setup.ErrUnknownKind, setup.ErrNoKindSelected, setup.ErrKindDepleted, setup.ErrOutsideZone,
	setup.ErrCellOccupied, setup.ErrSetupIncomplete, setup.ErrAlreadySubmitted,
}

// Classify sorts err into the recovery taxonomy.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	for _, e := range localErrors {
		if errors.Is(err, e) {
			return UserInputRejected
		}
	}
	if errors.Is(err, game.ErrRejected) {
		return RequestRejected
	}
	if errors.Is(err, context.Canceled) {
		return ClassNone
	}
	return TransientNetworkFailure
}

var errorKeys = map[error]string{
	ErrNotYourTurn:            "error.not_your_turn",
	ErrGameFinished:           "error.game_finished",
	ErrWrongPhase:             "error.wrong_phase",
	ErrPauseUsed:              "error.pause_used",
	ErrNotPauseInitiator:      "error.not_pause_initiator",
	ErrNotPaused:              "error.not_paused",
	selection.ErrImmobile:     "error.immobile",
	setup.ErrUnknownKind:      "error.unknown_kind",
	setup.ErrNoKindSelected:   "error.no_kind",
	setup.ErrKindDepleted:     "error.kind_depleted",
	setup.ErrOutsideZone:      "error.outside_zone",
	setup.ErrCellOccupied:     "error.cell_occupied",
	setup.ErrSetupIncomplete:  "error.setup_incomplete",
	setup.ErrAlreadySubmitted: "error.already_submitted",
}

// errorNotice maps err to its catalog entry.
func errorNotice(err error) Notice {
	for e, key := range errorKeys {
		if errors.Is(err, e) {
			return Notice{Level: Warn, Key: key, Err: err}
		}
	}
	switch Classify(err) {
	case RequestRejected:
		return Notice{Level: Error, Key: "error.rejected", Data: map[string]any{"Message": rejectionMessage(err)}, Err: err}
	default:
		return Notice{Level: Error, Key: "error.network", Err: err}
	}
}

// messager is implemented by server rejection errors that carry text.
type messager interface{ ServerMessage() string }

func rejectionMessage(err error) string {
	var m messager
	if errors.As(err, &m) && m.ServerMessage() != "" {
		return m.ServerMessage()
	}
	return err.Error()
}
