package gameapi

import (
	"errors"
	"fmt"

	"github.com/park285/seabattle-client/internal/game"
)

// RequestError is a request the server answered and declined, either with a
// 4xx status or with ok=false in the body.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s rejected: status=%d message=%s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
}

func (e *RequestError) Is(target error) bool { return target == game.ErrRejected }

// ServerMessage is the human readable reason, shown to the player as is.
func (e *RequestError) ServerMessage() string { return e.Message }

var (
	errNoTransport  = errors.New("transport not available")
	errClosed       = errors.New("ws client closed")
	errLost         = errors.New("ws connection lost")
	errReplyTimeout = errors.New("ws reply timeout")

	// errNotSent marks a framed request that never reached the wire, so it
	// is safe to repeat over another transport.
	errNotSent = errors.New("request not sent")
)
