package syncloop

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/park285/seabattle-client/internal/game"
)

// Waiter polls for a pending invite to turn into a game.
type Waiter struct {
	remote game.Remote
	every  time.Duration
	log    *zap.Logger
}

func NewWaiter(remote game.Remote, every time.Duration, log *zap.Logger) *Waiter {
	if every <= 0 {
		every = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Waiter{remote: remote, every: every, log: log}
}

// Wait returns the game snapshot once code resolves. When ctx ends first,
// the invite behind token is cancelled on a best-effort basis and the
// context error is returned; a failed cancellation is only logged.
func (w *Waiter) Wait(ctx context.Context, code, token string) (*game.Snapshot, error) {
	t := time.NewTicker(w.every)
	defer t.Stop()
	attempts := 0
	for {
		attempts++
		snap, err := w.remote.OpenByCode(ctx, code)
		if err == nil && snap != nil && snap.GameID != "" {
			w.log.Info("invite_resolved", zap.String("code", code), zap.String("game_id", snap.GameID), zap.Int("attempts", attempts))
			return snap, nil
		}
		if err != nil && ctx.Err() == nil {
			w.log.Debug("invite_pending", zap.String("code", code), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.cancelInvite(token)
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (w *Waiter) cancelInvite(token string) {
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := w.remote.CancelInvite(ctx, token); err != nil {
		w.log.Info("invite_cancel_ignored", zap.String("token", token), zap.Error(err))
		return
	}
	w.log.Info("invite_cancelled", zap.String("token", token))
}
