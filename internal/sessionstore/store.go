package sessionstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/park285/seabattle-client/internal/session"
)

// TTL bounds how long an abandoned game stays resumable.
const TTL = 24 * time.Hour

var ErrEmptyGameID = errors.New("record without game id")

// Record is what the client needs to pick an open game back up after a
// restart: which seat it holds and which pauses it already spent.
type Record struct {
	GameID    string             `json:"game_id"`
	Code      string             `json:"code,omitempty"`
	Seat      int                `json:"seat"`
	Pauses    session.PauseUsage `json:"pauses"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store persists resume records. Load and LoadByCode return nil, nil when
// nothing is stored.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, gameID string) (*Record, error)
	LoadByCode(ctx context.Context, code string) (*Record, error)
	Delete(ctx context.Context, gameID string) error
	Close() error
}

func normalize(rec *Record) error {
	rec.GameID = strings.TrimSpace(rec.GameID)
	rec.Code = strings.TrimSpace(rec.Code)
	if rec.GameID == "" {
		return ErrEmptyGameID
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}
