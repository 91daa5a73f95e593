package wire

import "encoding/json"

// Pair is the [x, y] array form coordinates take in payloads.
type Pair [2]int

// Quad is a follower as [fromX, fromY, toX, toY].
type Quad [4]int

// Envelope frames every state-changing request on both transports.
type Envelope struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Message types
const (
	TypeSetupPiece      = "setup_piece"
	TypeClearSetup      = "clear_setup"
	TypeAutoSetup       = "auto_setup"
	TypeSubmitSetup     = "submit_setup"
	TypeGroupCandidates = "get_group_candidates"
	TypeCarried         = "get_carried"
	TypeSpecialAttacks  = "get_special_attacks"
	TypeMove            = "make_move"
	TypeTorpedo         = "torpedo_attack"
	TypeAir             = "air_attack"
	TypePause           = "pause"
	TypeCancelPause     = "cancel_pause"
	TypeResign          = "resign"
)

type SetupPiece struct {
	Coord Pair   `json:"coord"`
	Kind  string `json:"kind"`
}

type CoordQuery struct {
	Coord Pair `json:"coord"`
}

type Move struct {
	Src       Pair   `json:"src"`
	Dst       Pair   `json:"dst"`
	Followers []Quad `json:"followers"`
}

type Torpedo struct {
	Torpedo   Pair `json:"torpedo"`
	TK        Pair `json:"tk"`
	Direction Pair `json:"direction"`
}

type Air struct {
	Carrier Pair `json:"carrier"`
	Plane   Pair `json:"plane"`
}

type Pause struct {
	Type string `json:"type"`
}

type Empty struct{}

// PieceCell is one occupant as stored in a board cell.
type PieceCell struct {
	Owner int    `json:"owner"`
	Kind  string `json:"kind"`
	Alive *bool  `json:"alive,omitempty"`
}

// GameState is the authoritative state blob. Board cells are kept raw
// because the server writes either one object or a list of them.
type GameState struct {
	Phase           string                     `json:"phase"`
	Turn            int                        `json:"turn"`
	Board           map[string]json.RawMessage `json:"board"`
	SetupCounts     map[string]map[string]int  `json:"setup_counts"`
	SetupDeadlineAt string                     `json:"setup_deadline_at,omitempty"`
	Winner          *int                       `json:"winner,omitempty"`
	WinReason       string                     `json:"win_reason,omitempty"`
	Version         *int64                     `json:"version,omitempty"`
}

// Outcome is the engine's description of an action.
type Outcome struct {
	Event        string   `json:"event"`
	Captures     []string `json:"captures,omitempty"`
	CapturesSelf []string `json:"captures_self,omitempty"`
	Exchange     bool     `json:"exchange,omitempty"`
	ExtraTurn    bool     `json:"extra_turn,omitempty"`
}

type TorpedoOption struct {
	Torpedo    Pair   `json:"torpedo"`
	TK         Pair   `json:"tk"`
	Directions []Pair `json:"directions"`
}

type AirOption struct {
	Carrier   Pair `json:"carrier"`
	Plane     Pair `json:"plane"`
	Direction int  `json:"direction"`
}

type SpecialOptions struct {
	Torpedo []TorpedoOption `json:"torpedo"`
	Air     []AirOption     `json:"air"`
}

// Reply is the common response body. Which fields are set depends on the
// request; absent ones are left zero.
type Reply struct {
	ReplyTo string `json:"reply_to,omitempty"`
	Type    string `json:"type,omitempty"`

	OK      *bool  `json:"ok,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	ID       string     `json:"id,omitempty"`
	Game     string     `json:"game,omitempty"`
	Status   string     `json:"status,omitempty"`
	Turn     int        `json:"turn,omitempty"`
	MyPlayer int        `json:"my_player,omitempty"`
	State    *GameState `json:"state,omitempty"`
	Result   *Outcome   `json:"result,omitempty"`

	Candidates []Pair          `json:"candidates,omitempty"`
	Carried    []Pair          `json:"carried,omitempty"`
	Options    *SpecialOptions `json:"options,omitempty"`
}

// Succeeded treats a missing ok flag as success unless an error is present.
func (r *Reply) Succeeded() bool {
	if r.OK != nil {
		return *r.OK
	}
	return r.Error == ""
}

// Tick is the timer/pause snapshot.
type Tick struct {
	Type           string `json:"type,omitempty"`
	Turn           int    `json:"turn"`
	TurnLeft       *int   `json:"turn_left,omitempty"`
	BankMsP1       *int64 `json:"bank_ms_p1,omitempty"`
	BankMsP2       *int64 `json:"bank_ms_p2,omitempty"`
	Paused         bool   `json:"paused"`
	PauseLeft      int    `json:"pause_left,omitempty"`
	PauseInitiator int    `json:"pause_initiator,omitempty"`
	Finished       bool   `json:"finished"`
	WinnerPlayer   *int   `json:"winner_player,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Version        *int64 `json:"version,omitempty"`
}

// Killed lists the opponent's lost pieces per kind.
type Killed struct {
	Items []KilledItem `json:"items"`
	Error string       `json:"error,omitempty"`
}

type KilledItem struct {
	Piece  string `json:"piece"`
	Killed int    `json:"killed"`
}

// ErrorBody is what non-2xx responses carry.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
