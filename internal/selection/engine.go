package selection

import (
	"errors"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/fleet"
	"github.com/park285/seabattle-client/internal/game"
)

// MaxGroup is the largest group the server accepts.
const MaxGroup = 3

var ErrImmobile = errors.New("piece cannot move")

type Mode int

const (
	Idle Mode = iota
	PieceSelected
	GroupBuilding
	AttackTargeting
)

func (m Mode) String() string {
	switch m {
	case PieceSelected:
		return "piece_selected"
	case GroupBuilding:
		return "group_building"
	case AttackTargeting:
		return "attack_targeting"
	default:
		return "idle"
	}
}

type AttackKind int

const (
	AttackNone AttackKind = iota
	AttackTorpedo
	AttackAir
)

func (k AttackKind) String() string {
	switch k {
	case AttackTorpedo:
		return "torpedo"
	case AttackAir:
		return "air"
	default:
		return "none"
	}
}

// Target is one highlighted attack cell and the option that produced it.
type Target struct {
	Attack AttackKind
	Option int
	Dir    board.Dir
}

// State is the interaction state. All coordinates are absolute.
//
// Idle: only Token is meaningful.
// PieceSelected: Origin/Kind, Destinations, server-fed Candidates and Carried.
// GroupBuilding: Members (leader first), Destinations for the whole group,
// remaining Candidates.
// AttackTargeting: PieceSelected plus Attack/Targets.
type State struct {
	Mode Mode

	Origin board.Coord
	Kind   fleet.Kind

	Members []board.Coord

	Destinations []board.Coord
	Candidates   []board.Coord
	Carried      []board.Coord

	Attack  AttackKind
	Options *game.SpecialOptions
	Targets map[board.Coord]Target

	// Token identifies the selection that issued the outstanding queries;
	// answers carrying an older token are dropped.
	Token uint64
}

// Env is what the engine reads; it never mutates it.
type Env struct {
	Board *board.Board
	Seat  board.Seat
}

type Input interface{ input() }

type Click struct{ At board.Coord }

// Reset forces Idle, e.g. after a disqualifying snapshot.
type Reset struct{}

type CandidatesLoaded struct {
	Token  uint64
	Coords []board.Coord
}

type CarriedLoaded struct {
	Token  uint64
	Coords []board.Coord
}

type SpecialLoaded struct {
	Token   uint64
	Options *game.SpecialOptions
}

func (Click) input()            {}
func (Reset) input()            {}
func (CandidatesLoaded) input() {}
func (CarriedLoaded) input()    {}
func (SpecialLoaded) input()    {}

type QueryKind int

const (
	QueryGroup QueryKind = iota
	QueryCarried
	QuerySpecial
)

func (k QueryKind) String() string {
	switch k {
	case QueryGroup:
		return "group_candidates"
	case QueryCarried:
		return "carried"
	default:
		return "special_attacks"
	}
}

// Query is an advisory server lookup requested by a selection.
type Query struct {
	Kind   QueryKind
	Token  uint64
	Origin board.Coord
}

type ActionKind int

const (
	ActionMove ActionKind = iota + 1
	ActionTorpedo
	ActionAir
)

type Action struct {
	Kind    ActionKind
	Move    game.MoveRequest
	Torpedo game.TorpedoRequest
	Air     game.AirRequest
}

// Effects is what a transition asks the caller to do.
type Effects struct {
	Queries []Query
	Action  *Action
	Err     error

	Hint     string
	HintData map[string]any
}

// Step is the transition function.
func Step(env Env, s State, in Input) (State, Effects) {
	switch in := in.(type) {
	case Click:
		return click(env, s, in.At)
	case Reset:
		return idle(s), Effects{}
	case CandidatesLoaded:
		if in.Token != s.Token || (s.Mode != PieceSelected && s.Mode != AttackTargeting) {
			return s, Effects{}
		}
		s.Candidates = ownCells(env, in.Coords, s.Origin)
		return s, Effects{}
	case CarriedLoaded:
		if in.Token != s.Token || s.Mode == Idle || s.Mode == GroupBuilding {
			return s, Effects{}
		}
		s.Carried = ownCells(env, in.Coords, s.Origin)
		return s, Effects{}
	case SpecialLoaded:
		if in.Token != s.Token || s.Mode != PieceSelected {
			return s, Effects{}
		}
		return applySpecial(env, s, in.Options)
	}
	return s, Effects{}
}

func click(env Env, s State, at board.Coord) (State, Effects) {
	p, occupied := env.Board.At(at)
	own := occupied && p.Owner == env.Seat

	switch s.Mode {
	case Idle:
		if own {
			return selectPiece(env, s, at, p)
		}
		return s, Effects{}

	case PieceSelected, AttackTargeting:
		if at == s.Origin {
			return idle(s), Effects{Hint: "hint.cancelled"}
		}
		if contains(s.Destinations, at) {
			req := game.MoveRequest{
				From:      s.Origin,
				To:        at,
				Followers: Followers(env.Board, s.Origin, at, s.Carried),
			}
			return idle(s), Effects{Action: &Action{Kind: ActionMove, Move: req}, Hint: "hint.move_sent"}
		}
		if contains(s.Candidates, at) {
			return startGroup(env, s, at)
		}
		if t, ok := s.Targets[at]; ok {
			return idle(s), attack(s, t)
		}
		if own {
			return selectPiece(env, s, at, p)
		}
		return idle(s), Effects{Hint: "hint.cancelled"}

	case GroupBuilding:
		if contains(s.Destinations, at) {
			req := game.MoveRequest{From: s.Members[0], To: at}
			for _, m := range s.Members[1:] {
				req.Followers = append(req.Followers, game.Follower{From: m, To: at})
			}
			return idle(s), Effects{Action: &Action{Kind: ActionMove, Move: req}, Hint: "hint.group_sent"}
		}
		if contains(s.Members, at) {
			return idle(s), Effects{Hint: "hint.cancelled"}
		}
		if contains(s.Candidates, at) {
			return growGroup(env, s, at)
		}
		if own {
			return selectPiece(env, s, at, p)
		}
		return idle(s), Effects{Hint: "hint.cancelled"}
	}
	return idle(s), Effects{}
}

func selectPiece(env Env, s State, at board.Coord, p board.Piece) (State, Effects) {
	if fleet.IsImmobile(p.Kind) {
		return s, Effects{Err: ErrImmobile, Hint: "error.immobile", HintData: map[string]any{"Kind": fleet.Label(p.Kind)}}
	}
	next := State{
		Mode:         PieceSelected,
		Origin:       at,
		Kind:         p.Kind,
		Destinations: Destinations(env.Board, env.Seat, at, p.Kind),
		Token:        s.Token + 1,
	}
	eff := Effects{
		Queries:  []Query{{Kind: QueryGroup, Token: next.Token, Origin: at}},
		Hint:     "hint.selected",
		HintData: map[string]any{"Kind": fleet.Label(p.Kind)},
	}
	if _, ok := fleet.CarriedKindOf(p.Kind); ok {
		eff.Queries = append(eff.Queries, Query{Kind: QueryCarried, Token: next.Token, Origin: at})
	}
	eff.Queries = append(eff.Queries, Query{Kind: QuerySpecial, Token: next.Token, Origin: at})
	return next, eff
}

func startGroup(env Env, s State, at board.Coord) (State, Effects) {
	next := State{
		Mode:       GroupBuilding,
		Members:    []board.Coord{s.Origin},
		Candidates: s.Candidates,
		Token:      s.Token,
	}
	return growGroup(env, next, at)
}

func growGroup(env Env, s State, at board.Coord) (State, Effects) {
	if contains(s.Members, at) || len(s.Members) >= MaxGroup {
		return s, Effects{}
	}
	members := append(append([]board.Coord(nil), s.Members...), at)
	next := State{
		Mode:         GroupBuilding,
		Members:      members,
		Destinations: GroupDestinations(env.Board, env.Seat, members),
		Token:        s.Token,
	}
	if len(members) < MaxGroup {
		next.Candidates = without(s.Candidates, members)
	}
	kinds := make([]fleet.Kind, 0, len(members))
	for _, m := range members {
		if p, ok := env.Board.At(m); ok {
			kinds = append(kinds, p.Kind)
		}
	}
	return next, Effects{
		Hint:     "hint.group",
		HintData: map[string]any{"Size": len(members), "Strength": fleet.GroupStrength(kinds)},
	}
}

func applySpecial(env Env, s State, opts *game.SpecialOptions) (State, Effects) {
	if opts.Empty() {
		return s, Effects{}
	}
	targets := make(map[board.Coord]Target)
	kind := AttackNone
	for i, o := range opts.Torpedo {
		if o.Launcher != s.Origin {
			continue
		}
		for _, d := range o.Directions {
			for _, c := range TorpedoRay(env.Board, o.Torpedo, d) {
				if _, taken := targets[c]; !taken {
					targets[c] = Target{Attack: AttackTorpedo, Option: i, Dir: d}
				}
			}
		}
		kind = AttackTorpedo
	}
	if kind == AttackNone {
		for i, o := range opts.Air {
			if o.Carrier != s.Origin {
				continue
			}
			for _, c := range AirColumn(o.Plane, o.Direction) {
				if _, taken := targets[c]; !taken {
					targets[c] = Target{Attack: AttackAir, Option: i}
				}
			}
			kind = AttackAir
		}
	}
	if len(targets) == 0 {
		return s, Effects{}
	}
	s.Mode = AttackTargeting
	s.Attack = kind
	s.Options = opts
	s.Targets = targets
	return s, Effects{Hint: "hint." + kind.String() + "_ready"}
}

func attack(s State, t Target) Effects {
	switch t.Attack {
	case AttackTorpedo:
		o := s.Options.Torpedo[t.Option]
		return Effects{
			Action: &Action{Kind: ActionTorpedo, Torpedo: game.TorpedoRequest{Launcher: o.Launcher, Torpedo: o.Torpedo, Dir: t.Dir}},
			Hint:   "hint.attack_sent",
		}
	case AttackAir:
		o := s.Options.Air[t.Option]
		return Effects{
			Action: &Action{Kind: ActionAir, Air: game.AirRequest{Carrier: o.Carrier, Plane: o.Plane}},
			Hint:   "hint.attack_sent",
		}
	}
	return Effects{}
}

func idle(s State) State { return State{Mode: Idle, Token: s.Token} }

// ownCells keeps in-bounds, deduplicated cells holding the local seat's
// pieces, excluding skip.
func ownCells(env Env, cells []board.Coord, skip board.Coord) []board.Coord {
	seen := make(map[board.Coord]bool, len(cells))
	var out []board.Coord
	for _, c := range cells {
		if c == skip || seen[c] || !c.InBounds() || !env.Board.OwnedBy(c, env.Seat) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func contains(cells []board.Coord, c board.Coord) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}

func without(cells, drop []board.Coord) []board.Coord {
	var out []board.Coord
	for _, c := range cells {
		if !contains(drop, c) {
			out = append(out, c)
		}
	}
	return out
}
