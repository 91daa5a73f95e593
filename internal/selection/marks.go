package selection

import "github.com/park285/seabattle-client/internal/board"

// Mark is a bit set of highlight classes for one cell.
type Mark uint8

const (
	MarkSelected Mark = 1 << iota
	MarkMember
	MarkDestination
	MarkCandidate
	MarkTorpedo
	MarkAir
)

func (m Mark) Has(x Mark) bool { return m&x != 0 }

// MarkAt projects the state onto cell c.
func (s State) MarkAt(c board.Coord) Mark {
	var m Mark
	switch s.Mode {
	case Idle:
		return 0
	case GroupBuilding:
		if contains(s.Members, c) {
			m |= MarkMember
		}
	default:
		if c == s.Origin {
			m |= MarkSelected
		}
	}
	if contains(s.Destinations, c) {
		m |= MarkDestination
	}
	if contains(s.Candidates, c) {
		m |= MarkCandidate
	}
	if t, ok := s.Targets[c]; ok {
		if t.Attack == AttackTorpedo {
			m |= MarkTorpedo
		} else {
			m |= MarkAir
		}
	}
	return m
}

// Marks returns every highlighted cell.
func (s State) Marks() map[board.Coord]Mark {
	out := make(map[board.Coord]Mark)
	add := func(cs []board.Coord) {
		for _, c := range cs {
			if m := s.MarkAt(c); m != 0 {
				out[c] = m
			}
		}
	}
	if s.Mode == Idle {
		return out
	}
	add([]board.Coord{s.Origin})
	add(s.Members)
	add(s.Destinations)
	add(s.Candidates)
	for c := range s.Targets {
		out[c] = s.MarkAt(c)
	}
	return out
}
