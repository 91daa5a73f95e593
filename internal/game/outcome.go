package game

import "strings"

// OutcomeKind is the fixed set of action results the client distinguishes.
type OutcomeKind string

const (
	OutcomeMove                OutcomeKind = "move"
	OutcomeCombat              OutcomeKind = "combat"
	OutcomeExplosion           OutcomeKind = "explosion"
	OutcomeAtomicExplosion     OutcomeKind = "atomic_explosion"
	OutcomeMineExplosion       OutcomeKind = "mine_explosion"
	OutcomeMineCleared         OutcomeKind = "mine_cleared"
	OutcomeTankerExplosion     OutcomeKind = "tanker_explosion"
	OutcomeStaticMineExplosion OutcomeKind = "static_mine_explosion"
	OutcomeDraw                OutcomeKind = "draw"
	OutcomeTorpedo             OutcomeKind = "torpedo"
	OutcomeAir                 OutcomeKind = "air"
	OutcomeDefeat              OutcomeKind = "defeat"
	OutcomeOther               OutcomeKind = "other"
)

// engine spellings
var outcomeAliases = map[string]OutcomeKind{
	"ab_explode":  OutcomeAtomicExplosion,
	"mine_boom":   OutcomeMineExplosion,
	"mine_swept":  OutcomeMineCleared,
	"s_mine_boom": OutcomeStaticMineExplosion,
	"tanker_boom": OutcomeTankerExplosion,
	"exchange":    OutcomeDraw,
	"def_win":     OutcomeDefeat,
}

var knownOutcomes = map[OutcomeKind]struct{}{
	OutcomeMove: {}, OutcomeCombat: {}, OutcomeExplosion: {}, OutcomeAtomicExplosion: {},
	OutcomeMineExplosion: {}, OutcomeMineCleared: {}, OutcomeTankerExplosion: {},
	OutcomeStaticMineExplosion: {}, OutcomeDraw: {}, OutcomeTorpedo: {}, OutcomeAir: {},
	OutcomeDefeat: {},
}

// ParseOutcome maps a server event name onto OutcomeKind. Unrecognised
// names become OutcomeOther so they render as a generic notice.
func ParseOutcome(event string) OutcomeKind {
	e := strings.ToLower(strings.TrimSpace(event))
	if k, ok := outcomeAliases[e]; ok {
		return k
	}
	if _, ok := knownOutcomes[OutcomeKind(e)]; ok {
		return OutcomeKind(e)
	}
	return OutcomeOther
}

// Outcome describes what an action did. Destroyed lists enemy losses,
// Lost the actor's own.
type Outcome struct {
	Kind      OutcomeKind
	Event     string
	Destroyed []string
	Lost      []string
	ExtraTurn bool
}
