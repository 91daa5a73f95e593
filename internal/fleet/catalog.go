package fleet

import "strings"

// Kind is the wire code of a piece kind (e.g. "BDK", "TK").
type Kind string

const (
	BDK  Kind = "BDK"
	L    Kind = "L"
	A    Kind = "A"
	KR   Kind = "KR"
	F    Kind = "F"
	ES   Kind = "ES"
	ST   Kind = "ST"
	TR   Kind = "TR"
	TK   Kind = "TK"
	T    Kind = "T"
	TN   Kind = "TN"
	S    Kind = "S"
	PL   Kind = "PL"
	KRPL Kind = "KRPL"
	M    Kind = "M"
	SM   Kind = "SM"
	AB   Kind = "AB"
	VMB  Kind = "VMB"

	// Unknown marks a concealed enemy piece.
	Unknown Kind = "?"
)

// LongRange is the kind whose moves probe two cells per direction.
const LongRange = TK

// Spec describes one kind of the starting fleet.
type Spec struct {
	Kind         Kind
	Label        string
	InitialCount int
	Rank         int
	Mobile       bool
	Carries      Kind
}

// ordered by rank, strongest first
var specs = []Spec{
	{Kind: BDK, Label: "БДК", InitialCount: 2, Rank: 18, Mobile: true},
	{Kind: L, Label: "Л", InitialCount: 2, Rank: 17, Mobile: true},
	{Kind: A, Label: "А", InitialCount: 1, Rank: 16, Mobile: true, Carries: S},
	{Kind: KR, Label: "КР", InitialCount: 6, Rank: 15, Mobile: true},
	{Kind: F, Label: "Ф", InitialCount: 6, Rank: 14, Mobile: true},
	{Kind: ES, Label: "ЭС", InitialCount: 6, Rank: 13, Mobile: true, Carries: M},
	{Kind: ST, Label: "СТ", InitialCount: 6, Rank: 12, Mobile: true},
	{Kind: TR, Label: "ТР", InitialCount: 6, Rank: 11, Mobile: true},
	{Kind: TK, Label: "ТК", InitialCount: 6, Rank: 10, Mobile: true, Carries: T},
	{Kind: T, Label: "Т", InitialCount: 6, Rank: 9, Mobile: true},
	{Kind: TN, Label: "ТН", InitialCount: 1, Rank: 8, Mobile: true},
	{Kind: S, Label: "С", InitialCount: 1, Rank: 7, Mobile: true},
	{Kind: PL, Label: "ПЛ", InitialCount: 1, Rank: 6, Mobile: true},
	{Kind: KRPL, Label: "КРПЛ", InitialCount: 1, Rank: 5, Mobile: true},
	{Kind: M, Label: "М", InitialCount: 6, Rank: 4, Mobile: true},
	{Kind: SM, Label: "СМ", InitialCount: 1, Rank: 3, Mobile: false},
	{Kind: AB, Label: "АБ", InitialCount: 1, Rank: 2, Mobile: true},
	{Kind: VMB, Label: "ВМБ", InitialCount: 2, Rank: 1, Mobile: false},
}

var (
	byKind  = make(map[Kind]Spec, len(specs))
	byLabel = make(map[string]Kind, len(specs))
)

func init() {
	for _, s := range specs {
		byKind[s.Kind] = s
		byLabel[s.Label] = s.Kind
	}
}

// All returns the catalog in rank order, strongest first.
func All() []Spec {
	return append([]Spec(nil), specs...)
}

// Kinds returns every known kind in rank order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Kind)
	}
	return out
}

func Lookup(k Kind) (Spec, bool) {
	s, ok := byKind[k]
	return s, ok
}

// IsImmobile reports whether pieces of k can never move.
// Unknown kinds are treated as mobile; the server has the final word.
func IsImmobile(k Kind) bool {
	s, ok := byKind[k]
	return ok && !s.Mobile
}

// Rank returns the strength rank of k, 0 for unknown kinds.
func Rank(k Kind) int {
	return byKind[k].Rank
}

// CarriedKindOf returns the kind transported by k, if any.
func CarriedKindOf(k Kind) (Kind, bool) {
	s, ok := byKind[k]
	if !ok || s.Carries == "" {
		return "", false
	}
	return s.Carries, true
}

// CarrierOf returns the kind that transports k, if any.
func CarrierOf(k Kind) (Kind, bool) {
	for _, s := range specs {
		if s.Carries == k {
			return s.Kind, true
		}
	}
	return "", false
}

// InitialCounts returns a fresh kind → count map of the starting fleet.
func InitialCounts() map[Kind]int {
	out := make(map[Kind]int, len(specs))
	for _, s := range specs {
		out[s.Kind] = s.InitialCount
	}
	return out
}

// TotalPieces is the size of a full fleet.
func TotalPieces() int {
	n := 0
	for _, s := range specs {
		n += s.InitialCount
	}
	return n
}

// GroupStrength sums the ranks of kinds, as shown in the group hint.
func GroupStrength(kinds []Kind) int {
	sum := 0
	for _, k := range kinds {
		sum += Rank(k)
	}
	return sum
}

// ParseKind accepts a wire code (any case) or the Cyrillic board label.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if k, ok := byLabel[s]; ok {
		return k, true
	}
	k := Kind(strings.ToUpper(s))
	if _, ok := byKind[k]; ok {
		return k, true
	}
	return "", false
}

// Label returns the board label of k, or the code itself when unknown.
func Label(k Kind) string {
	if s, ok := byKind[k]; ok {
		return s.Label
	}
	return string(k)
}
