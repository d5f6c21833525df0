package waste

import "strings"

// Symbol is the one-letter code of a waste category
type Symbol byte

const (
	PlasticsAluminium Symbol = 'A'
	Paper             Symbol = 'P'
	Biodegradable     Symbol = 'B'
	ClearGlass        Symbol = 'G'
	ColoredGlass      Symbol = 'C'
	Textile           Symbol = 'T'
)

// CanonicalOrder is the fixed rendering order of waste symbols
var CanonicalOrder = []Symbol{PlasticsAluminium, Paper, Biodegradable, ClearGlass, ColoredGlass, Textile}

// labels maps container CSV labels to their symbols
var labels = map[string]Symbol{
	"Plastics and Aluminium": PlasticsAluminium,
	"Paper":                  Paper,
	"Biodegradable waste":    Biodegradable,
	"Clear glass":            ClearGlass,
	"Colored glass":          ColoredGlass,
	"Textile":                Textile,
}

// FromLabel returns the symbol for a container waste label.
// Unknown labels report ok=false and contribute nothing to a Set.
func FromLabel(label string) (Symbol, bool) {
	s, ok := labels[label]
	return s, ok
}

// Label returns the CSV label of a symbol, or "" for an unknown symbol
func (s Symbol) Label() string {
	for label, sym := range labels {
		if sym == s {
			return label
		}
	}
	return ""
}

// Valid reports whether s is one of the six known symbols
func (s Symbol) Valid() bool {
	return s.bit() != 0
}

func (s Symbol) String() string {
	return string(rune(s))
}

func (s Symbol) bit() Set {
	for i, sym := range CanonicalOrder {
		if sym == s {
			return 1 << i
		}
	}
	return 0
}

// Set is a set of waste symbols. The zero value is the empty set.
type Set uint8

// Add returns the set with s included. Unknown symbols are ignored.
func (set Set) Add(s Symbol) Set {
	return set | s.bit()
}

// AddLabel is Add for a CSV label
func (set Set) AddLabel(label string) Set {
	if s, ok := FromLabel(label); ok {
		return set.Add(s)
	}
	return set
}

// Has reports whether s is in the set
func (set Set) Has(s Symbol) bool {
	b := s.bit()
	return b != 0 && set&b != 0
}

// Union returns the symbols present in either set
func (set Set) Union(other Set) Set {
	return set | other
}

// Symbols returns the members in canonical order
func (set Set) Symbols() []Symbol {
	var out []Symbol
	for _, s := range CanonicalOrder {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// String renders the set in canonical order without separators, e.g. "PT"
func (set Set) String() string {
	var b strings.Builder
	for _, s := range set.Symbols() {
		b.WriteByte(byte(s))
	}
	return b.String()
}

// ParseSet reads a rendered set such as "APT". Characters that are not
// known symbols are skipped.
func ParseSet(s string) Set {
	var set Set
	for i := 0; i < len(s); i++ {
		set = set.Add(Symbol(s[i]))
	}
	return set
}
