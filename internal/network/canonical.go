package network

import (
	"cmp"
	"slices"
)

// Canonical is the finalized rendering of one station
type Canonical struct {
	ID         StationID
	WasteTypes string
	Neighbors  []StationID
}

// Canonicalize derives the canonical waste-type string and the sorted,
// duplicate-free neighbor list of s. It does not modify s.
func Canonicalize(s *Station) Canonical {
	return Canonical{
		ID:         s.ID,
		WasteTypes: s.WasteTypes.String(),
		Neighbors:  SortedUniqueNeighbors(s.Neighbors),
	}
}

// SortedUniqueNeighbors returns ids sorted ascending with duplicates removed.
// The input slice is left untouched.
func SortedUniqueNeighbors(ids []StationID) []StationID {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Finalize canonicalizes the neighbor list of every station in place.
// Calling it again leaves the graph unchanged.
func (g *Graph) Finalize() {
	for _, s := range g.Stations {
		s.Neighbors = SortedUniqueNeighbors(s.Neighbors)
	}
}

func sortEdges(edges []Edge) {
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.A, b.A); c != 0 {
			return c
		}
		return cmp.Compare(a.B, b.B)
	})
}
