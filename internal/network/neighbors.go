package network

import (
	"cmp"
	"slices"

	"github.com/wastenet/stations/internal/dataset"
)

// Neighbor is a container directly connected to the queried one by a path
type Neighbor struct {
	ID       dataset.ContainerID
	Distance float64
}

// Resolver answers neighbor queries over a path table.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	adjacency map[dataset.ContainerID][]Neighbor
}

// NewResolver indexes every path once so that queries do not rescan the table.
func NewResolver(paths dataset.PathTable) *Resolver {
	adjacency := make(map[dataset.ContainerID][]Neighbor)

	for _, p := range paths {
		adjacency[p.A] = append(adjacency[p.A], Neighbor{ID: p.B, Distance: p.Distance})
		if p.A != p.B {
			adjacency[p.B] = append(adjacency[p.B], Neighbor{ID: p.A, Distance: p.Distance})
		}
	}

	for id, neighbors := range adjacency {
		adjacency[id] = uniqueByID(neighbors)
	}

	return &Resolver{adjacency: adjacency}
}

// NeighborsOf returns the containers adjacent to id, one entry per
// neighbor id, sorted ascending by id. Unknown ids yield nil.
func (r *Resolver) NeighborsOf(id dataset.ContainerID) []Neighbor {
	return slices.Clone(r.adjacency[id])
}

// Degree returns the number of distinct neighbors of id
func (r *Resolver) Degree(id dataset.ContainerID) int {
	return len(r.adjacency[id])
}

// uniqueByID sorts neighbors by id and collapses repeated ids.
// When several edges lead to the same neighbor, the one appearing last
// in the path table supplies the distance.
func uniqueByID(neighbors []Neighbor) []Neighbor {
	slices.SortStableFunc(neighbors, func(a, b Neighbor) int {
		return cmp.Compare(a.ID, b.ID)
	})

	out := neighbors[:0]
	for i, n := range neighbors {
		if i+1 < len(neighbors) && neighbors[i+1].ID == n.ID {
			continue
		}
		out = append(out, n)
	}
	return out
}
