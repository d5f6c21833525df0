package network

import (
	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/waste"
)

// StationID identifies a station. Ids start at 1 and follow discovery order.
type StationID int

// Station is a group of containers sharing one physical location
type Station struct {
	ID         StationID
	X          float64
	Y          float64
	Members    []dataset.ContainerID
	WasteTypes waste.Set
	Neighbors  []StationID
}

// HasMember reports whether container id belongs to the station
func (s *Station) HasMember(id dataset.ContainerID) bool {
	for _, m := range s.Members {
		if m == id {
			return true
		}
	}
	return false
}

// HasNeighbor reports whether other is already listed as adjacent
func (s *Station) HasNeighbor(other StationID) bool {
	for _, n := range s.Neighbors {
		if n == other {
			return true
		}
	}
	return false
}

func (s *Station) addMember(id dataset.ContainerID) {
	if !s.HasMember(id) {
		s.Members = append(s.Members, id)
	}
}

// addNeighbor records other as adjacent. Self-adjacency is never recorded.
func (s *Station) addNeighbor(other StationID) bool {
	if other == s.ID || s.HasNeighbor(other) {
		return false
	}
	s.Neighbors = append(s.Neighbors, other)
	return true
}

// Graph is the finished station graph of one run
type Graph struct {
	Stations []*Station
	owner    map[dataset.ContainerID]StationID
}

// Len returns the number of stations
func (g *Graph) Len() int {
	return len(g.Stations)
}

// Station returns the station with the given id
func (g *Graph) Station(id StationID) (*Station, bool) {
	if id < 1 || int(id) > len(g.Stations) {
		return nil, false
	}
	return g.Stations[id-1], true
}

// StationOf returns the station that owns container id
func (g *Graph) StationOf(id dataset.ContainerID) (StationID, bool) {
	sid, ok := g.owner[id]
	return sid, ok
}

// Edge is an undirected station adjacency with A < B
type Edge struct {
	A StationID
	B StationID
}

// Edges returns every adjacency once, ordered by (A, B).
// A pair listed by either endpoint counts as an edge.
func (g *Graph) Edges() []Edge {
	seen := make(map[Edge]struct{})
	var edges []Edge

	for _, s := range g.Stations {
		for _, n := range SortedUniqueNeighbors(s.Neighbors) {
			e := Edge{A: s.ID, B: n}
			if e.B < e.A {
				e.A, e.B = e.B, e.A
			}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}

	sortEdges(edges)
	return edges
}
