package metrics

import (
	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/network"
)

// GraphStats summarizes one station graph build
type GraphStats struct {
	Containers         int     `json:"containers"`
	Paths              int     `json:"paths"`
	Stations           int     `json:"stations"`
	Edges              int     `json:"edges"`
	IsolatedStations   int     `json:"isolated_stations"`
	MaxStationSize     int     `json:"max_station_size"`
	MeanStationSize    float64 `json:"mean_station_size"`
	MeanDegree         float64 `json:"mean_degree"`
	StdDevDegree       float64 `json:"stddev_degree"`
	MeanPathDistance   float64 `json:"mean_path_distance"`
	StdDevPathDistance float64 `json:"stddev_path_distance"`
}

// Summarize computes GraphStats for g. Path distances are taken once per
// distinct pair of containers present in the container table.
func Summarize(g *network.Graph, tables *dataset.Tables, resolver *network.Resolver) GraphStats {
	stats := GraphStats{
		Containers: len(tables.Containers),
		Paths:      len(tables.Paths),
		Stations:   g.Len(),
		Edges:      len(g.Edges()),
	}

	var size, degree WelfordState
	for _, s := range g.Stations {
		size.Update(float64(len(s.Members)))
		degree.Update(float64(len(s.Neighbors)))
		if len(s.Members) > stats.MaxStationSize {
			stats.MaxStationSize = len(s.Members)
		}
		if len(s.Neighbors) == 0 {
			stats.IsolatedStations++
		}
	}
	stats.MeanStationSize = size.GetMean()
	stats.MeanDegree = degree.GetMean()
	stats.StdDevDegree = degree.GetStdDev()

	known := make(map[dataset.ContainerID]bool, len(tables.Containers))
	for _, c := range tables.Containers {
		known[c.ID] = true
	}

	var distance WelfordState
	visited := make(map[dataset.ContainerID]bool, len(known))
	for _, c := range tables.Containers {
		if visited[c.ID] {
			continue
		}
		visited[c.ID] = true
		for _, n := range resolver.NeighborsOf(c.ID) {
			if n.ID > c.ID && known[n.ID] {
				distance.Update(n.Distance)
			}
		}
	}
	stats.MeanPathDistance = distance.GetMean()
	stats.StdDevPathDistance = distance.GetStdDev()

	return stats
}
