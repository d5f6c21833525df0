package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/metrics"
	"github.com/wastenet/stations/internal/network"
)

func buildFixture(t *testing.T) (*network.Graph, *dataset.Tables, metrics.GraphStats) {
	t.Helper()
	tables := &dataset.Tables{
		Containers: dataset.ContainerTable{
			{ID: 1, X: 49.19, Y: 16.60, WasteLabel: "Paper", Street: "Kounicova", Number: "12"},
			{ID: 2, X: 49.19, Y: 16.60, WasteLabel: "Textile", Street: "Kounicova", Number: "12"},
			{ID: 3, X: 49.20, Y: 16.61, WasteLabel: "Paper", Street: "Botanicka"},
			{ID: 4, X: 49.21, Y: 16.62, WasteLabel: "Clear glass"},
		},
		Paths: dataset.PathTable{
			{A: 1, B: 3, Distance: 120},
			{A: 2, B: 3, Distance: 118},
		},
	}
	b := network.NewBuilder(tables)
	g, err := b.Build(context.Background())
	require.NoError(t, err)
	return g, tables, metrics.Summarize(g, tables, b.Resolver())
}

func readJSON(t *testing.T, path string, v interface{}) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
	return data
}

func TestGenerate(t *testing.T) {
	g, tables, stats := buildFixture(t)
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, Generate(g, tables, stats, dir, "src-sum"))

	var stations StationFeatureCollection
	stationsData := readJSON(t, filepath.Join(dir, StationsFile), &stations)
	require.Len(t, stations.Features, 3)

	first := stations.Features[0]
	assert.Equal(t, "Feature", first.Type)
	assert.Equal(t, "Point", first.Geometry.Type)
	assert.Equal(t, [2]float64{49.19, 16.60}, first.Geometry.Coordinates)
	assert.Equal(t, "PT", first.Properties.WasteTypes)
	assert.Equal(t, []int64{1, 2}, first.Properties.Containers)
	assert.Equal(t, []int{2}, first.Properties.Neighbors)
	assert.Equal(t, []string{"Kounicova 12"}, first.Properties.Addresses)

	isolated := stations.Features[2]
	assert.Equal(t, []int{}, isolated.Properties.Neighbors)
	assert.Empty(t, isolated.Properties.Addresses)

	var adjacency AdjacencyFeatureCollection
	adjacencyData := readJSON(t, filepath.Join(dir, AdjacencyFile), &adjacency)
	require.Len(t, adjacency.Features, 1)
	edge := adjacency.Features[0]
	assert.Equal(t, "1-2", edge.ID)
	assert.Equal(t, AdjacencyProps{From: 1, To: 2}, edge.Properties)
	assert.Equal(t, [][2]float64{{49.19, 16.60}, {49.20, 16.61}}, edge.Geometry.Coordinates)

	var gotStats metrics.GraphStats
	readJSON(t, filepath.Join(dir, StatsFile), &gotStats)
	assert.Equal(t, stats, gotStats)

	var manifest Manifest
	readJSON(t, filepath.Join(dir, ManifestName), &manifest)
	assert.Equal(t, GeneratorVersion, manifest.GeneratorVersion)
	assert.Equal(t, "src-sum", manifest.SourceChecksum)
	assert.Equal(t, sha256Sum(stationsData), manifest.Stations.Checksum)
	assert.Equal(t, sha256Sum(adjacencyData), manifest.Adjacency.Checksum)
	assert.Equal(t, 3, manifest.StationCount)
	assert.Equal(t, 1, manifest.EdgeCount)
	assert.NotEmpty(t, manifest.UpdatedAt)

	// A fresh manifest for the same source needs no refresh
	assert.False(t, NeedsRefresh(filepath.Join(dir, ManifestName), "src-sum"))
}

func TestGenerateEmptyGraph(t *testing.T) {
	dir := t.TempDir()
	tables := &dataset.Tables{}

	require.NoError(t, Generate(&network.Graph{}, tables, metrics.GraphStats{}, dir, ""))

	var stations StationFeatureCollection
	readJSON(t, filepath.Join(dir, StationsFile), &stations)
	assert.Equal(t, "FeatureCollection", stations.Type)
	assert.Empty(t, stations.Features)
}
