package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/metrics"
	"github.com/wastenet/stations/internal/network"
)

// GeneratorVersion is bumped whenever the layout of generated files changes
const GeneratorVersion = "1"

// Output file names
const (
	StationsFile  = "Station.geojson"
	AdjacencyFile = "Adjacency.geojson"
	StatsFile     = "GraphStats.json"
	ManifestName  = "manifest.json"
)

// StationFeatureCollection is a GeoJSON FeatureCollection for stations
type StationFeatureCollection struct {
	Type     string           `json:"type"`
	Features []StationFeature `json:"features"`
}

// StationFeature represents a station GeoJSON feature
type StationFeature struct {
	Type       string        `json:"type"`
	ID         int           `json:"id"`
	Properties StationProps  `json:"properties"`
	Geometry   PointGeometry `json:"geometry"`
}

// StationProps contains station properties
type StationProps struct {
	ID         int      `json:"id"`
	WasteTypes string   `json:"waste_types"`
	Containers []int64  `json:"containers"`
	Neighbors  []int    `json:"neighbors"`
	Addresses  []string `json:"addresses,omitempty"`
}

// PointGeometry represents Point geometry
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// AdjacencyFeatureCollection is a GeoJSON FeatureCollection of station edges
type AdjacencyFeatureCollection struct {
	Type     string             `json:"type"`
	Features []AdjacencyFeature `json:"features"`
}

// AdjacencyFeature is one undirected station edge
type AdjacencyFeature struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Properties AdjacencyProps     `json:"properties"`
	Geometry   LineStringGeometry `json:"geometry"`
}

// AdjacencyProps contains edge properties
type AdjacencyProps struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// LineStringGeometry represents LineString geometry
type LineStringGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Manifest represents the manifest.json structure
type Manifest struct {
	UpdatedAt        string       `json:"updated_at"`
	GeneratorVersion string       `json:"generator_version"`
	SourceChecksum   string       `json:"source_checksum"`
	Stations         ManifestFile `json:"stations"`
	Adjacency        ManifestFile `json:"adjacency"`
	StatsPath        string       `json:"stats_path"`
	StationCount     int          `json:"station_count"`
	EdgeCount        int          `json:"edge_count"`
}

// ManifestFile represents a file entry
type ManifestFile struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Generate writes the station graph as GeoJSON plus a manifest into outputDir.
// Station coordinates are written as given in the containers table
// ([x, y]), without projection.
func Generate(g *network.Graph, tables *dataset.Tables, stats metrics.GraphStats, outputDir, sourceChecksum string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	nowStr := time.Now().UTC().Format(time.RFC3339)

	stationsChecksum, err := generateStations(g, tables, outputDir)
	if err != nil {
		return fmt.Errorf("failed to generate stations: %w", err)
	}

	edges := g.Edges()
	adjacencyChecksum, err := generateAdjacency(g, edges, outputDir)
	if err != nil {
		return fmt.Errorf("failed to generate adjacency: %w", err)
	}

	if err := writeJSON(filepath.Join(outputDir, StatsFile), stats); err != nil {
		return fmt.Errorf("failed to write %s: %w", StatsFile, err)
	}

	manifest := Manifest{
		UpdatedAt:        nowStr,
		GeneratorVersion: GeneratorVersion,
		SourceChecksum:   sourceChecksum,
		Stations: ManifestFile{
			Path:     StationsFile,
			Checksum: stationsChecksum,
		},
		Adjacency: ManifestFile{
			Path:     AdjacencyFile,
			Checksum: adjacencyChecksum,
		},
		StatsPath:    StatsFile,
		StationCount: g.Len(),
		EdgeCount:    len(edges),
	}

	if err := writeJSON(filepath.Join(outputDir, ManifestName), manifest); err != nil {
		return fmt.Errorf("failed to write %s: %w", ManifestName, err)
	}

	log.Printf("GeoJSON: generated %d stations, %d edges in %s", g.Len(), len(edges), outputDir)
	return nil
}

func generateStations(g *network.Graph, tables *dataset.Tables, outputDir string) (string, error) {
	addresses := make(map[dataset.ContainerID]string, len(tables.Containers))
	for _, c := range tables.Containers {
		if _, ok := addresses[c.ID]; !ok && c.Street != "" {
			addresses[c.ID] = joinAddress(c.Street, c.Number)
		}
	}

	fc := StationFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]StationFeature, 0, g.Len()),
	}

	for _, s := range g.Stations {
		canonical := network.Canonicalize(s)

		containers := make([]int64, 0, len(s.Members))
		var stationAddresses []string
		seen := make(map[string]bool)
		for _, m := range s.Members {
			containers = append(containers, int64(m))
			if a, ok := addresses[m]; ok && !seen[a] {
				seen[a] = true
				stationAddresses = append(stationAddresses, a)
			}
		}

		neighbors := make([]int, 0, len(canonical.Neighbors))
		for _, n := range canonical.Neighbors {
			neighbors = append(neighbors, int(n))
		}

		fc.Features = append(fc.Features, StationFeature{
			Type: "Feature",
			ID:   int(s.ID),
			Properties: StationProps{
				ID:         int(s.ID),
				WasteTypes: canonical.WasteTypes,
				Containers: containers,
				Neighbors:  neighbors,
				Addresses:  stationAddresses,
			},
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{s.X, s.Y},
			},
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(outputDir, StationsFile), data, 0644); err != nil {
		return "", err
	}

	return sha256Sum(data), nil
}

func generateAdjacency(g *network.Graph, edges []network.Edge, outputDir string) (string, error) {
	fc := AdjacencyFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]AdjacencyFeature, 0, len(edges)),
	}

	for _, e := range edges {
		from, okFrom := g.Station(e.A)
		to, okTo := g.Station(e.B)
		if !okFrom || !okTo {
			log.Printf("Warning: edge %d-%d references an unknown station, skipping", e.A, e.B)
			continue
		}

		fc.Features = append(fc.Features, AdjacencyFeature{
			Type: "Feature",
			ID:   fmt.Sprintf("%d-%d", e.A, e.B),
			Properties: AdjacencyProps{
				From: int(e.A),
				To:   int(e.B),
			},
			Geometry: LineStringGeometry{
				Type:        "LineString",
				Coordinates: [][2]float64{{from.X, from.Y}, {to.X, to.Y}},
			},
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(outputDir, AdjacencyFile), data, 0644); err != nil {
		return "", err
	}

	return sha256Sum(data), nil
}

func joinAddress(street, number string) string {
	if number == "" {
		return street
	}
	return street + " " + number
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func sha256Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
