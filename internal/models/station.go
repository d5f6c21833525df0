package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Snapshot is one stored station graph build
type Snapshot struct {
	ID              uuid.UUID       `json:"snapshotId"`
	CreatedAt       time.Time       `json:"createdAt"`
	SourceChecksum  string          `json:"sourceChecksum"`
	LegacyAdjacency bool            `json:"legacyAdjacency"`
	ContainerCount  int             `json:"containerCount"`
	PathCount       int             `json:"pathCount"`
	StationCount    int             `json:"stationCount"`
	EdgeCount       int             `json:"edgeCount"`
	Stats           json.RawMessage `json:"stats,omitempty"`
}

// Station is a stored station with its member containers and adjacency
type Station struct {
	ID         int                `json:"id"`
	X          float64            `json:"x"`
	Y          float64            `json:"y"`
	WasteTypes string             `json:"wasteTypes"` // canonical order, e.g. "APT"
	Containers []StationContainer `json:"containers"`
	Neighbors  []int              `json:"neighbors"` // ascending station IDs
}

// StationContainer is a member container as recorded in its first table row
type StationContainer struct {
	ID         int64  `json:"id"`
	WasteLabel string `json:"wasteLabel"`
	Capacity   int    `json:"capacity"`
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Public     bool   `json:"public"`
}

// StationNeighbors is the adjacency of a single station
type StationNeighbors struct {
	StationID int       `json:"stationId"`
	Neighbors []Station `json:"neighbors"`
}
