package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wastenet/stations/internal/models"
	"github.com/wastenet/stations/internal/network"
	"github.com/wastenet/stations/internal/repository"
	"github.com/wastenet/stations/internal/waste"
)

// StationRepository defines the interface for station snapshot reads
type StationRepository interface {
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
	ListStations(ctx context.Context, snapshotID uuid.UUID) ([]models.Station, error)
	GetStation(ctx context.Context, snapshotID uuid.UUID, id int) (*models.Station, error)
}

// StationHandler handles HTTP requests for station graph data
type StationHandler struct {
	repo StationRepository
}

// NewStationHandler creates a new handler with the given repository
func NewStationHandler(repo StationRepository) *StationHandler {
	return &StationHandler{repo: repo}
}

// ListStationsResponse is the JSON response for GET /api/stations
type ListStationsResponse struct {
	SnapshotID uuid.UUID        `json:"snapshotId"`
	Stations   []models.Station `json:"stations"`
	Count      int              `json:"count"`
}

// GetStationResponse is the JSON response for GET /api/stations/{id}
type GetStationResponse struct {
	SnapshotID uuid.UUID      `json:"snapshotId"`
	Station    models.Station `json:"station"`
}

// GetLatestSnapshot handles GET /api/snapshots/latest
func (h *StationHandler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, snapshot)
}

// ListStations handles GET /api/stations
// Optional waste_type filters to stations offering that symbol (A, P, B, G, C, T)
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	var filter waste.Symbol
	if v := r.URL.Query().Get("waste_type"); v != "" {
		if len(v) != 1 || !waste.Symbol(v[0]).Valid() {
			writeError(w, http.StatusBadRequest, "Invalid waste_type", map[string]interface{}{
				"waste_type": v,
				"allowed":    allowedWasteTypes(),
			})
			return
		}
		filter = waste.Symbol(v[0])
	}

	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}

	stations, err := h.repo.ListStations(r.Context(), snapshot.ID)
	if err != nil {
		h.internalError(w, "Failed to retrieve stations", err)
		return
	}

	if filter != 0 {
		matched := make([]models.Station, 0, len(stations))
		for _, s := range stations {
			if strings.IndexByte(s.WasteTypes, byte(filter)) >= 0 {
				matched = append(matched, s)
			}
		}
		stations = matched
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, ListStationsResponse{
		SnapshotID: snapshot.ID,
		Stations:   stations,
		Count:      len(stations),
	})
}

// GetStation handles GET /api/stations/{id}
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(w, r)
	if !ok {
		return
	}
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}

	station, ok := h.station(w, r, snapshot.ID, id)
	if !ok {
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, GetStationResponse{SnapshotID: snapshot.ID, Station: *station})
}

// GetStationNeighbors handles GET /api/stations/{id}/neighbors
// Returns the adjacent stations in ascending ID order
func (h *StationHandler) GetStationNeighbors(w http.ResponseWriter, r *http.Request) {
	id, ok := stationID(w, r)
	if !ok {
		return
	}
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}

	station, ok := h.station(w, r, snapshot.ID, id)
	if !ok {
		return
	}

	response := models.StationNeighbors{
		StationID: station.ID,
		Neighbors: make([]models.Station, 0, len(station.Neighbors)),
	}
	for _, nid := range station.Neighbors {
		neighbor, err := h.repo.GetStation(r.Context(), snapshot.ID, nid)
		if err != nil {
			h.internalError(w, "Failed to retrieve neighbor station", err)
			return
		}
		response.Neighbors = append(response.Neighbors, *neighbor)
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, response)
}

// GetStationsText handles GET /api/stations.txt
// Returns one "<id>;<types>;<neighbors>" line per station
func (h *StationHandler) GetStationsText(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.latest(w, r)
	if !ok {
		return
	}

	stations, err := h.repo.ListStations(r.Context(), snapshot.ID)
	if err != nil {
		h.internalError(w, "Failed to retrieve stations", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=30")
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)
	for _, s := range stations {
		if _, err := fmt.Fprintln(bw, canonical(s).String()); err != nil {
			log.Printf("Warning: failed to write stations.txt: %v", err)
			return
		}
	}
	if err := bw.Flush(); err != nil {
		log.Printf("Warning: failed to write stations.txt: %v", err)
	}
}

func allowedWasteTypes() []string {
	out := make([]string, 0, len(waste.CanonicalOrder))
	for _, sym := range waste.CanonicalOrder {
		out = append(out, sym.String())
	}
	return out
}

func canonical(s models.Station) network.Canonical {
	c := network.Canonical{ID: network.StationID(s.ID), WasteTypes: s.WasteTypes}
	if len(s.Neighbors) > 0 {
		c.Neighbors = make([]network.StationID, len(s.Neighbors))
		for i, n := range s.Neighbors {
			c.Neighbors[i] = network.StationID(n)
		}
	}
	return c
}

func (h *StationHandler) latest(w http.ResponseWriter, r *http.Request) (*models.Snapshot, bool) {
	snapshot, err := h.repo.LatestSnapshot(r.Context())
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No snapshot available", nil)
		return nil, false
	}
	if err != nil {
		h.internalError(w, "Failed to retrieve latest snapshot", err)
		return nil, false
	}
	return snapshot, true
}

func (h *StationHandler) station(w http.ResponseWriter, r *http.Request, snapshotID uuid.UUID, id int) (*models.Station, bool) {
	station, err := h.repo.GetStation(r.Context(), snapshotID, id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Station not found", map[string]interface{}{
			"id": id,
		})
		return nil, false
	}
	if err != nil {
		h.internalError(w, "Failed to retrieve station", err)
		return nil, false
	}
	return station, true
}

func (h *StationHandler) internalError(w http.ResponseWriter, message string, err error) {
	writeError(w, http.StatusInternalServerError, message, map[string]interface{}{
		"internal": err.Error(),
	})
}

func stationID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer", map[string]interface{}{
			"id": raw,
		})
		return 0, false
	}
	return id, true
}
