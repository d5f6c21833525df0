package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wastenet/stations/internal/models"
	"github.com/wastenet/stations/internal/repository"
)

// HealthRepository defines the reads needed for health reporting
type HealthRepository interface {
	Ping(ctx context.Context) error
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// HealthHandler reports database reachability and snapshot freshness
type HealthHandler struct {
	repo HealthRepository
	now  func() time.Time
}

// NewHealthHandler creates a new handler with the given repository
func NewHealthHandler(repo HealthRepository) *HealthHandler {
	return &HealthHandler{repo: repo, now: time.Now}
}

// HealthResponse is the JSON response for GET /health
type HealthResponse struct {
	Status             string     `json:"status"` // "ok", "empty", "unavailable"
	SnapshotID         string     `json:"snapshotId,omitempty"`
	SnapshotCreatedAt  *time.Time `json:"snapshotCreatedAt,omitempty"`
	SnapshotAgeSeconds *int       `json:"snapshotAgeSeconds,omitempty"`
	StationCount       int        `json:"stationCount"`
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	snapshot, err := h.repo.LatestSnapshot(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "empty"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read latest snapshot", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	createdAt := snapshot.CreatedAt
	age := int(h.now().Sub(createdAt).Seconds())
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:             "ok",
		SnapshotID:         snapshot.ID.String(),
		SnapshotCreatedAt:  &createdAt,
		SnapshotAgeSeconds: &age,
		StationCount:       snapshot.StationCount,
	})
}
