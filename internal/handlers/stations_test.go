package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/stations/internal/models"
	"github.com/wastenet/stations/internal/repository"
)

type fakeRepository struct {
	snapshot *models.Snapshot
	stations []models.Station
	err      error
	pingErr  error
}

func (f *fakeRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.snapshot == nil {
		return nil, repository.ErrNotFound
	}
	return f.snapshot, nil
}

func (f *fakeRepository) ListStations(ctx context.Context, snapshotID uuid.UUID) ([]models.Station, error) {
	return f.stations, nil
}

func (f *fakeRepository) GetStation(ctx context.Context, snapshotID uuid.UUID, id int) (*models.Station, error) {
	for i := range f.stations {
		if f.stations[i].ID == id {
			return &f.stations[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepository) Ping(ctx context.Context) error {
	return f.pingErr
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		snapshot: &models.Snapshot{
			ID:           uuid.MustParse("6f1c2c43-1b9e-4d8e-9a55-2b7d8c3f0a11"),
			CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			StationCount: 3,
		},
		stations: []models.Station{
			{ID: 1, WasteTypes: "AP", Neighbors: []int{2, 3}},
			{ID: 2, WasteTypes: "G", Neighbors: []int{1}},
			{ID: 3, WasteTypes: "PT", Neighbors: []int{1}},
		},
	}
}

func newRouter(repo *fakeRepository) http.Handler {
	stations := NewStationHandler(repo)
	health := NewHealthHandler(repo)
	health.now = func() time.Time { return time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Get("/health", health.GetHealth)
	r.Get("/api/snapshots/latest", stations.GetLatestSnapshot)
	r.Get("/api/stations", stations.ListStations)
	r.Get("/api/stations.txt", stations.GetStationsText)
	r.Get("/api/stations/{id}", stations.GetStation)
	r.Get("/api/stations/{id}/neighbors", stations.GetStationNeighbors)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestListStations(t *testing.T) {
	rec := get(t, newRouter(newFakeRepository()), "/api/stations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ListStationsResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, "6f1c2c43-1b9e-4d8e-9a55-2b7d8c3f0a11", resp.SnapshotID.String())
}

func TestListStationsWasteTypeFilter(t *testing.T) {
	h := newRouter(newFakeRepository())

	var resp ListStationsResponse
	rec := get(t, h, "/api/stations?waste_type=P")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)

	var ids []int
	for _, s := range resp.Stations {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int{1, 3}, ids)

	rec = get(t, h, "/api/stations?waste_type=X")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "Invalid waste_type", errResp.Error)
}

func TestListStationsNoSnapshot(t *testing.T) {
	repo := newFakeRepository()
	repo.snapshot = nil

	rec := get(t, newRouter(repo), "/api/stations")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStationsRepositoryError(t *testing.T) {
	repo := newFakeRepository()
	repo.err = errors.New("database is locked")

	rec := get(t, newRouter(repo), "/api/stations")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResp ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "database is locked", errResp.Details["internal"])
}

func TestGetStation(t *testing.T) {
	h := newRouter(newFakeRepository())

	rec := get(t, h, "/api/stations/2")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp GetStationResponse
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.Station.ID)
	assert.Equal(t, "G", resp.Station.WasteTypes)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/stations/9").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stations/abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stations/0").Code)
}

func TestGetStationNeighbors(t *testing.T) {
	rec := get(t, newRouter(newFakeRepository()), "/api/stations/1/neighbors")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StationNeighbors
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.StationID)
	require.Len(t, resp.Neighbors, 2)
	assert.Equal(t, 2, resp.Neighbors[0].ID)
	assert.Equal(t, 3, resp.Neighbors[1].ID)
}

func TestGetStationsText(t *testing.T) {
	repo := newFakeRepository()
	repo.stations = append(repo.stations, models.Station{ID: 4, WasteTypes: "B"})

	rec := get(t, newRouter(repo), "/api/stations.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1;AP;2,3\n2;G;1\n3;PT;1\n4;B;\n", rec.Body.String())
}

func TestGetLatestSnapshot(t *testing.T) {
	rec := get(t, newRouter(newFakeRepository()), "/api/snapshots/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot models.Snapshot
	decode(t, rec, &snapshot)
	assert.Equal(t, 3, snapshot.StationCount)
}

func TestGetHealth(t *testing.T) {
	rec := get(t, newRouter(newFakeRepository()), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.SnapshotAgeSeconds)
	assert.Equal(t, 60, *resp.SnapshotAgeSeconds)
	assert.Equal(t, 3, resp.StationCount)
}

func TestGetHealthStates(t *testing.T) {
	empty := newFakeRepository()
	empty.snapshot = nil
	rec := get(t, newRouter(empty), "/health")
	var resp HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", resp.Status)

	down := newFakeRepository()
	down.pingErr = errors.New("connection refused")
	rec = get(t, newRouter(down), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type brokenWriter struct {
	header http.Header
	status int
}

func (b *brokenWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func (b *brokenWriter) WriteHeader(status int) {
	b.status = status
}

func TestGetStationsTextWriteFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	w := &brokenWriter{}
	newRouter(newFakeRepository()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stations.txt", nil))

	assert.Equal(t, http.StatusOK, w.status)
	assert.Contains(t, logs.String(), "failed to write stations.txt: connection reset")
}
