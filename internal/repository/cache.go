package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/google/uuid"

	"github.com/wastenet/stations/internal/models"
)

// StationRepository is implemented by the SQLite and PostgreSQL readers
type StationRepository interface {
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
	ListStations(ctx context.Context, snapshotID uuid.UUID) ([]models.Station, error)
	GetStation(ctx context.Context, snapshotID uuid.UUID, id int) (*models.Station, error)
	Ping(ctx context.Context) error
}

const latestKey = "latest"

// CachedStationRepository keeps recent reads in an LRU cache. Snapshot
// contents never change once written, so only the latest-snapshot lookup
// depends on the TTL to pick up new builds.
type CachedStationRepository struct {
	next  StationRepository
	cache gcache.Cache
}

// NewCachedStationRepository wraps next with a cache of size entries.
// A non-positive ttl keeps entries until evicted. Cached values are shared
// between callers and must not be modified.
func NewCachedStationRepository(next StationRepository, size int, ttl time.Duration) *CachedStationRepository {
	if size < 1 {
		size = 1
	}
	builder := gcache.New(size).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &CachedStationRepository{
		next:  next,
		cache: builder.Build(),
	}
}

func (c *CachedStationRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if cached, err := c.cache.Get(latestKey); err == nil {
		return cached.(*models.Snapshot), nil
	}

	snapshot, err := c.next.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(latestKey, snapshot)
	return snapshot, nil
}

func (c *CachedStationRepository) ListStations(ctx context.Context, snapshotID uuid.UUID) ([]models.Station, error) {
	key := "stations:" + snapshotID.String()
	if cached, err := c.cache.Get(key); err == nil {
		return cached.([]models.Station), nil
	}

	stations, err := c.next.ListStations(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, stations)
	return stations, nil
}

func (c *CachedStationRepository) GetStation(ctx context.Context, snapshotID uuid.UUID, id int) (*models.Station, error) {
	key := fmt.Sprintf("station:%s:%d", snapshotID, id)
	if cached, err := c.cache.Get(key); err == nil {
		return cached.(*models.Station), nil
	}

	station, err := c.next.GetStation(ctx, snapshotID, id)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, station)
	return station, nil
}

// Ping is never cached
func (c *CachedStationRepository) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Purge drops every cached entry
func (c *CachedStationRepository) Purge() {
	c.cache.Purge()
}
