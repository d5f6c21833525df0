package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wastenet/stations/internal/models"
)

// PostgresStationRepository reads station snapshots from PostgreSQL.
// The tables are the ones created by the embedded SQLite schema.
type PostgresStationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStationRepository(ctx context.Context, databaseURL string) (*PostgresStationRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStationRepository{pool: pool}, nil
}

func (r *PostgresStationRepository) Close() {
	r.pool.Close()
}

// Pool exposes the connection pool for schema setup and tests
func (r *PostgresStationRepository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *PostgresStationRepository) query(ctx context.Context, query string, args ...any) (rows, func(), error) {
	rs, err := r.pool.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, nil, err
	}
	return rs, rs.Close, nil
}

func (r *PostgresStationRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	return latestSnapshot(ctx, r.query)
}

func (r *PostgresStationRepository) ListStations(ctx context.Context, snapshotID uuid.UUID) ([]models.Station, error) {
	return loadStations(ctx, r.query, snapshotID, nil)
}

func (r *PostgresStationRepository) GetStation(ctx context.Context, snapshotID uuid.UUID, id int) (*models.Station, error) {
	return getStation(ctx, r.query, snapshotID, id)
}

func (r *PostgresStationRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
