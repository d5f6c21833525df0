package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wastenet/stations/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteDB wraps a SQL database connection for SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens a read connection to a snapshot database
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *SQLiteDB) GetDB() *sql.DB {
	return s.db
}

// SQLiteStationRepository reads station snapshots from SQLite
type SQLiteStationRepository struct {
	db *sql.DB
}

// NewSQLiteStationRepository creates a new SQLiteStationRepository
func NewSQLiteStationRepository(db *sql.DB) *SQLiteStationRepository {
	return &SQLiteStationRepository{db: db}
}

func (r *SQLiteStationRepository) query(ctx context.Context, query string, args ...any) (rows, func(), error) {
	rs, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}

// LatestSnapshot returns the most recently created snapshot
func (r *SQLiteStationRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	return latestSnapshot(ctx, r.query)
}

// ListStations returns all stations of a snapshot ordered by ID
func (r *SQLiteStationRepository) ListStations(ctx context.Context, snapshotID uuid.UUID) ([]models.Station, error) {
	return loadStations(ctx, r.query, snapshotID, nil)
}

// GetStation returns one station or ErrNotFound
func (r *SQLiteStationRepository) GetStation(ctx context.Context, snapshotID uuid.UUID, id int) (*models.Station, error) {
	return getStation(ctx, r.query, snapshotID, id)
}

// Ping checks the connection
func (r *SQLiteStationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
