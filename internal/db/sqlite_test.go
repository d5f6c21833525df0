package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/metrics"
	"github.com/wastenet/stations/internal/network"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "stations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func fixture(t *testing.T) (*network.Graph, *dataset.Tables, metrics.GraphStats) {
	t.Helper()
	tables := &dataset.Tables{
		Containers: dataset.ContainerTable{
			{ID: 1, X: 0, Y: 0, WasteLabel: "Paper", Capacity: 3000, Street: "Main", Number: "1", Public: 1},
			{ID: 2, X: 0, Y: 0, WasteLabel: "Textile", Capacity: 1000, Street: "Main", Number: "1"},
			{ID: 3, X: 5, Y: 5, WasteLabel: "Biodegradable waste", Capacity: 2000, Street: "Side", Number: "2"},
		},
		Paths: dataset.PathTable{
			{A: 1, B: 3, Distance: 7},
		},
	}
	b := network.NewBuilder(tables)
	g, err := b.Build(context.Background())
	require.NoError(t, err)
	return g, tables, metrics.Summarize(g, tables, b.Resolver())
}

func count(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Conn().QueryRow(query, args...).Scan(&n))
	return n
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.EnsureSchema(context.Background()))
	assert.Contains(t, GetSchemaSQL(), "CREATE TABLE IF NOT EXISTS stations")
}

func TestSaveGraph(t *testing.T) {
	db := openTestDB(t)
	g, tables, stats := fixture(t)

	id, err := db.SaveGraph(context.Background(), g, tables, SnapshotInfo{
		SourceChecksum: "abc",
		Stats:          stats,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM stations WHERE snapshot_id = ?", id))
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM station_containers WHERE snapshot_id = ?", id))
	// One undirected edge stored from both ends
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM station_neighbors WHERE snapshot_id = ?", id))

	var wasteTypes, checksum, statsJSON string
	var stationCount int
	require.NoError(t, db.Conn().QueryRow(
		"SELECT waste_types FROM stations WHERE snapshot_id = ? AND station_id = 1", id,
	).Scan(&wasteTypes))
	require.NoError(t, db.Conn().QueryRow(
		"SELECT source_checksum, station_count, stats_json FROM snapshots WHERE snapshot_id = ?", id,
	).Scan(&checksum, &stationCount, &statsJSON))

	assert.Equal(t, "PT", wasteTypes)
	assert.Equal(t, "abc", checksum)
	assert.Equal(t, 2, stationCount)
	assert.True(t, strings.Contains(statsJSON, `"stations":2`))
}

func TestSaveGraphCancelled(t *testing.T) {
	db := openTestDB(t)
	g, tables, stats := fixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.SaveGraph(ctx, g, tables, SnapshotInfo{Stats: stats})
	require.Error(t, err)
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM snapshots"))
}

func TestCleanupKeepsLatest(t *testing.T) {
	db := openTestDB(t)
	g, tables, stats := fixture(t)
	ctx := context.Background()

	old := time.Now().Add(-30 * 24 * time.Hour)
	oldID, err := db.SaveGraph(ctx, g, tables, SnapshotInfo{CreatedAt: old, Stats: stats})
	require.NoError(t, err)
	olderID, err := db.SaveGraph(ctx, g, tables, SnapshotInfo{CreatedAt: old.Add(-time.Hour), Stats: stats})
	require.NoError(t, err)

	// Both are expired; the newer of the two survives as the latest snapshot
	require.NoError(t, db.Cleanup(ctx, 24*time.Hour))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM snapshots WHERE snapshot_id = ?", oldID))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM snapshots WHERE snapshot_id = ?", olderID))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM stations WHERE snapshot_id = ?", olderID))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM station_neighbors WHERE snapshot_id = ?", olderID))

	newID, err := db.SaveGraph(ctx, g, tables, SnapshotInfo{Stats: stats})
	require.NoError(t, err)
	require.NoError(t, db.Cleanup(ctx, 24*time.Hour))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM snapshots WHERE snapshot_id = ?", oldID))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM snapshots WHERE snapshot_id = ?", newID))
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM stations"))
}
