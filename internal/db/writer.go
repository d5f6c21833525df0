package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/metrics"
	"github.com/wastenet/stations/internal/network"
)

// SnapshotInfo describes the build a snapshot was taken from
type SnapshotInfo struct {
	CreatedAt       time.Time
	SourceChecksum  string
	LegacyAdjacency bool
	Stats           metrics.GraphStats
}

// SaveGraph writes g as a new snapshot in a single transaction and returns
// the snapshot ID. Readers never observe a partially written snapshot.
func (db *DB) SaveGraph(ctx context.Context, g *network.Graph, tables *dataset.Tables, info SnapshotInfo) (string, error) {
	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshotID, err := createSnapshot(ctx, tx, info)
	if err != nil {
		return "", err
	}

	stationStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stations (snapshot_id, station_id, x, y, waste_types)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare station statement: %w", err)
	}
	defer stationStmt.Close()

	memberStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO station_containers (
			snapshot_id, station_id, container_id, member_index,
			waste_label, capacity, street, house_number, is_public
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare container statement: %w", err)
	}
	defer memberStmt.Close()

	neighborStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO station_neighbors (snapshot_id, station_id, neighbor_id)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare neighbor statement: %w", err)
	}
	defer neighborStmt.Close()

	rows := firstRows(tables)

	for _, s := range g.Stations {
		canonical := network.Canonicalize(s)

		if _, err := stationStmt.ExecContext(ctx, snapshotID, int(s.ID), s.X, s.Y, canonical.WasteTypes); err != nil {
			return "", fmt.Errorf("failed to insert station %d: %w", s.ID, err)
		}

		for i, m := range s.Members {
			c := rows[m]
			if _, err := memberStmt.ExecContext(ctx,
				snapshotID, int(s.ID), int64(m), i, c.WasteLabel,
				c.Capacity, c.Street, c.Number, c.Public,
			); err != nil {
				return "", fmt.Errorf("failed to insert container %d of station %d: %w", m, s.ID, err)
			}
		}

		for _, n := range canonical.Neighbors {
			if _, err := neighborStmt.ExecContext(ctx, snapshotID, int(s.ID), int(n)); err != nil {
				return "", fmt.Errorf("failed to insert neighbor %d of station %d: %w", n, s.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return snapshotID, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func createSnapshot(ctx context.Context, tx execer, info SnapshotInfo) (string, error) {
	snapshotID := uuid.New().String()

	createdAt := info.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	statsJSON, err := json.Marshal(info.Stats)
	if err != nil {
		return "", fmt.Errorf("failed to encode stats: %w", err)
	}

	legacy := 0
	if info.LegacyAdjacency {
		legacy = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (
			snapshot_id, created_at_utc, source_checksum, legacy_adjacency,
			container_count, path_count, station_count, edge_count, stats_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snapshotID, createdAt.UTC().Format(TimeLayout), info.SourceChecksum, legacy,
		info.Stats.Containers, info.Stats.Paths, info.Stats.Stations, info.Stats.Edges, string(statsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	return snapshotID, nil
}

// firstRows maps each container ID to its first row in the table
func firstRows(tables *dataset.Tables) map[dataset.ContainerID]dataset.Container {
	rows := make(map[dataset.ContainerID]dataset.Container, len(tables.Containers))
	for _, c := range tables.Containers {
		if _, ok := rows[c.ID]; !ok {
			rows[c.ID] = c
		}
	}
	return rows
}
