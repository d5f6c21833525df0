package db

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Cleanup deletes snapshots older than the retention duration. The most
// recent snapshot is always kept so readers have something to serve.
func (db *DB) Cleanup(ctx context.Context, retention time.Duration) error {
	if retention < time.Hour {
		retention = time.Hour
	}
	cutoff := time.Now().Add(-retention).UTC().Format(TimeLayout)

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const expired = `
		SELECT snapshot_id FROM snapshots
		WHERE created_at_utc < ?
		  AND snapshot_id <> (SELECT snapshot_id FROM snapshots ORDER BY created_at_utc DESC LIMIT 1)
	`

	tables := []string{"station_neighbors", "station_containers", "stations", "snapshots"}

	totalDeleted := 0
	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s WHERE snapshot_id IN (%s)", table, expired)
		result, err := tx.ExecContext(ctx, query, cutoff)
		if err != nil {
			return fmt.Errorf("failed to cleanup %s: %w", table, err)
		}
		rows, _ := result.RowsAffected()
		totalDeleted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	if totalDeleted > 0 {
		log.Printf("Cleanup: deleted %d records older than %s", totalDeleted, retention)
	}

	return nil
}
