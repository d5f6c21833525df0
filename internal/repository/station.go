package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wastenet/stations/internal/db"
	"github.com/wastenet/stations/internal/models"
)

// ErrNotFound is returned when a snapshot or station does not exist
var ErrNotFound = errors.New("not found")

// rows is the subset of database/sql and pgx row iteration used here
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// queryFunc runs a query written with ? placeholders. The returned func
// releases the rows.
type queryFunc func(ctx context.Context, query string, args ...any) (rows, func(), error)

const latestSnapshotQuery = `
	SELECT
		snapshot_id,
		created_at_utc,
		source_checksum,
		legacy_adjacency,
		container_count,
		path_count,
		station_count,
		edge_count,
		stats_json
	FROM snapshots
	ORDER BY created_at_utc DESC
	LIMIT 1
`

const stationsQuery = `
	SELECT station_id, x, y, waste_types
	FROM stations
	WHERE snapshot_id = ?
`

const containersQuery = `
	SELECT station_id, container_id, waste_label, capacity, street, house_number, is_public
	FROM station_containers
	WHERE snapshot_id = ?
`

const neighborsQuery = `
	SELECT station_id, neighbor_id
	FROM station_neighbors
	WHERE snapshot_id = ?
`

func latestSnapshot(ctx context.Context, query queryFunc) (*models.Snapshot, error) {
	rs, done, err := query(ctx, latestSnapshotQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer done()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return nil, fmt.Errorf("failed to read latest snapshot: %w", err)
		}
		return nil, ErrNotFound
	}

	var (
		id, createdAt, statsJSON string
		legacy                   int
		s                        models.Snapshot
	)
	if err := rs.Scan(
		&id, &createdAt, &s.SourceChecksum, &legacy,
		&s.ContainerCount, &s.PathCount, &s.StationCount, &s.EdgeCount, &statsJSON,
	); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q: %w", id, err)
	}
	if s.CreatedAt, err = time.Parse(db.TimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid snapshot time %q: %w", createdAt, err)
	}
	s.LegacyAdjacency = legacy != 0
	if statsJSON != "" {
		s.Stats = []byte(statsJSON)
	}

	return &s, nil
}

// loadStations reads every station of a snapshot, or only stationID when
// it is non-nil, ordered by station ID.
func loadStations(ctx context.Context, query queryFunc, snapshotID uuid.UUID, stationID *int) ([]models.Station, error) {
	filter, args := "", []any{snapshotID.String()}
	if stationID != nil {
		filter = " AND station_id = ?"
		args = append(args, *stationID)
	}

	set := newStationSet()

	err := scanAll(ctx, query, stationsQuery+filter+" ORDER BY station_id", args, func(rs rows) error {
		var s models.Station
		if err := rs.Scan(&s.ID, &s.X, &s.Y, &s.WasteTypes); err != nil {
			return err
		}
		set.add(s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	if len(set.list) == 0 {
		return set.list, nil
	}

	err = scanAll(ctx, query, containersQuery+filter+" ORDER BY station_id, member_index", args, func(rs rows) error {
		var (
			sid, public int
			c           models.StationContainer
		)
		if err := rs.Scan(&sid, &c.ID, &c.WasteLabel, &c.Capacity, &c.Street, &c.Number, &public); err != nil {
			return err
		}
		c.Public = public == 1
		if s := set.get(sid); s != nil {
			s.Containers = append(s.Containers, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load station containers: %w", err)
	}

	err = scanAll(ctx, query, neighborsQuery+filter+" ORDER BY station_id, neighbor_id", args, func(rs rows) error {
		var sid, nid int
		if err := rs.Scan(&sid, &nid); err != nil {
			return err
		}
		if s := set.get(sid); s != nil {
			s.Neighbors = append(s.Neighbors, nid)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load station neighbors: %w", err)
	}

	return set.list, nil
}

func getStation(ctx context.Context, query queryFunc, snapshotID uuid.UUID, id int) (*models.Station, error) {
	stations, err := loadStations(ctx, query, snapshotID, &id)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, ErrNotFound
	}
	return &stations[0], nil
}

func scanAll(ctx context.Context, query queryFunc, q string, args []any, scan func(rows) error) error {
	rs, done, err := query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer done()

	for rs.Next() {
		if err := scan(rs); err != nil {
			return err
		}
	}
	return rs.Err()
}

type stationSet struct {
	list  []models.Station
	index map[int]int
}

func newStationSet() *stationSet {
	return &stationSet{list: []models.Station{}, index: make(map[int]int)}
}

func (s *stationSet) add(st models.Station) {
	st.Containers = []models.StationContainer{}
	st.Neighbors = []int{}
	s.index[st.ID] = len(s.list)
	s.list = append(s.list, st)
}

func (s *stationSet) get(id int) *models.Station {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.list[i]
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
