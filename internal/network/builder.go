package network

import (
	"context"
	"fmt"
	"log"

	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/waste"
)

// Builder turns the container and path tables into a station graph
type Builder struct {
	tables    *dataset.Tables
	resolver  *Resolver
	tolerance float64
	legacy    bool
	logger    *log.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithTolerance overrides the coordinate equality tolerance. Values <= 0 are ignored.
func WithTolerance(tolerance float64) Option {
	return func(b *Builder) {
		if tolerance > 0 {
			b.tolerance = tolerance
		}
	}
}

// WithLegacyAdjacency records an edge found while merging a container into
// an existing station only on the merging station, leaving the other side
// unaware of it. Output may then be asymmetric and depend on row order.
func WithLegacyAdjacency() Option {
	return func(b *Builder) {
		b.legacy = true
	}
}

// WithResolver reuses an existing resolver built over the same path table
func WithResolver(r *Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithLogger enables a summary log line after each build
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a builder over tables
func NewBuilder(tables *dataset.Tables, opts ...Option) *Builder {
	b := &Builder{
		tables:    tables,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.resolver == nil {
		b.resolver = NewResolver(tables.Paths)
	}
	return b
}

// Resolver returns the neighbor resolver used by the builder
func (b *Builder) Resolver() *Resolver {
	return b.resolver
}

// buildState is owned by a single Build call
type buildState struct {
	stations []*Station
	index    *coordIndex
	owner    map[dataset.ContainerID]StationID
}

// Build runs the single pass over the containers in table order and
// returns the finalized graph. It only fails if ctx is cancelled.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	st := &buildState{
		index: newCoordIndex(b.tolerance),
		owner: make(map[dataset.ContainerID]StationID),
	}

	for i, c := range b.tables.Containers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("station build interrupted at row %d: %w", i, err)
		}

		if s := st.index.find(c.X, c.Y); s != nil {
			b.merge(st, s, c)
		} else {
			b.create(st, c)
		}
	}

	g := &Graph{Stations: st.stations, owner: st.owner}
	g.Finalize()

	if b.logger != nil {
		b.logger.Printf("Stations: built %d stations from %d containers and %d paths (%d edges)",
			g.Len(), len(b.tables.Containers), len(b.tables.Paths), len(g.Edges()))
	}

	return g, nil
}

// merge adds container c to the existing station s
func (b *Builder) merge(st *buildState, s *Station, c dataset.Container) {
	s.addMember(c.ID)
	s.WasteTypes = s.WasteTypes.AddLabel(c.WasteLabel)
	st.claim(c.ID, s.ID)

	for _, n := range b.resolver.NeighborsOf(c.ID) {
		other, ok := st.stationOf(n.ID)
		if !ok || other.ID == s.ID {
			continue
		}
		s.addNeighbor(other.ID)
		if !b.legacy {
			other.addNeighbor(s.ID)
		}
	}
}

// create opens a new station at c's location
func (b *Builder) create(st *buildState, c dataset.Container) {
	s := &Station{
		ID:         StationID(len(st.stations) + 1),
		X:          c.X,
		Y:          c.Y,
		Members:    []dataset.ContainerID{c.ID},
		WasteTypes: waste.Set(0).AddLabel(c.WasteLabel),
	}

	// Resolve against stations that existed before s
	for _, n := range b.resolver.NeighborsOf(c.ID) {
		other, ok := st.stationOf(n.ID)
		if !ok || other.ID == s.ID {
			continue
		}
		s.addNeighbor(other.ID)
		other.addNeighbor(s.ID)
	}

	st.stations = append(st.stations, s)
	st.index.insert(s)
	st.claim(c.ID, s.ID)
}

// claim records the owning station of a container. The first owner is kept
// when the same container id appears on several rows.
func (st *buildState) claim(id dataset.ContainerID, sid StationID) {
	if _, ok := st.owner[id]; !ok {
		st.owner[id] = sid
	}
}

func (st *buildState) stationOf(id dataset.ContainerID) (*Station, bool) {
	sid, ok := st.owner[id]
	if !ok {
		return nil, false
	}
	return st.stations[sid-1], true
}
