package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/wastenet/stations/internal/config"
	"github.com/wastenet/stations/internal/dataset"
	"github.com/wastenet/stations/internal/db"
	"github.com/wastenet/stations/internal/export"
	"github.com/wastenet/stations/internal/listing"
	"github.com/wastenet/stations/internal/metrics"
	"github.com/wastenet/stations/internal/network"
)

const usage = `Usage: stations [-t A,P] [-c min-max] [-p Y|N] [-s] [-legacy] [-geojson dir] [-db path] [-v] containers.csv paths.csv`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv(".")
	os.Exit(run(ctx, config.Load(), os.Args[1:], os.Stdout, os.Stderr))
}

// errUsage is returned once the flag set has already reported the problem
var errUsage = errors.New("invalid usage")

type options struct {
	stationMode bool
	legacy      bool
	verbose     bool
	geojsonDir  string
	dbPath      string
	filter      listing.Filter
	containers  string
	paths       string
}

func parseArgs(cfg *config.Config, args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("stations", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	wasteTypes := fs.String("t", "", "Comma separated waste types to list (A,P,B,G,C,T)")
	capacity := fs.String("c", "", "Capacity range to list, min-max")
	public := fs.String("p", "", "List only public (Y) or private (N) containers")
	stationMode := fs.Bool("s", false, "Print the station graph instead of the container listing")
	legacy := fs.Bool("legacy", cfg.LegacyAdjacency, "Record adjacency only from the merging station")
	geojsonDir := fs.String("geojson", cfg.GeoJSONDir, "Write GeoJSON exports to this directory (station mode)")
	dbPath := fs.String("db", cfg.DatabasePath, "Write a snapshot to this SQLite database (station mode)")
	verbose := fs.Bool("v", false, "Log build progress and graph statistics to stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, errUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return nil, errUsage
	}

	opts := &options{
		stationMode: *stationMode,
		legacy:      *legacy,
		verbose:     *verbose,
		geojsonDir:  *geojsonDir,
		dbPath:      *dbPath,
		filter:      listing.NewFilter(),
		containers:  fs.Arg(0),
		paths:       fs.Arg(1),
	}

	var err error
	if opts.filter.WasteTypes, err = listing.ParseWasteTypes(*wasteTypes); err != nil {
		return nil, err
	}
	if *capacity != "" {
		if opts.filter.CapacityMin, opts.filter.CapacityMax, err = listing.ParseCapacity(*capacity); err != nil {
			return nil, err
		}
	}
	if *public != "" {
		if opts.filter.Public, err = listing.ParsePublic(*public); err != nil {
			return nil, err
		}
	}

	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(cfg, args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 1
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	containers, err := dataset.LoadContainers(opts.containers)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid File %s.\n", opts.containers)
		return 1
	}
	paths, err := dataset.LoadPaths(opts.paths)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid File %s.\n", opts.paths)
		return 1
	}
	tables := &dataset.Tables{Containers: containers, Paths: paths}

	var logger *log.Logger
	if opts.verbose {
		logger = log.New(stderr, "", log.LstdFlags)
	}

	if !opts.stationMode {
		if err := listing.Write(stdout, tables.Containers, network.NewResolver(tables.Paths), opts.filter); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	builderOpts := []network.Option{network.WithTolerance(cfg.Tolerance)}
	if opts.legacy {
		builderOpts = append(builderOpts, network.WithLegacyAdjacency())
	}
	if logger != nil {
		builderOpts = append(builderOpts, network.WithLogger(logger))
	}

	builder := network.NewBuilder(tables, builderOpts...)
	g, err := builder.Build(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := network.WriteStations(stdout, g); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if opts.geojsonDir == "" && opts.dbPath == "" && logger == nil {
		return 0
	}

	stats := metrics.Summarize(g, tables, builder.Resolver())
	if logger != nil {
		logger.Printf("Stats: %d stations, %d edges, %d isolated, mean degree %.2f (sd %.2f), max station size %d",
			stats.Stations, stats.Edges, stats.IsolatedStations, stats.MeanDegree, stats.StdDevDegree, stats.MaxStationSize)
	}

	checksum, err := export.SourceChecksum(opts.containers, opts.paths)
	if err != nil {
		fmt.Fprintf(stderr, "failed to checksum inputs: %v\n", err)
		return 1
	}
	if opts.legacy {
		checksum += "+legacy"
	}

	if opts.geojsonDir != "" {
		if err := exportGeoJSON(g, tables, stats, opts.geojsonDir, checksum); err != nil {
			log.Printf("GeoJSON export failed: %v", err)
			return 1
		}
	}

	if opts.dbPath != "" {
		info := db.SnapshotInfo{
			SourceChecksum:  checksum,
			LegacyAdjacency: opts.legacy,
			Stats:           stats,
		}
		if err := exportSnapshot(ctx, g, tables, info, opts.dbPath, cfg); err != nil {
			log.Printf("Database export failed: %v", err)
			return 1
		}
	}

	return 0
}

func exportGeoJSON(g *network.Graph, tables *dataset.Tables, stats metrics.GraphStats, dir, checksum string) error {
	if !export.NeedsRefresh(filepath.Join(dir, export.ManifestName), checksum) {
		log.Printf("GeoJSON in %s is up to date, skipping", dir)
		return nil
	}
	return export.Generate(g, tables, stats, dir, checksum)
}

func exportSnapshot(ctx context.Context, g *network.Graph, tables *dataset.Tables, info db.SnapshotInfo, path string, cfg *config.Config) error {
	database, err := db.Connect(path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	snapshotID, err := database.SaveGraph(ctx, g, tables, info)
	if err != nil {
		return err
	}
	log.Printf("Snapshot %s saved (%d stations)", snapshotID, g.Len())

	if err := database.Cleanup(ctx, cfg.RetentionDuration); err != nil {
		log.Printf("Cleanup error: %v", err)
	}
	return nil
}
