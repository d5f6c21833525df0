package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/wastenet/stations/internal/config"
	"github.com/wastenet/stations/internal/handlers"
	"github.com/wastenet/stations/internal/repository"
)

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	config.LoadDotEnv(".")
	cfg := config.Load()

	var (
		repo    repository.StationRepository
		closeDB func()
	)

	if cfg.DatabaseURL != "" {
		log.Println("Connecting to PostgreSQL database")
		pg, err := repository.NewPostgresStationRepository(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		repo, closeDB = pg, pg.Close
	} else {
		if cfg.DatabasePath == "" {
			log.Fatalf("No database configured: set STATIONS_DATABASE or DATABASE_URL")
		}
		log.Printf("Connecting to SQLite database: %s", cfg.DatabasePath)
		sqliteDB, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		repo, closeDB = repository.NewSQLiteStationRepository(sqliteDB.GetDB()), func() { sqliteDB.Close() }
	}
	defer closeDB()

	log.Println("Database connection established")

	cached := repository.NewCachedStationRepository(repo, cfg.CacheSize, cfg.CacheTTL)
	r := newRouter(cached, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API server starting on :%s", cfg.Port)
		log.Println("Station endpoints:")
		log.Println("  GET /api/snapshots/latest")
		log.Println("  GET /api/stations")
		log.Println("  GET /api/stations.txt")
		log.Println("  GET /api/stations/{id}")
		log.Println("  GET /api/stations/{id}/neighbors")
		log.Println("Health:")
		log.Println("  GET /health (with database check)")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Goodbye!")
}

func newRouter(repo repository.StationRepository, cfg *config.Config) http.Handler {
	stationHandler := handlers.NewStationHandler(repo)
	healthHandler := handlers.NewHealthHandler(repo)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.GetHealth)

	r.Get("/api/snapshots/latest", stationHandler.GetLatestSnapshot)
	r.Get("/api/stations", stationHandler.ListStations)
	r.Get("/api/stations.txt", stationHandler.GetStationsText)
	r.Get("/api/stations/{id}", stationHandler.GetStation)
	r.Get("/api/stations/{id}/neighbors", stationHandler.GetStationNeighbors)

	// GeoJSON exports written by the stations CLI
	if cfg.GeoJSONDir != "" {
		fs := http.FileServer(http.Dir(cfg.GeoJSONDir))
		r.Handle("/geojson/*", http.StripPrefix("/geojson/", fs))
	}

	return r
}
