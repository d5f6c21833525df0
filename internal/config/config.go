package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the stations CLI and API
type Config struct {
	// Station graph
	LegacyAdjacency bool
	Tolerance       float64

	// Exports
	DatabasePath      string
	GeoJSONDir        string
	RetentionDuration time.Duration

	// API
	Port        string
	CORSOrigins []string
	DatabaseURL string // Postgres; empty means SQLite at DatabasePath
	CacheSize   int
	CacheTTL    time.Duration
}

// LoadDotEnv loads .env and then .env.local from dir. Values in .env.local
// override .env; missing files are ignored.
func LoadDotEnv(dir string) {
	_ = godotenv.Load(dir + "/.env")
	_ = godotenv.Overload(dir + "/.env.local")
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// Station graph
		LegacyAdjacency: getEnvBool("STATIONS_LEGACY_ADJACENCY", false),
		Tolerance:       getEnvFloat("STATIONS_TOLERANCE", 1e-14),

		// Exports
		DatabasePath:      getEnv("STATIONS_DATABASE", ""),
		GeoJSONDir:        getEnv("STATIONS_GEOJSON_DIR", ""),
		RetentionDuration: time.Duration(getEnvInt("STATIONS_RETENTION_HOURS", 168)) * time.Hour,

		// API
		Port:        getEnv("PORT", "8081"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CacheSize:   getEnvInt("CACHE_SIZE", 1000),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue > 0 {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
