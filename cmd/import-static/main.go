// Command import-static loads stations and regions from JSON or YAML files
// and writes them to SQLite or Postgres, so the server can run with
// STATIC_SOURCE=sqlite or STATIC_SOURCE=postgres.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/karina-peters/metro-map/internal/config"
	"github.com/karina-peters/metro-map/internal/metro"
	"github.com/karina-peters/metro-map/internal/static"
)

// importer is implemented by the database-backed static sources
type importer interface {
	static.Source
	Import(ctx context.Context, stations []metro.RawStation, regions []metro.RawRegion) error
}

func main() {
	config.LoadEnvFiles(".env", ".env.local")
	cfg := config.Load()

	dataDir := flag.String("data", cfg.StaticDataDir, "directory holding stations and regions files")
	target := flag.String("target", config.SourceSQLite, "destination: sqlite or postgres")
	dbPath := flag.String("db", cfg.SQLiteDatabase, "SQLite database path")
	databaseURL := flag.String("database-url", cfg.DatabaseURL, "Postgres connection string")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	files := static.NewFileSource(*dataDir)
	stations, err := files.Stations(ctx)
	if err != nil {
		log.Fatalf("Failed to read stations: %v", err)
	}
	regions, err := files.Regions(ctx)
	if err != nil {
		log.Fatalf("Failed to read regions: %v", err)
	}

	// Reject datasets the server would refuse to load
	if err := metro.NewStationDirectory().Load(stations); err != nil {
		log.Fatalf("Invalid stations: %v", err)
	}
	if err := metro.NewRegionIndex().Load(regions); err != nil {
		log.Fatalf("Invalid regions: %v", err)
	}

	var dst importer
	switch *target {
	case config.SourceSQLite:
		dst, err = static.OpenSQLite(*dbPath)
	case config.SourcePostgres:
		dst, err = static.OpenPostgres(ctx, *databaseURL)
	default:
		log.Fatalf("Unknown target %q (want sqlite or postgres)", *target)
	}
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *target, err)
	}
	defer dst.Close()

	if err := dst.Import(ctx, stations, regions); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Done: %d stations, %d regions written to %s", len(stations), len(regions), *target)
}
