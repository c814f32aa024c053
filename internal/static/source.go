// Package static reads the station and region imports from files, SQLite or
// Postgres.
package static

import (
	"context"
	"fmt"
	"sort"

	"github.com/karina-peters/metro-map/internal/config"
	"github.com/karina-peters/metro-map/internal/metro"
)

// Source provides the static station and region imports
type Source interface {
	Stations(ctx context.Context) ([]metro.RawStation, error)
	Regions(ctx context.Context) ([]metro.RawRegion, error)
	Close() error
}

// Open returns the source selected by cfg.StaticSource
func Open(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.StaticSource {
	case config.SourceFile:
		return NewFileSource(cfg.StaticDataDir), nil
	case config.SourceSQLite:
		return OpenSQLite(cfg.SQLiteDatabase)
	case config.SourcePostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown static source %q", cfg.StaticSource)
	}
}

// regionRow is one row of the region_lines table. Rows with an empty line
// code stand for a region without lines.
type regionRow struct {
	region   string
	position int
	line     metro.RawRegionLine
}

// groupRegionRows rebuilds region records from rows, ordered by region
// position
func groupRegionRows(rows []regionRow) []metro.RawRegion {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].position < rows[j].position
	})

	var regions []metro.RawRegion
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.region]
		if !ok {
			i = len(regions)
			index[r.region] = i
			regions = append(regions, metro.RawRegion{Name: r.region})
		}
		if r.line.LineCode != "" {
			regions[i].Lines = append(regions[i].Lines, r.line)
		}
	}
	return regions
}
