package static

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karina-peters/metro-map/internal/metro"
)

// PostgresSource reads the static dataset from Postgres
type PostgresSource struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and makes sure the schema exists
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Println("Connected to Postgres static dataset")
	return &PostgresSource{pool: pool}, nil
}

// Close closes the pool
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

// Stations reads stations in import order
func (s *PostgresSource) Stations(ctx context.Context) ([]metro.RawStation, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, name FROM stations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (metro.RawStation, error) {
		var st metro.RawStation
		err := row.Scan(&st.Code, &st.Name)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stations: %w", err)
	}
	return out, nil
}

// Regions reads regions in import order with their line bounds
func (s *PostgresSource) Regions(ctx context.Context) ([]metro.RawRegion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.name, r.position,
		       COALESCE(l.line_code, ''), COALESCE(l.direction, ''),
		       COALESCE(l.origin, 0), COALESCE(l.terminus, 0)
		FROM regions r
		LEFT JOIN region_lines l ON l.region = r.name
		ORDER BY r.position, l.line_code, l.direction
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (regionRow, error) {
		var r regionRow
		var position, origin, terminus int32
		err := row.Scan(&r.region, &position, &r.line.LineCode, &r.line.Direction, &origin, &terminus)
		r.position, r.line.Origin, r.line.Terminus = int(position), int(origin), int(terminus)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan regions: %w", err)
	}
	return groupRegionRows(result), nil
}

// Import replaces the stored dataset in one transaction
func (s *PostgresSource) Import(ctx context.Context, stations []metro.RawStation, regions []metro.RawRegion) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE region_lines, regions, stations`); err != nil {
		return fmt.Errorf("failed to clear dataset: %w", err)
	}

	batch := &pgx.Batch{}
	for i, st := range stations {
		batch.Queue(`INSERT INTO stations (code, name, position) VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE SET name = excluded.name`, st.Code, st.Name, i)
	}
	for i, r := range regions {
		batch.Queue(`INSERT INTO regions (name, position) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, r.Name, i)
		for _, l := range r.Lines {
			batch.Queue(`INSERT INTO region_lines (region, line_code, direction, origin, terminus) VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (region, line_code, direction) DO UPDATE SET origin = excluded.origin, terminus = excluded.terminus`,
				r.Name, l.LineCode, l.Direction, l.Origin, l.Terminus)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	log.Printf("Imported %d stations and %d regions", len(stations), len(regions))
	return nil
}
