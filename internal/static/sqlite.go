package static

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/karina-peters/metro-map/internal/metro"
)

// schemaSQL is shared by the SQLite and Postgres stores
//
//go:embed schema.sql
var schemaSQL string

// SQLiteSource reads the static dataset from a SQLite database
type SQLiteSource struct {
	conn *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and makes sure the
// schema exists
func OpenSQLite(dbPath string) (*SQLiteSource, error) {
	dsn := dbPath + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; reads happen once at startup
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Printf("Connected to SQLite database: %s", dbPath)
	return &SQLiteSource{conn: conn}, nil
}

// Close closes the database connection
func (s *SQLiteSource) Close() error {
	return s.conn.Close()
}

// Stations reads stations in import order
func (s *SQLiteSource) Stations(ctx context.Context) ([]metro.RawStation, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT code, name FROM stations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var out []metro.RawStation
	for rows.Next() {
		var st metro.RawStation
		if err := rows.Scan(&st.Code, &st.Name); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Regions reads regions in import order with their line bounds
func (s *SQLiteSource) Regions(ctx context.Context) ([]metro.RawRegion, error) {
	rows, err := s.conn.QueryContext(ctx, `
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
	defer rows.Close()

	var result []regionRow
	for rows.Next() {
		var r regionRow
		if err := rows.Scan(&r.region, &r.position, &r.line.LineCode, &r.line.Direction, &r.line.Origin, &r.line.Terminus); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupRegionRows(result), nil
}

// Import replaces the stored dataset in one transaction
func (s *SQLiteSource) Import(ctx context.Context, stations []metro.RawStation, regions []metro.RawRegion) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM region_lines`, `DELETE FROM regions`, `DELETE FROM stations`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear dataset: %w", err)
		}
	}

	for i, st := range stations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stations (code, name, position) VALUES (?, ?, ?)
			 ON CONFLICT(code) DO UPDATE SET name = excluded.name`,
			st.Code, st.Name, i); err != nil {
			return fmt.Errorf("failed to insert station %s: %w", st.Code, err)
		}
	}

	for i, r := range regions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO regions (name, position) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			r.Name, i); err != nil {
			return fmt.Errorf("failed to insert region %s: %w", r.Name, err)
		}
		for _, l := range r.Lines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO region_lines (region, line_code, direction, origin, terminus) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(region, line_code, direction) DO UPDATE SET origin = excluded.origin, terminus = excluded.terminus`,
				r.Name, l.LineCode, l.Direction, l.Origin, l.Terminus); err != nil {
				return fmt.Errorf("failed to insert bounds for %s in %s: %w", metro.LineIdentity(l.LineCode, l.Direction), r.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	log.Printf("Imported %d stations and %d regions", len(stations), len(regions))
	return nil
}
