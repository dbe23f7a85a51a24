package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects to the run history database and creates the schema.
// For sqlite the DSN is a file path; for postgres a connection string.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("no DSN configured for %s", driver)
	}

	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, driver: driver}

	if driver == DriverSQLite {
		// A single writer avoids SQLITE_BUSY on the shared file.
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the name of the SQL driver in use
func (db *DB) Driver() string {
	return db.driver
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.driver == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	_, err := db.conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS runs (
			id %s,
			venue TEXT NOT NULL,
			listing_url TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			papers_count INTEGER NOT NULL DEFAULT 0,
			average_rating DOUBLE PRECISION,
			reviewer_average DOUBLE PRECISION,
			last_error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			CONSTRAINT valid_status CHECK (status IN ('in_progress', 'done', 'failed'))
		)
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS papers (
			id %s,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			average_rating DOUBLE PRECISION NOT NULL,
			UNIQUE (run_id, url)
		)
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create papers table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS paper_ratings (
			id %s,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			score DOUBLE PRECISION
		)
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create paper_ratings table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_runs_venue ON runs(venue)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on runs.venue: %v\n", err)
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_papers_run_id ON papers(run_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on papers.run_id: %v\n", err)
	}

	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
