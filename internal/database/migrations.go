package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is one embedded schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations holds the full schema, in order. The two cache tables are
// the only persistent state the core owns.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_geocoding_cache",
		SQL: `
			CREATE TABLE IF NOT EXISTS geocoding_cache (
				address TEXT PRIMARY KEY,
				lat REAL NOT NULL,
				lng REAL NOT NULL,
				formatted_address TEXT NOT NULL DEFAULT '',
				accuracy TEXT NOT NULL DEFAULT '',
				method TEXT NOT NULL DEFAULT '',
				cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_distance_cache",
		SQL: `
			CREATE TABLE IF NOT EXISTS distance_cache (
				origin_lat REAL NOT NULL,
				origin_lng REAL NOT NULL,
				dest_lat REAL NOT NULL,
				dest_lng REAL NOT NULL,
				distance_km REAL NOT NULL,
				duration_hours REAL NOT NULL,
				cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (origin_lat, origin_lng, dest_lat, dest_lng)
			)
		`,
	},
	{
		Version: 3,
		Name:    "index_distance_cache_endpoints",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_distance_cache_origin
			ON distance_cache (origin_lat, origin_lng)
		`,
	},
}

// RunMigrations applies all pending migrations.
func RunMigrations(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", m.Version, err)
	}

	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}

	log.Printf("Applied migration %d: %s", m.Version, m.Name)
	return nil
}
