package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database represents the zamboni PostgreSQL connection.
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase creates a new database connection.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries.
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migrations are applied in order; the schema is small enough to inline.
var migrations = []struct {
	version string
	sql     string
}{
	{
		version: "001_create_pipeline_runs",
		sql: `
			CREATE TABLE IF NOT EXISTS pipeline_runs (
				run_id BIGSERIAL PRIMARY KEY,
				season_label VARCHAR(8) NOT NULL,
				force_refresh BOOLEAN NOT NULL DEFAULT FALSE,
				team_count INT NOT NULL,
				row_count INT NOT NULL,
				join_misses INT NOT NULL DEFAULT 0,
				constant_sos BOOLEAN NOT NULL DEFAULT FALSE,
				started_at TIMESTAMPTZ NOT NULL,
				duration_ms BIGINT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		version: "002_create_team_defense_scores",
		sql: `
			CREATE TABLE IF NOT EXISTS team_defense_scores (
				run_id BIGINT NOT NULL REFERENCES pipeline_runs(run_id) ON DELETE CASCADE,
				team VARCHAR(3) NOT NULL,
				score INT NOT NULL,
				tier VARCHAR(16) NOT NULL,
				PRIMARY KEY (run_id, team)
			)
		`,
	},
	{
		version: "003_create_lookup_rows",
		sql: `
			CREATE TABLE IF NOT EXISTS lookup_rows (
				run_id BIGINT NOT NULL REFERENCES pipeline_runs(run_id) ON DELETE CASCADE,
				team VARCHAR(3) NOT NULL,
				week INT NOT NULL,
				games INT NOT NULL,
				light_nights INT NOT NULL,
				opponents TEXT NOT NULL,
				sos INT NOT NULL,
				matchup_tier TEXT NOT NULL,
				back_to_backs INT NOT NULL,
				away_games INT NOT NULL,
				games_rest_of_week INT NOT NULL,
				games_ros INT NOT NULL,
				lookup_key VARCHAR(8) NOT NULL,
				PRIMARY KEY (run_id, team, week)
			)
		`,
	},
	{
		version: "004_index_lookup_rows_key",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_lookup_rows_key ON lookup_rows(lookup_key)
		`,
	},
}

// RunMigrations applies the schema, tracking applied versions.
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m.version, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")
	return nil
}

func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *Database) runMigration(version, query string) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", version)
	return nil
}

// HealthCheck performs a health check on the database.
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
