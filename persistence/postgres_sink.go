package persistence

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresSink stores the record in a PostgreSQL table, one row per
// key
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink connects to PostgreSQL and ensures the state table
// exists
func NewPostgresSink(connectionString string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	sink := &PostgresSink{db: db}

	// Initialize the database schema
	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	return sink, nil
}

// initSchema initializes the database schema
func (ps *PostgresSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS editor_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// Get returns the value stored under key
func (ps *PostgresSink) Get(key string) (string, bool, error) {
	var value string
	err := ps.db.QueryRow(`SELECT value FROM editor_state WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load key %s: %v", key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (ps *PostgresSink) Set(key, value string) error {
	query := `
	INSERT INTO editor_state (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key)
	DO UPDATE SET
		value = $2,
		updated_at = NOW()
	`

	if _, err := ps.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to save key %s: %v", key, err)
	}
	return nil
}

// Snapshot returns a copy of the full record
func (ps *PostgresSink) Snapshot() (map[string]string, error) {
	rows, err := ps.db.Query(`SELECT key, value FROM editor_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to load state record: %v", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %v", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read state rows: %v", err)
	}
	return out, nil
}

// Close closes the database connection
func (ps *PostgresSink) Close() error {
	log.Println("Closing database connection...")
	return ps.db.Close()
}
