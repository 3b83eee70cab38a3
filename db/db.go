package db

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db   *sql.DB
	once sync.Once
)

// schema holds the tables this service owns. The valuation cache table has no
// uniqueness constraint on (vin, mileage); readers always order by created_at
// and take the freshest row, so duplicate writes are harmless.
const schema = `
CREATE TABLE IF NOT EXISTS vin_valuation_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vin TEXT NOT NULL,
	mileage INTEGER NOT NULL,
	valuation_data TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_vin_valuation_cache_vin ON vin_valuation_cache(vin);

CREATE TABLE IF NOT EXISTS reservation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vin TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	valuation_data TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Init initializes the database connection and creates missing tables
func Init(databaseURL string) error {
	var err error
	once.Do(func() {
		db, err = sql.Open("sqlite3", databaseURL)
		if err != nil {
			log.Printf("Failed to open database: %v", err)
			return
		}

		// Test the connection
		if err = db.Ping(); err != nil {
			log.Printf("Failed to ping database: %v", err)
			return
		}

		if _, err = db.Exec(schema); err != nil {
			log.Printf("Failed to create schema: %v", err)
			return
		}

		log.Printf("Database initialized successfully: %s", databaseURL)
	})
	return err
}

// Get returns the database connection
func Get() *sql.DB {
	if db == nil {
		panic("Database not initialized. Call db.Init() first.")
	}
	return db
}

// SetForTesting sets the database connection for testing
func SetForTesting(database *sql.DB) {
	db = database
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Convenience methods that wrap common database operations

// Query executes a query that returns rows
func Query(query string, args ...interface{}) (*sql.Rows, error) {
	return Get().Query(query, args...)
}

// QueryRow executes a query that returns a single row
func QueryRow(query string, args ...interface{}) *sql.Row {
	return Get().QueryRow(query, args...)
}

// Exec executes a query that doesn't return rows
func Exec(query string, args ...interface{}) (sql.Result, error) {
	return Get().Exec(query, args...)
}

// Begin starts a new transaction
func Begin() (*sql.Tx, error) {
	return Get().Begin()
}
