package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Open opens the SQLite database at databasePath, creating its directory.
// Pragmas go in the DSN so every pooled connection gets them. An in-memory
// database is limited to one connection, since each connection would
// otherwise see its own empty database.
func Open(databasePath string) (*sql.DB, error) {
	if databasePath != memoryPath {
		directory := filepath.Dir(databasePath)
		if err := os.MkdirAll(directory, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", databasePath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if databasePath == memoryPath {
		database.SetMaxOpenConns(1)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return database, nil
}
