// Package db provides the sqlite storage layer for the Geolife
// collections: bulk ingestion, the fixed schema, and the read-only
// aggregation queries consumed by the API and report tooling.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// OpenDB opens a database connection without touching the schema.
// Used by the migrate subcommand, which manages the schema itself.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// Single writer; avoids SQLITE_BUSY during bulk loads.
	sqlDB.SetMaxOpenConns(1)

	return &DB{sqlDB}, nil
}

// NewDB opens a database connection and brings the schema up to date from
// the embedded migrations. This is the constructor every binary except
// the migrate subcommand uses; a failure here is fatal at startup.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	fsys, err := MigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.MigrateUp(fsys); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise schema: %w", err)
	}

	return db, nil
}
