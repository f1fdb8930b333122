package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const (
	DataFileName  = "data.db"
	schemaVersion = 1
	timeFormat    = "2006-01-02T15:04:05Z"

	selectSchemaVersionSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_version`
	insertSchemaVersionSQL = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when a requested run does not exist.
	ErrNotFound = errors.New("not found")
)

// Init creates the database file and applies the schema if needed.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return fmt.Errorf("reading schema file: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("creating schema in %s: %w", dbFilePath, err)
	}

	var version int
	if err := db.QueryRow(selectSchemaVersionSQL).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version < schemaVersion {
		now := time.Now().UTC().Format(timeFormat)
		if _, err := db.Exec(insertSchemaVersionSQL, schemaVersion, now); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
		slog.Debug("db schema applied", "path", dbFilePath, "version", schemaVersion)
	}
	return nil
}

// GetDB opens the sqlite database at path.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return conn, nil
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("error rolling back transaction", "error", err)
	}
}
