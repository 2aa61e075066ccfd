package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"dupfinder/logging"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicateRecord is returned by Insert when the filename or the
// fingerprint is already stored
var ErrDuplicateRecord = errors.New("record already exists")

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS images (
		filename  TEXT PRIMARY KEY NOT NULL,
		imagehash TEXT UNIQUE
	);`

// Store is the filename -> fingerprint table
type Store struct {
	db   *sql.DB
	path string

	// Created reports whether the database file did not exist before InitDatabase
	Created bool
}

// InitDatabase opens the database at dbPath, creating the file and schema if absent
func InitDatabase(dbPath string) (*Store, error) {
	_, statErr := os.Stat(dbPath)
	created := os.IsNotExist(statErr)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", dbPath, err)
	}
	// A single connection keeps every statement on the same sqlite handle.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: dbPath, Created: created}
	if err := store.EnsureInitialized(); err != nil {
		db.Close()
		return nil, err
	}

	if created {
		logging.DebugLog("Created database at %s", dbPath)
	}
	return store, nil
}

// DropDatabase removes the database file and the sqlite side files next to it.
// Missing files are not an error.
func DropDatabase(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-journal", dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cannot drop database %s: %w", p, err)
		}
	}
	return nil
}

// Path returns the location of the database file
func (s *Store) Path() string {
	return s.path
}

// EnsureInitialized creates the images table if it does not exist
func (s *Store) EnsureInitialized() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("cannot create schema in %s: %w", s.path, err)
	}
	return nil
}

// Reset drops every stored record and recreates the schema
func (s *Store) Reset() error {
	if _, err := s.db.Exec("DROP TABLE IF EXISTS images;"); err != nil {
		return fmt.Errorf("cannot drop images table: %w", err)
	}
	return s.EnsureInitialized()
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists checks whether a record with this filename is stored
func (s *Store) Exists(filename string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM images WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("database error for %s: %w", filename, err)
	}
	return count > 0, nil
}

// LookupByFingerprint returns the filename of the record holding fingerprint
func (s *Store) LookupByFingerprint(fingerprint string) (string, bool, error) {
	var filename string
	err := s.db.QueryRow("SELECT filename FROM images WHERE imagehash = ?", fingerprint).Scan(&filename)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cannot look up fingerprint %s: %w", fingerprint, err)
	}
	return filename, true, nil
}

// Insert stores a new record
func (s *Store) Insert(filename, fingerprint string) error {
	stmt, err := s.db.Prepare("INSERT INTO images (filename, imagehash) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %w", filename, err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(filename, fingerprint); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("cannot insert %s: %w", filename, ErrDuplicateRecord)
		}
		return fmt.Errorf("cannot insert data for %s: %w", filename, err)
	}
	return nil
}

// ScanStats contains statistics about the stored records
type ScanStats struct {
	TotalImages  int
	UniqueHashes int
}

// GetScanStats retrieves statistics about stored images
func (s *Store) GetScanStats() (*ScanStats, error) {
	var stats ScanStats

	err := s.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT imagehash) FROM images").
		Scan(&stats.TotalImages, &stats.UniqueHashes)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan stats: %w", err)
	}

	return &stats, nil
}
