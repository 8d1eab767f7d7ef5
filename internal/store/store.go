// Package store provides key-value persistence for completed chat
// sessions. Each record is stored under its creation timestamp as a
// JSON value. The storage medium sits behind the [Store] interface so
// the embedded database can be swapped for an in-memory map in tests
// and ephemeral sessions.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql

	"github.com/RaoAkif/BotFusion/internal/chat"
)

// ReservedKey is a bookkeeping key that is not a session record. It is
// excluded from enumeration and tolerated if present in the underlying
// medium.
const ReservedKey = "timestamp"

// Store persists session records keyed by their timestamp.
//
// Save is an idempotent upsert: saving twice under the same timestamp
// leaves one record. LoadAll returns records in unspecified order;
// callers re-sort. LoadOne returns (nil, nil) both when the key is
// absent and when the stored value fails to parse; a corrupt entry
// must never crash the caller.
type Store interface {
	Save(rec chat.Record) error
	LoadAll() ([]chat.Record, error)
	LoadOne(timestamp string) (*chat.Record, error)
}

// SQLiteStore is a [Store] backed by a single SQLite table. Safe for
// concurrent use (SQLite serializes writes).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the session database at the given
// path. The schema is created automatically on first use.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		key        TEXT NOT NULL PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts a record under its timestamp key. An existing entry with
// the same key is overwritten.
func (s *SQLiteStore) Save(rec chat.Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Timestamp, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE
		 SET value = excluded.value, updated_at = excluded.updated_at`,
		rec.Timestamp, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", rec.Timestamp, err)
	}
	return nil
}

// LoadAll returns every stored record except the reserved bookkeeping
// key. Entries that fail to parse are skipped rather than failing the
// whole load.
func (s *SQLiteStore) LoadAll() ([]chat.Record, error) {
	rows, err := s.db.Query(
		`SELECT value FROM sessions WHERE key != ?`, ReservedKey,
	)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	var records []chat.Record
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		var rec chat.Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadOne returns the record stored under the given timestamp, or
// (nil, nil) when it is missing or does not parse as a record.
func (s *SQLiteStore) LoadOne(timestamp string) (*chat.Record, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM sessions WHERE key = ?`, timestamp,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", timestamp, err)
	}

	var rec chat.Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}
