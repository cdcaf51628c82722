// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records which papers have already been ingested so that
// batch and watch runs skip files they have processed before, keyed by
// content hash so renames and re-downloads do not cause rework.
package ledger

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Outcome of one ingestion attempt as stored in the ledger.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Entry is one ledger row.
type Entry struct {
	Hash        string
	SourcePath  string
	Outcome     string
	Detail      string
	ProcessedAt time.Time
}

// Ledger persists ingestion outcomes in a SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating the schema
// if it does not exist.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS processed (
		hash TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		processed_at TEXT NOT NULL
	)`
	if _, err := l.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record upserts the outcome for one content hash.
func (l *Ledger) Record(hash, sourcePath, outcome, detail string) error {
	_, err := l.db.Exec(
		`INSERT INTO processed (hash, source_path, outcome, detail, processed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET
			source_path = excluded.source_path,
			outcome = excluded.outcome,
			detail = excluded.detail,
			processed_at = excluded.processed_at`,
		hash, sourcePath, outcome, detail, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording ledger entry: %w", err)
	}
	return nil
}

// Lookup returns the ledger entry for a content hash, or false when the
// hash has never been processed.
func (l *Ledger) Lookup(hash string) (*Entry, bool, error) {
	row := l.db.QueryRow(
		`SELECT hash, source_path, outcome, detail, processed_at FROM processed WHERE hash = ?`, hash)

	var e Entry
	var processedAt string
	err := row.Scan(&e.Hash, &e.SourcePath, &e.Outcome, &e.Detail, &processedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading ledger entry: %w", err)
	}
	e.ProcessedAt, _ = time.Parse(time.RFC3339, processedAt)
	return &e, true, nil
}

// Done reports whether a hash completed with a terminal outcome. Failed
// attempts are not terminal so the file is retried on the next scan.
func (l *Ledger) Done(hash string) (bool, error) {
	e, ok, err := l.Lookup(hash)
	if err != nil || !ok {
		return false, err
	}
	return e.Outcome == OutcomeSucceeded || e.Outcome == OutcomeDuplicate, nil
}

// HashFile returns the hex SHA-256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
