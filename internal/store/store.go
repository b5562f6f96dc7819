// Package store persists contract analyses in SQLite. The database is
// opened with WAL journaling and a busy timeout so concurrent analyzers on
// the same file do not trip over each other.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	uploaded_at   TEXT NOT NULL,
	page_count    INTEGER NOT NULL DEFAULT 0,
	encrypted     INTEGER NOT NULL DEFAULT 0,
	text_missing  INTEGER NOT NULL DEFAULT 0,
	warning       TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL DEFAULT '',
	clauses_json  TEXT NOT NULL DEFAULT '{}',
	total_clauses INTEGER NOT NULL DEFAULT 0,
	coverage      REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at);
`

// Record is one stored analysis.
type Record struct {
	ID           string
	Filename     string
	UploadedAt   time.Time
	PageCount    int
	Encrypted    bool
	TextMissing  bool
	Warning      string
	Text         string
	Clauses      map[string][]string
	TotalClauses int
	Coverage     float64
}

// Stats aggregates the whole store for dashboard-style views.
type Stats struct {
	TotalDocuments   int
	DocumentsMissing int
	TotalClauses     int
	CategoryTotals   map[string]int
}

// Store is a SQLite-backed analysis store. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path, applying
// pragmas and schema. Parent directories are created.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a record by id.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("record must have an id")
	}

	clauses := rec.Clauses
	if clauses == nil {
		clauses = map[string][]string{}
	}
	clausesJSON, err := json.Marshal(clauses)
	if err != nil {
		return fmt.Errorf("encode clauses: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
			(id, filename, uploaded_at, page_count, encrypted, text_missing,
			 warning, extracted_text, clauses_json, total_clauses, coverage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.UploadedAt.UTC().Format(time.RFC3339Nano),
		rec.PageCount, boolToInt(rec.Encrypted), boolToInt(rec.TextMissing),
		rec.Warning, rec.Text, string(clausesJSON), rec.TotalClauses, rec.Coverage,
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record with the given id, or sql.ErrNoRows wrapped if it
// does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, uploaded_at, page_count, encrypted, text_missing,
		       warning, extracted_text, clauses_json, total_clauses, coverage
		FROM documents WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return rec, nil
}

// List returns all records, newest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, uploaded_at, page_count, encrypted, text_missing,
		       warning, extracted_text, clauses_json, total_clauses, coverage
		FROM documents ORDER BY uploaded_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return records, nil
}

// Delete removes a record, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	return n > 0, nil
}

// AggregateStats scans all records and totals clause counts per category.
func (s *Store) AggregateStats(ctx context.Context) (*Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{CategoryTotals: make(map[string]int)}
	for _, rec := range records {
		stats.TotalDocuments++
		if rec.TextMissing {
			stats.DocumentsMissing++
		}
		stats.TotalClauses += rec.TotalClauses
		for category, sentences := range rec.Clauses {
			stats.CategoryTotals[category] += len(sentences)
		}
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec         Record
		uploadedAt  string
		encrypted   int
		textMissing int
		clausesJSON string
	)
	if err := row.Scan(&rec.ID, &rec.Filename, &uploadedAt, &rec.PageCount,
		&encrypted, &textMissing, &rec.Warning, &rec.Text, &clausesJSON,
		&rec.TotalClauses, &rec.Coverage); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parse uploaded_at: %w", err)
	}
	rec.UploadedAt = ts
	rec.Encrypted = encrypted != 0
	rec.TextMissing = textMissing != 0

	if err := json.Unmarshal([]byte(clausesJSON), &rec.Clauses); err != nil {
		return nil, fmt.Errorf("decode clauses: %w", err)
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
