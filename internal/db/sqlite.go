package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analysis_results (
	id         TEXT PRIMARY KEY,
	task       TEXT NOT NULL,
	urls       TEXT NOT NULL DEFAULT '[]',
	audience   TEXT NOT NULL DEFAULT '',
	topic      TEXT NOT NULL DEFAULT '',
	analysis   TEXT,
	result     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS analysis_results_created_at_idx ON analysis_results (created_at DESC);
`

// sqliteTimeFormat is fixed-width so created_at sorts as text.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. An empty path uses
// content_analysis.db and ":memory:" keeps everything in memory.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "content_analysis.db"
	}

	connStr := path
	if path == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append inserts a record.
func (s *SQLiteStore) Append(ctx context.Context, r *Record) error {
	prepare(r)
	analysisJSON, err := marshalAnalysis(r.Analysis)
	if err != nil {
		return err
	}
	urlsJSON, err := json.Marshal(r.URLs)
	if err != nil {
		return fmt.Errorf("failed to marshal urls: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_results (id, task, urls, audience, topic, analysis, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Task, string(urlsJSON), r.Audience, r.Topic, string(analysisJSON), r.Result,
		r.CreatedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

const sqliteColumns = `id, task, urls, audience, topic, analysis, result, created_at`

// Get retrieves a record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM analysis_results WHERE id = ?`, id.String())

	r, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return r, nil
}

// List returns the newest records first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM analysis_results ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		r, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (*Record, error) {
	var (
		r            Record
		id           string
		urlsJSON     string
		analysisJSON sql.NullString
		createdAt    string
	)
	if err := row.Scan(&id, &r.Task, &urlsJSON, &r.Audience, &r.Topic, &analysisJSON, &r.Result, &createdAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	r.ID = parsedID

	if err := json.Unmarshal([]byte(urlsJSON), &r.URLs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal urls: %w", err)
	}

	if analysisJSON.Valid {
		report, err := unmarshalAnalysis([]byte(analysisJSON.String))
		if err != nil {
			return nil, err
		}
		r.Analysis = report
	}

	r.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return &r, nil
}
