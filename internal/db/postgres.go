package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analysis_results (
	id         UUID PRIMARY KEY,
	task       TEXT NOT NULL,
	urls       TEXT[] NOT NULL DEFAULT '{}',
	audience   TEXT NOT NULL DEFAULT '',
	topic      TEXT NOT NULL DEFAULT '',
	analysis   JSONB,
	result     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS analysis_results_created_at_idx ON analysis_results (created_at DESC);
`

// PostgresStore wraps a PostgreSQL connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and creates the
// results table if needed.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Append inserts a record.
func (s *PostgresStore) Append(ctx context.Context, r *Record) error {
	prepare(r)
	analysisJSON, err := marshalAnalysis(r.Analysis)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_results (id, task, urls, audience, topic, analysis, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Task, r.URLs, r.Audience, r.Topic, analysisJSON, r.Result, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

const postgresColumns = `id, task, urls, audience, topic, analysis, result, created_at`

// Get retrieves a record by ID.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM analysis_results WHERE id = $1`, id)

	r, err := scanPostgresRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return r, nil
}

// List returns the newest records first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresColumns+` FROM analysis_results ORDER BY created_at DESC LIMIT $1`,
		listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanPostgresRecord(rows)
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

func scanPostgresRecord(row pgx.Row) (*Record, error) {
	var r Record
	var analysisJSON []byte
	if err := row.Scan(&r.ID, &r.Task, &r.URLs, &r.Audience, &r.Topic, &analysisJSON, &r.Result, &r.CreatedAt); err != nil {
		return nil, err
	}
	report, err := unmarshalAnalysis(analysisJSON)
	if err != nil {
		return nil, err
	}
	r.Analysis = report
	return &r, nil
}
