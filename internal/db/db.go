// Package db persists the log of completed content tasks. PostgreSQL is used
// for postgres:// URLs and SQLite for everything else.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/content-assistant/internal/analysis"
)

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 50

// Record is one logged task run. Records are append-only.
type Record struct {
	ID        uuid.UUID        `json:"id"`
	Task      string           `json:"task"`
	URLs      []string         `json:"urls"`
	Audience  string           `json:"audience"`
	Topic     string           `json:"topic"`
	Analysis  *analysis.Report `json:"analysis"`
	Result    string           `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store is an append-only log of records.
type Store interface {
	// Append stores a record, assigning its ID and CreatedAt when unset.
	Append(ctx context.Context, r *Record) error
	// Get returns the record with id, or nil if there is none.
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open connects to the store named by dsn.
func Open(ctx context.Context, dsn string) (Store, error) {
	if isPostgres(dsn) {
		store, err := Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// prepare fills generated fields before insert.
func prepare(r *Record) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.URLs == nil {
		r.URLs = []string{}
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func marshalAnalysis(report *analysis.Report) ([]byte, error) {
	if report == nil {
		report = &analysis.Report{}
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return data, nil
}

func unmarshalAnalysis(data []byte) (*analysis.Report, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &report, nil
}
