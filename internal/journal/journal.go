// Package journal records every PayLane call in PostgreSQL. It stores call
// metadata only; request parameters and responses carry card and customer
// data and are never written.
package journal

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/paylane-go/paylane"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/001_init.up.sql
var initSQL string

// Entry is one stored call.
type Entry struct {
	ID         uuid.UUID
	Operation  string
	Method     string
	Path       string
	StatusCode int
	Success    bool
	Error      *string
	StartedAt  time.Time
	Duration   time.Duration
}

// DefaultWriteTimeout bounds a single ObserveCall insert.
const DefaultWriteTimeout = 2 * time.Second

type Journal struct {
	db           *pgxpool.Pool
	logger       *slog.Logger
	writeTimeout time.Duration
}

var _ paylane.CallObserver = (*Journal)(nil)

// New returns a Journal writing through db. A writeTimeout <= 0 selects
// DefaultWriteTimeout.
func New(db *pgxpool.Pool, logger *slog.Logger, writeTimeout time.Duration) *Journal {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Journal{db: db, logger: logger, writeTimeout: writeTimeout}
}

// Migrate creates the journal table if it does not exist.
func (j *Journal) Migrate(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, initSQL); err != nil {
		return fmt.Errorf("execute journal migration: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, rec paylane.CallRecord) error {
	query := `
		INSERT INTO paylane_calls (
			id, operation, method, path, status_code, success, error, started_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var errText *string
	if rec.Err != nil {
		s := rec.Err.Error()
		errText = &s
	}

	_, err := j.db.Exec(ctx, query,
		rec.ID,
		rec.Operation,
		rec.Method,
		rec.Path,
		rec.StatusCode,
		rec.Success,
		errText,
		rec.StartedAt,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// ObserveCall records rec. A journal failure must not turn a completed
// payment call into an error, so it is only logged. The insert ignores the
// caller's cancellation but never outlives writeTimeout.
func (j *Journal) ObserveCall(ctx context.Context, rec paylane.CallRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.writeTimeout)
	defer cancel()

	if err := j.Record(ctx, rec); err != nil {
		j.logger.Error("journal write failed", "call_id", rec.ID.String(), "error", err)
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, operation, method, path, status_code, success, error, started_at, duration_ms
		FROM paylane_calls
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := j.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent calls: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e          Entry
			durationMS int64
		)
		err := row.Scan(
			&e.ID, &e.Operation, &e.Method, &e.Path, &e.StatusCode,
			&e.Success, &e.Error, &e.StartedAt, &durationMS,
		)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan recent calls: %w", err)
	}

	return entries, nil
}
